package mysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		out  string
	}{
		{name: "plain", in: "migrations", out: "`migrations`"},
		{name: "empty", in: "", out: "``"},
		{name: "backtick", in: "mig`rations", out: "`mig``rations`"},
		{name: "quotes", in: `it's "x"`, out: "`it's \"x\"`"},
		{name: "nul", in: "a\x00b", out: "`ab`"},
		{name: "unicode", in: "миграции", out: "`миграции`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.out, quoteIdent(tt.in))
		})
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		expErr string
		expDB  string
	}{
		{
			name:  "ok/db_from_dsn",
			cfg:   Config{DSN: "user:pass@tcp(127.0.0.1:3306)/app"},
			expDB: "app",
		},
		{
			name:  "ok/db_override",
			cfg:   Config{DSN: "user:pass@tcp(127.0.0.1:3306)/app", Database: "other"},
			expDB: "other",
		},
		{
			name:   "err/no_db",
			cfg:    Config{DSN: "user:pass@tcp(127.0.0.1:3306)/"},
			expErr: "no database name configured",
		},
		{
			name:   "err/bad_dsn",
			cfg:    Config{DSN: "user:pass@tcp(127.0.0.1:3306"},
			expErr: "failed parsing MySQL DSN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := Open(tt.cfg, nil)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			assert.Equal(t, tt.expDB, s.db)
			assert.Equal(t, DefaultTable, s.table)
		})
	}
}

func TestConfigDatabaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    Config
		expDB  string
		expErr string
	}{
		{name: "ok/database", cfg: Config{Database: "other", DSN: "tcp(db:3306)/app"}, expDB: "other"},
		{name: "ok/dsn", cfg: Config{DSN: "user@tcp(db:3306)/app?parseTime=true"}, expDB: "app"},
		{name: "ok/database_bad_dsn", cfg: Config{Database: "other", DSN: "tcp(nope"}, expDB: "other"},
		{name: "err/empty", cfg: Config{}, expErr: "no database name configured"},
		{name: "err/bad_dsn", cfg: Config{DSN: "tcp(nope"}, expErr: "failed parsing MySQL DSN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db, err := tt.cfg.DatabaseName()
			if tt.expErr != "" {
				assert.ErrorContains(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expDB, db)
		})
	}
}

func TestInitialMigration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		database string
		table    string
	}{
		{name: "default", database: "vemigrate", table: ""},
		{name: "custom", database: "app", table: "schema_history"},
		{name: "escaped", database: "my`db", table: "t`bl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			up, down := InitialMigration(tt.database, tt.table)
			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, "initial_"+tt.name+"_up", []byte(up))
			g.Assert(t, "initial_"+tt.name+"_down", []byte(down))
		})
	}
}
