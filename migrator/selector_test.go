package migrator_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/vemigrate/migrator"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  map[string]string
		expIDs []migrator.ID
		expErr error
	}{
		{
			name:   "ok/sorted",
			files:  threeMigrations(),
			expIDs: []migrator.ID{100, 200, 300},
		},
		{
			name: "ok/skip_non_migrations",
			files: map[string]string{
				"100_a/up.cql":    "select 1;",
				"notes/readme.md": "hello",
				"_draft/up.cql":   "select 1;",
				"v200_b/up.cql":   "select 1;",
				"300.cql":         "select 1;",
				"-5_neg/up.cql":   "select 1;",
			},
			expIDs: []migrator.ID{100},
		},
		{
			name: "ok/skip_overflow",
			files: map[string]string{
				"18446744073709551616_overflow/up.cql": "select 1;",
				"18446744073709551615_max/up.cql":      "select 1;",
			},
			expIDs: []migrator.ID{18446744073709551615},
		},
		{
			name: "ok/no_name",
			files: map[string]string{
				"42/up.cql": "select 1;",
			},
			expIDs: []migrator.ID{42},
		},
		{
			name:   "ok/empty",
			files:  nil,
			expIDs: nil,
		},
		{
			name: "err/duplicate",
			files: map[string]string{
				"100_a/up.cql":  "select 1;",
				"0100_b/up.cql": "select 1;",
			},
			expErr: migrator.ErrDuplicateMigration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := newFS(t, tt.files)
			migrations, err := migrator.Scan(fs, root)

			if tt.expErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expErr)
				return
			}

			require.NoError(t, err)
			var ids []migrator.ID
			for _, m := range migrations {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.expIDs, ids)
		})
	}

	t.Run("ok/name_and_path", func(t *testing.T) {
		t.Parallel()

		fs := newFS(t, map[string]string{"1700000000_add_users_table/up.cql": "select 1;"})
		migrations, err := migrator.Scan(fs, root)
		require.NoError(t, err)
		assert.Equal(t, []migrator.Migration{{
			ID:   1700000000,
			Name: "add_users_table",
			Path: "/migrations/1700000000_add_users_table",
		}}, migrations)
	})

	t.Run("err/missing_dir", func(t *testing.T) {
		t.Parallel()

		fs := newFS(t, nil)
		_, err := migrator.Scan(fs, "/nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed reading migrations directory")
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     map[string]string
		state     migrator.NetState
		dir       migrator.Direction
		expIDs    []migrator.ID
		expScript []string
		expErr    string
	}{
		{
			name:      "ok/up_empty_history",
			files:     threeMigrations(),
			state:     migrator.NetState{},
			dir:       migrator.Up,
			expIDs:    []migrator.ID{100, 200, 300},
			expScript: []string{"up.cql", "up.cql", "up.cql"},
		},
		{
			name:   "ok/up_partial_history",
			files:  threeMigrations(),
			state:  migrator.NetState{100: 1, 200: 0},
			dir:    migrator.Up,
			expIDs: []migrator.ID{200, 300},
		},
		{
			name:      "ok/down_descending",
			files:     threeMigrations(),
			state:     migrator.NetState{100: 1, 200: 1, 300: 1},
			dir:       migrator.Down,
			expIDs:    []migrator.ID{300, 200, 100},
			expScript: []string{"down.cql", "down.cql", "down.cql"},
		},
		{
			name:   "ok/down_only_applied",
			files:  threeMigrations(),
			state:  migrator.NetState{100: 1, 300: 1},
			dir:    migrator.Down,
			expIDs: []migrator.ID{300, 100},
		},
		{
			name:   "ok/inconsistent_excluded",
			files:  threeMigrations(),
			state:  migrator.NetState{100: 2, 200: -1, 300: 1},
			dir:    migrator.Up,
			expIDs: nil,
		},
		{
			name:   "ok/inconsistent_excluded_down",
			files:  threeMigrations(),
			state:  migrator.NetState{100: 2, 200: -1, 300: 1},
			dir:    migrator.Down,
			expIDs: []migrator.ID{300},
		},
		{
			name:   "ok/none_applied",
			files:  threeMigrations(),
			state:  migrator.NetState{},
			dir:    migrator.Down,
			expIDs: nil,
		},
		{
			name: "ok/unused_script_not_parsed",
			files: map[string]string{
				"100_a/up.cql":   "select 1;",
				"100_a/down.cql": "-- nothing",
			},
			state:  migrator.NetState{},
			dir:    migrator.Up,
			expIDs: []migrator.ID{100},
		},
		{
			name: "err/parse",
			files: map[string]string{
				"100_a/up.cql": "select 1;",
				"200_b/up.cql": "-- todo",
			},
			state:  migrator.NetState{},
			dir:    migrator.Up,
			expErr: "no CQL found in /migrations/200_b/up.cql",
		},
		{
			name: "err/missing_script",
			files: map[string]string{
				"100_a/down.cql": "select 1;",
			},
			state:  migrator.NetState{},
			dir:    migrator.Up,
			expErr: "failed opening migration file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := newFS(t, tt.files)
			candidates, err := migrator.Select(fs, root, tt.state, tt.dir)

			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				assert.Nil(t, candidates)
				return
			}

			require.NoError(t, err)
			var ids []migrator.ID
			for _, c := range candidates {
				ids = append(ids, c.ID)
				assert.NotEmpty(t, c.Statements)
			}
			assert.Equal(t, tt.expIDs, ids)
			if tt.expIDs == nil {
				assert.Nil(t, candidates)
			}

			for i, script := range tt.expScript {
				assert.Equal(t, script, filepath.Base(candidates[i].ScriptPath))
			}
		})
	}
}
