package cli

import (
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/vemigrate/app/config"
	actx "go.hackfix.me/vemigrate/app/context"
	aerrors "go.hackfix.me/vemigrate/app/errors"
	"go.hackfix.me/vemigrate/migrator"
	"go.hackfix.me/vemigrate/store"
	"go.hackfix.me/vemigrate/store/scylla"
)

const defaultMigrationsDir = "./migrations"

// Globals are the options shared by all commands.
type Globals struct {
	Path  string `short:"p" placeholder:"DIR" help:"Path to the migrations directory. Default: ${migrationsDir}"`
	Store string `placeholder:"TYPE" appenv:"VEMIGRATE_STORE" help:"History store type (${storeTypes}). Default: scylla ($$VEMIGRATE_STORE)"`
	DB    struct {
		Node     []string `placeholder:"ADDR" sep:"," appenv:"VEMIGRATE_NODE_ADDR" help:"Database node address in host:port format. Can be repeated. ($$VEMIGRATE_NODE_ADDR)"`
		Keyspace string   `placeholder:"NAME" appenv:"VEMIGRATE_KEYSPACE" help:"Keyspace (Scylla) or database (MySQL) of the history table. Default: ${keyspace} for Scylla, the DSN database for MySQL. ($$VEMIGRATE_KEYSPACE)"`
		Table    string   `placeholder:"NAME" appenv:"VEMIGRATE_TABLE" help:"History table name (SQLite and MySQL). ($$VEMIGRATE_TABLE)"`
		User     string   `appenv:"VEMIGRATE_USER" help:"Database user. ($$VEMIGRATE_USER)"`
		Password string   `appenv:"VEMIGRATE_PASSWORD" help:"Database password. ($$VEMIGRATE_PASSWORD)"`
		File     string   `placeholder:"PATH" appenv:"VEMIGRATE_SQLITE_PATH" help:"SQLite database file. ($$VEMIGRATE_SQLITE_PATH)"`
		DSN      string   `appenv:"VEMIGRATE_MYSQL_DSN" help:"MySQL data source name. ($$VEMIGRATE_MYSQL_DSN)"`
	} `embed:"" prefix:"db-"`

	recordReset bool
	timeout     time.Duration
	consistency string
}

func (g *Globals) applyConfig(cfg *config.Config) error {
	if g.Path == "" {
		g.Path = cfg.MigrationsDir.V
		if !cfg.MigrationsDir.Valid {
			g.Path = defaultMigrationsDir
		}
	}

	if g.Store == "" {
		g.Store = string(cfg.Store.Type.V)
		if !cfg.Store.Type.Valid {
			g.Store = string(store.TypeScylla)
		}
	}
	if _, err := store.TypeFromString(g.Store); err != nil {
		return aerrors.WithHint(err, "valid store types: "+strings.Join(storeTypes(), ", "))
	}

	if len(g.DB.Node) == 0 {
		g.DB.Node = cfg.Store.Scylla.Hosts
	}
	if g.DB.Keyspace == "" {
		g.DB.Keyspace = cfg.Store.Keyspace.V
		// MySQL falls back to the database name in the DSN.
		if !cfg.Store.Keyspace.Valid && g.Store == string(store.TypeScylla) {
			g.DB.Keyspace = scylla.DefaultKeyspace
		}
	}
	if g.DB.Table == "" && cfg.Store.Table.Valid {
		g.DB.Table = cfg.Store.Table.V
	}
	if g.DB.User == "" && cfg.Store.Scylla.User.Valid {
		g.DB.User = cfg.Store.Scylla.User.V
	}
	if g.DB.Password == "" && cfg.Store.Scylla.Password.Valid {
		g.DB.Password = cfg.Store.Scylla.Password.V
	}
	if g.DB.File == "" && cfg.Store.SQLite.Path.Valid {
		g.DB.File = cfg.Store.SQLite.Path.V
	}
	if g.DB.DSN == "" && cfg.Store.MySQL.DSN.Valid {
		g.DB.DSN = cfg.Store.MySQL.DSN.V
	}

	g.recordReset = cfg.RecordResetHistory.V
	g.timeout = cfg.Store.Scylla.Timeout.V
	g.consistency = cfg.Store.Scylla.Consistency.V

	return nil
}

func (g *Globals) settings() store.Settings {
	return store.Settings{
		Type:        store.Type(g.Store),
		Keyspace:    g.DB.Keyspace,
		Table:       g.DB.Table,
		Nodes:       g.DB.Node,
		User:        g.DB.User,
		Password:    g.DB.Password,
		Timeout:     g.timeout,
		Consistency: g.consistency,
		SQLitePath:  g.DB.File,
		MySQLDSN:    g.DB.DSN,
	}
}

// newMigrator returns a Migrator for the migrations directory, and a function
// that releases the store. The directory must exist.
func (g *Globals) newMigrator(appCtx *actx.Context) (*migrator.Migrator, func(), error) {
	if err := g.checkMigrationsDir(appCtx); err != nil {
		return nil, nil, err
	}

	st, closeStore, err := g.openStore(appCtx)
	if err != nil {
		return nil, nil, err
	}

	m := migrator.New(appCtx.FS, g.Path, st,
		migrator.WithLogger(appCtx.Logger),
		migrator.WithResetHistory(g.recordReset),
	)

	return m, closeStore, nil
}

func (g *Globals) checkMigrationsDir(appCtx *actx.Context) error {
	fi, err := appCtx.FS.Stat(g.Path)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return aerrors.WithHint(
				aerrors.NewWith("migrations directory doesn't exist", "path", g.Path),
				"run 'vemigrate init' first")
		}
		return aerrors.NewWithCause("failed reading migrations directory", err, "path", g.Path)
	}
	if !fi.IsDir() {
		return aerrors.NewWith("migrations path is not a directory", "path", g.Path)
	}

	return nil
}

//nolint:ireturn // Intentional, the store implementation depends on the configuration.
func (g *Globals) openStore(appCtx *actx.Context) (store.Store, func(), error) {
	if appCtx.Store != nil {
		return appCtx.Store, func() {}, nil
	}

	st, err := store.Open(g.settings(), appCtx.Logger)
	if err != nil {
		return nil, nil, aerrors.NewWithCause("failed opening history store", err, "store_type", g.Store)
	}

	return st, func() {
		if cerr := st.Close(); cerr != nil {
			appCtx.Logger.Warn("failed closing history store", "error", cerr)
		}
	}, nil
}
