package cli

import (
	"database/sql"

	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.hackfix.me/vemigrate/app/context"
	aerrors "go.hackfix.me/vemigrate/app/errors"
	"go.hackfix.me/vemigrate/migrator"
	"go.hackfix.me/vemigrate/store"
)

const initialMigrationName = "initial"

// The Init command creates the migrations directory, and the initial migration
// that creates the history structure in the configured store.
type Init struct {
	ReplicationStrategy string `default:"SimpleStrategy" enum:"${strategies}" help:"Keyspace replication strategy (Scylla). One of: ${enum}"`
	ReplicationFactor   int    `default:"1" help:"Keyspace replication factor (Scylla)."`
}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context, g *Globals) error {
	_, err := appCtx.FS.Stat(g.Path)
	if err == nil {
		return aerrors.NewWith("migrations directory already exists", "path", g.Path)
	}
	if !vfs.IsErrNotExist(err) {
		return aerrors.NewWithCause("failed reading migrations directory", err, "path", g.Path)
	}

	up, down, err := store.InitialMigration(g.settings(), store.InitialOptions{
		ReplicationStrategy: c.ReplicationStrategy,
		ReplicationFactor:   c.ReplicationFactor,
	})
	if err != nil {
		return aerrors.NewWithCause("failed generating the initial migration", err, "store_type", g.Store)
	}

	appCtx.Logger.Info("creating migrations directory", "path", g.Path)
	if err = appCtx.FS.MkdirAll(g.Path, 0o755); err != nil {
		return aerrors.NewWithCause("failed creating migrations directory", err, "path", g.Path)
	}

	path, err := migrator.Create(appCtx.FS, g.Path, initialMigrationName, appCtx.TimeNow(), []byte(up), []byte(down))
	if err != nil {
		return aerrors.NewWithCause("failed creating the initial migration", err)
	}
	appCtx.Logger.Info("migration created", "path", path)

	return c.saveConfig(appCtx, g)
}

// saveConfig writes the settings used for init to the configuration file,
// unless it already exists.
func (c *Init) saveConfig(appCtx *actx.Context, g *Globals) error {
	cfg := appCtx.Config
	if cfg == nil {
		return nil
	}
	if _, err := appCtx.FS.Stat(cfg.Path()); err == nil {
		appCtx.Logger.Debug("configuration file already exists, not updating it", "path", cfg.Path())
		return nil
	}

	cfg.MigrationsDir = sql.Null[string]{V: g.Path, Valid: true}
	cfg.Store.Type = sql.Null[store.Type]{V: store.Type(g.Store), Valid: true}
	if g.DB.Keyspace != "" {
		cfg.Store.Keyspace = sql.Null[string]{V: g.DB.Keyspace, Valid: true}
	}
	if g.DB.Table != "" {
		cfg.Store.Table = sql.Null[string]{V: g.DB.Table, Valid: true}
	}
	if len(g.DB.Node) > 0 {
		cfg.Store.Scylla.Hosts = g.DB.Node
	}
	if g.DB.File != "" {
		cfg.Store.SQLite.Path = sql.Null[string]{V: g.DB.File, Valid: true}
	}
	if g.DB.DSN != "" {
		cfg.Store.MySQL.DSN = sql.Null[string]{V: g.DB.DSN, Valid: true}
	}

	if err := cfg.Save(); err != nil {
		return aerrors.NewWithCause("failed saving configuration", err, "path", cfg.Path())
	}
	appCtx.Logger.Info("configuration saved", "path", cfg.Path())

	return nil
}
