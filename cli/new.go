package cli

import (
	actx "go.hackfix.me/vemigrate/app/context"
	aerrors "go.hackfix.me/vemigrate/app/errors"
	"go.hackfix.me/vemigrate/migrator"
)

const newMigrationContent = "-- Add your migration query below\n"

// The NewCmd command creates an empty migration.
type NewCmd struct {
	Name string `arg:"" help:"The name of the migration."`
}

// Run the new command.
func (c *NewCmd) Run(appCtx *actx.Context, g *Globals) error {
	if err := g.checkMigrationsDir(appCtx); err != nil {
		return err
	}

	content := []byte(newMigrationContent)
	path, err := migrator.Create(appCtx.FS, g.Path, c.Name, appCtx.TimeNow(), content, content)
	if err != nil {
		return aerrors.NewWithCause("failed creating migration", err, "name", c.Name)
	}
	appCtx.Logger.Info("migration created", "path", path)

	return nil
}
