package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	actx "go.hackfix.me/vemigrate/app/context"
	aerrors "go.hackfix.me/vemigrate/app/errors"
	"go.hackfix.me/vemigrate/migrator"
)

// The Migrate command applies all pending migrations.
type Migrate struct{}

// Run the migrate command.
func (c *Migrate) Run(appCtx *actx.Context, g *Globals) error {
	appCtx.Logger.Info("executing pending migrations")
	return runMigration(appCtx, g, (*migrator.Migrator).Up)
}

// The Reset command rolls back all applied migrations.
type Reset struct{}

// Run the reset command.
func (c *Reset) Run(appCtx *actx.Context, g *Globals) error {
	appCtx.Logger.Info("rolling back all migrations")
	return runMigration(appCtx, g, (*migrator.Migrator).Down)
}

// The Do command applies the next N pending migrations.
type Do struct {
	Count uint `short:"c" default:"1" help:"Number of migrations to apply."`
}

// Run the do command.
func (c *Do) Run(appCtx *actx.Context, g *Globals) error {
	appCtx.Logger.Info(fmt.Sprintf("executing %d migrations", c.Count))
	return runMigration(appCtx, g, func(m *migrator.Migrator, ctx context.Context) (*migrator.Report, error) {
		return m.UpN(ctx, int(c.Count)) //nolint:gosec // Counts don't overflow.
	})
}

// The Undo command rolls back the N most recently applied migrations.
type Undo struct {
	Count uint `short:"c" default:"1" help:"Number of migrations to roll back."`
}

// Run the undo command.
func (c *Undo) Run(appCtx *actx.Context, g *Globals) error {
	appCtx.Logger.Info(fmt.Sprintf("rolling back %d migrations", c.Count))
	return runMigration(appCtx, g, func(m *migrator.Migrator, ctx context.Context) (*migrator.Report, error) {
		return m.DownN(ctx, int(c.Count)) //nolint:gosec // Counts don't overflow.
	})
}

// The Redo command rolls back the most recently applied migration, and
// applies it again.
type Redo struct{}

// Run the redo command.
func (c *Redo) Run(appCtx *actx.Context, g *Globals) error {
	m, closeStore, err := g.newMigrator(appCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	appCtx.Logger.Info("redoing the last migration")
	report, err := m.Redo(appCtx.Ctx)
	if errors.Is(err, migrator.ErrRedoIncomplete) {
		appCtx.Logger.Info("the last migration was rolled back")
		return aerrors.NewWithCause("no pending migrations found", err)
	}
	if err != nil {
		return aerrors.NewWithCause("failed redoing the last migration", err)
	}

	if report.Empty() {
		appCtx.Logger.Info("no pending migrations found")
		return nil
	}

	id, _ := report.Last()
	appCtx.Logger.Info("the last migration was rolled back")
	appCtx.Logger.Info("the last migration was executed", "id", id)
	for _, rbID := range report.RolledBack {
		if rbID != id {
			appCtx.Logger.Warn("an older pending migration was executed instead of the rolled back one",
				"rolled_back", rbID, "id", id)
		}
	}

	return nil
}

type migrateFn func(*migrator.Migrator, context.Context) (*migrator.Report, error)

func runMigration(appCtx *actx.Context, g *Globals, fn migrateFn) error {
	m, closeStore, err := g.newMigrator(appCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := fn(m, appCtx.Ctx)
	if err != nil {
		return aerrors.NewWithCause("failed executing migrations", err, "path", g.Path)
	}

	logReport(appCtx.Logger, report)

	return nil
}

func logReport(logger *slog.Logger, report *migrator.Report) {
	id, ok := report.Last()
	switch {
	case !ok && report.Direction == migrator.Up:
		logger.Info("no pending migrations found")
	case !ok:
		logger.Info("no migrations found")
	case report.Direction == migrator.Up:
		logger.Info(fmt.Sprintf("migrated up to %s", id), "count", len(report.Executed))
	default:
		logger.Info(fmt.Sprintf("migrated down to %s", id), "count", len(report.Executed),
			"history_recorded", report.Recorded)
	}
}
