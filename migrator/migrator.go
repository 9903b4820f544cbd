package migrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Migrator runs migrations found in a directory against a Store.
type Migrator struct {
	fs          vfs.FileSystem
	dir         string
	store       Store
	logger      *slog.Logger
	recordReset bool
}

// New returns a new Migrator that reads migrations from dir on fs, and executes
// them against store.
func New(fs vfs.FileSystem, dir string, store Store, opts ...Option) *Migrator {
	m := &Migrator{fs: fs, dir: dir, store: store}

	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) (*Report, error) {
	return m.migrate(ctx, Up, -1)
}

// Down rolls back all applied migrations.
func (m *Migrator) Down(ctx context.Context) (*Report, error) {
	return m.migrate(ctx, Down, -1)
}

// UpN applies at most n pending migrations.
func (m *Migrator) UpN(ctx context.Context, n int) (*Report, error) {
	return m.migrate(ctx, Up, max(n, 0))
}

// DownN rolls back at most n of the most recently applied migrations.
func (m *Migrator) DownN(ctx context.Context, n int) (*Report, error) {
	return m.migrate(ctx, Down, max(n, 0))
}

// Redo rolls back the most recently applied migration, and then applies the
// oldest pending migration. This is usually the one that was rolled back, but
// if an older migration was pending already, that one is applied instead, and
// the rolled back migration stays pending. Report.RolledBack holds the ID of
// the rolled back migration.
// If there's nothing to roll back, the empty rollback report is returned.
func (m *Migrator) Redo(ctx context.Context) (*Report, error) {
	down, err := m.DownN(ctx, 1)
	if err != nil {
		return nil, err
	}
	if down.Empty() {
		return down, nil
	}

	up, err := m.UpN(ctx, 1)
	if err != nil {
		return nil, err
	}
	if up.Empty() {
		return nil, ErrRedoIncomplete
	}
	up.RolledBack = down.Executed

	return up, nil
}

// History returns the net state of all migrations recorded by the Store.
func (m *Migrator) History(ctx context.Context) (NetState, error) {
	events, err := m.store.GetAll(ctx)
	if err != nil {
		return nil, &StoreError{Op: "get history", Err: err}
	}

	return Reconcile(events), nil
}

// migrate executes at most n eligible migrations in the given direction. If n
// is negative, all of them are executed.
func (m *Migrator) migrate(ctx context.Context, dir Direction, n int) (*Report, error) {
	report := &Report{Direction: dir}

	// The directory is scanned before the store is queried, so that
	// filesystem errors are reported without touching the database.
	migrations, err := Scan(m.fs, m.dir)
	if err != nil {
		return nil, err
	}

	state, err := m.History(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := selectCandidates(m.fs, migrations, state, dir)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		m.logger.Debug("no eligible migrations", "direction", dir)
		return report, nil
	}

	count := len(candidates)
	if n >= 0 && n < count {
		count = n
	}

	// A full rollback drops the history structure along with the initial
	// migration, so there's nowhere to record down events.
	record := dir == Up || count < len(candidates) || m.recordReset

	for _, c := range candidates[:count] {
		if err = m.execute(ctx, c, dir, record); err != nil {
			return nil, err
		}
		report.Executed = append(report.Executed, c.ID)
	}
	report.Recorded = record && count > 0

	return report, nil
}

func (m *Migrator) execute(ctx context.Context, c Candidate, dir Direction, record bool) error {
	logger := m.logger.With("id", c.ID, "name", c.Name, "direction", dir)
	logger.Debug("executing migration", "script", c.ScriptPath, "statements", len(c.Statements))

	start := time.Now()
	for i, stmt := range c.Statements {
		if err := m.store.Exec(ctx, stmt); err != nil {
			logger.Error("failed executing statement", "index", i, "error", err)
			return &StoreError{Op: "exec " + c.ScriptPath, Err: err}
		}
	}

	if record {
		if err := m.store.Add(ctx, c.ID, bool(dir)); err != nil {
			return &StoreError{Op: "add history", Err: err}
		}
	}

	logger.Info("migration executed", "duration", time.Since(start).Round(time.Millisecond))

	return nil
}
