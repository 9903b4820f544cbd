package migrator

import "log/slog"

// Option is a function that allows configuring the Migrator.
type Option func(*Migrator)

// WithLogger sets the logger used by the Migrator.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Migrator) {
		m.logger = logger.With("component", "migrator")
	}
}

// WithResetHistory sets whether down events are recorded when all applied
// migrations are rolled back. This is disabled by default, since rolling back
// the initial migration removes the history structure itself.
func WithResetHistory(record bool) Option {
	return func(m *Migrator) {
		m.recordReset = record
	}
}

// DefaultOptions returns the default Migrator options.
func DefaultOptions() []Option {
	return []Option{
		WithLogger(slog.Default()),
		WithResetHistory(false),
	}
}
