package migrator

import "context"

//go:generate mockgen -source=store.go -destination=mock/store.go -package=mock

// Store persists the migration history and executes statements against the
// target database.
type Store interface {
	// GetAll returns all history events. A nil slice with a nil error means the
	// structure holding the history doesn't exist yet.
	GetAll(ctx context.Context) ([]HistoryEvent, error)
	// Add appends a history event. It must be visible to subsequent GetAll calls.
	Add(ctx context.Context, id ID, up bool) error
	// Exec executes a single statement.
	Exec(ctx context.Context, stmt string) error
}
