// Package sqlite implements a migrator.Store backed by an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/vemigrate/migrator"
)

// DefaultTable is the default name of the history table.
const DefaultTable = "migrations"

// Store records the migration history in a table of an SQLite database.
type Store struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

var _ migrator.Store = (*Store)(nil)

// Open opens the SQLite database at path, and returns a Store that keeps the
// history in table.
func Open(path, table string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		// See https://github.com/mattn/go-sqlite3#faq
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	}

	return New(db, table, logger), nil
}

// New returns a Store using an already opened database.
func New(db *sql.DB, table string, logger *slog.Logger) *Store {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:     db,
		table:  table,
		logger: logger.With("component", "store", "store_type", "sqlite", "table", table),
	}
}

// GetAll implements migrator.Store. It returns a nil slice if the history
// table doesn't exist.
func (s *Store) GetAll(ctx context.Context) ([]migrator.HistoryEvent, error) {
	s.logger.Debug("selecting migration history")

	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, s.table).
		Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("history table doesn't exist")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed checking history table: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, up FROM %s ORDER BY rowid`, quoteIdent(s.table)))
	if err != nil {
		return nil, fmt.Errorf("failed querying history: %w", err)
	}
	defer rows.Close()

	var events []migrator.HistoryEvent
	for rows.Next() {
		var (
			id int64
			up bool
		)
		if err = rows.Scan(&id, &up); err != nil {
			return nil, fmt.Errorf("failed scanning history row: %w", err)
		}
		events = append(events, migrator.HistoryEvent{ID: migrator.ID(id), Up: up})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading history: %w", err)
	}

	if len(events) == 0 {
		s.logger.Debug("no migrations found in history")
	}

	return events, nil
}

// Add implements migrator.Store.
func (s *Store) Add(ctx context.Context, id migrator.ID, up bool) error {
	s.logger.Debug("storing migration", "id", id, "up", up)

	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, up) VALUES (?, ?)`, quoteIdent(s.table)),
		int64(id), up)
	if err != nil {
		return fmt.Errorf("failed inserting history event: %w", classify(err))
	}

	return nil
}

// Exec implements migrator.Store.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	s.logger.Debug("executing statement", "stmt", stmt)

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return classify(err)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close() //nolint:wrapcheck // This is fine.
}

// InitialMigration returns the up and down scripts of the migration that
// creates and drops the history table.
func InitialMigration(table string) (up, down string) {
	if table == "" {
		table = DefaultTable
	}
	qt := quoteIdent(table)

	up = fmt.Sprintf(`-- This file is automatically @generated by vemigrate.
CREATE TABLE IF NOT EXISTS %s (
    id         INTEGER NOT NULL,
    up         BOOLEAN NOT NULL,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`, qt)
	down = fmt.Sprintf(`-- This file is automatically @generated by vemigrate.
DROP TABLE IF EXISTS %s;
`, qt)

	return up, down
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
