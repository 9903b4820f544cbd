package sqlite

import (
	"errors"
	"fmt"

	"github.com/glebarez/go-sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrLocked is returned when the database is locked by another connection.
	ErrLocked = errors.New("database is locked")
	// ErrConstraint is returned when a statement violates a constraint.
	ErrConstraint = errors.New("constraint violation")
)

// classify converts an expected error returned by SQLite into one of the
// errors defined above, keeping the original error in the chain.
func classify(err error) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}

	switch sqlErr.Code() & 0xff { //nolint:mnd // Primary result code.
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return fmt.Errorf("%w: %w", ErrLocked, err)
	case sqlite3.SQLITE_CONSTRAINT:
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}

	return err
}
