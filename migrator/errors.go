package migrator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParseMigrationFile is returned when a script contains no statements.
	ErrParseMigrationFile = errors.New("failed parsing migration file")
	// ErrDuplicateMigration is returned when two migration directories share an ID.
	ErrDuplicateMigration = errors.New("duplicate migration ID")
	// ErrRedoIncomplete is returned when a migration was rolled back during a
	// redo, but there was nothing to apply afterwards.
	ErrRedoIncomplete = errors.New("no pending migrations found after rollback")
	// ErrInvalidName is returned when creating a migration with an invalid name.
	ErrInvalidName = errors.New("invalid migration name")
)

// ParseError is returned when a migration script can't be parsed.
type ParseError struct {
	Path string
}

// Error returns a string representation of the error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("no CQL found in %s", e.Path)
}

// Is allows matching with ErrParseMigrationFile.
func (e *ParseError) Is(target error) bool {
	return target == ErrParseMigrationFile
}

// StoreError wraps an error returned by a Store.
type StoreError struct {
	Op  string
	Err error
}

// Error returns a string representation of the error.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %s", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// DuplicateError is returned when more than one migration directory has the
// same ID.
type DuplicateError struct {
	ID    ID
	Paths []string
}

// Error returns a string representation of the error.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("migration %s is defined more than once: %s",
		e.ID, strings.Join(e.Paths, ", "))
}

// Is allows matching with ErrDuplicateMigration.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateMigration
}
