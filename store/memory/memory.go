// Package memory provides an in-memory migrator.Store, used in tests and for
// dry runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.hackfix.me/vemigrate/migrator"
)

// ErrNoHistory is returned by Add when the history structure doesn't exist.
var ErrNoHistory = errors.New("history table doesn't exist")

// Markers used by the generated initial migration.
const (
	CreateHistory = "create memory history"
	DropHistory   = "drop memory history"
)

// Store keeps history events and executed statements in memory.
type Store struct {
	mx       sync.Mutex
	events   []migrator.HistoryEvent
	executed []string
	exists   bool

	// Statements containing these markers create or drop the history structure.
	createMarker, dropMarker string

	failExec map[string]error
}

var _ migrator.Store = (*Store)(nil)

// Option is a function that allows configuring the Store.
type Option func(*Store)

// WithSchema makes the history structure absent until a statement containing
// create is executed, and removes it along with all events when a statement
// containing drop is executed. Markers are matched case-insensitively.
func WithSchema(create, drop string) Option {
	return func(s *Store) {
		s.exists = false
		s.createMarker = strings.ToLower(create)
		s.dropMarker = strings.ToLower(drop)
	}
}

// WithEvents sets the initial history events.
func WithEvents(events ...migrator.HistoryEvent) Option {
	return func(s *Store) {
		s.events = append(s.events, events...)
	}
}

// New returns a new in-memory Store.
func New(opts ...Option) *Store {
	s := &Store{exists: true, failExec: map[string]error{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailExec makes Exec return err for any statement containing substr.
func (s *Store) FailExec(substr string, err error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.failExec[substr] = err
}

// GetAll implements migrator.Store.
func (s *Store) GetAll(_ context.Context) ([]migrator.HistoryEvent, error) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if !s.exists || len(s.events) == 0 {
		return nil, nil
	}

	return slices.Clone(s.events), nil
}

// Add implements migrator.Store.
func (s *Store) Add(_ context.Context, id migrator.ID, up bool) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	if !s.exists {
		return fmt.Errorf("failed adding event for migration %s: %w", id, ErrNoHistory)
	}
	s.events = append(s.events, migrator.HistoryEvent{ID: id, Up: up})

	return nil
}

// Exec implements migrator.Store.
func (s *Store) Exec(_ context.Context, stmt string) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	for substr, err := range s.failExec {
		if strings.Contains(stmt, substr) {
			return err
		}
	}

	lstmt := strings.ToLower(stmt)
	switch {
	case s.createMarker != "" && strings.Contains(lstmt, s.createMarker):
		s.exists = true
	case s.dropMarker != "" && strings.Contains(lstmt, s.dropMarker):
		s.exists = false
		s.events = nil
	}
	s.executed = append(s.executed, stmt)

	return nil
}

// Events returns a copy of the recorded history events.
func (s *Store) Events() []migrator.HistoryEvent {
	s.mx.Lock()
	defer s.mx.Unlock()
	return slices.Clone(s.events)
}

// Executed returns a copy of the executed statements, in execution order.
func (s *Store) Executed() []string {
	s.mx.Lock()
	defer s.mx.Unlock()
	return slices.Clone(s.executed)
}

// Close implements io.Closer. It's a no-op.
func (s *Store) Close() error {
	return nil
}

// InitialMigration returns the up and down scripts of the migration that
// creates and drops the history structure of a Store created with
// WithSchema(CreateHistory, DropHistory).
func InitialMigration() (up, down string) {
	const header = "-- This file is automatically @generated by vemigrate.\n"
	return header + CreateHistory + ";\n", header + DropHistory + ";\n"
}
