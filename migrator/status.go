package migrator

import (
	"cmp"
	"context"
	"slices"
)

// State is the state of a migration with regard to the recorded history.
type State uint8

const (
	// Pending migrations haven't been applied.
	Pending State = iota
	// Applied migrations were applied and not rolled back.
	Applied
	// Missing migrations are applied according to the history, but aren't
	// found in the migrations directory.
	Missing
	// Inconsistent migrations have a net state other than 0 or 1, which means
	// the history was modified by something other than the Migrator.
	Inconsistent
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Applied:
		return "applied"
	case Missing:
		return "missing"
	case Inconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

// MigrationState is a migration along with its current state.
type MigrationState struct {
	Migration
	State State
	Net   int
}

// Status returns the state of all migrations found in the migrations directory
// or the history, sorted by ID.
func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	migrations, err := Scan(m.fs, m.dir)
	if err != nil {
		return nil, err
	}

	history, err := m.History(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(migrations))
	onDisk := make(map[ID]struct{}, len(migrations))
	for _, mig := range migrations {
		onDisk[mig.ID] = struct{}{}
		net := history.Of(mig.ID)
		states = append(states, MigrationState{
			Migration: mig,
			State:     stateFromNet(net),
			Net:       net,
		})
	}

	for id, net := range history {
		if _, ok := onDisk[id]; ok || net == 0 {
			continue
		}
		states = append(states, MigrationState{
			Migration: Migration{ID: id},
			State:     Missing,
			Net:       net,
		})
	}

	slices.SortFunc(states, func(a, b MigrationState) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return states, nil
}

func stateFromNet(net int) State {
	switch net {
	case 0:
		return Pending
	case 1:
		return Applied
	default:
		return Inconsistent
	}
}
