package migrator_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.hackfix.me/vemigrate/migrator"
)

func TestReconcile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		events   []migrator.HistoryEvent
		expState migrator.NetState
	}{
		{
			name:     "ok/no_history",
			events:   nil,
			expState: migrator.NetState{},
		},
		{
			name: "ok/applied",
			events: []migrator.HistoryEvent{
				{ID: 100, Up: true},
				{ID: 200, Up: true},
			},
			expState: migrator.NetState{100: 1, 200: 1},
		},
		{
			name: "ok/round_trip",
			events: []migrator.HistoryEvent{
				{ID: 100, Up: true},
				{ID: 100, Up: false},
			},
			expState: migrator.NetState{100: 0},
		},
		{
			name: "ok/reapplied",
			events: []migrator.HistoryEvent{
				{ID: 100, Up: true},
				{ID: 100, Up: false},
				{ID: 100, Up: true},
				{ID: 200, Up: true},
			},
			expState: migrator.NetState{100: 1, 200: 1},
		},
		{
			name: "ok/inconsistent",
			events: []migrator.HistoryEvent{
				{ID: 100, Up: true},
				{ID: 100, Up: true},
				{ID: 200, Up: false},
			},
			expState: migrator.NetState{100: 2, 200: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expState, migrator.Reconcile(tt.events))
		})
	}
}

func TestReconcileOrderIndependent(t *testing.T) {
	t.Parallel()

	a := []migrator.HistoryEvent{{ID: 1, Up: true}, {ID: 2, Up: true}, {ID: 1, Up: false}}
	b := []migrator.HistoryEvent{{ID: 2, Up: false}, {ID: 3, Up: true}}

	ab := migrator.Reconcile(slices.Concat(a, b))
	ba := migrator.Reconcile(slices.Concat(b, a))
	assert.Equal(t, ab, ba)

	// Replaying a list twice is the same as counting each event twice.
	twice := migrator.Reconcile(slices.Concat(a, a))
	once := migrator.Reconcile(a)
	for id, net := range once {
		assert.Equal(t, 2*net, twice.Of(id), "id %d", id)
	}

	assert.Equal(t, 0, ab.Of(42))
}
