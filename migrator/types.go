package migrator

import (
	"strconv"
)

// Script file names expected inside every migration directory.
const (
	FileUp   = "up.cql"
	FileDown = "down.cql"
)

// ID identifies a migration. By convention it's the Unix timestamp in seconds
// at which the migration was created.
type ID uint64

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Direction is the direction a migration is executed in.
type Direction bool

const (
	Up   Direction = true
	Down Direction = false
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// scriptName returns the script file executed in this direction.
func (d Direction) scriptName() string {
	if d == Up {
		return FileUp
	}
	return FileDown
}

// Migration is a migration directory found on disk.
type Migration struct {
	ID   ID
	Name string
	Path string
}

// Candidate is a migration selected for execution in a single direction, along
// with the parsed statements of its script.
type Candidate struct {
	Migration
	Statements []string
	ScriptPath string
}

// HistoryEvent is a single record of a migration's script having been executed.
type HistoryEvent struct {
	ID ID
	Up bool
}

// Report describes the outcome of a migration operation.
type Report struct {
	Direction Direction
	// Executed are the IDs of migrations that were run, in execution order.
	Executed []ID
	// Recorded is true if history events were written for executed migrations.
	Recorded bool
	// RolledBack are the IDs of migrations rolled back by Redo before
	// Executed were applied.
	RolledBack []ID
}

// Empty returns true if no migration was executed.
func (r *Report) Empty() bool {
	return r == nil || len(r.Executed) == 0
}

// Last returns the ID of the last executed migration.
func (r *Report) Last() (ID, bool) {
	if r.Empty() {
		return 0, false
	}
	return r.Executed[len(r.Executed)-1], true
}
