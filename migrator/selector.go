package migrator

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Scan returns all migrations found in the root directory, sorted by ID in
// ascending order. Entries that aren't directories, or whose name doesn't
// start with a numeric ID, are ignored.
func Scan(fs vfs.FileSystem, root string) ([]Migration, error) {
	entries, err := vfs.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	var (
		migrations []Migration
		seen       = map[ID]string{}
	)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		id, name, ok := parseDirName(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if prev, dup := seen[id]; dup {
			return nil, &DuplicateError{ID: id, Paths: []string{prev, path}}
		}
		seen[id] = path

		migrations = append(migrations, Migration{ID: id, Name: name, Path: path})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return migrations, nil
}

// Select returns the migrations eligible for execution in the given direction,
// with their scripts parsed. Up candidates are the ones with a net state of 0,
// sorted from oldest to newest. Down candidates are the ones with a net state
// of 1, sorted from newest to oldest. A nil slice is returned if no migration
// is eligible.
func Select(fs vfs.FileSystem, root string, state NetState, dir Direction) ([]Candidate, error) {
	migrations, err := Scan(fs, root)
	if err != nil {
		return nil, err
	}

	return selectCandidates(fs, migrations, state, dir)
}

func selectCandidates(
	fs vfs.FileSystem, migrations []Migration, state NetState, dir Direction,
) ([]Candidate, error) {
	want := 0
	if dir == Down {
		want = 1
	}

	var candidates []Candidate
	for _, mig := range migrations {
		if state.Of(mig.ID) != want {
			continue
		}

		scriptPath := filepath.Join(mig.Path, dir.scriptName())
		stmts, err := ParseScript(fs, scriptPath)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, Candidate{
			Migration:  mig,
			Statements: stmts,
			ScriptPath: scriptPath,
		})
	}

	if dir == Down {
		slices.Reverse(candidates)
	}

	return candidates, nil
}

// parseDirName splits a migration directory name on the first underscore,
// and parses the prefix as the migration ID.
func parseDirName(name string) (ID, string, bool) {
	prefix, rest, _ := strings.Cut(name, "_")
	id, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", false
	}

	return ID(id), rest, true
}
