package migrator_test

import (
	"path/filepath"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"
)

const root = "/migrations"

// newFS returns an in-memory filesystem with the given files, keyed by path
// relative to root.
func newFS(t *testing.T, files map[string]string) vfs.FileSystem {
	t.Helper()

	fs := memoryfs.New()
	require.NoError(t, fs.MkdirAll(root, 0o755))
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, fs.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, vfs.WriteFile(fs, fullPath, []byte(content), 0o644))
	}

	return fs
}

// threeMigrations returns migrations with IDs 100, 200 and 300, each creating
// and dropping a single table.
func threeMigrations() map[string]string {
	return map[string]string{
		"100_users/up.cql":      "create table users (id int);\ncreate index on users (id);",
		"100_users/down.cql":    "drop table users;",
		"200_posts/up.cql":      "create table posts (id int);",
		"200_posts/down.cql":    "drop table posts;",
		"300_comments/up.cql":   "-- comments\ncreate table comments (\n  id int\n);",
		"300_comments/down.cql": "drop table comments;",
	}
}
