package migrator

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Create writes a new migration directory under root, named after the Unix
// timestamp of now and the given name, with the up and down scripts. It
// returns the path of the new directory.
func Create(fs vfs.FileSystem, root, name string, now time.Time, up, down []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	path := filepath.Join(root, fmt.Sprintf("%d_%s", now.Unix(), name))
	if _, err := fs.Stat(path); err == nil {
		return "", fmt.Errorf("migration directory %s already exists", path)
	} else if !vfs.IsErrNotExist(err) {
		return "", fmt.Errorf("failed checking migration directory: %w", err)
	}

	if err := fs.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed creating migration directory: %w", err)
	}

	scripts := []struct {
		name    string
		content []byte
	}{
		{FileUp, up},
		{FileDown, down},
	}
	for _, s := range scripts {
		if err := vfs.WriteFile(fs, filepath.Join(path, s.name), s.content, 0o644); err != nil {
			return "", fmt.Errorf("failed writing %s: %w", s.name, err)
		}
	}

	return path, nil
}
