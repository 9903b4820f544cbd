package migrator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

const stmtSeparator = ";"

var commentPrefixes = []string{"--", "//"}

// ParseScript reads the migration script at path and splits it into
// statements. Comment and blank lines are skipped, and lines of a statement
// are joined without a separator until a line ends with ';'. The last
// statement doesn't need to be terminated.
func ParseScript(fs vfs.FileSystem, path string) ([]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening migration file: %w", err)
	}
	defer f.Close()

	stmts, err := splitStatements(f)
	if err != nil {
		return nil, fmt.Errorf("failed reading migration file %s: %w", path, err)
	}
	if len(stmts) == 0 {
		return nil, &ParseError{Path: path}
	}

	return stmts, nil
}

func splitStatements(r io.Reader) ([]string, error) {
	var (
		stmts  []string
		cur    strings.Builder
		rd     = bufio.NewReader(r)
		inStmt bool
	)
	for {
		line, err := rd.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !isComment(trimmed) {
			cur.WriteString(trimmed)
			inStmt = true
			if strings.HasSuffix(trimmed, stmtSeparator) {
				stmts = append(stmts, cur.String())
				cur.Reset()
				inStmt = false
			}
		}

		if err != nil {
			break
		}
	}

	if inStmt {
		stmts = append(stmts, cur.String())
	}

	return stmts, nil
}

func isComment(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
