package ignore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
)

// NestedFileName is the per-directory ignore file consulted below the root.
const NestedFileName = ".gitignore"

// Nested is the ignore file of one directory below the walk root. Its
// patterns apply to that directory's descendants only.
type Nested struct {
	dir     string
	matcher gitignore.IgnoreMatcher
}

// LoadNested parses <root>/<relDir>/.gitignore. It returns nil without error
// when the directory has no ignore file.
func LoadNested(root, relDir string) (*Nested, error) {
	file := filepath.Join(root, filepath.FromSlash(relDir), NestedFileName)
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrIgnoreFile, file, err)
	}
	return &Nested{
		dir:     relDir,
		matcher: gitignore.NewGitIgnoreFromReader(filepath.FromSlash(relDir), bytes.NewReader(data)),
	}, nil
}

// Dir returns the root-relative directory that owns the ignore file.
func (n *Nested) Dir() string { return n.dir }

// Source is the provenance tag reported in traces.
func (n *Nested) Source() string {
	return sourceNestedIgnorePrefix + path.Join(n.dir, NestedFileName)
}

// Match reports whether relPath, relative to the walk root, is ignored by
// this file.
func (n *Nested) Match(relPath string, isDir bool) bool {
	if n == nil {
		return false
	}
	return n.matcher.Match(filepath.FromSlash(relPath), isDir)
}
