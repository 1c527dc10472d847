package ignore

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPatterns are always applied first.
var DefaultPatterns = []string{
	"__pycache__/",
	"*.pyc",
	"*.log",
	"*.log.*",
	"*.tmp",
	"*.bak",
	".git/",
	".venv/",
	".mypy_cache/",
	".pytest_cache/",
	".ruff_cache/",
	".anatomy/",
	".runtime/",
	".tox/",
	"dist/",
	"build/",
	"*.egg-info/",
	".DS_Store",
	"Thumbs.db",
}

// StandardIgnoreFiles are read from the root, in this order, when standard
// ignores are respected. Missing files are skipped.
var StandardIgnoreFiles = []string{
	".repomixignore",
	".ignore",
	".gitignore",
	".git/info/exclude",
}

// BuildOptions selects the pattern sources layered on top of the defaults.
type BuildOptions struct {
	// CLI patterns are applied last.
	CLI []string
	// Files are user ignore files, applied in order after standard files.
	Files []string
	// RespectStandard loads StandardIgnoreFiles from the root.
	RespectStandard bool
}

// Patterns returns the ordered pattern list: defaults, standard ignore files,
// user ignore files, then CLI patterns.
func Patterns(root string, opts BuildOptions) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(DefaultPatterns)+len(opts.CLI))
	for _, p := range DefaultPatterns {
		patterns = append(patterns, Pattern{Pattern: p, Source: SourceDefault})
	}

	if opts.RespectStandard {
		for _, rel := range StandardIgnoreFiles {
			path := filepath.Join(root, filepath.FromSlash(rel))
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			lines, err := ReadPatternFile(path)
			if err != nil {
				return nil, err
			}
			for _, line := range lines {
				patterns = append(patterns, Pattern{Pattern: line, Source: sourceStandardPrefix + rel})
			}
		}
	}

	for _, path := range opts.Files {
		lines, err := ReadPatternFile(path)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			patterns = append(patterns, Pattern{Pattern: line, Source: sourceIgnoreFilePrefix + path})
		}
	}

	for _, p := range opts.CLI {
		patterns = append(patterns, Pattern{Pattern: p, Source: SourceCLI})
	}
	return patterns, nil
}

// Build constructs the excluder for root.
func Build(root string, opts BuildOptions) (*Excluder, error) {
	patterns, err := Patterns(root, opts)
	if err != nil {
		return nil, err
	}
	return New(patterns), nil
}

// ReadPatternFile returns the raw lines of an ignore file. Comment and blank
// lines are kept; compilation drops them.
func ReadPatternFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIgnoreFile, path, err)
	}

	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIgnoreFile, path, err)
	}
	return lines, nil
}
