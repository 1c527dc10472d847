package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func cli(patterns ...string) []Pattern {
	out := make([]Pattern, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, Pattern{Pattern: p, Source: SourceCLI})
	}
	return out
}

func TestNegationLastMatchWins(t *testing.T) {
	t.Parallel()

	e := New(cli("*.log", "!keep.log"))
	assert.False(t, e.Excluded("keep.log", false))
	assert.True(t, e.Excluded("other.log", false))

	reversed := New(cli("!keep.log", "*.log"))
	assert.True(t, reversed.Excluded("keep.log", false))
}

func TestExplainReportsDecidingRule(t *testing.T) {
	t.Parallel()

	e := New([]Pattern{
		{Pattern: "build/", Source: SourceDefault},
		{Pattern: "*.o", Source: "ignore_file:extra.ignore"},
	})

	excluded, m := e.Explain("build/out.o", false)
	require.True(t, excluded)
	require.NotNil(t, m)
	assert.Equal(t, "*.o", m.Display())
	assert.Equal(t, "ignore_file:extra.ignore", m.Source)

	excluded, m = e.Explain("build", true)
	require.True(t, excluded)
	assert.Equal(t, "build/", m.Display())
	assert.Equal(t, SourceDefault, m.Source)

	excluded, m = e.Explain("src/main.go", false)
	assert.False(t, excluded)
	assert.Nil(t, m)
}

func TestDirectoryOnlyExcludesDescendants(t *testing.T) {
	t.Parallel()

	e := New(cli("build/"))
	assert.True(t, e.Excluded("build", true))
	assert.True(t, e.Excluded("build/out.o", false))
	assert.True(t, e.Excluded("pkg/build/gen/x.go", false))
	assert.False(t, e.Excluded("build", false))
}

func TestNilExcluderExcludesNothing(t *testing.T) {
	t.Parallel()

	var e *Excluder
	assert.False(t, e.Excluded("anything", false))
	assert.Equal(t, 0, e.Len())
}

func TestNoOpLinesDropped(t *testing.T) {
	t.Parallel()

	e := New(cli("", "# comment", "/", "!", "*.tmp"))
	assert.Equal(t, 1, e.Len())
}

func TestPatternsOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, ".gitignore", "node_modules/\n")
	write(t, root, ".ignore", "*.cache\n")
	write(t, root, ".git/info/exclude", "secret.txt\n")
	extra := filepath.Join(t.TempDir(), "extra.ignore")
	require.NoError(t, os.WriteFile(extra, []byte("# header\n*.bin\r\n"), 0o644))

	patterns, err := Patterns(root, BuildOptions{
		CLI:             []string{"!keep.bin"},
		Files:           []string{extra},
		RespectStandard: true,
	})
	require.NoError(t, err)

	n := len(DefaultPatterns)
	require.Len(t, patterns, n+6)
	assert.Equal(t, Pattern{Pattern: "__pycache__/", Source: SourceDefault}, patterns[0])
	assert.Equal(t, Pattern{Pattern: "*.cache", Source: "standard_ignore_file:.ignore"}, patterns[n])
	assert.Equal(t, Pattern{Pattern: "node_modules/", Source: "standard_ignore_file:.gitignore"}, patterns[n+1])
	assert.Equal(t, Pattern{Pattern: "secret.txt", Source: "standard_ignore_file:.git/info/exclude"}, patterns[n+2])
	assert.Equal(t, Pattern{Pattern: "# header", Source: "ignore_file:" + extra}, patterns[n+3])
	assert.Equal(t, Pattern{Pattern: "*.bin", Source: "ignore_file:" + extra}, patterns[n+4])
	assert.Equal(t, Pattern{Pattern: "!keep.bin", Source: SourceCLI}, patterns[n+5])

	e := New(patterns)
	assert.True(t, e.Excluded("data.bin", false))
	assert.False(t, e.Excluded("keep.bin", false))
	assert.True(t, e.Excluded("node_modules", true))
	assert.True(t, e.Excluded(".git", true))
}

func TestPatternsSkipStandardFilesWhenDisabled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, ".gitignore", "*.go\n")

	e, err := Build(root, BuildOptions{})
	require.NoError(t, err)
	assert.False(t, e.Excluded("main.go", false))
	assert.Equal(t, len(DefaultPatterns), e.Len())
}

func TestStandardIgnoreDirectoryIsSkipped(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".ignore"), 0o755))

	patterns, err := Patterns(root, BuildOptions{RespectStandard: true})
	require.NoError(t, err)
	assert.Len(t, patterns, len(DefaultPatterns))
}

func TestUnreadableIgnoreFile(t *testing.T) {
	t.Parallel()

	_, err := Build(t.TempDir(), BuildOptions{Files: []string{"/does/not/exist.ignore"}})
	require.ErrorIs(t, err, ErrIgnoreFile)
	assert.Contains(t, err.Error(), "/does/not/exist.ignore")
}

func TestDefaultPatternsCoverCommonNoise(t *testing.T) {
	t.Parallel()

	e := New(func() []Pattern {
		var ps []Pattern
		for _, p := range DefaultPatterns {
			ps = append(ps, Pattern{Pattern: p, Source: SourceDefault})
		}
		return ps
	}())

	for _, tc := range []struct {
		path  string
		isDir bool
	}{
		{"__pycache__", true},
		{"pkg/mod.pyc", false},
		{"server.log.1", false},
		{"x.egg-info", true},
		{"sub/.DS_Store", false},
		{"dist/app", false},
	} {
		assert.Truef(t, e.Excluded(tc.path, tc.isDir), "%s should be excluded", tc.path)
	}
	assert.False(t, e.Excluded("main.go", false))
}

func TestLoadNested(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "src/.gitignore", "*.gen.go\n")

	n, err := LoadNested(root, "src")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "src", n.Dir())
	assert.Equal(t, "nested_ignore_file:src/.gitignore", n.Source())
	assert.True(t, n.Match("src/types.gen.go", false))
	assert.False(t, n.Match("src/types.go", false))

	missing, err := LoadNested(root, "docs")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
