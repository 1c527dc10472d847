package pack

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/summary"
	"github.com/BradSegal/anatomize/internal/symbols"
	"github.com/BradSegal/anatomize/internal/tokens"
)

type wordEncoder struct{}

func (wordEncoder) Count(text string) (int, error) { return len(strings.Fields(text)), nil }

func init() {
	tokens.Register("test-words", wordEncoder{})
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func repo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write(t, root, "README.md", "# Project\n## Usage\n")
	write(t, root, "docs/guide.md", "# Guide\n")
	write(t, root, "config/app.json", `{"server":{"port":8080}}`)
	write(t, root, "cmd/main.go", "package main\n\nfunc main() {}\n")
	write(t, root, "assets/logo.png", "\x89PNG\x00\x00")
	write(t, root, "debug.log", "noise")
	write(t, root, ".gitignore", "secret.txt\n")
	write(t, root, "secret.txt", "hunter2")
	return root
}

func entries(m *Manifest) map[string]representation.Representation {
	out := map[string]representation.Representation{}
	for _, e := range m.Entries {
		out[e.Path] = e.Representation
	}
	return out
}

func TestRunHybrid(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Assignments = []string{"*.md:summary", "README.md:content", "*.json:summary"}
	opts.CountTokens = true
	opts.Encoding = "test-words"

	m, err := Run(opts)
	require.NoError(t, err)

	assert.Equal(t, map[string]representation.Representation{
		".gitignore":      representation.Content,
		"README.md":       representation.Content,
		"assets/logo.png": representation.Meta,
		"cmd/main.go":     representation.Content,
		"config/app.json": representation.Summary,
		"docs/guide.md":   representation.Summary,
	}, entries(m))
	assert.Equal(t, []string{"assets", "cmd", "config", "docs"}, m.Dirs)

	var guide Entry
	for _, e := range m.Entries {
		if e.Path == "docs/guide.md" {
			guide = e
		}
	}
	s, ok := guide.Summary.(*summary.Summary)
	require.True(t, ok)
	assert.Equal(t, []summary.Heading{{Level: 1, Text: "Guide"}}, s.Headings)
	assert.Equal(t, "Markdown", guide.Language)

	assert.Equal(t, 6, m.Overview.Files)
	assert.Equal(t, 1, m.Overview.GoFiles)
	assert.Equal(t, 1, m.Overview.BinaryFiles)
	assert.Equal(t, 1, m.Overview.Representations[representation.Meta])

	require.NotNil(t, m.Tokens)
	assert.NotContains(t, m.Tokens.PerPath, "assets/logo.png")
	assert.Equal(t, 4, m.Tokens.PerPath["README.md"])
	sum := 0
	for _, n := range m.Tokens.PerPath {
		sum += n
	}
	assert.Equal(t, sum, m.Tokens.Total)
}

func TestRunBundleForcesContentExceptBinary(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Mode = ModeBundle
	opts.Summary = []string{"*.md"}

	m, err := Run(opts)
	require.NoError(t, err)
	for _, e := range m.Entries {
		if e.Binary {
			assert.Equal(t, representation.Meta, e.Representation)
			assert.Empty(t, e.Content)
			continue
		}
		assert.Equal(t, representation.Content, e.Representation, e.Path)
	}
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Summary = []string{"*.md", "*.json"}
	opts.CountTokens = true
	opts.Encoding = "test-words"
	opts.Trace = true

	first, err := Run(opts)
	require.NoError(t, err)
	second, err := Run(opts)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("manifests differ (-first +second):\n%s", diff)
	}
}

func TestRunSummaryFallbackAndFail(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "bad.json", `{"a":`)
	write(t, root, "notes.txt", "plain")

	core, logs := observer.New(zap.WarnLevel)
	opts := DefaultOptions(root)
	opts.Summary = []string{"*"}
	opts.Logger = zap.New(core)

	m, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, map[string]representation.Representation{
		"bad.json":  representation.Meta,
		"notes.txt": representation.Meta,
	}, entries(m))
	require.Len(t, m.Errors, 2)
	assert.Equal(t, "bad.json", m.Errors[0].Path)
	assert.Equal(t, representation.Summary, m.Errors[0].Requested)
	assert.Contains(t, m.Errors[1].Error, "unsupported summary type")
	assert.Equal(t, 2, logs.Len())

	opts.OnSummaryError = SummaryFail
	opts.Logger = nil
	_, err = Run(opts)
	var pe *summary.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.json", pe.Path)
}

func TestRunGoSummaryAndCompression(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "lib/lib.go", "package lib\n\n// Add adds.\nfunc Add(a, b int) int { return a + b }\n")
	write(t, root, "page.html", "<h1>Hello</h1><p>World</p>")

	opts := DefaultOptions(root)
	opts.Summary = []string{"lib/"}
	m, err := Run(opts)
	require.NoError(t, err)
	info, ok := m.Entries[0].Summary.(*symbols.ModuleInfo)
	require.True(t, ok)
	assert.Equal(t, "lib", info.Name)
	assert.Equal(t, "(a, b int) int", info.Functions[0].Signature)

	opts = DefaultOptions(root)
	opts.Compress = true
	opts.HTMLAsMarkdown = true
	m, err = Run(opts)
	require.NoError(t, err)
	byPath := map[string]Entry{}
	for _, e := range m.Entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, "package lib\n\nfunc Add(a, b int) int\n", byPath["lib/lib.go"].Content)
	assert.Equal(t, TransformGoStub, byPath["lib/lib.go"].Transform)
	assert.Contains(t, byPath["page.html"].Content, "# Hello")
	assert.Equal(t, TransformMarkdown, byPath["page.html"].Transform)
}

func TestRunTraceAndIgnores(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Trace = true
	opts.Include = []string{"*.md", "*.go"}

	m, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "cmd/main.go", "docs/guide.md"}, func() []string {
		var out []string
		for _, e := range m.Entries {
			out = append(out, e.Path)
		}
		return out
	}())

	assert.Contains(t, m.Trace, discovery.TraceItem{
		Path:           "debug.log",
		Decision:       discovery.DecisionExcluded,
		Reason:         discovery.ReasonIgnore,
		MatchedPattern: "*.log",
		MatchedSource:  "default",
	})
	assert.Contains(t, m.Trace, discovery.TraceItem{
		Path:           "secret.txt",
		Decision:       discovery.DecisionExcluded,
		Reason:         discovery.ReasonIgnore,
		MatchedPattern: "secret.txt",
		MatchedSource:  "standard_ignore_file:.gitignore",
	})
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	_, err := Run(Options{Root: filepath.Join(t.TempDir(), "missing")})
	require.ErrorIs(t, err, discovery.ErrValidation)

	opts := DefaultOptions(t.TempDir())
	opts.Mode = "zip"
	_, err = Run(opts)
	require.ErrorIs(t, err, ErrOptions)

	opts = DefaultOptions(t.TempDir())
	opts.Assignments = []string{"nocolon"}
	_, err = Run(opts)
	require.ErrorIs(t, err, ErrOptions)
	require.ErrorIs(t, err, representation.ErrInvalidAssignment)

	opts = DefaultOptions(t.TempDir())
	opts.SummaryConfig.MaxDepth = 0
	opts.SummaryConfig.MaxKeys = 5
	_, err = Run(opts)
	require.ErrorIs(t, err, ErrOptions)
}

func TestExplain(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Summary = []string{"*.md"}
	opts.Include = []string{"*.md"}

	got, err := Explain(opts, []string{"debug.log", "docs/guide.md", "cmd/main.go", "docs", "build/"})
	require.NoError(t, err)

	want := []Explanation{
		{Path: "debug.log", Excluded: true, MatchedPattern: "*.log", MatchedSource: "default", Representation: representation.Content},
		{Path: "docs/guide.md", Included: true, Representation: representation.Summary, RepresentationRule: "*.md"},
		{Path: "cmd/main.go", Representation: representation.Content},
		{Path: "docs", IsDir: true, Included: true},
		{Path: "build", IsDir: true, Excluded: true, MatchedPattern: "build/", MatchedSource: "default"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("explanations mismatch (-want +got):\n%s", diff)
	}
}

func TestExplainPrunedAncestors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	write(t, root, "vendor/a.go", "package a\n")
	write(t, root, "build/out/app.js", "x")
	write(t, root, "src/.gitignore", "*.gen.go\n")
	write(t, root, "src/a.go", "package src\n")
	write(t, root, "src/a.gen.go", "package src\n")

	opts := DefaultOptions(root)
	opts.Ignore = []string{"vendor"}
	opts.NestedIgnores = true

	got, err := Explain(opts, []string{"vendor/a.go", "build/out/app.js", "src/a.gen.go", "src/a.go"})
	require.NoError(t, err)

	want := []Explanation{
		{Path: "vendor/a.go", Excluded: true, MatchedPattern: "vendor", MatchedSource: "cli", MatchedPath: "vendor", Representation: representation.Content},
		{Path: "build/out/app.js", Excluded: true, MatchedPattern: "build/", MatchedSource: "default", MatchedPath: "build", Representation: representation.Content},
		{Path: "src/a.gen.go", Excluded: true, MatchedSource: "nested_ignore_file:src/.gitignore", Representation: representation.Content},
		{Path: "src/a.go", Included: true, Representation: representation.Content},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("explanations mismatch (-want +got):\n%s", diff)
	}

	opts.NestedIgnores = false
	got, err = Explain(opts, []string{"src/a.gen.go"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Excluded)
	assert.True(t, got[0].Included)
}

func TestOptionsNormalizeCanonicalizes(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions(repo(t))
	opts.Mode = "BUNDLE"
	opts.Meta = []string{"*.go"}
	opts.OnSummaryError = " Fail "

	m, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, ModeBundle, m.Mode)
	assert.Equal(t, representation.Content, entries(m)["cmd/main.go"])

	opts = DefaultOptions(repo(t))
	opts.Default = "metadata"

	m, err = Run(opts)
	require.NoError(t, err)
	assert.Equal(t, representation.Meta, entries(m)["cmd/main.go"])
	assert.NotContains(t, m.Overview.Representations, representation.Representation("metadata"))
	assert.Equal(t, m.Overview.Files, m.Overview.Representations[representation.Meta])

	require.NoError(t, opts.normalize())
	assert.Equal(t, representation.Meta, opts.Default)
	assert.Equal(t, SummaryFallback, opts.OnSummaryError)
}
