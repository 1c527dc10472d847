package language

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBuiltin(t *testing.T) {
	t.Parallel()

	d := New()
	for rel, want := range map[string]string{
		"cmd/main.go":       "Go",
		"README.MD":         "Markdown",
		"docker/Dockerfile": "Dockerfile",
		"go.mod":            "Go Module",
		"conf/app.yml":      "YAML",
	} {
		got, ok := d.Detect(rel)
		require.Truef(t, ok, "no language for %s", rel)
		assert.Equal(t, want, got, rel)
	}

	_, ok := d.Detect("blob.unknownext")
	assert.False(t, ok)
}

func TestDetectChromaFallback(t *testing.T) {
	t.Parallel()

	lang, ok := New().Detect("scripts/build.lua")
	require.True(t, ok)
	assert.Equal(t, "Lua", lang)
}

func TestLoadFileMerges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yml := "Zeta:\n  type: programming\n  extensions: [\".foo\"]\nAlpha:\n  type: data\n  extensions: [\".FOO\", \".go\"]\n  filenames: [\"Foofile\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yml), 0o644))

	file := Find(filepath.Join(dir, "missing"), dir)
	require.Equal(t, filepath.Join(dir, FileName), file)

	d, err := LoadFile(file)
	require.NoError(t, err)

	lang, _ := d.Detect("x.foo")
	assert.Equal(t, "Alpha", lang)
	lang, _ = d.Detect("main.go")
	assert.Equal(t, "Alpha", lang)
	lang, _ = d.Detect("sub/Foofile")
	assert.Equal(t, "Alpha", lang)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
	assert.Empty(t, Find(t.TempDir()))
}
