package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/pack"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/summary"
)

// setViper overrides keys for one test.
func setViper(t *testing.T, values map[string]any) {
	t.Helper()
	for k, v := range values {
		viper.Set(k, v)
		t.Cleanup(func() { viper.Set(k, nil) })
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"*.md", "docs/", "*.go"}, splitList([]string{"*.md, docs/", "", " *.go "}))
	assert.Nil(t, splitList(nil))
}

func TestViperKey(t *testing.T) {
	assert.Equal(t, "no_standard_ignores", viperKey("no-standard-ignores"))
}

func TestPackOptionsDefaults(t *testing.T) {
	root := t.TempDir()
	opts, err := packOptions(root)
	require.NoError(t, err)

	assert.Equal(t, root, opts.Root)
	assert.Equal(t, pack.ModeHybrid, opts.Mode)
	assert.True(t, opts.RespectStandardIgnores)
	assert.True(t, opts.CountTokens)
	assert.Equal(t, representation.Content, opts.Default)
	assert.Equal(t, discovery.SymlinksNone, opts.Symlinks)
	assert.Equal(t, summary.DefaultConfig(), opts.SummaryConfig)
	assert.Equal(t, pack.SummaryFallback, opts.OnSummaryError)
}

func TestPackOptionsFromViper(t *testing.T) {
	setViper(t, map[string]any{
		"mode":                     "bundle",
		"ignore":                   []string{"*.tmp,vendor/"},
		"no_standard_ignores":      true,
		"symlinks":                 "all",
		"assign":                   []string{"*.md:summary"},
		"no_tokens":                true,
		"summary_limits.max_depth": 5,
	})

	opts, err := packOptions(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, pack.ModeBundle, opts.Mode)
	assert.Equal(t, []string{"*.tmp", "vendor/"}, opts.Ignore)
	assert.False(t, opts.RespectStandardIgnores)
	assert.Equal(t, discovery.SymlinksAll, opts.Symlinks)
	assert.Equal(t, []string{"*.md:summary"}, opts.Assignments)
	assert.False(t, opts.CountTokens)
	assert.Equal(t, 5, opts.SummaryConfig.MaxDepth)
	assert.Equal(t, 200, opts.SummaryConfig.MaxKeys)
}

func TestPackOptionsRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"mode":             "tarball",
		"symlinks":         "some",
		"default":          "outline",
		"on_summary_error": "ignore",
	} {
		t.Run(key, func(t *testing.T) {
			setViper(t, map[string]any{key: value})
			_, err := packOptions(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestPackOptionsLoadsLanguagesFromRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "languages.yml"), []byte("Starlark:\n  extensions: [\".star\"]\n"), 0o644))

	opts, err := packOptions(root)
	require.NoError(t, err)
	lang, ok := opts.Languages.Detect("rules/build.star")
	require.True(t, ok)
	assert.Equal(t, "Starlark", lang)
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""), "a missing ./.env is not an error")
	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	file := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(file, []byte("ANATOMIZE_TEST_VALUE=from-dotenv\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("ANATOMIZE_TEST_VALUE") })
	require.NoError(t, loadEnvFile(file))
	assert.Equal(t, "from-dotenv", os.Getenv("ANATOMIZE_TEST_VALUE"))
}
