package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/language"
	"github.com/BradSegal/anatomize/internal/pack"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/summary"
	"github.com/BradSegal/anatomize/internal/tokens"
)

var (
	cfgFile string
	envFile string
)

// registerPackFlags defines the flags shared by pack, explain and serve and
// binds each to its snake_case viper key.
func registerPackFlags(f *pflag.FlagSet) {
	f.String("mode", "hybrid", "Packing mode: bundle or hybrid")
	f.StringSliceP("ignore", "e", nil, "Extra ignore patterns, applied after every ignore file")
	f.StringSlice("ignore-file", nil, "Additional ignore files, read in order")
	f.Bool("no-standard-ignores", false, "Don't read .repomixignore, .ignore, .gitignore or .git/info/exclude")
	f.Bool("nested-ignores", false, "Respect .gitignore files below the root")
	f.StringSliceP("include", "i", nil, "Keep only files matching one of these patterns")
	f.String("symlinks", "none", "Symlinks to follow: none, files, dirs or all")
	f.Int64P("max-file-bytes", "s", 0, "Fail when a selected file is larger than this (0 for no limit)")
	f.String("default", "content", "Representation of files no rule matches: content, summary or meta")
	f.StringSlice("content", nil, "Patterns rendered with full content")
	f.StringSlice("summary", nil, "Patterns rendered as structural summaries")
	f.StringSlice("meta", nil, "Patterns rendered as metadata only")
	f.StringSlice("assign", nil, "Ordered pattern:representation pairs, applied last")
	f.String("on-summary-error", "fallback", "When a summary fails: fallback to meta or fail")
	f.Bool("no-tokens", false, "Disable token counting")
	f.String("encoding", tokens.DefaultEncoding, "Token encoding: a tiktoken name, model:<name> or hf:<tokenizer.json|model>")
	f.Bool("compress", false, "Replace Go sources with declaration stubs")
	f.Bool("html-as-markdown", false, "Convert HTML content to Markdown")
	f.String("languages", "", "Path to a languages.yml overriding language detection")

	f.VisitAll(func(fl *pflag.Flag) {
		_ = viper.BindPFlag(viperKey(fl.Name), fl)
	})
}

func viperKey(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

func init() {
	viper.SetDefault("mode", string(pack.ModeHybrid))
	viper.SetDefault("symlinks", "none")
	viper.SetDefault("default", string(representation.Content))
	viper.SetDefault("on_summary_error", string(pack.SummaryFallback))
	viper.SetDefault("encoding", tokens.DefaultEncoding)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("log_format", "console")

	def := summary.DefaultConfig()
	viper.SetDefault("summary_limits.max_depth", def.MaxDepth)
	viper.SetDefault("summary_limits.max_keys", def.MaxKeys)
	viper.SetDefault("summary_limits.max_items", def.MaxItems)
	viper.SetDefault("summary_limits.max_headings", def.MaxHeadings)
}

// initConfig loads .env, the config file and ANATOMIZE_* environment
// variables. Precedence is default < config < env < flag.
func initConfig() {
	if err := loadEnvFile(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "anatomize"))
		}
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("ANATOMIZE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && errors.As(err, &notFound) && cfgFile == "" {
		// A project-local anatomize.toml is the fallback.
		viper.SetConfigName("anatomize")
		viper.AddConfigPath(".")
		err = viper.ReadInConfig()
	}
	if err != nil && !errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
	}

	if _, err := initLogging(logConfig{
		Level:  viper.GetString("log_level"),
		Format: viper.GetString("log_format"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
}

// loadEnvFile loads path, or ./.env when path is empty. A missing default
// file is not an error.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

// packOptions turns resolved viper values into packer options for root.
func packOptions(root string) (pack.Options, error) {
	opts := pack.DefaultOptions(root)

	mode, err := pack.ParseMode(viper.GetString("mode"))
	if err != nil {
		return opts, err
	}
	opts.Mode = mode

	opts.Ignore = splitList(viper.GetStringSlice("ignore"))
	opts.IgnoreFiles = splitList(viper.GetStringSlice("ignore_file"))
	opts.RespectStandardIgnores = !viper.GetBool("no_standard_ignores")
	opts.NestedIgnores = viper.GetBool("nested_ignores")
	opts.Include = splitList(viper.GetStringSlice("include"))

	symlinks, err := discovery.ParseSymlinkPolicy(viper.GetString("symlinks"))
	if err != nil {
		return opts, err
	}
	opts.Symlinks = symlinks
	opts.MaxFileBytes = viper.GetInt64("max_file_bytes")

	def, err := representation.Parse(viper.GetString("default"))
	if err != nil {
		return opts, err
	}
	opts.Default = def
	opts.Content = splitList(viper.GetStringSlice("content"))
	opts.Summary = splitList(viper.GetStringSlice("summary"))
	opts.Meta = splitList(viper.GetStringSlice("meta"))
	opts.Assignments = splitList(viper.GetStringSlice("assign"))

	if err := viper.UnmarshalKey("summary_limits", &opts.SummaryConfig); err != nil {
		return opts, fmt.Errorf("summary_limits: %w", err)
	}

	onErr, err := pack.ParseSummaryErrorPolicy(viper.GetString("on_summary_error"))
	if err != nil {
		return opts, err
	}
	opts.OnSummaryError = onErr

	opts.CountTokens = !viper.GetBool("no_tokens")
	opts.Encoding = viper.GetString("encoding")
	opts.Compress = viper.GetBool("compress")
	opts.HTMLAsMarkdown = viper.GetBool("html_as_markdown")

	detector, err := loadLanguages(viper.GetString("languages"), root)
	if err != nil {
		return opts, err
	}
	opts.Languages = detector
	opts.Logger = logger
	return opts, nil
}

// loadLanguages reads an explicit languages.yml, else the first one found in
// the root or the user config directory. Without one the built-in table is used.
func loadLanguages(file, root string) (*language.Detector, error) {
	if file == "" {
		dirs := []string{root}
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".config", "anatomize"))
		}
		file = language.Find(dirs...)
	}
	if file == "" {
		return language.New(), nil
	}
	logger.Debug("loading language definitions", zap.String("path", file))
	return language.LoadFile(file)
}

// splitList flattens comma-separated values and drops blanks, so config
// files, env vars and repeated flags can all carry lists.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// bindCommandFlags binds a command's local flags under their viper keys.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		_ = viper.BindPFlag(viperKey(fl.Name), fl)
	})
}
