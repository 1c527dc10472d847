package pack

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/language"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/summary"
	"github.com/BradSegal/anatomize/internal/tokens"
)

// Mode selects how files are represented.
type Mode string

const (
	// ModeBundle renders every text file with its full content.
	ModeBundle Mode = "bundle"
	// ModeHybrid resolves a representation per file from the policy.
	ModeHybrid Mode = "hybrid"
)

// ParseMode accepts bundle or hybrid.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBundle:
		return ModeBundle, nil
	case ModeHybrid:
		return ModeHybrid, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q (want bundle or hybrid)", ErrOptions, s)
}

// SummaryErrorPolicy decides what happens when a file cannot be summarized.
type SummaryErrorPolicy string

const (
	// SummaryFallback downgrades the file to meta and records the error.
	SummaryFallback SummaryErrorPolicy = "fallback"
	// SummaryFail aborts the run.
	SummaryFail SummaryErrorPolicy = "fail"
)

// ParseSummaryErrorPolicy accepts fallback or fail.
func ParseSummaryErrorPolicy(s string) (SummaryErrorPolicy, error) {
	switch SummaryErrorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case SummaryFallback:
		return SummaryFallback, nil
	case SummaryFail:
		return SummaryFail, nil
	}
	return "", fmt.Errorf("%w: unknown summary error policy %q (want fallback or fail)", ErrOptions, s)
}

// Options configures one packing run.
type Options struct {
	Root string
	Mode Mode

	// Ignore patterns are applied after every ignore file.
	Ignore []string
	// IgnoreFiles are read in order after the standard ignore files.
	IgnoreFiles []string
	// RespectStandardIgnores loads .repomixignore, .ignore, .gitignore and
	// .git/info/exclude from the root.
	RespectStandardIgnores bool
	// NestedIgnores consults .gitignore files below the root.
	NestedIgnores bool
	// Include keeps only files matching at least one pattern.
	Include      []string
	Symlinks     discovery.SymlinkPolicy
	MaxFileBytes int64

	// Default is the representation of files no rule matches.
	Default representation.Representation
	// Content, Summary and Meta are registered in that order.
	Content []string
	Summary []string
	Meta    []string
	// Assignments are "pattern:representation" pairs registered after the
	// three lists.
	Assignments   []string
	SummaryConfig summary.Config

	CountTokens bool
	Encoding    string

	// Compress replaces Go content with a declaration stub.
	Compress bool
	// HTMLAsMarkdown converts HTML content to Markdown.
	HTMLAsMarkdown bool
	OnSummaryError SummaryErrorPolicy

	Trace bool

	Languages *language.Detector
	Logger    *zap.Logger
}

// DefaultOptions returns options for a hybrid run over root.
func DefaultOptions(root string) Options {
	return Options{
		Root:                   root,
		Mode:                   ModeHybrid,
		RespectStandardIgnores: true,
		Default:                representation.Content,
		SummaryConfig:          summary.DefaultConfig(),
		Encoding:               tokens.DefaultEncoding,
		OnSummaryError:         SummaryFallback,
	}
}

// normalize fills zero values and validates enumerations.
func (o *Options) normalize() error {
	if o.Root == "" {
		o.Root = "."
	}
	if o.Mode == "" {
		o.Mode = ModeHybrid
	}
	mode, err := ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	if o.Default == "" {
		o.Default = representation.Content
	}
	def, err := representation.Parse(string(o.Default))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOptions, err)
	}
	o.Default = def
	if o.SummaryConfig == (summary.Config{}) {
		o.SummaryConfig = summary.DefaultConfig()
	}
	if err := o.SummaryConfig.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrOptions, err)
	}
	if o.OnSummaryError == "" {
		o.OnSummaryError = SummaryFallback
	}
	policy, err := ParseSummaryErrorPolicy(string(o.OnSummaryError))
	if err != nil {
		return err
	}
	o.OnSummaryError = policy
	if o.Encoding == "" {
		o.Encoding = tokens.DefaultEncoding
	}
	if o.MaxFileBytes < 0 {
		return fmt.Errorf("%w: max file bytes must be >= 0", ErrOptions)
	}
	if o.Languages == nil {
		o.Languages = language.New()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}
