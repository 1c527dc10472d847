// Package summary builds type-aware structural summaries of text files:
// key outlines for JSON, YAML and TOML, and heading lists for Markdown and
// HTML.
package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates a file type with no summarizer.
var ErrUnsupported = errors.New("unsupported summary type")

// ParseError reports a file whose content could not be parsed for a summary.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse %s for summary: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("failed to parse %s for summary: %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Config bounds the size of a summary.
type Config struct {
	// MaxDepth is how many levels of nesting an outline descends.
	MaxDepth int `json:"max_depth" mapstructure:"max_depth"`
	// MaxKeys caps the number of mapping keys in an outline.
	MaxKeys int `json:"max_keys" mapstructure:"max_keys"`
	// MaxItems caps keys plus list elements in an outline.
	MaxItems int `json:"max_items" mapstructure:"max_items"`
	// MaxHeadings caps Markdown and HTML headings.
	MaxHeadings int `json:"max_headings" mapstructure:"max_headings"`
}

// DefaultConfig returns the default limits.
func DefaultConfig() Config {
	return Config{MaxDepth: 3, MaxKeys: 200, MaxItems: 200, MaxHeadings: 200}
}

// Validate checks that every limit is at least 1.
func (c Config) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"max_depth", c.MaxDepth},
		{"max_keys", c.MaxKeys},
		{"max_items", c.MaxItems},
		{"max_headings", c.MaxHeadings},
	}
	for _, l := range limits {
		if l.value < 1 {
			return fmt.Errorf("summary %s must be >= 1, got %d", l.name, l.value)
		}
	}
	return nil
}

// Heading is one Markdown or HTML heading.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Summary is the structural summary of one file. Outline formats fill Paths;
// Markdown and HTML fill Headings.
type Summary struct {
	Type     string
	Paths    []string
	Headings []Heading
	Title    string
}

// Summary types.
const (
	TypeJSON     = "json"
	TypeYAML     = "yaml"
	TypeTOML     = "toml"
	TypeMarkdown = "markdown"
	TypeHTML     = "html"
)

// MarshalJSON emits {"type", "paths"} for outlines and {"type", "headings"}
// for documents, with empty lists rendered as [].
func (s Summary) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case TypeMarkdown, TypeHTML:
		headings := s.Headings
		if headings == nil {
			headings = []Heading{}
		}
		return json.Marshal(struct {
			Type     string    `json:"type"`
			Title    string    `json:"title,omitempty"`
			Headings []Heading `json:"headings"`
		}{s.Type, s.Title, headings})
	default:
		paths := s.Paths
		if paths == nil {
			paths = []string{}
		}
		return json.Marshal(struct {
			Type  string   `json:"type"`
			Paths []string `json:"paths"`
		}{s.Type, paths})
	}
}

// Supported reports whether a file extension has a summarizer.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".json", ".yml", ".yaml", ".toml", ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// ForText summarizes text according to the file extension ext (with the dot).
// relPath names the file in errors.
func ForText(ext, text, relPath string, cfg Config) (*Summary, error) {
	var (
		s   *Summary
		err error
	)
	switch strings.ToLower(ext) {
	case ".json":
		s, err = JSON(text, cfg)
	case ".yml", ".yaml":
		s, err = YAML(text, cfg)
	case ".toml":
		s, err = TOML(text, cfg)
	case ".md", ".markdown":
		s = Markdown(text, cfg)
	case ".html", ".htm":
		s, err = HTML(text, cfg)
	default:
		return nil, fmt.Errorf("%w for %s", ErrUnsupported, relPath)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = relPath
		}
		return nil, err
	}
	return s, nil
}

// ForPath reads the file at path and summarizes it by its extension.
func ForPath(path, relPath string, cfg Config) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", relPath, err)
	}
	return ForText(filepath.Ext(path), string(data), relPath, cfg)
}
