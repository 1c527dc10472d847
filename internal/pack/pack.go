// Package pack orchestrates a packing run: ignore rules, discovery,
// representation resolution, rendering and token accounting.
package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/ignore"
	"github.com/BradSegal/anatomize/internal/representation"
	"github.com/BradSegal/anatomize/internal/summary"
	"github.com/BradSegal/anatomize/internal/symbols"
	"github.com/BradSegal/anatomize/internal/tokens"
)

// Run packs opts.Root and returns the manifest.
func Run(opts Options) (*Manifest, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	log := opts.Logger

	excluder, err := ignore.Build(opts.Root, ignore.BuildOptions{
		CLI:             opts.Ignore,
		Files:           opts.IgnoreFiles,
		RespectStandard: opts.RespectStandardIgnores,
	})
	if err != nil {
		return nil, err
	}
	policy, err := buildPolicy(opts)
	if err != nil {
		return nil, err
	}

	var trace []discovery.TraceItem
	dopts := discovery.Options{
		Excluder:      excluder,
		Include:       opts.Include,
		Symlinks:      opts.Symlinks,
		MaxFileBytes:  opts.MaxFileBytes,
		NestedIgnores: opts.NestedIgnores,
		Logger:        log,
	}
	if opts.Trace {
		dopts.Trace = &trace
	}
	paths, err := discovery.Discover(opts.Root, dopts)
	if err != nil {
		return nil, err
	}
	log.Debug("discovered paths", zap.Int("count", len(paths)), zap.Int("ignore_rules", excluder.Len()))

	m := &Manifest{
		Root:    paths[0].AbsolutePath,
		Mode:    opts.Mode,
		Dirs:    []string{},
		Entries: []Entry{},
		Trace:   trace,
	}
	payloads := map[string]string{}
	for _, p := range paths {
		if p.IsDir {
			if p.RelativePath != "." {
				m.Dirs = append(m.Dirs, p.RelativePath)
			}
			continue
		}

		entry, payload, entryErr, err := renderFile(p, policy, opts)
		if err != nil {
			return nil, err
		}
		if entryErr != nil {
			log.Warn("summary failed, using meta",
				zap.String("path", entryErr.Path),
				zap.String("error", entryErr.Error),
			)
			m.Errors = append(m.Errors, *entryErr)
		}
		if entry.Representation != representation.Meta {
			payloads[entry.Path] = payload
		}
		m.Entries = append(m.Entries, entry)
	}

	if opts.CountTokens {
		counts, err := tokens.CountByPath(payloads, opts.Encoding)
		if err != nil {
			return nil, err
		}
		for i := range m.Entries {
			m.Entries[i].Tokens = counts.PerPath[m.Entries[i].Path]
		}
		m.Tokens = &counts
		log.Debug("counted tokens", zap.String("encoding", counts.Encoding), zap.Int("total", counts.Total))
	}

	m.Overview = buildOverview(m.Entries)
	log.Info("packed repository",
		zap.String("root", m.Root),
		zap.String("mode", string(m.Mode)),
		zap.Int("files", m.Overview.Files),
		zap.Int64("bytes", m.Overview.TotalBytes),
	)
	return m, nil
}

func buildPolicy(opts Options) (representation.Policy, error) {
	policy := representation.NewPolicy(opts.Content, opts.Summary, opts.Meta)
	rules, err := representation.ParseAssignments(opts.Assignments)
	if err != nil {
		return representation.Policy{}, fmt.Errorf("%w: %w", ErrOptions, err)
	}
	return policy.Append(rules...), nil
}

// resolve picks the representation of a file before rendering.
func resolve(p discovery.Path, policy representation.Policy, opts Options) representation.Representation {
	if p.IsBinary {
		return representation.Meta
	}
	if opts.Mode == ModeBundle {
		return representation.Content
	}
	return policy.Resolve(p.RelativePath, false, opts.Default)
}

// renderFile builds the entry for one file and the text whose tokens are
// counted. A summary failure under the fallback policy yields a meta entry
// and an EntryError; under the fail policy it is returned as err.
func renderFile(p discovery.Path, policy representation.Policy, opts Options) (Entry, string, *EntryError, error) {
	entry := Entry{
		Path:           p.RelativePath,
		Representation: resolve(p, policy, opts),
		Size:           p.Size,
		Binary:         p.IsBinary,
	}
	entry.Language, _ = opts.Languages.Detect(p.RelativePath)

	switch entry.Representation {
	case representation.Content:
		text, transform, err := readContent(p, opts)
		if err != nil {
			return Entry{}, "", nil, err
		}
		entry.Content = text
		entry.Transform = transform
		return entry, text, nil, nil

	case representation.Summary:
		sum, err := summarize(p, opts)
		if err == nil {
			out, merr := json.Marshal(sum)
			if merr != nil {
				return Entry{}, "", nil, fmt.Errorf("encode summary for %s: %w", p.RelativePath, merr)
			}
			entry.Summary = sum
			return entry, string(out), nil, nil
		}
		if opts.OnSummaryError == SummaryFail {
			return Entry{}, "", nil, err
		}
		entry.Representation = representation.Meta
		return entry, "", &EntryError{Path: p.RelativePath, Requested: representation.Summary, Error: err.Error()}, nil
	}
	return entry, "", nil, nil
}

// Content transforms recorded on entries.
const (
	TransformGoStub   = "go_stub"
	TransformMarkdown = "markdown"
)

func readContent(p discovery.Path, opts Options) (string, string, error) {
	data, err := os.ReadFile(p.AbsolutePath)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", p.RelativePath, err)
	}
	text := string(data)

	switch {
	case opts.Compress && isGoFile(p.RelativePath):
		info, err := symbols.ExtractSource(data, moduleName(p.RelativePath), p.RelativePath, symbols.Signatures)
		if err != nil {
			// Unparseable Go is kept verbatim.
			opts.Logger.Debug("compression skipped", zap.String("path", p.RelativePath), zap.Error(err))
			return text, "", nil
		}
		return symbols.Render(info), TransformGoStub, nil
	case opts.HTMLAsMarkdown && isHTMLFile(p.RelativePath):
		md, err := summary.HTMLToMarkdown(text)
		if err != nil {
			opts.Logger.Debug("markdown conversion skipped", zap.String("path", p.RelativePath), zap.Error(err))
			return text, "", nil
		}
		return md, TransformMarkdown, nil
	}
	return text, "", nil
}

// summarize returns a *symbols.ModuleInfo for Go files and a *summary.Summary
// for the text formats.
func summarize(p discovery.Path, opts Options) (any, error) {
	if isGoFile(p.RelativePath) {
		info, err := symbols.Extract(p.AbsolutePath, moduleName(p.RelativePath), p.RelativePath, symbols.Signatures)
		if err != nil {
			return nil, &summary.ParseError{Path: p.RelativePath, Format: "Go", Err: errors.Unwrap(err)}
		}
		return info, nil
	}
	return summary.ForPath(p.AbsolutePath, p.RelativePath, opts.SummaryConfig)
}

// moduleName is the slash-separated directory of a file, "." at the root.
func moduleName(rel string) string {
	return path.Dir(rel)
}

func isGoFile(rel string) bool {
	return strings.HasSuffix(rel, ".go")
}

func isHTMLFile(rel string) bool {
	ext := strings.ToLower(path.Ext(rel))
	return ext == ".html" || ext == ".htm"
}
