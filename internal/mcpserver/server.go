// Package mcpserver exposes the packer to agents as MCP tools.
package mcpserver

import (
	"context"
	"errors"
	"path/filepath"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/discovery"
	"github.com/BradSegal/anatomize/internal/pack"
)

// ErrRootRequired is returned by tools called without a root.
var ErrRootRequired = errors.New("root is required")

// Server wraps the MCP SDK server with the pack tools registered.
type Server struct {
	MCPServer *sdkmcp.Server
	// BaseDir resolves relative roots.
	BaseDir string
	// Defaults seeds every pack call before tool arguments are applied.
	Defaults pack.Options

	log *zap.Logger
}

// NewServer creates a server with the pack and explain tools registered.
// defaults carries the CLI configuration; its Root is ignored.
func NewServer(version, baseDir string, defaults pack.Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: "anatomize", Version: version}, nil),
		BaseDir:   baseDir,
		Defaults:  defaults,
		log:       log.Named("mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "pack",
		Description: "Pack a directory into a manifest of files with per-file representations (content, summary or meta) and optional token counts.",
	}, s.handlePack)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "explain",
		Description: "Explain which ignore rule excludes each path and which representation it would be packed with.",
	}, s.handleExplain)
}

type packInput struct {
	Root        string   `json:"root" jsonschema:"directory to pack, relative to the server working directory or absolute"`
	Mode        string   `json:"mode,omitempty" jsonschema:"bundle or hybrid (default hybrid)"`
	Include     []string `json:"include,omitempty" jsonschema:"keep only files matching one of these gitignore-style patterns"`
	Ignore      []string `json:"ignore,omitempty" jsonschema:"extra ignore patterns applied last"`
	Content     []string `json:"content,omitempty" jsonschema:"patterns rendered with full content"`
	Summary     []string `json:"summary,omitempty" jsonschema:"patterns rendered as structural summaries"`
	Meta        []string `json:"meta,omitempty" jsonschema:"patterns rendered as metadata only"`
	Assignments []string `json:"assignments,omitempty" jsonschema:"ordered pattern:representation pairs"`
	Symlinks    string   `json:"symlinks,omitempty" jsonschema:"none, files, dirs or all (default none)"`
	CountTokens *bool    `json:"count_tokens,omitempty" jsonschema:"count tokens per file (default from server configuration)"`
	Encoding    string   `json:"encoding,omitempty" jsonschema:"token encoding (default cl100k_base)"`
	Compress    *bool    `json:"compress,omitempty" jsonschema:"replace Go sources with declaration stubs (default from server configuration)"`
	Trace       *bool    `json:"trace,omitempty" jsonschema:"record include and exclude decisions (default from server configuration)"`
}

type packOutput struct {
	Manifest *pack.Manifest `json:"manifest"`
}

type explainInput struct {
	Root    string   `json:"root" jsonschema:"directory the paths are relative to"`
	Paths   []string `json:"paths" jsonschema:"relative paths; a trailing slash marks a directory"`
	Ignore  []string `json:"ignore,omitempty" jsonschema:"extra ignore patterns applied last"`
	Include []string `json:"include,omitempty" jsonschema:"include allowlist"`
	Mode    string   `json:"mode,omitempty" jsonschema:"bundle or hybrid (default hybrid)"`
}

type explainOutput struct {
	Explanations []pack.Explanation `json:"explanations"`
}

func (s *Server) handlePack(_ context.Context, _ *sdkmcp.CallToolRequest, input packInput) (*sdkmcp.CallToolResult, packOutput, error) {
	opts, err := s.options(input.Root, input.Mode)
	if err != nil {
		return nil, packOutput{}, err
	}
	opts.Include = append(opts.Include, input.Include...)
	opts.Ignore = append(opts.Ignore, input.Ignore...)
	opts.Content = append(opts.Content, input.Content...)
	opts.Summary = append(opts.Summary, input.Summary...)
	opts.Meta = append(opts.Meta, input.Meta...)
	opts.Assignments = append(opts.Assignments, input.Assignments...)
	if input.Symlinks != "" {
		policy, err := discovery.ParseSymlinkPolicy(input.Symlinks)
		if err != nil {
			return nil, packOutput{}, err
		}
		opts.Symlinks = policy
	}
	setFlag(&opts.CountTokens, input.CountTokens)
	if input.Encoding != "" {
		opts.Encoding = input.Encoding
	}
	setFlag(&opts.Compress, input.Compress)
	setFlag(&opts.Trace, input.Trace)

	m, err := pack.Run(opts)
	if err != nil {
		s.log.Warn("pack failed", zap.String("root", opts.Root), zap.Error(err))
		return nil, packOutput{}, err
	}
	return nil, packOutput{Manifest: m}, nil
}

func (s *Server) handleExplain(_ context.Context, _ *sdkmcp.CallToolRequest, input explainInput) (*sdkmcp.CallToolResult, explainOutput, error) {
	opts, err := s.options(input.Root, input.Mode)
	if err != nil {
		return nil, explainOutput{}, err
	}
	opts.Ignore = append(opts.Ignore, input.Ignore...)
	opts.Include = append(opts.Include, input.Include...)

	out, err := pack.Explain(opts, input.Paths)
	if err != nil {
		return nil, explainOutput{}, err
	}
	if out == nil {
		out = []pack.Explanation{}
	}
	return nil, explainOutput{Explanations: out}, nil
}

// options copies the defaults so tool arguments never leak between calls.
func (s *Server) options(root, mode string) (pack.Options, error) {
	if root == "" {
		return pack.Options{}, ErrRootRequired
	}
	if !filepath.IsAbs(root) && s.BaseDir != "" {
		root = filepath.Join(s.BaseDir, root)
	}

	opts := s.Defaults
	opts.Root = root
	opts.Include = clone(opts.Include)
	opts.Ignore = clone(opts.Ignore)
	opts.Content = clone(opts.Content)
	opts.Summary = clone(opts.Summary)
	opts.Meta = clone(opts.Meta)
	opts.Assignments = clone(opts.Assignments)
	if mode != "" {
		m, err := pack.ParseMode(mode)
		if err != nil {
			return pack.Options{}, err
		}
		opts.Mode = m
	}
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	return opts, nil
}

func clone(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

// setFlag overrides a server default only when the client sent the field.
func setFlag(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
