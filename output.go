package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/BradSegal/anatomize/internal/pack"
	"github.com/BradSegal/anatomize/internal/representation"
)

// Output formats.
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// node is an entry in the directory tree view.
type node struct {
	name     string
	isDir    bool
	children []*node
}

// buildTree constructs the tree of a manifest. Parents missing from Dirs are
// created so every entry is reachable.
func buildTree(m *pack.Manifest) *node {
	root := &node{name: filepath.Base(m.Root), isDir: true}
	nodes := map[string]*node{".": root}

	var ensure func(rel string, isDir bool) *node
	ensure = func(rel string, isDir bool) *node {
		if n, ok := nodes[rel]; ok {
			return n
		}
		parent := ensure(path.Dir(rel), true)
		n := &node{name: path.Base(rel), isDir: isDir}
		parent.children = append(parent.children, n)
		nodes[rel] = n
		return n
	}
	for _, d := range m.Dirs {
		ensure(d, true)
	}
	for _, e := range m.Entries {
		ensure(e.Path, false)
	}
	sortChildren(root)
	return root
}

// sortChildren orders directories before files, then by name.
func sortChildren(n *node) {
	sort.Slice(n.children, func(i, j int) bool {
		a, b := n.children[i], n.children[j]
		if a.isDir != b.isDir {
			return a.isDir
		}
		return a.name < b.name
	})
	for _, c := range n.children {
		sortChildren(c)
	}
}

// printTree generates the string representation of the tree.
func printTree(root *node) string {
	var b strings.Builder
	b.WriteString(root.name)
	b.WriteString("\n")
	printNode(&b, root.children, "")
	return b.String()
}

func printNode(b *strings.Builder, children []*node, prefix string) {
	for i, n := range children {
		connector := "├── "
		newPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			newPrefix = prefix + "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(n.name)
		if n.isDir {
			b.WriteString("/")
		}
		b.WriteString("\n")
		if len(n.children) > 0 {
			printNode(b, n.children, newPrefix)
		}
	}
}

// renderManifest renders m in one of the output formats.
func renderManifest(m *pack.Manifest, format string) (string, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode manifest: %w", err)
		}
		return string(data) + "\n", nil
	case formatMarkdown:
		return renderMarkdown(m)
	case formatText, "":
		return renderText(m)
	}
	return "", fmt.Errorf("unknown output format %q (want text, markdown or json)", format)
}

func renderText(m *pack.Manifest) (string, error) {
	var b strings.Builder
	b.WriteString(printTree(buildTree(m)))
	b.WriteString("\n")

	for _, e := range m.Entries {
		fmt.Fprintf(&b, "File: %s\n", e.Path)
		fmt.Fprintf(&b, "Representation: %s\n", describe(e))
		if m.Tokens != nil && e.Representation != representation.Meta {
			fmt.Fprintf(&b, "Tokens: %d\n", e.Tokens)
		}
		b.WriteString(strings.Repeat("=", 50))
		b.WriteString("\n")

		body, err := entryBody(e)
		if err != nil {
			return "", err
		}
		b.WriteString(body)
		if body != "" && !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(summaryText(m))
	return b.String(), nil
}

func renderMarkdown(m *pack.Manifest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(m.Root))
	b.WriteString("## Structure\n\n```text\n")
	b.WriteString(printTree(buildTree(m)))
	b.WriteString("```\n\n## Files\n")

	for _, e := range m.Entries {
		fmt.Fprintf(&b, "\n### %s\n\n", e.Path)
		fmt.Fprintf(&b, "_%s", describe(e))
		if m.Tokens != nil && e.Representation != representation.Meta {
			fmt.Fprintf(&b, ", %d tokens", e.Tokens)
		}
		b.WriteString("_\n")

		body, err := entryBody(e)
		if err != nil {
			return "", err
		}
		if body == "" {
			continue
		}
		lang := strings.ToLower(e.Language)
		if e.Representation == representation.Summary {
			lang = "json"
		}
		fence := fenceFor(body)
		fmt.Fprintf(&b, "\n%s%s\n%s", fence, lang, body)
		if !strings.HasSuffix(body, "\n") {
			b.WriteString("\n")
		}
		b.WriteString(fence)
		b.WriteString("\n")
	}

	b.WriteString("\n## Summary\n\n```text\n")
	b.WriteString(summaryText(m))
	b.WriteString("```\n")
	return b.String(), nil
}

// describe is the one-line header of an entry.
func describe(e pack.Entry) string {
	parts := []string{string(e.Representation)}
	if e.Transform != "" {
		parts = append(parts, e.Transform)
	}
	if e.Binary {
		parts = append(parts, "binary")
	}
	if e.Language != "" {
		parts = append(parts, e.Language)
	}
	parts = append(parts, fmt.Sprintf("%d bytes", e.Size))
	return strings.Join(parts, ", ")
}

// entryBody is the text shown under an entry header: content verbatim, a
// summary as indented JSON, nothing for meta.
func entryBody(e pack.Entry) (string, error) {
	switch e.Representation {
	case representation.Content:
		return e.Content, nil
	case representation.Summary:
		data, err := json.MarshalIndent(e.Summary, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode summary of %s: %w", e.Path, err)
		}
		return string(data), nil
	}
	return "", nil
}

// fenceFor returns a backtick fence longer than any run inside body.
func fenceFor(body string) string {
	longest, run := 0, 0
	for _, r := range body {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}

func summaryText(m *pack.Manifest) string {
	var b strings.Builder
	b.WriteString("--- Summary ---\n")
	fmt.Fprintf(&b, "Mode: %s\n", m.Mode)
	fmt.Fprintf(&b, "Total files: %d\n", m.Overview.Files)
	fmt.Fprintf(&b, "Go files: %d\n", m.Overview.GoFiles)
	fmt.Fprintf(&b, "Binary files: %d\n", m.Overview.BinaryFiles)
	fmt.Fprintf(&b, "Total size: %d bytes\n", m.Overview.TotalBytes)
	for _, rep := range []representation.Representation{representation.Content, representation.Summary, representation.Meta} {
		if n := m.Overview.Representations[rep]; n > 0 {
			fmt.Fprintf(&b, "%s files: %d\n", strings.ToUpper(string(rep[:1]))+string(rep[1:]), n)
		}
	}
	if m.Tokens != nil {
		fmt.Fprintf(&b, "Total tokens (%s): %d\n", m.Tokens.Encoding, m.Tokens.Total)
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(&b, "Summaries downgraded to meta: %d\n", len(m.Errors))
		for _, e := range m.Errors {
			fmt.Fprintf(&b, "  %s: %s\n", e.Path, e.Error)
		}
	}
	return b.String()
}

// outputTarget says where a rendered bundle goes. File wins over clipboard;
// stdout is the default.
type outputTarget struct {
	File      string
	Clipboard bool
}

// writeOutput delivers rendered to its target. A failed clipboard write falls
// back to stdout.
func writeOutput(rendered string, target outputTarget, stdout io.Writer) error {
	switch {
	case target.File != "":
		if err := os.WriteFile(target.File, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("error writing to file %s: %w", target.File, err)
		}
		logger.Info("output saved", zap.String("path", target.File))
		return nil
	case target.Clipboard:
		if err := clipboard.WriteAll(rendered); err != nil {
			logger.Warn("clipboard write failed, printing instead", zap.Error(err))
			break
		}
		logger.Info("output copied to clipboard")
		return nil
	}
	_, err := io.WriteString(stdout, rendered)
	return err
}
