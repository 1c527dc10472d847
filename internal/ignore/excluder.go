// Package ignore layers ordered gitignore-style pattern sources into a single
// exclusion decision.
package ignore

import (
	"github.com/BradSegal/anatomize/internal/glob"
)

// Source tags recorded on every pattern.
const (
	SourceDefault            = "default"
	SourceCLI                = "cli"
	sourceStandardPrefix     = "standard_ignore_file:"
	sourceIgnoreFilePrefix   = "ignore_file:"
	sourceNestedIgnorePrefix = "nested_ignore_file:"
)

// Pattern is a raw ignore line plus the place it came from.
type Pattern struct {
	Pattern string
	Source  string
}

// Match identifies the rule that decided an exclusion.
type Match struct {
	Rule   glob.Rule
	Source string
}

// Display renders the matched pattern the way it is written in an ignore
// file, with a trailing "/" for directory-only rules.
func (m *Match) Display() string {
	if m == nil {
		return ""
	}
	return m.Rule.Pattern + dirSuffix(m.Rule.DirectoryOnly)
}

func dirSuffix(dirOnly bool) string {
	if dirOnly {
		return "/"
	}
	return ""
}

type sourcedRule struct {
	rule   glob.Rule
	source string
}

// Excluder evaluates ordered ignore patterns with last-match-wins semantics.
// A zero or nil Excluder excludes nothing.
type Excluder struct {
	rules []sourcedRule
}

// New compiles patterns in order. Blank lines, comments and patterns that are
// empty once anchors are stripped are dropped.
func New(patterns []Pattern) *Excluder {
	e := &Excluder{rules: make([]sourcedRule, 0, len(patterns))}
	for _, p := range patterns {
		r, ok := glob.Compile(p.Pattern, true)
		if !ok {
			continue
		}
		e.rules = append(e.rules, sourcedRule{rule: r, source: p.Source})
	}
	return e
}

// Len returns the number of effective rules.
func (e *Excluder) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Explain reports whether relPath is excluded and, when it is, which rule
// caused it. Every rule is evaluated: a match sets the verdict to excluded,
// a negated match clears it, and the last match decides.
func (e *Excluder) Explain(relPath string, isDir bool) (bool, *Match) {
	if e == nil {
		return false, nil
	}
	parts := glob.SplitPath(relPath)

	excluded := false
	var last *sourcedRule
	for i := range e.rules {
		sr := &e.rules[i]
		if !sr.rule.MatchParts(parts, isDir) {
			continue
		}
		excluded = !sr.rule.Negated
		last = sr
	}
	if !excluded || last == nil {
		return false, nil
	}
	return true, &Match{Rule: last.rule, Source: last.source}
}

// Excluded is Explain without the diagnostic.
func (e *Excluder) Excluded(relPath string, isDir bool) bool {
	excluded, _ := e.Explain(relPath, isDir)
	return excluded
}
