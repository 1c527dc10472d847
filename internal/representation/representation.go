// Package representation resolves, per path, which tier of detail a packed
// file is rendered with.
package representation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BradSegal/anatomize/internal/glob"
)

// ErrInvalidAssignment indicates a malformed pattern:representation pair or
// an unknown representation name.
var ErrInvalidAssignment = errors.New("invalid representation assignment")

// Representation is the tier of detail rendered for a file.
type Representation string

const (
	Content Representation = "content"
	Summary Representation = "summary"
	Meta    Representation = "meta"
)

// Parse accepts content, summary, meta or metadata.
func Parse(s string) (Representation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "content":
		return Content, nil
	case "summary":
		return Summary, nil
	case "meta", "metadata":
		return Meta, nil
	}
	return "", fmt.Errorf("%w: unknown representation %q", ErrInvalidAssignment, s)
}

// Rule is a compiled pattern carrying a target representation.
type Rule struct {
	glob.Rule
	Representation Representation
}

// Compile compiles patterns for one representation. Negation is never
// interpreted: a leading "!" is part of the pattern.
func Compile(patterns []string, rep Representation) []Rule {
	rules := make([]Rule, 0, len(patterns))
	for _, raw := range patterns {
		r, ok := glob.Compile(raw, false)
		if !ok {
			continue
		}
		rules = append(rules, Rule{Rule: r, Representation: rep})
	}
	return rules
}

// Policy is an ordered rule list evaluated with last-match-wins semantics.
type Policy struct {
	Rules []Rule
}

// NewPolicy concatenates the content, summary and meta pattern lists, in that
// order, into one policy.
func NewPolicy(content, summary, meta []string) Policy {
	var p Policy
	p.Rules = append(p.Rules, Compile(content, Content)...)
	p.Rules = append(p.Rules, Compile(summary, Summary)...)
	p.Rules = append(p.Rules, Compile(meta, Meta)...)
	return p
}

// Append returns a policy with rules added after the existing ones.
func (p Policy) Append(rules ...Rule) Policy {
	out := make([]Rule, 0, len(p.Rules)+len(rules))
	out = append(out, p.Rules...)
	out = append(out, rules...)
	return Policy{Rules: out}
}

// Resolve returns the representation of the last matching rule, or def when
// nothing matches. Leading and trailing slashes are ignored and an empty path
// denotes the root.
func (p Policy) Resolve(relPath string, isDir bool, def Representation) Representation {
	rep, _ := p.Explain(relPath, isDir, def)
	return rep
}

// Explain is Resolve that also returns the deciding rule, nil for the default.
func (p Policy) Explain(relPath string, isDir bool, def Representation) (Representation, *Rule) {
	parts := glob.SplitPath(relPath)
	rep := def
	var last *Rule
	for i := range p.Rules {
		if p.Rules[i].MatchParts(parts, isDir) {
			last = &p.Rules[i]
			rep = last.Representation
		}
	}
	return rep, last
}

// ParseAssignments compiles ordered "pattern:representation" pairs. The pair
// is split at the last ":" so patterns may contain colons.
func ParseAssignments(assignments []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(assignments))
	for _, a := range assignments {
		i := strings.LastIndex(a, ":")
		if i < 0 {
			return nil, fmt.Errorf("%w: %q (want pattern:representation)", ErrInvalidAssignment, a)
		}
		rep, err := Parse(a[i+1:])
		if err != nil {
			return nil, fmt.Errorf("%q: %w", a, err)
		}
		r, err := glob.Parse(a[:i], false)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAssignment, err)
		}
		rules = append(rules, Rule{Rule: r, Representation: rep})
	}
	return rules, nil
}
