// Package glob compiles gitignore-style patterns into rules and matches them
// against POSIX-style relative paths.
//
// A rule has three independent facets parsed from the raw line:
//   - anchored: leading "/", the pattern only matches from the walk root
//   - directory-only: trailing "/", the pattern matches a directory and
//     everything beneath it
//   - has-slash: an internal "/", the pattern is matched against the full
//     relative path instead of the basename
//
// Segments are matched with fnmatch-style wildcards ("*", "?", "[...]");
// a segment equal to "**" matches zero or more path segments.
package glob

import (
	"fmt"
	"strings"
)

// Rule is one compiled pattern.
type Rule struct {
	// Raw is the source line as given by the caller.
	Raw string
	// Pattern is the residual glob with anchors and negation removed.
	Pattern string
	// Segments is Pattern split on "/" with empty parts dropped.
	Segments []string
	// Anchored means the source pattern started with "/".
	Anchored bool
	// DirectoryOnly means the source pattern ended with "/".
	DirectoryOnly bool
	// HasSlash means Pattern contains "/" after stripping anchors.
	HasSlash bool
	// Negated means the source pattern started with "!".
	Negated bool

	base  segment
	parts []segment
}

// Compile parses one raw pattern line. The second result is false when the
// line is blank, a comment, or empty once anchors are stripped; such lines are
// no-ops and must not be evaluated.
func Compile(raw string, allowNegation bool) (Rule, bool) {
	line, negated, ok := ParseLine(raw, allowNegation)
	if !ok {
		return Rule{}, false
	}

	pat := line
	dirOnly := strings.HasSuffix(pat, "/")
	if dirOnly {
		pat = strings.TrimRight(pat, "/")
		if pat == "" {
			return Rule{}, false
		}
	}

	anchored := strings.HasPrefix(pat, "/")
	if anchored {
		pat = strings.TrimLeft(pat, "/")
		if pat == "" {
			return Rule{}, false
		}
	}

	r := Rule{
		Raw:           raw,
		Pattern:       pat,
		Anchored:      anchored,
		DirectoryOnly: dirOnly,
		HasSlash:      strings.Contains(pat, "/"),
		Negated:       negated,
	}
	for _, part := range strings.Split(pat, "/") {
		if part == "" {
			continue
		}
		r.Segments = append(r.Segments, part)
		r.parts = append(r.parts, compileSegment(part))
	}
	r.base = compileSegment(pat)
	return r, true
}

// MustCompile is Compile for patterns known to be valid. It panics on no-op lines.
func MustCompile(raw string) Rule {
	r, ok := Compile(raw, true)
	if !ok {
		panic("glob: pattern compiles to nothing: " + raw)
	}
	return r
}

// Display renders the rule the way it would be written in an ignore file,
// without the negation marker.
func (r Rule) Display() string {
	var b strings.Builder
	if r.Anchored {
		b.WriteByte('/')
	}
	b.WriteString(r.Pattern)
	if r.DirectoryOnly {
		b.WriteByte('/')
	}
	return b.String()
}

// ParseLine strips gitignore line syntax from raw.
//
// Semantics:
//   - a trailing "\r" and unescaped trailing spaces/tabs are removed
//   - blank lines and "#" comments yield ok=false
//   - "\#" and "\!" escape a leading comment or negation marker
//   - "!" marks negation when allowNegation is set and is literal otherwise
func ParseLine(raw string, allowNegation bool) (line string, negated bool, ok bool) {
	line = strings.TrimRight(raw, "\r\n")
	line = trimTrailingSpaces(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false, false
	}

	switch {
	case strings.HasPrefix(line, `\#`), strings.HasPrefix(line, `\!`):
		line = line[1:]
	case allowNegation && strings.HasPrefix(line, "!"):
		negated = true
		line = line[1:]
	}

	if line == "" {
		return "", false, false
	}
	return line, negated, true
}

// trimTrailingSpaces removes trailing spaces unless escaped by "\".
func trimTrailingSpaces(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		if len(s) >= 2 && s[len(s)-2] == '\\' {
			s = s[:len(s)-2] + s[len(s)-1:]
			break
		}
		s = s[:len(s)-1]
	}
	return s
}

// Escape quotes glob metacharacters in a literal path so that it can be used
// as a pattern matching only itself. Leading "#" and "!" are not escaped;
// callers anchor the result with "/".
func Escape(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '*':
			b.WriteString("[*]")
		case '?':
			b.WriteString("[?]")
		case '[':
			b.WriteString("[[]")
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if strings.HasSuffix(out, " ") || strings.HasSuffix(out, "\t") {
		out = out[:len(out)-1] + `\` + out[len(out)-1:]
	}
	return out
}

// Parse is Compile for callers that treat a no-op line as a mistake, such as
// explicit pattern:representation assignments.
func Parse(raw string, allowNegation bool) (Rule, error) {
	r, ok := Compile(raw, allowNegation)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
	}
	return r, nil
}
