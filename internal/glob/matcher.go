package glob

// Matcher is an allowlist of rules: a path is accepted when any rule matches.
// Negation markers are not interpreted.
type Matcher struct {
	rules []Rule
}

// NewMatcher compiles patterns, dropping no-op lines.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		if r, ok := Compile(p, false); ok {
			m.rules = append(m.rules, r)
		}
	}
	return m
}

// Empty reports whether the matcher has no effective rules.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.rules) == 0
}

// Rules returns the compiled rules in input order.
func (m *Matcher) Rules() []Rule {
	if m == nil {
		return nil
	}
	return m.rules
}

// MatchesAny reports whether at least one rule matches relPath.
func (m *Matcher) MatchesAny(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	parts := SplitPath(relPath)
	for _, r := range m.rules {
		if r.MatchParts(parts, isDir) {
			return true
		}
	}
	return false
}
