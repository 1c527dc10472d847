package glob

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const memoSize = 1 << 14

// memo caches full-path segment matches keyed by (pattern segments, path
// segments). The result is a pure function of the key, so entries never go stale.
var memo *lru.Cache[string, bool]

func init() {
	c, err := lru.New[string, bool](memoSize)
	if err != nil {
		panic(err)
	}
	memo = c
}

// SplitPath normalizes a POSIX relative path into segments. Leading and
// trailing slashes are ignored and "" or "." denote the root (no segments).
func SplitPath(rel string) []string {
	rel = strings.Trim(rel, "/")
	if rel == "" || rel == "." {
		return nil
	}
	parts := strings.Split(rel, "/")
	out := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Match reports whether the rule matches relPath. Directory-only rules match
// a directory that matches itself, or any path below a matching ancestor.
// Negation does not affect the result; callers interpret it.
func (r Rule) Match(relPath string, isDir bool) bool {
	return r.MatchParts(SplitPath(relPath), isDir)
}

// MatchParts is Match for a path already split with SplitPath.
func (r Rule) MatchParts(parts []string, isDir bool) bool {
	if !r.DirectoryOnly {
		return r.matchSingle(parts)
	}
	if isDir && r.matchSingle(parts) {
		return true
	}
	for i := len(parts) - 1; i >= 0; i-- {
		if r.matchSingle(parts[:i]) {
			return true
		}
	}
	return false
}

func (r Rule) matchSingle(parts []string) bool {
	if !r.HasSlash && !r.Anchored {
		if len(parts) == 0 {
			return false
		}
		return r.base.match(parts[len(parts)-1])
	}

	if r.Anchored {
		return r.matchCached(parts)
	}
	for start := 0; start <= len(parts); start++ {
		if r.matchCached(parts[start:]) {
			return true
		}
	}
	return false
}

func (r Rule) matchCached(parts []string) bool {
	key := r.Pattern + "\x00" + strings.Join(parts, "/")
	if v, ok := memo.Get(key); ok {
		return v
	}
	v := matchParts(r.parts, parts)
	memo.Add(key, v)
	return v
}

// matchParts matches pattern segments against path segments one-to-one,
// with "**" absorbing zero or more path segments.
func matchParts(pat []segment, parts []string) bool {
	var seen map[[2]int]bool
	var walk func(pi, si int) bool
	walk = func(pi, si int) bool {
		for pi < len(pat) {
			if pat[pi].doubleStar {
				if seen == nil {
					seen = make(map[[2]int]bool)
				}
				key := [2]int{pi, si}
				if v, ok := seen[key]; ok {
					return v
				}
				res := false
				for k := si; k <= len(parts); k++ {
					if walk(pi+1, k) {
						res = true
						break
					}
				}
				seen[key] = res
				return res
			}
			if si == len(parts) || !pat[pi].match(parts[si]) {
				return false
			}
			pi++
			si++
		}
		return si == len(parts)
	}
	return walk(0, 0)
}
