package glob

import "strings"

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokAny
	tokStar
	tokClass
)

type token struct {
	kind  tokenKind
	lit   rune
	class *charClass
}

type charClass struct {
	negate bool
	ranges [][2]rune
}

func (c *charClass) matches(r rune) bool {
	in := false
	for _, rg := range c.ranges {
		if r >= rg[0] && r <= rg[1] {
			in = true
			break
		}
	}
	return in != c.negate
}

// segment is one precompiled path-segment pattern.
type segment struct {
	text       string
	literal    bool
	doubleStar bool
	tokens     []token
}

func compileSegment(text string) segment {
	s := segment{text: text, doubleStar: text == "**"}
	if !strings.ContainsAny(text, "*?[") {
		s.literal = true
		return s
	}

	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '*':
			// Consecutive stars behave like one inside a segment.
			if n := len(s.tokens); n > 0 && s.tokens[n-1].kind == tokStar {
				continue
			}
			s.tokens = append(s.tokens, token{kind: tokStar})
		case '?':
			s.tokens = append(s.tokens, token{kind: tokAny})
		case '[':
			class, end, ok := parseClass(rs, i)
			if !ok {
				s.tokens = append(s.tokens, token{kind: tokLiteral, lit: '['})
				continue
			}
			s.tokens = append(s.tokens, token{kind: tokClass, class: class})
			i = end
		default:
			s.tokens = append(s.tokens, token{kind: tokLiteral, lit: rs[i]})
		}
	}
	return s
}

// parseClass parses "[...]" starting at rs[start]. An unterminated class is
// not a class and the "[" is taken literally.
func parseClass(rs []rune, start int) (*charClass, int, bool) {
	j := start + 1
	if j < len(rs) && rs[j] == '!' {
		j++
	}
	if j < len(rs) && rs[j] == ']' {
		j++
	}
	for j < len(rs) && rs[j] != ']' {
		j++
	}
	if j >= len(rs) {
		return nil, 0, false
	}

	body := rs[start+1 : j]
	c := &charClass{}
	if len(body) > 0 && body[0] == '!' {
		c.negate = true
		body = body[1:]
	}
	for i := 0; i < len(body); i++ {
		if i+2 < len(body) && body[i+1] == '-' {
			lo, hi := body[i], body[i+2]
			if lo <= hi {
				c.ranges = append(c.ranges, [2]rune{lo, hi})
			}
			i += 2
			continue
		}
		c.ranges = append(c.ranges, [2]rune{body[i], body[i]})
	}
	return c, j, true
}

// match reports whether name matches the segment pattern in full.
func (s segment) match(name string) bool {
	if s.literal {
		return name == s.text
	}

	rs := []rune(name)
	ti, ni := 0, 0
	starT, starN := -1, 0
	for ni < len(rs) {
		if ti < len(s.tokens) {
			tok := s.tokens[ti]
			if tok.kind == tokStar {
				starT = ti
				starN = ni
				ti++
				continue
			}
			if tok.matches(rs[ni]) {
				ti++
				ni++
				continue
			}
		}
		if starT >= 0 {
			// Let the last star swallow one more rune and retry.
			starN++
			ni = starN
			ti = starT + 1
			continue
		}
		return false
	}

	for ti < len(s.tokens) && s.tokens[ti].kind == tokStar {
		ti++
	}
	return ti == len(s.tokens)
}

func (t token) matches(r rune) bool {
	switch t.kind {
	case tokAny:
		return true
	case tokClass:
		return t.class.matches(r)
	default:
		return t.lit == r
	}
}
