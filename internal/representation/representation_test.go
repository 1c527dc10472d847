package representation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradSegal/anatomize/internal/glob"
)

func TestLastMatchWins(t *testing.T) {
	t.Parallel()

	rules, err := ParseAssignments([]string{"*.md:summary", "README.md:content"})
	require.NoError(t, err)
	p := Policy{Rules: rules}

	assert.Equal(t, Content, p.Resolve("README.md", false, Meta))
	assert.Equal(t, Summary, p.Resolve("other.md", false, Meta))
	assert.Equal(t, Meta, p.Resolve("main.go", false, Meta))

	reversed, err := ParseAssignments([]string{"README.md:content", "*.md:summary"})
	require.NoError(t, err)
	assert.Equal(t, Summary, Policy{Rules: reversed}.Resolve("README.md", false, Meta))
}

func TestNewPolicyOrder(t *testing.T) {
	t.Parallel()

	// Meta rules are registered last, so they win over content for the same path.
	p := NewPolicy([]string{"*.json"}, []string{"config/"}, []string{"config/secrets.json"})
	require.Len(t, p.Rules, 3)
	assert.Equal(t, []Representation{Content, Summary, Meta},
		[]Representation{p.Rules[0].Representation, p.Rules[1].Representation, p.Rules[2].Representation})

	assert.Equal(t, Content, p.Resolve("data.json", false, Meta))
	assert.Equal(t, Summary, p.Resolve("config/app.json", false, Meta))
	assert.Equal(t, Meta, p.Resolve("config/secrets.json", false, Content))
}

func TestResolveAnchoredAndDirectoryOnly(t *testing.T) {
	t.Parallel()

	p := NewPolicy([]string{"/docs/"}, []string{"/config.json"}, nil)
	assert.Equal(t, Content, p.Resolve("docs", true, Meta))
	assert.Equal(t, Content, p.Resolve("docs/guide/intro.md", false, Meta))
	assert.Equal(t, Meta, p.Resolve("pkg/docs/x.md", false, Meta))
	assert.Equal(t, Summary, p.Resolve("config.json", false, Meta))
	assert.Equal(t, Meta, p.Resolve("sub/config.json", false, Meta))
}

func TestResolveNormalizesPath(t *testing.T) {
	t.Parallel()

	p := NewPolicy([]string{"/src/**"}, nil, nil)
	assert.Equal(t, Content, p.Resolve("/src/a/b.go/", false, Meta))
	assert.Equal(t, Meta, p.Resolve("", true, Meta))
}

func TestNegationIsLiteral(t *testing.T) {
	t.Parallel()

	p := NewPolicy(nil, []string{"!keep.md"}, nil)
	require.Len(t, p.Rules, 1)
	assert.False(t, p.Rules[0].Negated)
	assert.Equal(t, Summary, p.Resolve("!keep.md", false, Meta))
	assert.Equal(t, Meta, p.Resolve("keep.md", false, Meta))
}

func TestExplain(t *testing.T) {
	t.Parallel()

	p := NewPolicy(nil, []string{"*.yaml"}, nil)
	rep, rule := p.Explain("a.yaml", false, Content)
	assert.Equal(t, Summary, rep)
	require.NotNil(t, rule)
	assert.Equal(t, "*.yaml", rule.Display())

	rep, rule = p.Explain("a.go", false, Content)
	assert.Equal(t, Content, rep)
	assert.Nil(t, rule)
}

func TestAppend(t *testing.T) {
	t.Parallel()

	base := NewPolicy(nil, []string{"*.md"}, nil)
	extra, err := ParseAssignments([]string{"CHANGELOG.md:meta"})
	require.NoError(t, err)

	p := base.Append(extra...)
	assert.Equal(t, Meta, p.Resolve("CHANGELOG.md", false, Content))
	assert.Len(t, base.Rules, 1)
}

func TestParseAssignmentsErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseAssignments([]string{"no-colon"})
	require.ErrorIs(t, err, ErrInvalidAssignment)

	_, err = ParseAssignments([]string{"*.md:verbose"})
	require.ErrorIs(t, err, ErrInvalidAssignment)

	_, err = ParseAssignments([]string{"/:content"})
	require.ErrorIs(t, err, ErrInvalidAssignment)
	require.ErrorIs(t, err, glob.ErrInvalidPattern)

	rules, err := ParseAssignments([]string{"C:/weird:name:metadata"})
	require.NoError(t, err)
	assert.Equal(t, "C:/weird:name", rules[0].Pattern)
	assert.Equal(t, Meta, rules[0].Representation)
}

func TestParse(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Representation{
		"content": Content, "SUMMARY": Summary, "meta": Meta, " metadata ": Meta,
	} {
		got, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := Parse("full")
	require.ErrorIs(t, err, ErrInvalidAssignment)
}
