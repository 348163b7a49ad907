package evaluator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/patternops"
	"github.com/lumenscan/lumenscan/rules"
)

func patternopsRegexCache() *patternops.RegexCache {
	return patternops.NewRegexCache(nil)
}

type fakeContainer struct {
	content string
	// line maps an offset to a 1-indexed line number; offsets not present
	// default to line 1, sufficient for the single-line fixtures below.
	line map[int]int
}

func (f fakeContainer) Content() string { return f.content }

func (f fakeContainer) ScopeMatch(scopes rules.ScopeSet, b rules.Boundary) bool {
	return scopes.Has(rules.ScopeAll) || scopes.Has(rules.ScopeCode)
}

func (f fakeContainer) GetLocation(index int) rules.Location {
	if f.line == nil {
		return rules.Location{Line: 1, Column: 1}
	}
	if line, ok := f.line[index]; ok {
		return rules.Location{Line: line, Column: 1}
	}
	return rules.Location{Line: 1, Column: 1}
}

func substringClause(label, text string, invert bool) *compiler.Clause {
	return &compiler.Clause{
		Kind: compiler.ClauseSubstringIndex, Label: label, Scopes: rules.NewScopeSet(),
		Capture: true, Invert: invert, Data: []string{text}, UseWordBoundaries: false,
	}
}

func TestEvaluate_SimpleOrMatch(t *testing.T) {
	rc := patternopsRegexCache()
	container := fakeContainer{content: "the quick brown fox"}
	cr := compiler.CompiledRule{
		Clauses:    []*compiler.Clause{substringClause("0", "quick", false)},
		Expression: "(0)",
	}
	result := Evaluate(rc, container, cr)
	assert.True(t, result.Matched)
	require.Len(t, result.Captures, 1)
	assert.Equal(t, 4, result.Captures[0].Boundary.Index)
}

func TestEvaluate_NoMatchWhenPatternAbsent(t *testing.T) {
	rc := patternopsRegexCache()
	container := fakeContainer{content: "the quick brown fox"}
	cr := compiler.CompiledRule{
		Clauses:    []*compiler.Clause{substringClause("0", "slow", false)},
		Expression: "(0)",
	}
	result := Evaluate(rc, container, cr)
	assert.False(t, result.Matched)
	assert.Empty(t, result.Captures)
}

func TestEvaluate_DegenerateRuleNeverMatches(t *testing.T) {
	rc := patternopsRegexCache()
	container := fakeContainer{content: "anything at all"}
	cr := compiler.CompiledRule{Clauses: nil, Expression: ""}
	result := Evaluate(rc, container, cr)
	assert.False(t, result.Matched)
}

func TestEvaluate_MultiplePatternsOred(t *testing.T) {
	rc := patternopsRegexCache()
	container := fakeContainer{content: "alpha beta"}
	cr := compiler.CompiledRule{
		Clauses: []*compiler.Clause{
			substringClause("0", "zzz", false),
			substringClause("1", "beta", false),
		},
		Expression: "(0 OR 1)",
	}
	result := Evaluate(rc, container, cr)
	assert.True(t, result.Matched)
	require.Len(t, result.Captures, 1)
}

// S6 — an invert-only rule fires exactly when the text contains zero
// occurrences of "secret".
func TestEvaluate_S6_InvertOnlyRuleFiresOnAbsence(t *testing.T) {
	rc := patternopsRegexCache()

	cr := compiler.CompiledRule{
		Clauses:    []*compiler.Clause{substringClause("0", "secret", true)},
		Expression: "(0)",
	}

	clean := fakeContainer{content: "nothing sensitive here"}
	result := Evaluate(rc, clean, cr)
	assert.True(t, result.Matched)
	assert.Empty(t, result.Captures)

	dirty := fakeContainer{content: "the secret key is here"}
	result = Evaluate(rc, dirty, cr)
	assert.False(t, result.Matched)
}

func TestEvaluate_WithinConditionGatesMatch(t *testing.T) {
	rc := patternopsRegexCache()

	content := "foo here\nbar there"
	line := map[int]int{
		strings.Index(content, "foo"): 1,
		strings.Index(content, "bar"): 2,
	}
	container := fakeContainer{content: content, line: line}

	sub := substringClause("", "bar", false)
	withinClause := &compiler.Clause{
		Kind: compiler.ClauseWithin, Label: "1", Capture: true,
		Sub: sub, SameLineOnly: true,
	}
	cr := compiler.CompiledRule{
		Clauses:    []*compiler.Clause{substringClause("0", "foo", false), withinClause},
		Expression: "(0) AND 1",
	}

	result := Evaluate(rc, container, cr)
	assert.False(t, result.Matched, "bar is on a different line than foo")
}

func TestEvaluate_WithinConditionSatisfiedSameLine(t *testing.T) {
	rc := patternopsRegexCache()

	content := "foo and bar together"
	container := fakeContainer{content: content}

	sub := substringClause("", "bar", false)
	withinClause := &compiler.Clause{
		Kind: compiler.ClauseWithin, Label: "1", Capture: true,
		Sub: sub, SameLineOnly: true,
	}
	cr := compiler.CompiledRule{
		Clauses:    []*compiler.Clause{substringClause("0", "foo", false), withinClause},
		Expression: "(0) AND 1",
	}

	result := Evaluate(rc, container, cr)
	assert.True(t, result.Matched)
	require.Len(t, result.Captures, 1)
	assert.Equal(t, 0, result.Captures[0].Boundary.Index)
}

func TestParseExpression(t *testing.T) {
	or, and := parseExpression("(0 OR 1 OR 2) AND 3 AND 4")
	assert.Equal(t, []string{"0", "1", "2"}, or)
	assert.Equal(t, []string{"3", "4"}, and)

	or, and = parseExpression("(0)")
	assert.Equal(t, []string{"0"}, or)
	assert.Empty(t, and)
}
