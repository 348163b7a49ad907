package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenscan/lumenscan/rules"
)

func TestCompile_SingleStringPattern(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "secret", Type: rules.PatternString, Confidence: rules.ConfidenceHigh},
		},
	}
	cr, violations := Compile(r, nil)
	assert.Empty(t, violations)
	require.Len(t, cr.Clauses, 1)
	assert.Equal(t, "(0)", cr.Expression)
	assert.Equal(t, ClauseSubstringIndex, cr.Clauses[0].Kind)
	assert.True(t, cr.Clauses[0].UseWordBoundaries)
}

func TestCompile_SubstringDoesNotUseWordBoundaries(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "sec", Type: rules.PatternSubstring, Confidence: rules.ConfidenceHigh},
		},
	}
	cr, _ := Compile(r, nil)
	require.Len(t, cr.Clauses, 1)
	assert.False(t, cr.Clauses[0].UseWordBoundaries)
}

func TestCompile_RegexWordWrapsBoundaries(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "foo", Type: rules.PatternRegexWord, Confidence: rules.ConfidenceMedium},
		},
	}
	cr, violations := Compile(r, nil)
	assert.Empty(t, violations)
	require.Len(t, cr.Clauses, 1)
	assert.Equal(t, []string{`\b(foo)\b`}, cr.Clauses[0].Data)
}

func TestCompile_MultiplePatternsOred(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "a", Type: rules.PatternString, Confidence: rules.ConfidenceLow},
			{Pattern: "b", Type: rules.PatternString, Confidence: rules.ConfidenceLow},
		},
	}
	cr, _ := Compile(r, nil)
	assert.Equal(t, "(0 OR 1)", cr.Expression)
}

func TestCompile_InvalidRegexProducesViolationAndDropsClause(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "(unterminated", Type: rules.PatternRegex, Confidence: rules.ConfidenceHigh},
		},
	}
	cr, violations := Compile(r, nil)
	require.Len(t, violations, 1)
	assert.Equal(t, "R1", violations[0].RuleID)
	assert.Empty(t, cr.Clauses)
	assert.Equal(t, "", cr.Expression)
}

func TestCompile_UnrecognizedPatternTypeDropsWithViolation(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "x", Type: "bogus-type", Confidence: rules.ConfidenceHigh},
		},
	}
	cr, violations := Compile(r, nil)
	require.Len(t, violations, 1)
	assert.Empty(t, cr.Clauses)
}

func TestCompile_NoPatternsYieldsDegenerateRule(t *testing.T) {
	r := rules.Rule{ID: "R1"}
	cr, violations := Compile(r, nil)
	assert.Empty(t, violations)
	assert.Empty(t, cr.Clauses)
	assert.Equal(t, "", cr.Expression)
}

func TestCompile_ConditionAppendsAndClause(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "a", Type: rules.PatternString, Confidence: rules.ConfidenceHigh},
		},
		Conditions: []rules.SearchCondition{
			{
				Pattern:  rules.SearchPattern{Pattern: "guard", Type: rules.PatternSubstring, Confidence: rules.ConfidenceHigh},
				SearchIn: "same-line",
			},
		},
	}
	cr, violations := Compile(r, nil)
	assert.Empty(t, violations)
	require.Len(t, cr.Clauses, 2)
	assert.Equal(t, "(0) AND 1", cr.Expression)
	assert.Equal(t, ClauseWithin, cr.Clauses[1].Kind)
	assert.True(t, cr.Clauses[1].SameLineOnly)
}

func TestCompile_FindingRegionCondition(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "a", Type: rules.PatternString, Confidence: rules.ConfidenceHigh},
		},
		Conditions: []rules.SearchCondition{
			{
				Pattern:  rules.SearchPattern{Pattern: "guard", Type: rules.PatternSubstring, Confidence: rules.ConfidenceHigh},
				SearchIn: "finding-region(3,3)",
			},
		},
	}
	cr, _ := Compile(r, nil)
	require.Len(t, cr.Clauses, 2)
	wc := cr.Clauses[1]
	assert.True(t, wc.FindingRegion)
	assert.Equal(t, 3, wc.Before)
	assert.Equal(t, 3, wc.After)
}

func TestCompile_UnrecognizedSearchInDropsCondition(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "a", Type: rules.PatternString, Confidence: rules.ConfidenceHigh},
		},
		Conditions: []rules.SearchCondition{
			{
				Pattern:  rules.SearchPattern{Pattern: "guard", Type: rules.PatternSubstring, Confidence: rules.ConfidenceHigh},
				SearchIn: "bogus-selector",
			},
		},
	}
	cr, violations := Compile(r, nil)
	require.Len(t, violations, 1)
	require.Len(t, cr.Clauses, 1)
	assert.Equal(t, "(0)", cr.Expression)
}

func TestCompile_InvertPropagatesFromNegateFinding(t *testing.T) {
	r := rules.Rule{
		ID: "R1",
		Patterns: []rules.SearchPattern{
			{Pattern: "a", Type: rules.PatternString, Confidence: rules.ConfidenceHigh},
		},
		Conditions: []rules.SearchCondition{
			{
				Pattern:       rules.SearchPattern{Pattern: "guard", Type: rules.PatternSubstring, Confidence: rules.ConfidenceHigh},
				SearchIn:      "finding-only",
				NegateFinding: true,
			},
		},
	}
	cr, _ := Compile(r, nil)
	require.Len(t, cr.Clauses, 2)
	assert.True(t, cr.Clauses[1].Invert)
}
