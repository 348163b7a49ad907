package patternops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenscan/lumenscan/compiler"
)

func TestRegexWithIndex_BasicMatch(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "error: connection refused\nerror: timeout"
	c := &compiler.Clause{Label: "0", Data: []string{"error: \\w+"}}

	caps := RegexWithIndex(cache, content, c, nil)
	require.Len(t, caps, 2)
}

func TestRegexWithIndex_CaseInsensitiveModifier(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "ERROR and error"
	c := &compiler.Clause{Label: "0", Data: []string{"error"}, Arguments: []string{"i"}}

	caps := RegexWithIndex(cache, content, c, nil)
	assert.Len(t, caps, 2)
}

func TestRegexWithIndex_JoinsMultiplePatternsWithOr(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "foo bar baz"
	c := &compiler.Clause{Label: "0", Data: []string{"foo", "baz"}}

	caps := RegexWithIndex(cache, content, c, nil)
	assert.Len(t, caps, 2)
}

func TestRegexWithIndex_InvalidRegexYieldsNoCaptures(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "anything"
	c := &compiler.Clause{Label: "0", Data: []string{"(unterminated"}}

	caps := RegexWithIndex(cache, content, c, nil)
	assert.Empty(t, caps)
}

func TestRegexWithIndex_EmptyMatchYieldsNoCapture(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "abc"
	c := &compiler.Clause{Label: "0", Data: []string{"x*"}}

	caps := RegexWithIndex(cache, content, c, nil)
	assert.Empty(t, caps)
}

func TestRegexWithIndex_CachesCompiledPattern(t *testing.T) {
	cache := NewRegexCache(nil)
	content := "foo foo"
	c := &compiler.Clause{Label: "0", Data: []string{"foo"}}

	first := RegexWithIndex(cache, content, c, nil)
	second := RegexWithIndex(cache, content, c, nil)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.cache.Len())
}
