package patternops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/rules"
)

func TestSubstringIndex_WordBoundaries(t *testing.T) {
	content := "catfish cat category cat."
	c := &compiler.Clause{Label: "0", Data: []string{"cat"}, UseWordBoundaries: true}

	caps := SubstringIndex(content, c, nil)

	// Only the standalone "cat" occurrences count, not "catfish"/"category".
	require.Len(t, caps, 2)
	for _, cp := range caps {
		assert.Equal(t, "cat", content[cp.Boundary.Index:cp.Boundary.Index+cp.Boundary.Length])
	}
}

func TestSubstringIndex_SubstringModeMatchesWithinWords(t *testing.T) {
	content := "catfish"
	c := &compiler.Clause{Label: "0", Data: []string{"cat"}, UseWordBoundaries: false}

	caps := SubstringIndex(content, c, nil)
	require.Len(t, caps, 1)
	assert.Equal(t, 0, caps[0].Boundary.Index)
}

func TestSubstringIndex_CaseInsensitive(t *testing.T) {
	content := "SECRET and secret"
	c := &compiler.Clause{Label: "0", Data: []string{"secret"}, Arguments: []string{"i"}}

	caps := SubstringIndex(content, c, nil)
	assert.Len(t, caps, 2)
}

func TestSubstringIndex_RestrictedToBoundaries(t *testing.T) {
	content := "secret here, secret there"
	c := &compiler.Clause{Label: "0", Data: []string{"secret"}}

	// Restrict the search to only the second half of the content.
	caps := SubstringIndex(content, c, []rules.Boundary{{Index: 13, Length: len(content) - 13}})
	require.Len(t, caps, 1)
	assert.Equal(t, 13, caps[0].Boundary.Index)
}
