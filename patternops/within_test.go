package patternops

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenscan/lumenscan/rules"
)

type fakeLocator struct {
	lines map[int]int // offset -> line
}

func (f fakeLocator) GetLocation(index int) rules.Location {
	return rules.Location{Line: f.lines[index], Column: 1}
}

// S5 — condition finding-region(before=3, after=3): primary hits at line
// 10; condition must appear in lines [7..13].
func TestWithin_FindingRegion_S5(t *testing.T) {
	locator := fakeLocator{lines: map[int]int{
		100: 10, // primary match (parent)
		200: 12, // condition match within range
		300: 14, // condition match outside range
	}}
	parent := []Capture{{Boundary: rules.Boundary{Index: 100, Length: 1}}}

	within := []Capture{{Boundary: rules.Boundary{Index: 200, Length: 1}}}
	assert.True(t, Within(locator, within, parent, "finding-region", 3, 3))

	outside := []Capture{{Boundary: rules.Boundary{Index: 300, Length: 1}}}
	assert.False(t, Within(locator, outside, parent, "finding-region", 3, 3))
}

func TestWithin_FindingOnly_Overlap(t *testing.T) {
	locator := fakeLocator{}
	parent := []Capture{{Boundary: rules.Boundary{Index: 10, Length: 5}}}
	overlapping := []Capture{{Boundary: rules.Boundary{Index: 12, Length: 2}}}
	disjoint := []Capture{{Boundary: rules.Boundary{Index: 100, Length: 2}}}

	assert.True(t, Within(locator, overlapping, parent, "finding-only", 0, 0))
	assert.False(t, Within(locator, disjoint, parent, "finding-only", 0, 0))
}

func TestWithin_SameLine(t *testing.T) {
	locator := fakeLocator{lines: map[int]int{10: 5, 20: 5, 30: 6}}
	parent := []Capture{{Boundary: rules.Boundary{Index: 10, Length: 1}}}

	sameLine := []Capture{{Boundary: rules.Boundary{Index: 20, Length: 1}}}
	assert.True(t, Within(locator, sameLine, parent, "same-line", 0, 0))

	otherLine := []Capture{{Boundary: rules.Boundary{Index: 30, Length: 1}}}
	assert.False(t, Within(locator, otherLine, parent, "same-line", 0, 0))
}

func TestWithin_SameFile(t *testing.T) {
	locator := fakeLocator{}
	parent := []Capture{{Boundary: rules.Boundary{Index: 0, Length: 1}}}
	any := []Capture{{Boundary: rules.Boundary{Index: 999, Length: 1}}}
	assert.True(t, Within(locator, any, parent, "same-file", 0, 0))
	assert.False(t, Within(locator, nil, parent, "same-file", 0, 0))
}

func TestWithin_OnlyBeforeAndOnlyAfter(t *testing.T) {
	locator := fakeLocator{}
	parent := []Capture{{Boundary: rules.Boundary{Index: 50, Length: 1}}}

	before := []Capture{{Boundary: rules.Boundary{Index: 10, Length: 1}}}
	assert.True(t, Within(locator, before, parent, "only-before", 0, 0))
	assert.False(t, Within(locator, before, parent, "only-after", 0, 0))

	after := []Capture{{Boundary: rules.Boundary{Index: 90, Length: 1}}}
	assert.True(t, Within(locator, after, parent, "only-after", 0, 0))
	assert.False(t, Within(locator, after, parent, "only-before", 0, 0))
}

func TestWithin_EmptySubAlwaysFails(t *testing.T) {
	locator := fakeLocator{}
	parent := []Capture{{Boundary: rules.Boundary{Index: 0, Length: 1}}}
	assert.False(t, Within(locator, nil, parent, "finding-only", 0, 0))
}
