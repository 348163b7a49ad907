package patternops

import (
	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/rules"
)

// WithinSelector extracts the (kind, before, after) triple from a compiled
// WithinClause, translating its boolean selector fields back into the
// string kind Within dispatches on.
func WithinSelector(c *compiler.Clause) (kind string, before, after int) {
	switch {
	case c.FindingRegion:
		return "finding-region", c.Before, c.After
	case c.SameLineOnly:
		return "same-line", 0, 0
	case c.SameFile:
		return "same-file", 0, 0
	case c.OnlyBefore:
		return "only-before", 0, 0
	case c.OnlyAfter:
		return "only-after", 0, 0
	default:
		return "finding-only", 0, 0
	}
}

// LineLocator gives Within access to line numbers without depending on
// textcontainer directly.
type LineLocator interface {
	GetLocation(index int) rules.Location
}

// Within implements the condition operator: it succeeds iff at least one
// pair (s in sub, p in parent) satisfies the selected proximity relation.
// kind/before/after mirror the compiled WithinClause's selector fields.
func Within(locator LineLocator, sub, parent []Capture, kind string, before, after int) bool {
	if len(sub) == 0 {
		return false
	}
	switch kind {
	case "finding-only":
		for _, s := range sub {
			for _, p := range parent {
				if s.Boundary.Overlaps(p.Boundary) {
					return true
				}
			}
		}
		return false
	case "finding-region":
		for _, s := range sub {
			sLine := locator.GetLocation(s.Boundary.Index).Line
			for _, p := range parent {
				pLine := locator.GetLocation(p.Boundary.Index).Line
				if sLine >= pLine-before && sLine <= pLine+after {
					return true
				}
			}
		}
		return false
	case "same-line":
		for _, s := range sub {
			sLine := locator.GetLocation(s.Boundary.Index).Line
			for _, p := range parent {
				if locator.GetLocation(p.Boundary.Index).Line == sLine {
					return true
				}
			}
		}
		return false
	case "same-file":
		return len(sub) > 0
	case "only-before":
		for _, s := range sub {
			for _, p := range parent {
				if s.Boundary.Index < p.Boundary.Index {
					return true
				}
			}
		}
		return false
	case "only-after":
		for _, s := range sub {
			for _, p := range parent {
				if s.Boundary.Index > p.Boundary.Index {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
