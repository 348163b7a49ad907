package patternops

import (
	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/rules"
)

// ScopeFilterer is satisfied by *textcontainer.Container; defined here to
// avoid an import cycle (textcontainer never needs to know about clauses).
type ScopeFilterer interface {
	ScopeMatch(scopes rules.ScopeSet, b rules.Boundary) bool
}

// ApplyScopeFilter discards captures whose boundary fails the clause's
// scope_match predicate, per "every raw hit is intersected with
// scope_match(...); rejected boundaries are discarded before capture."
func ApplyScopeFilter(container ScopeFilterer, scopes rules.ScopeSet, captures []Capture) []Capture {
	var out []Capture
	for _, capture := range captures {
		if container.ScopeMatch(scopes, capture.Boundary) {
			out = append(out, capture)
		}
	}
	return out
}

// ApplyInvert implements the invert rule: if clause.Invert, the clause
// reports success iff the capture set is empty, and the reported capture
// set itself becomes empty either way.
func ApplyInvert(c *compiler.Clause, captures []Capture) (matched bool, result []Capture) {
	if !c.Invert {
		return len(captures) > 0, captures
	}
	return len(captures) == 0, nil
}
