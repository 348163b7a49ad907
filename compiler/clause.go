// Package compiler translates a declarative rules.Rule into an executable
// clause tree plus a boolean expression string, per the rule compiler
// algorithm.
package compiler

import "github.com/lumenscan/lumenscan/rules"

// ClauseKind tags the Clause variant.
type ClauseKind int

const (
	ClauseSubstringIndex ClauseKind = iota
	ClauseRegexWithIndex
	ClauseWithin
)

// Clause is one evaluable unit in a compiled rule. Exactly one of the
// ClauseKind-specific fields is meaningful, selected by Kind — Go has no
// tagged unions, so this mirrors the "Clause = Substring | RegexIndex |
// Within" variant with a kind tag instead of an interface hierarchy, keeping
// evaluation a single switch rather than a dispatch through N types.
type Clause struct {
	Kind ClauseKind

	Label   string
	Scopes  rules.ScopeSet
	Capture bool
	Invert  bool

	// Data holds the pattern text(s) to match: one entry for a
	// SubstringIndexClause, one or more to be OR-joined for a
	// RegexWithIndexClause.
	Data []string

	// Arguments carries modifier strings ("i", "m") forwarded from the
	// source SearchPattern.
	Arguments []string

	// UseWordBoundaries selects SubstringIndex's word-boundary mode
	// (set for PatternString, unset for PatternSubstring).
	UseWordBoundaries bool

	JSONPaths []string
	XPaths    []string

	// Within-only fields.
	Sub            *Clause
	FindingOnly    bool
	FindingRegion  bool
	Before, After  int
	SameLineOnly   bool
	SameFile       bool
	OnlyBefore     bool
	OnlyAfter      bool
}

// HasModifier reports whether the named single-letter modifier is present.
func (c Clause) HasModifier(m string) bool {
	for _, v := range c.Arguments {
		if v == m {
			return true
		}
	}
	return false
}

// CompiledRule is the compiler's output: a flat clause list plus the
// boolean expression string referencing clause labels, alongside the
// source rule it was compiled from.
type CompiledRule struct {
	Source     rules.Rule
	Clauses    []*Clause
	Expression string
}
