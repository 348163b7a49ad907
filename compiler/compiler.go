package compiler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lumenscan/lumenscan/rules"
)

// Logger is the minimal interface the compiler needs to report a condition
// dropped for an unrecognized search_in; other dropped patterns/conditions
// are reported only as violations. Satisfied by *output.Logger without
// importing output here.
type Logger interface {
	Warning(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warning(format string, args ...interface{}) {}

// Compile translates a Rule into a CompiledRule, reporting violations for
// anything dropped along the way. A rule with every pattern/condition
// dropped compiles to a degenerate, always-false rule rather than failing
// the whole catalog (§4.3 step 3).
func Compile(r rules.Rule, logger Logger) (CompiledRule, []rules.Violation) {
	if logger == nil {
		logger = noopLogger{}
	}
	var violations []rules.Violation
	var clauses []*Clause
	var exprParts []string
	clauseNo := 0

	for _, p := range r.Patterns {
		c, ok := buildPatternClause(p, strconv.Itoa(clauseNo))
		if !ok {
			violations = append(violations, rules.Violation{RuleID: r.ID, Reason: fmt.Sprintf("unrecognized pattern type %q", p.Type)})
			continue
		}
		if v, ok := validateClause(r.ID, c); !ok {
			violations = append(violations, v)
			continue
		}
		clauses = append(clauses, c)
		exprParts = append(exprParts, strconv.Itoa(clauseNo))
		clauseNo++
	}

	if len(exprParts) == 0 {
		// No pattern clause survived: the rule is degenerate and never
		// matches, regardless of any conditions (an AND onto an empty OR
		// group can never become true).
		return CompiledRule{Source: r, Clauses: nil, Expression: ""}, violations
	}
	expr := "(" + strings.Join(exprParts, " OR ") + ")"

	for _, cond := range r.Conditions {
		sub, ok := buildPatternClause(cond.Pattern, "")
		if !ok {
			violations = append(violations, rules.Violation{RuleID: r.ID, Reason: fmt.Sprintf("unrecognized condition pattern type %q", cond.Pattern.Type)})
			continue
		}
		searchIn, ok := rules.ParseSearchIn(cond.SearchIn)
		if !ok {
			logger.Warning("rule %s: dropping condition with unrecognized search_in %q", r.ID, cond.SearchIn)
			violations = append(violations, rules.Violation{RuleID: r.ID, Reason: fmt.Sprintf("unrecognized search_in %q", cond.SearchIn)})
			continue
		}
		wc := &Clause{
			Kind:    ClauseWithin,
			Label:   strconv.Itoa(clauseNo),
			Capture: true,
			Invert:  cond.NegateFinding,
			Sub:     sub,
		}
		switch searchIn.Kind {
		case rules.SearchInFindingOnly:
			wc.FindingOnly = true
		case rules.SearchInFindingRegion:
			wc.FindingRegion = true
			wc.Before = searchIn.Before
			wc.After = searchIn.After
		case rules.SearchInSameLine:
			wc.SameLineOnly = true
		case rules.SearchInSameFile:
			wc.SameFile = true
		case rules.SearchInOnlyBefore:
			wc.OnlyBefore = true
		case rules.SearchInOnlyAfter:
			wc.OnlyAfter = true
		}
		clauses = append(clauses, wc)
		expr += " AND " + strconv.Itoa(clauseNo)
		clauseNo++
	}

	return CompiledRule{Source: r, Clauses: clauses, Expression: expr}, violations
}

// buildPatternClause produces a SubstringIndexClause or RegexWithIndexClause
// from a SearchPattern per the pattern-type mapping in §4.3 step 2. label
// may be empty for a condition's sub-clause, which carries no label of its
// own (only top-level pattern clauses are referenced by the expression).
func buildPatternClause(p rules.SearchPattern, label string) (*Clause, bool) {
	scopes := p.Scopes
	if len(scopes) == 0 {
		scopes = rules.NewScopeSet()
	}

	switch p.Type {
	case rules.PatternString:
		return &Clause{
			Kind: ClauseSubstringIndex, Label: label, Scopes: scopes, Capture: true,
			Data: []string{p.Pattern}, Arguments: p.Modifiers, UseWordBoundaries: true,
			JSONPaths: p.JSONPaths, XPaths: p.XPaths,
		}, true
	case rules.PatternSubstring:
		return &Clause{
			Kind: ClauseSubstringIndex, Label: label, Scopes: scopes, Capture: true,
			Data: []string{p.Pattern}, Arguments: p.Modifiers, UseWordBoundaries: false,
			JSONPaths: p.JSONPaths, XPaths: p.XPaths,
		}, true
	case rules.PatternRegex:
		return &Clause{
			Kind: ClauseRegexWithIndex, Label: label, Scopes: scopes, Capture: true,
			Data: []string{p.Pattern}, Arguments: p.Modifiers,
			JSONPaths: p.JSONPaths, XPaths: p.XPaths,
		}, true
	case rules.PatternRegexWord:
		return &Clause{
			Kind: ClauseRegexWithIndex, Label: label, Scopes: scopes, Capture: true,
			Data: []string{"\\b(" + p.Pattern + ")\\b"}, Arguments: p.Modifiers,
			JSONPaths: p.JSONPaths, XPaths: p.XPaths,
		}, true
	default:
		return nil, false
	}
}

// validateClause rejects a regex clause whose pattern fails to compile,
// surfacing a violation record rather than failing the catalog.
func validateClause(ruleID string, c *Clause) (rules.Violation, bool) {
	if c.Kind != ClauseRegexWithIndex {
		return rules.Violation{}, true
	}
	if len(c.Data) == 0 {
		return rules.Violation{RuleID: ruleID, Clause: c.Label, Reason: "regex clause has no data"}, false
	}
	joined := strings.Join(c.Data, "|")
	opts := regexOptions(c.Arguments)
	if _, err := regexp.Compile(opts + joined); err != nil {
		return rules.Violation{RuleID: ruleID, Clause: c.Label, Reason: fmt.Sprintf("invalid regex: %v", err)}, false
	}
	return rules.Violation{}, true
}

// regexOptions renders Go inline regex flags ("(?im)") from the modifier set.
func regexOptions(modifiers []string) string {
	var flags strings.Builder
	for _, m := range modifiers {
		switch m {
		case "i":
			flags.WriteByte('i')
		case "m":
			flags.WriteByte('m')
		}
	}
	if flags.Len() == 0 {
		return ""
	}
	return "(?" + flags.String() + ")"
}
