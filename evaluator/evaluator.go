// Package evaluator parses a compiled rule's boolean expression and
// evaluates it against a text container, dispatching each clause to the
// appropriate pattern operator and aggregating captures across clauses.
package evaluator

import (
	"strconv"
	"strings"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/patternops"
	"github.com/lumenscan/lumenscan/rules"
)

// Container is the subset of textcontainer.Container the evaluator needs.
type Container interface {
	Content() string
	ScopeMatch(scopes rules.ScopeSet, b rules.Boundary) bool
	GetLocation(index int) rules.Location
}

// Result is what evaluating one compiled rule against one container yields.
type Result struct {
	Matched  bool
	Captures []patternops.Capture
}

// Evaluate runs cr's clause tree against container. The compiler only ever
// produces "(L0 OR L1 OR ...) AND Lk AND Ll ..." (or the empty/degenerate
// expression), so the grammar is simple enough that this walks the clause
// list directly by label rather than building a generic AST.
func Evaluate(regexCache *patternops.RegexCache, container Container, cr compiler.CompiledRule) Result {
	if cr.Expression == "" || len(cr.Clauses) == 0 {
		return Result{}
	}

	byLabel := make(map[string]*compiler.Clause, len(cr.Clauses))
	for _, c := range cr.Clauses {
		if c.Label != "" {
			byLabel[c.Label] = c
		}
	}

	orLabels, andLabels := parseExpression(cr.Expression)

	var orCaptures []patternops.Capture
	orMatched := false
	for _, label := range orLabels {
		c, ok := byLabel[label]
		if !ok {
			continue
		}
		matched, captures := evaluatePatternClause(regexCache, container, c)
		if matched {
			orMatched = true
			orCaptures = append(orCaptures, captures...)
		}
	}

	if !orMatched {
		return Result{Matched: false}
	}

	allConditionsMatched := true
	for _, label := range andLabels {
		c, ok := byLabel[label]
		if !ok || c.Kind != compiler.ClauseWithin {
			continue
		}
		if !evaluateWithinClause(regexCache, container, c, orCaptures) {
			allConditionsMatched = false
			break
		}
	}

	if !allConditionsMatched {
		return Result{Matched: false}
	}

	return Result{Matched: true, Captures: dedupeCaptures(orCaptures)}
}

// evaluatePatternClause runs the operator named by c.Kind, applying
// JSONPath/XPath pre-projection, scope filtering, and invert in that order.
func evaluatePatternClause(regexCache *patternops.RegexCache, container Container, c *compiler.Clause) (bool, []patternops.Capture) {
	var restrict []rules.Boundary
	if len(c.JSONPaths) > 0 {
		restrict = append(restrict, patternops.ProjectJSONPaths(container.Content(), c.JSONPaths)...)
	}
	if len(c.XPaths) > 0 {
		restrict = append(restrict, patternops.ProjectXPaths(container.Content(), c.XPaths)...)
	}
	if (len(c.JSONPaths) > 0 || len(c.XPaths) > 0) && len(restrict) == 0 {
		// Pre-projection selected nothing: the pattern finds nothing here.
		return patternops.ApplyInvert(c, nil)
	}

	var raw []patternops.Capture
	switch c.Kind {
	case compiler.ClauseSubstringIndex:
		raw = patternops.SubstringIndex(container.Content(), c, restrict)
	case compiler.ClauseRegexWithIndex:
		raw = patternops.RegexWithIndex(regexCache, container.Content(), c, restrict)
	default:
		return false, nil
	}

	filtered := patternops.ApplyScopeFilter(container, c.Scopes, raw)
	return patternops.ApplyInvert(c, filtered)
}

func evaluateWithinClause(regexCache *patternops.RegexCache, container Container, c *compiler.Clause, parent []patternops.Capture) bool {
	if c.Sub == nil {
		return false
	}
	_, subCaptures := evaluatePatternClause(regexCache, container, c.Sub)
	kind, before, after := patternops.WithinSelector(c)
	matched := patternops.Within(container, subCaptures, parent, kind, before, after)
	if c.Invert {
		return !matched
	}
	return matched
}

// parseExpression splits "(L0 OR L1 OR ...) AND Lk AND Ll ..." into the
// OR-group labels and the AND'd condition labels.
func parseExpression(expr string) (orLabels, andLabels []string) {
	parts := strings.Split(expr, " AND ")
	if len(parts) == 0 {
		return nil, nil
	}
	orGroup := strings.TrimSpace(parts[0])
	orGroup = strings.TrimPrefix(orGroup, "(")
	orGroup = strings.TrimSuffix(orGroup, ")")
	for _, label := range strings.Split(orGroup, " OR ") {
		label = strings.TrimSpace(label)
		if label != "" {
			orLabels = append(orLabels, label)
		}
	}
	for _, label := range parts[1:] {
		label = strings.TrimSpace(label)
		if label != "" {
			andLabels = append(andLabels, label)
		}
	}
	return orLabels, andLabels
}

// dedupeCaptures removes duplicate (pattern_index, boundary) tuples,
// preserving first-seen order, per "aggregates captures as a
// de-duplicated set".
func dedupeCaptures(captures []patternops.Capture) []patternops.Capture {
	seen := make(map[string]bool, len(captures))
	out := make([]patternops.Capture, 0, len(captures))
	for _, c := range captures {
		key := strconv.Itoa(c.PatternIndex) + ":" + strconv.Itoa(c.Boundary.Index) + ":" + strconv.Itoa(c.Boundary.Length)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
