// Package rules defines the declarative rule model deserialized from a JSON
// catalog: rules, search patterns, conditions, and the records a rule
// produces when it fires against a file.
package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the authored impact of a rule. Reported, never used for
// runtime filtering.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityCritical
	SeverityImportant
	SeverityModerate
	SeverityBestPractice
	SeverityManualReview
)

var severityNames = map[Severity]string{
	SeverityCritical:      "critical",
	SeverityImportant:     "important",
	SeverityModerate:      "moderate",
	SeverityBestPractice:  "best-practice",
	SeverityManualReview:  "manual-review",
}

var severityValues = map[string]Severity{
	"critical":      SeverityCritical,
	"important":     SeverityImportant,
	"moderate":      SeverityModerate,
	"best-practice": SeverityBestPractice,
	"manual-review": SeverityManualReview,
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON renders the severity using its canonical dashed spelling.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a severity case-insensitively; an unrecognized value
// is left as SeverityUnknown rather than failing the whole document. No
// violation is recorded for it: the rule is loaded and compiled as usual and
// its matches report severity "unknown".
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := severityValues[strings.ToLower(strings.TrimSpace(raw))]; ok {
		*s = v
		return nil
	}
	*s = SeverityUnknown
	return nil
}

// Confidence is the authored quality of a pattern; it drives runtime
// filtering via processor.Options.ConfidenceFilter.
type Confidence int

const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceLow:    "low",
	ConfidenceMedium: "medium",
	ConfidenceHigh:   "high",
}

var confidenceValues = map[string]Confidence{
	"low":    ConfidenceLow,
	"medium": ConfidenceMedium,
	"high":   ConfidenceHigh,
}

func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return "unknown"
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := confidenceValues[strings.ToLower(strings.TrimSpace(raw))]; ok {
		*c = v
		return nil
	}
	*c = ConfidenceUnknown
	return nil
}

// ConfidenceMask is a bitmask of accepted Confidence values, used by
// processor.Options.ConfidenceFilter.
type ConfidenceMask int

const (
	ConfidenceMaskLow ConfidenceMask = 1 << iota
	ConfidenceMaskMedium
	ConfidenceMaskHigh
)

// DefaultConfidenceFilter accepts High and Medium confidence patterns.
const DefaultConfidenceFilter = ConfidenceMaskHigh | ConfidenceMaskMedium

// Allows reports whether the mask accepts the given confidence.
func (m ConfidenceMask) Allows(c Confidence) bool {
	switch c {
	case ConfidenceLow:
		return m&ConfidenceMaskLow != 0
	case ConfidenceMedium:
		return m&ConfidenceMaskMedium != 0
	case ConfidenceHigh:
		return m&ConfidenceMaskHigh != 0
	default:
		return false
	}
}

// Scope restricts where a pattern may match within a file.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeCode    Scope = "code"
	ScopeComment Scope = "comment"
)

// ScopeSet is an unordered set of Scope values, deserialized from a JSON
// array of strings. Unrecognized entries are dropped with no error (the
// containing field degrades to whatever scopes remain, or to {All} if
// the whole list is unrecognized).
type ScopeSet map[Scope]struct{}

func (s ScopeSet) Has(v Scope) bool {
	_, ok := s[v]
	return ok
}

// NewScopeSet builds a ScopeSet from the given scopes, defaulting to {All}
// when none are given, mirroring the compiler rule "Scopes = P.scopes ?? [All]".
func NewScopeSet(scopes ...Scope) ScopeSet {
	if len(scopes) == 0 {
		return ScopeSet{ScopeAll: {}}
	}
	out := make(ScopeSet, len(scopes))
	for _, sc := range scopes {
		out[sc] = struct{}{}
	}
	return out
}

func (s ScopeSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(s))
	for sc := range s {
		names = append(names, string(sc))
	}
	return json.Marshal(names)
}

func (s *ScopeSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ScopeSet, len(raw))
	for _, v := range raw {
		switch Scope(strings.ToLower(strings.TrimSpace(v))) {
		case ScopeAll:
			out[ScopeAll] = struct{}{}
		case ScopeCode:
			out[ScopeCode] = struct{}{}
		case ScopeComment:
			out[ScopeComment] = struct{}{}
		}
	}
	if len(out) == 0 {
		out[ScopeAll] = struct{}{}
	}
	*s = out
	return nil
}

// PatternType selects how SearchPattern.Pattern is matched.
type PatternType string

const (
	PatternString    PatternType = "string"
	PatternSubstring PatternType = "substring"
	PatternRegex     PatternType = "regex"
	PatternRegexWord PatternType = "regex-word"
)

func parsePatternType(raw string) (PatternType, bool) {
	switch PatternType(strings.ToLower(strings.TrimSpace(raw))) {
	case PatternString:
		return PatternString, true
	case PatternSubstring:
		return PatternSubstring, true
	case PatternRegex:
		return PatternRegex, true
	case PatternRegexWord:
		return PatternRegexWord, true
	default:
		return "", false
	}
}

// SearchIn selects the proximity relation a SearchCondition checks between
// its own captures and the parent rule's previously accumulated captures.
type SearchIn struct {
	Kind   SearchInKind
	Before int // only meaningful for SearchInFindingRegion
	After  int // only meaningful for SearchInFindingRegion
}

type SearchInKind string

const (
	SearchInFindingOnly   SearchInKind = "finding-only"
	SearchInFindingRegion SearchInKind = "finding-region"
	SearchInSameLine      SearchInKind = "same-line"
	SearchInSameFile      SearchInKind = "same-file"
	SearchInOnlyBefore    SearchInKind = "only-before"
	SearchInOnlyAfter     SearchInKind = "only-after"
)

// ParseSearchIn parses the "search_in" string, including the
// "finding-region(N,M)" call form. An unrecognized value returns ok=false;
// the caller (the compiler) drops the condition with a warning.
func ParseSearchIn(raw string) (SearchIn, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SearchIn{Kind: SearchInFindingOnly}, true
	}
	if strings.HasPrefix(raw, "finding-region(") && strings.HasSuffix(raw, ")") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "finding-region("), ")")
		parts := strings.Split(inner, ",")
		if len(parts) != 2 {
			return SearchIn{}, false
		}
		var before, after int
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[0]), "%d", &before); err != nil {
			return SearchIn{}, false
		}
		if _, err := fmt.Sscanf(strings.TrimSpace(parts[1]), "%d", &after); err != nil {
			return SearchIn{}, false
		}
		return SearchIn{Kind: SearchInFindingRegion, Before: before, After: after}, true
	}
	switch SearchInKind(strings.ToLower(raw)) {
	case SearchInFindingOnly, SearchInSameLine, SearchInSameFile, SearchInOnlyBefore, SearchInOnlyAfter:
		return SearchIn{Kind: SearchInKind(strings.ToLower(raw))}, true
	default:
		return SearchIn{}, false
	}
}

// SearchPattern is one matcher inside a Rule.
type SearchPattern struct {
	Pattern    string      `json:"pattern"`
	Type       PatternType `json:"type"`
	Confidence Confidence  `json:"confidence"`
	Scopes     ScopeSet    `json:"scopes"`
	Modifiers  []string    `json:"modifiers"`
	XPaths     []string    `json:"xpaths"`
	JSONPaths  []string    `json:"jsonpaths"`
}

// HasModifier reports whether the named single-letter modifier ("i", "m")
// is present.
func (p SearchPattern) HasModifier(m string) bool {
	for _, v := range p.Modifiers {
		if v == m {
			return true
		}
	}
	return false
}

// SearchCondition gates a rule by the presence/absence of another pattern
// near a candidate match.
type SearchCondition struct {
	Pattern        SearchPattern `json:"pattern"`
	SearchIn       string        `json:"search_in"`
	NegateFinding  bool          `json:"negate_finding"`
}

// Rule is a named, tagged match intent compiled into a clause tree by the
// compiler package.
type Rule struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Tags               []string          `json:"tags"`
	Severity           Severity          `json:"severity"`
	AppliesTo          []string          `json:"applies_to"`
	AppliesToFileRegex []string          `json:"applies_to_file_regex"`
	Patterns           []SearchPattern   `json:"patterns"`
	Conditions         []SearchCondition `json:"conditions"`
}

// IsUniversal reports whether the rule has neither language nor filename
// restrictions.
func (r Rule) IsUniversal() bool {
	return len(r.AppliesTo) == 0 && len(r.AppliesToFileRegex) == 0
}

// AppliesToLanguage reports whether the rule names the given language, or
// is universal with respect to language.
func (r Rule) AppliesToLanguage(name string) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}
	for _, l := range r.AppliesTo {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}

// Boundary is a half-open region of a file: [Index, Index+Length).
type Boundary struct {
	Index  int
	Length int
}

// End returns the exclusive end offset of the boundary.
func (b Boundary) End() int {
	return b.Index + b.Length
}

// Overlaps reports whether two boundaries share any offset.
func (b Boundary) Overlaps(o Boundary) bool {
	return b.Index < o.End() && o.Index < b.End()
}

// Location is a 1-indexed line/column position.
type Location struct {
	Line   int
	Column int
}

// MatchRecord is one reported finding.
type MatchRecord struct {
	FilePath     string
	Language     string
	Boundary     Boundary
	Start        Location
	End          Location
	RuleID       string
	RuleName     string
	Description  string
	Pattern      string
	PatternType  PatternType
	Confidence   Confidence
	Severity     Severity
	Tags         []string
	Sample       string
	Excerpt      string
}
