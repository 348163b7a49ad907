package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Violation records a rule or clause that failed validation during catalog
// loading or compilation. The offending clause or file regex is left out and
// the rule itself stays in the catalog; violations never abort a load that
// otherwise parsed as valid JSON.
type Violation struct {
	RuleID string
	Clause string
	Reason string
}

func (v Violation) String() string {
	if v.Clause != "" {
		return fmt.Sprintf("rule %s, clause %s: %s", v.RuleID, v.Clause, v.Reason)
	}
	return fmt.Sprintf("rule %s: %s", v.RuleID, v.Reason)
}

// Catalog is an immutable, loaded set of rules, indexed for the processor's
// by_language/by_filename/universal_rules lookups.
type Catalog struct {
	rules      []Rule
	byLanguage map[string][]Rule
	byFileRx   []fileRegexRule
	universal  []Rule
}

type fileRegexRule struct {
	re   *regexp.Regexp
	rule Rule
}

// LoadRulesFromString parses a JSON rule array. A malformed document fails
// the call outright with no partial catalog.
func LoadRulesFromString(source string) (*Catalog, []Violation, error) {
	var raw []Rule
	if err := json.Unmarshal([]byte(source), &raw); err != nil {
		return nil, nil, fmt.Errorf("lumenscan/rules: parse rule catalog: %w", err)
	}
	return buildCatalog(raw)
}

// LoadRulesFromFile loads a single JSON rule file.
func LoadRulesFromFile(path string) (*Catalog, []Violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lumenscan/rules: read %s: %w", path, err)
	}
	return LoadRulesFromString(string(data))
}

// LoadRulesFromDirectory loads and concatenates every "*.json" rule file
// found directly under dir (non-recursive), in lexical file-name order for
// deterministic catalog ordering.
func LoadRulesFromDirectory(dir string) (*Catalog, []Violation, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("lumenscan/rules: read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	var all []Rule
	var violations []Violation
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, nil, fmt.Errorf("lumenscan/rules: read %s: %w", name, err)
		}
		var raw []Rule
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("lumenscan/rules: parse %s: %w", name, err)
		}
		all = append(all, raw...)
	}
	cat, v, err := buildCatalog(all)
	violations = append(violations, v...)
	return cat, violations, err
}

func buildCatalog(raw []Rule) (*Catalog, []Violation, error) {
	cat := &Catalog{
		byLanguage: make(map[string][]Rule),
	}
	var violations []Violation

	for _, r := range raw {
		if len(r.Patterns) == 0 && len(r.Tags) == 0 {
			violations = append(violations, Violation{RuleID: r.ID, Reason: "rule has no patterns and no tags"})
		}
		cat.rules = append(cat.rules, r)

		if r.IsUniversal() {
			cat.universal = append(cat.universal, r)
		}
		for _, l := range r.AppliesTo {
			key := strings.ToLower(l)
			cat.byLanguage[key] = append(cat.byLanguage[key], r)
		}
		for _, pat := range r.AppliesToFileRegex {
			re, err := regexp.Compile(pat)
			if err != nil {
				violations = append(violations, Violation{RuleID: r.ID, Reason: fmt.Sprintf("invalid applies_to_file_regex %q: %v", pat, err)})
				continue
			}
			cat.byFileRx = append(cat.byFileRx, fileRegexRule{re: re, rule: r})
		}
	}

	return cat, violations, nil
}

// Rules returns every rule in catalog order, unfiltered.
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// UniversalRules returns rules with neither language nor filename
// restrictions.
func (c *Catalog) UniversalRules() []Rule {
	return c.universal
}

// ByLanguage returns rules whose applies_to names the given language.
func (c *Catalog) ByLanguage(language string) []Rule {
	return c.byLanguage[strings.ToLower(language)]
}

// ByFilename returns rules whose applies_to_file_regex matches the given
// file name (base name, not full path).
func (c *Catalog) ByFilename(name string) []Rule {
	base := filepath.Base(name)
	var out []Rule
	for _, fr := range c.byFileRx {
		if fr.re.MatchString(base) {
			out = append(out, fr.rule)
		}
	}
	return out
}

// SelectRules returns the deduplicated union of universal, by-language, and
// by-filename rules applicable to a file, preserving first-seen catalog
// order (spec §4.6 step 2).
func (c *Catalog) SelectRules(language, fileName string) []Rule {
	seen := make(map[string]bool)
	var out []Rule
	add := func(rs []Rule) {
		for _, r := range rs {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, r)
		}
	}
	add(c.UniversalRules())
	add(c.ByLanguage(language))
	add(c.ByFilename(fileName))
	return out
}
