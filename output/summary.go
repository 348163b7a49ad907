package output

import (
	"time"

	"github.com/lumenscan/lumenscan/rules"
)

// Summary aggregates a completed run's matches into counts used by both the
// text and JSON formatters.
type Summary struct {
	TotalFindings   int
	RulesExecuted   int
	BySeverity      map[string]int
	ByPatternType   map[string]int
	FilesScanned    int
	Duration        time.Duration
}

// BuildSummary tallies matches by severity and pattern type. filesScanned
// and rulesExecuted come from the caller since neither is derivable from
// the match list alone (a file or rule contributing zero matches still
// counts).
func BuildSummary(matches []rules.MatchRecord, rulesExecuted, filesScanned int, duration time.Duration) *Summary {
	s := &Summary{
		RulesExecuted: rulesExecuted,
		FilesScanned:  filesScanned,
		Duration:      duration,
		BySeverity:    make(map[string]int),
		ByPatternType: make(map[string]int),
	}
	for _, m := range matches {
		s.TotalFindings++
		s.BySeverity[m.Severity.String()]++
		s.ByPatternType[string(m.PatternType)]++
	}
	return s
}

// ScanInfo describes the run that produced a set of matches, for formatters
// that embed run metadata (JSON) in their output.
type ScanInfo struct {
	Target        string
	Version       string
	Duration      time.Duration
	RulesExecuted int
	Errors        []string
}
