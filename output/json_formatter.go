package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/lumenscan/lumenscan/rules"
)

// JSONFormatter renders matches as a single structured JSON document.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter writes to stdout.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{writer: os.Stdout}
}

// NewJSONFormatterWithWriter writes to w (for testing).
func NewJSONFormatterWithWriter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// JSONOutput is the top-level document produced by Format.
type JSONOutput struct {
	Tool    JSONTool    `json:"tool"`
	Scan    JSONScan    `json:"scan"`
	Results []JSONResult `json:"results"`
	Summary JSONSummary `json:"summary"`
}

type JSONTool struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type JSONScan struct {
	Target        string   `json:"target"`
	DurationMS    int64    `json:"duration_ms"`
	RulesExecuted int      `json:"rules_executed"`
	FilesScanned  int      `json:"files_scanned"`
	Errors        []string `json:"errors,omitempty"`
}

type JSONLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type JSONResult struct {
	RuleID      string       `json:"rule_id"`
	RuleName    string       `json:"rule_name"`
	Description string       `json:"description"`
	Severity    string       `json:"severity"`
	Confidence  string       `json:"confidence"`
	Tags        []string     `json:"tags,omitempty"`
	Language    string       `json:"language"`
	PatternType string       `json:"pattern_type"`
	Pattern     string       `json:"pattern"`
	Start       JSONLocation `json:"start"`
	End         JSONLocation `json:"end"`
	Sample      string       `json:"sample"`
	Excerpt     string       `json:"excerpt,omitempty"`
}

type JSONSummary struct {
	TotalFindings int            `json:"total_findings"`
	BySeverity    map[string]int `json:"by_severity"`
	ByPatternType map[string]int `json:"by_pattern_type"`
}

// Format writes matches, summary and scan metadata as one indented JSON
// document to the formatter's writer.
func (f *JSONFormatter) Format(matches []rules.MatchRecord, summary *Summary, scanInfo ScanInfo) error {
	out := JSONOutput{
		Tool: JSONTool{Name: "lumenscan", Version: scanInfo.Version},
		Scan: JSONScan{
			Target:        scanInfo.Target,
			DurationMS:    scanInfo.Duration.Milliseconds(),
			RulesExecuted: scanInfo.RulesExecuted,
			FilesScanned:  summary.FilesScanned,
			Errors:        scanInfo.Errors,
		},
		Results: make([]JSONResult, 0, len(matches)),
		Summary: JSONSummary{
			TotalFindings: summary.TotalFindings,
			BySeverity:    summary.BySeverity,
			ByPatternType: summary.ByPatternType,
		},
	}

	for _, m := range matches {
		out.Results = append(out.Results, JSONResult{
			RuleID:      m.RuleID,
			RuleName:    m.RuleName,
			Description: m.Description,
			Severity:    m.Severity.String(),
			Confidence:  m.Confidence.String(),
			Tags:        m.Tags,
			Language:    m.Language,
			PatternType: string(m.PatternType),
			Pattern:     m.Pattern,
			Start:       JSONLocation{File: m.FilePath, Line: m.Start.Line, Column: m.Start.Column},
			End:         JSONLocation{File: m.FilePath, Line: m.End.Line, Column: m.End.Column},
			Sample:      m.Sample,
			Excerpt:     m.Excerpt,
		})
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
