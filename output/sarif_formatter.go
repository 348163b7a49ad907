package output

import (
	"encoding/json"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/lumenscan/lumenscan/rules"
)

// SARIFFormatter renders matches as a SARIF 2.1.0 report.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter writes to stdout.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{writer: os.Stdout}
}

// NewSARIFFormatterWithWriter writes to w (for testing).
func NewSARIFFormatterWithWriter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// Format writes every match as a SARIF run with one rule per unique rule ID.
func (f *SARIFFormatter) Format(matches []rules.MatchRecord) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("lumenscan", "https://github.com/lumenscan/lumenscan")

	f.buildRules(matches, run)
	for _, m := range matches {
		f.buildResult(m, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRules(matches []rules.MatchRecord, run *sarif.Run) {
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.RuleID] {
			continue
		}
		seen[m.RuleID] = true

		sarifRule := run.AddRule(m.RuleID).
			WithDescription(m.Description).
			WithName(m.RuleName)

		level := severityToLevel(m.Severity)
		sarifRule.WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level))
		sarifRule.WithProperties(buildRuleProperties(m))
	}
}

func severityToLevel(severity rules.Severity) string {
	switch severity {
	case rules.SeverityCritical, rules.SeverityImportant:
		return "error"
	case rules.SeverityModerate:
		return "warning"
	case rules.SeverityBestPractice, rules.SeverityManualReview:
		return "note"
	default:
		return "warning"
	}
}

func severityToScore(severity rules.Severity) string {
	switch severity {
	case rules.SeverityCritical:
		return "9.0"
	case rules.SeverityImportant:
		return "7.0"
	case rules.SeverityModerate:
		return "5.0"
	default:
		return "3.0"
	}
}

func buildRuleProperties(m rules.MatchRecord) map[string]interface{} {
	props := make(map[string]interface{})
	if len(m.Tags) > 0 {
		props["tags"] = m.Tags
	}
	props["security-severity"] = severityToScore(m.Severity)
	props["precision"] = confidenceToPrecision(m.Confidence)
	return props
}

func confidenceToPrecision(c rules.Confidence) string {
	switch c.String() {
	case "high":
		return "high"
	case "medium":
		return "medium"
	default:
		return "low"
	}
}

func (f *SARIFFormatter) buildResult(m rules.MatchRecord, run *sarif.Run) {
	result := run.CreateResultForRule(m.RuleID).
		WithMessage(sarif.NewTextMessage(m.Description))

	region := sarif.NewRegion().WithStartLine(m.Start.Line)
	if m.Start.Column > 0 {
		region.WithStartColumn(m.Start.Column)
	}

	location := sarif.NewLocation().
		WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(m.FilePath)).
				WithRegion(region),
		)

	result.AddLocation(location)
}
