package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lumenscan/lumenscan/rules"
)

// TextFormatter renders matches as human-readable text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter writes to stdout.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{writer: os.Stdout}
}

// NewTextFormatterWithWriter writes to w (for testing).
func NewTextFormatterWithWriter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

var severityOrder = []rules.Severity{
	rules.SeverityCritical,
	rules.SeverityImportant,
	rules.SeverityModerate,
	rules.SeverityBestPractice,
	rules.SeverityManualReview,
}

// detailedSeverities get a full excerpt; the rest get a single summary line.
var detailedSeverities = map[rules.Severity]bool{
	rules.SeverityCritical:  true,
	rules.SeverityImportant: true,
}

// Format writes the matches grouped by severity, followed by a summary.
func (f *TextFormatter) Format(matches []rules.MatchRecord, summary *Summary) error {
	if len(matches) == 0 {
		f.writeNoFindings()
		return nil
	}

	f.writeHeader()
	f.writeResults(matches)
	f.writeSummary(summary)
	return nil
}

func (f *TextFormatter) writeHeader() {
	fmt.Fprintln(f.writer, "lumenscan results")
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeNoFindings() {
	fmt.Fprintln(f.writer, "lumenscan results")
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "No matches found.")
}

func (f *TextFormatter) writeResults(matches []rules.MatchRecord) {
	fmt.Fprintln(f.writer, "Results:")
	fmt.Fprintln(f.writer)

	grouped := groupBySeverity(matches)
	for _, sev := range severityOrder {
		if group, ok := grouped[sev]; ok && len(group) > 0 {
			f.writeSeverityGroup(sev, group)
		}
	}
}

func groupBySeverity(matches []rules.MatchRecord) map[rules.Severity][]rules.MatchRecord {
	grouped := make(map[rules.Severity][]rules.MatchRecord)
	for _, m := range matches {
		grouped[m.Severity] = append(grouped[m.Severity], m)
	}
	return grouped
}

func (f *TextFormatter) writeSeverityGroup(severity rules.Severity, matches []rules.MatchRecord) {
	fmt.Fprintf(f.writer, "%s (%d):\n", strings.Title(severity.String()), len(matches))
	fmt.Fprintln(f.writer)

	showDetailed := detailedSeverities[severity]
	for _, m := range matches {
		if showDetailed {
			f.writeDetailedMatch(m)
		} else {
			f.writeAbbreviatedMatch(m)
		}
	}
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeDetailedMatch(m rules.MatchRecord) {
	fmt.Fprintf(f.writer, "  [%s] %s: %s\n", m.Severity, m.RuleID, m.RuleName)
	if len(m.Tags) > 0 {
		fmt.Fprintf(f.writer, "    %s\n", strings.Join(m.Tags, " | "))
	}
	fmt.Fprintln(f.writer)

	fmt.Fprintf(f.writer, "    %s\n", formatLocation(m))
	if m.Excerpt != "" {
		f.writeExcerpt(m.Excerpt, m.Start.Line)
	}
	fmt.Fprintln(f.writer)

	fmt.Fprintf(f.writer, "    Confidence: %s | Pattern: %s\n", strings.Title(m.Confidence.String()), m.PatternType)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeAbbreviatedMatch(m rules.MatchRecord) {
	fmt.Fprintf(f.writer, "  [%s] %s: %s\n", m.Severity, m.RuleID, formatLocation(m))
}

func formatLocation(m rules.MatchRecord) string {
	if m.Start.Line > 0 {
		return fmt.Sprintf("%s:%d", m.FilePath, m.Start.Line)
	}
	return m.FilePath
}

func (f *TextFormatter) writeExcerpt(excerpt string, startLine int) {
	lines := strings.Split(excerpt, "\n")
	first := startLine - (len(lines) / 2)
	if first < 1 {
		first = 1
	}
	maxLineNum := first + len(lines) - 1
	lineWidth := len(fmt.Sprintf("%d", maxLineNum))

	for i, line := range lines {
		marker := " "
		number := first + i
		if number == startLine {
			marker = ">"
		}
		fmt.Fprintf(f.writer, "      %s %*d | %s\n", marker, lineWidth, number, line)
	}
}

func (f *TextFormatter) writeSummary(summary *Summary) {
	fmt.Fprintln(f.writer, "Summary:")
	fmt.Fprintf(f.writer, "  %d findings across %d rules in %d files\n",
		summary.TotalFindings, summary.RulesExecuted, summary.FilesScanned)

	var parts []string
	for _, sev := range severityOrder {
		if count, ok := summary.BySeverity[sev.String()]; ok && count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, sev))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(f.writer, "  %s\n", strings.Join(parts, " | "))
	}
	fmt.Fprintln(f.writer)
}
