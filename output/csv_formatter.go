package output

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/lumenscan/lumenscan/rules"
)

// CSVFormatter renders matches as CSV.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter writes to stdout.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{writer: os.Stdout}
}

// NewCSVFormatterWithWriter writes to w (for testing).
func NewCSVFormatterWithWriter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// CSVHeaders returns the CSV column headers.
func CSVHeaders() []string {
	return []string{
		"severity",
		"confidence",
		"rule_id",
		"rule_name",
		"tags",
		"file",
		"start_line",
		"start_column",
		"end_line",
		"end_column",
		"pattern_type",
		"pattern",
		"sample",
	}
}

// Format writes the header row followed by one row per match.
func (f *CSVFormatter) Format(matches []rules.MatchRecord) error {
	w := csv.NewWriter(f.writer)
	defer w.Flush()

	if err := w.Write(CSVHeaders()); err != nil {
		return err
	}
	for _, m := range matches {
		if err := w.Write(buildCSVRow(m)); err != nil {
			return err
		}
	}
	return w.Error()
}

func buildCSVRow(m rules.MatchRecord) []string {
	tags := ""
	for i, t := range m.Tags {
		if i > 0 {
			tags += ","
		}
		tags += t
	}
	return []string{
		m.Severity.String(),
		m.Confidence.String(),
		m.RuleID,
		m.RuleName,
		tags,
		m.FilePath,
		intToString(m.Start.Line),
		intToString(m.Start.Column),
		intToString(m.End.Line),
		intToString(m.End.Column),
		string(m.PatternType),
		m.Pattern,
		m.Sample,
	}
}

func intToString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
