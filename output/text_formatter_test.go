package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lumenscan/lumenscan/rules"
)

func TestTextFormatter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	tf := NewTextFormatterWithWriter(&buf)

	if err := tf.Format(nil, BuildSummary(nil, 0, 0, 0)); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "No matches found") {
		t.Errorf("expected no-findings message, got: %s", buf.String())
	}
}

func TestTextFormatter_DetailedCriticalFinding(t *testing.T) {
	var buf bytes.Buffer
	tf := NewTextFormatterWithWriter(&buf)

	matches := []rules.MatchRecord{sampleMatch()}
	summary := BuildSummary(matches, 1, 1, time.Second)

	if err := tf.Format(matches, summary); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Critical") {
		t.Errorf("expected severity group header, got: %s", out)
	}
	if !strings.Contains(out, "R1") {
		t.Errorf("expected rule ID in output, got: %s", out)
	}
	if !strings.Contains(out, "auth/login.go:20") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "1 findings across 1 rules in 1 files") {
		t.Errorf("expected summary line, got: %s", out)
	}
}

func TestTextFormatter_AbbreviatedForLowerSeverity(t *testing.T) {
	var buf bytes.Buffer
	tf := NewTextFormatterWithWriter(&buf)

	m := sampleMatch()
	m.Severity = rules.SeverityModerate
	matches := []rules.MatchRecord{m}
	summary := BuildSummary(matches, 1, 1, 0)

	if err := tf.Format(matches, summary); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "Confidence:") {
		t.Errorf("abbreviated findings should not include the detailed confidence line, got: %s", out)
	}
}
