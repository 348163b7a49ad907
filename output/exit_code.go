package output

import (
	"fmt"
	"strings"

	"github.com/lumenscan/lumenscan/rules"
)

// ExitCode is the process exit status for a completed scan.
type ExitCode int

const (
	ExitCodeSuccess  ExitCode = 0
	ExitCodeFindings ExitCode = 1
	ExitCodeError    ExitCode = 2
)

// InvalidSeverityError reports an unrecognized --fail-on severity name.
type InvalidSeverityError struct {
	Value string
}

func (e *InvalidSeverityError) Error() string {
	return fmt.Sprintf("invalid severity %q: must be one of critical, important, moderate, best-practice, manual-review", e.Value)
}

var validSeverities = map[string]rules.Severity{
	"critical":      rules.SeverityCritical,
	"important":     rules.SeverityImportant,
	"moderate":      rules.SeverityModerate,
	"best-practice": rules.SeverityBestPractice,
	"manual-review": rules.SeverityManualReview,
}

// ParseFailOn splits a comma-separated --fail-on flag value into severities,
// lower-cased and trimmed. Unrecognized entries are kept as given rather
// than erroring here; ValidateSeverities should be called separately if the
// caller wants to reject a bad flag outright.
func ParseFailOn(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateSeverities reports an error naming the first entry that isn't one
// of the five recognized severity names.
func ValidateSeverities(severities []string) error {
	for _, s := range severities {
		if _, ok := validSeverities[strings.ToLower(strings.TrimSpace(s))]; !ok {
			return &InvalidSeverityError{Value: s}
		}
	}
	return nil
}

// DetermineExitCode picks the process exit status for a batch of matches.
// hadErrors (e.g. unreadable files, timed-out file analyses) always forces
// ExitCodeError regardless of findings. Otherwise, if failOn is non-empty,
// the run fails only when a match's severity is in that set; an empty
// failOn treats any match at all as a failing run.
func DetermineExitCode(matches []rules.MatchRecord, failOn []string, hadErrors bool) ExitCode {
	if hadErrors {
		return ExitCodeError
	}
	if len(matches) == 0 {
		return ExitCodeSuccess
	}
	if len(failOn) == 0 {
		return ExitCodeFindings
	}
	wanted := make(map[rules.Severity]bool, len(failOn))
	for _, name := range failOn {
		if sev, ok := validSeverities[strings.ToLower(strings.TrimSpace(name))]; ok {
			wanted[sev] = true
		}
	}
	for _, m := range matches {
		if wanted[m.Severity] {
			return ExitCodeFindings
		}
	}
	return ExitCodeSuccess
}
