// Package processor orchestrates rule selection, clause evaluation, and
// MatchRecord extraction for one file at a time: confidence filtering,
// tag-witness de-dup, excerpt/sample extraction, and overlap resolution.
package processor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/evaluator"
	"github.com/lumenscan/lumenscan/lang"
	"github.com/lumenscan/lumenscan/patternops"
	"github.com/lumenscan/lumenscan/rules"
	"github.com/lumenscan/lumenscan/textcontainer"
)

// Logger is the minimal interface the processor passes on to the compiler
// and the regex cache for their warnings; compile violations are collected
// in Processor.Violations. Satisfied by *output.Logger.
type Logger interface {
	Warning(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warning(format string, args ...interface{}) {}

// Processor compiles a rule catalog once and evaluates it against any number
// of files. A Processor is safe for concurrent use: the compiled clause
// trees and the regex cache are read-only/locked, and each AnalyzeFile call
// builds its own TextContainer.
type Processor struct {
	catalog    *rules.Catalog
	compiled   map[string]compiler.CompiledRule
	regexCache *patternops.RegexCache
	logger     Logger
	Violations []rules.Violation
}

// New compiles every rule in catalog up front (rule compilation is
// single-threaded and one-shot, per the concurrency model) and returns a
// Processor ready for repeated AnalyzeFile calls.
func New(catalog *rules.Catalog, logger Logger) *Processor {
	if logger == nil {
		logger = noopLogger{}
	}
	p := &Processor{
		catalog:    catalog,
		compiled:   make(map[string]compiler.CompiledRule),
		regexCache: patternops.NewRegexCache(logger),
		logger:     logger,
	}
	for _, r := range catalog.Rules() {
		cr, violations := compiler.Compile(r, logger)
		p.compiled[r.ID] = cr
		p.Violations = append(p.Violations, violations...)
	}
	return p
}

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Matches []rules.MatchRecord
	Code    ResultCode
}

// scopeOverrideContainer forces ScopeMatch to always accept, implementing
// Options.TreatEverythingAsCode without teaching textcontainer about the
// processor's option set.
type scopeOverrideContainer struct {
	*textcontainer.Container
}

func (c scopeOverrideContainer) ScopeMatch(scopes rules.ScopeSet, b rules.Boundary) bool {
	return true
}

// AnalyzeFile runs every applicable rule against content, returning the
// MatchRecords that survive confidence filtering, tag-witness dedup, and
// per-rule overlap resolution. tagWitness may be nil to disable tag-only
// dedup entirely (the "allow_dup_tags" mode).
func (p *Processor) AnalyzeFile(ctx context.Context, content string, meta FileMetadata, info lang.Info, tagWitness *TagWitnessSet, opts Options) FileResult {
	container := textcontainer.NewWithInfo(content, info)
	var evalContainer evaluator.Container = container
	if opts.TreatEverythingAsCode {
		evalContainer = scopeOverrideContainer{container}
	}

	selected := p.catalog.SelectRules(info.Name, meta.Name)

	var deadline time.Time
	hasDeadline := opts.FileTimeoutMS > 0
	if hasDeadline {
		deadline = time.Now().Add(time.Duration(opts.FileTimeoutMS) * time.Millisecond)
	}

	bypassTagDedup := tagWitness == nil || (opts.AllowAllTagsInBuildFiles && info.FileType == lang.FileTypeBuild)

	var out []rules.MatchRecord
	for _, r := range selected {
		select {
		case <-ctx.Done():
			return FileResult{Matches: out, Code: Canceled}
		default:
		}
		if hasDeadline && time.Now().After(deadline) {
			return FileResult{Matches: out, Code: TimedOut}
		}

		cr, ok := p.compiled[r.ID]
		if !ok {
			continue
		}
		result := evaluator.Evaluate(p.regexCache, evalContainer, cr)
		if !result.Matched {
			continue
		}

		records := p.buildRecords(container, r, result.Captures, meta, info, opts, tagWitness, bypassTagDedup)
		records = resolveOverlap(records)

		out = append(out, records...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Boundary.Index != out[j].Boundary.Index {
			return out[i].Boundary.Index < out[j].Boundary.Index
		}
		return out[i].Boundary.Length < out[j].Boundary.Length
	})

	return FileResult{Matches: out, Code: Completed}
}

// buildRecords resolves each capture to a MatchRecord, applying the
// confidence filter, tag-witness dedup, and sample/excerpt extraction, in
// that order, per capture — matching "for each capture: ... drop by
// confidence ... drop by tag witness ... emit".
func (p *Processor) buildRecords(container *textcontainer.Container, r rules.Rule, captures []patternops.Capture, meta FileMetadata, info lang.Info, opts Options, tagWitness *TagWitnessSet, bypassTagDedup bool) []rules.MatchRecord {
	filter := opts.confidenceFilter()
	contextLines := opts.contextLines()

	var out []rules.MatchRecord
	for _, capt := range captures {
		if capt.PatternIndex < 0 || capt.PatternIndex >= len(r.Patterns) {
			continue
		}
		pattern := r.Patterns[capt.PatternIndex]
		if !filter.Allows(pattern.Confidence) {
			continue
		}
		if !bypassTagDedup {
			if witnessAllSeen(tagWitness, r.Tags, opts) {
				continue
			}
			markWitnessed(tagWitness, r.Tags, opts)
		}

		start := container.GetLocation(capt.Boundary.Index)
		end := container.GetLocation(capt.Boundary.End())

		sampleLen := capt.Boundary.Length
		if sampleLen > 200 {
			sampleLen = 200
		}
		sample := container.GetBoundaryText(rules.Boundary{Index: capt.Boundary.Index, Length: sampleLen})

		excerpt := ""
		if contextLines >= 0 {
			excerpt = extractExcerpt(container, start.Line, contextLines)
		}

		out = append(out, rules.MatchRecord{
			FilePath:    meta.Name,
			Language:    info.Name,
			Boundary:    capt.Boundary,
			Start:       start,
			End:         end,
			RuleID:      r.ID,
			RuleName:    r.Name,
			Description: r.Description,
			Pattern:     pattern.Pattern,
			PatternType: pattern.Type,
			Confidence:  pattern.Confidence,
			Severity:    r.Severity,
			Tags:        r.Tags,
			Sample:      sample,
			Excerpt:     excerpt,
		})
	}
	return out
}

// extractExcerpt returns contextLines lines on either side of startLine
// (inclusive of startLine), with common leading whitespace trimmed across
// the window.
func extractExcerpt(container *textcontainer.Container, startLine, contextLines int) string {
	first := startLine - contextLines
	if first < 1 {
		first = 1
	}
	last := startLine + contextLines

	var lines []string
	for line := first; line <= last; line++ {
		text := container.GetLineContent(line)
		if line > first && text == "" && container.GetLineContent(line-1) == "" {
			break
		}
		lines = append(lines, strings.TrimRight(text, "\r\n"))
	}
	return strings.Join(trimCommonIndent(lines), "\n")
}

// trimCommonIndent removes the longest whitespace prefix shared by every
// non-blank line in lines.
func trimCommonIndent(lines []string) []string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if common == -1 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= common {
			out[i] = l[common:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

// witnessAllSeen reports whether every tag of a rule already has a witness,
// meaning the capture being considered should be dropped. A rule with any
// exempt tag is never reported as all-seen, so its captures are kept.
func witnessAllSeen(tagWitness *TagWitnessSet, tags []string, opts Options) bool {
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if opts.exemptFromUniqueness(tag) {
			return false
		}
		if !tagWitness.has(tag) {
			return false
		}
	}
	return true
}

func markWitnessed(tagWitness *TagWitnessSet, tags []string, opts Options) {
	for _, tag := range tags {
		if opts.exemptFromUniqueness(tag) {
			continue
		}
		tagWitness.mark(tag)
	}
}

// resolveOverlap implements the overlap-resolution rule within one rule's
// captures: when two boundaries overlap, keep the one with greater length,
// ties broken by smaller index.
func resolveOverlap(records []rules.MatchRecord) []rules.MatchRecord {
	if len(records) < 2 {
		return records
	}
	ordered := make([]rules.MatchRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Boundary.Length != ordered[j].Boundary.Length {
			return ordered[i].Boundary.Length > ordered[j].Boundary.Length
		}
		return ordered[i].Boundary.Index < ordered[j].Boundary.Index
	})

	var kept []rules.MatchRecord
	for _, r := range ordered {
		overlaps := false
		for _, k := range kept {
			if r.Boundary.Overlaps(k.Boundary) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, r)
		}
	}
	return kept
}
