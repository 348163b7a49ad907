// Package textcontainer provides a language-aware indexed view of a source
// file: a line index built in one pass over the content, plus a memoized
// commented-state map that answers "is this offset inside a comment?".
package textcontainer

import (
	"strings"
	"sync"

	"github.com/lumenscan/lumenscan/lang"
	"github.com/lumenscan/lumenscan/rules"
)

// Container owns the full content of one file and answers location/scope
// queries against it. It is constructed once per file and is safe for
// concurrent reads; its only mutable state, the commented-state map, is
// guarded by a mutex and monotone-populated (entries never change once
// written).
type Container struct {
	content string
	lang    lang.Info

	// lineStarts/lineEnds are 1-indexed; slot 0 is a sentinel 0, matching
	// the construction rule in the component design.
	lineStarts []int
	lineEnds   []int

	mu              sync.Mutex
	commentedStates map[int]bool
}

// New builds a Container from file content and a language name. The name is
// not looked up in the registry, so the container has no comment delimiters
// for any language (everything is code); NewWithInfo takes resolved
// metadata that carries the delimiters.
func New(content string, languageName string) *Container {
	return NewWithInfo(content, lang.Info{Name: languageName})
}

// NewWithInfo builds a Container when the caller already has resolved
// language metadata (e.g. from lang.FromFileName).
func NewWithInfo(content string, info lang.Info) *Container {
	c := &Container{
		content:         content,
		lang:            info,
		commentedStates: make(map[int]bool),
	}
	c.buildLineIndex()
	return c
}

func (c *Container) buildLineIndex() {
	// Slot 0 is a sentinel per the component design.
	c.lineStarts = []int{0}
	c.lineEnds = []int{0}

	length := len(c.content)
	if length == 0 {
		return
	}

	// Line 1 always starts at offset 0.
	c.lineStarts = append(c.lineStarts, 0)

	for p := 0; p < length; p++ {
		if c.content[p] == '\n' {
			c.lineEnds = append(c.lineEnds, p)
			if p+1 < length {
				c.lineStarts = append(c.lineStarts, p+1)
			}
		}
	}
	if c.content[length-1] != '\n' {
		c.lineEnds = append(c.lineEnds, length-1)
	}
}

// Content returns the full file content.
func (c *Container) Content() string {
	return c.content
}

// Len returns the length of the content in bytes.
func (c *Container) Len() int {
	return len(c.content)
}

// Language returns the resolved language metadata for this file.
func (c *Container) Language() lang.Info {
	return c.lang
}

// lineIndexFor returns the smallest i with lineEnds[i] >= index (the
// component design's shared lookup used by GetLineBoundary and GetLocation).
func (c *Container) lineIndexFor(index int) int {
	for i := 1; i < len(c.lineEnds); i++ {
		if c.lineEnds[i] >= index {
			return i
		}
	}
	if len(c.lineEnds) > 1 {
		return len(c.lineEnds) - 1
	}
	return 0
}

// GetLineBoundary returns the Boundary of the line containing index.
func (c *Container) GetLineBoundary(index int) rules.Boundary {
	i := c.lineIndexFor(index)
	if i == 0 {
		return rules.Boundary{Index: 0, Length: 0}
	}
	start := c.lineStarts[i]
	end := c.lineEnds[i]
	return rules.Boundary{Index: start, Length: end - start + 1}
}

// GetLineContent returns the text of the given 1-indexed line, including its
// trailing newline when it has one, clamped to the last line when out of
// range.
func (c *Container) GetLineContent(line int) string {
	if line < 1 {
		line = 1
	}
	if line >= len(c.lineEnds) {
		line = len(c.lineEnds) - 1
	}
	if line <= 0 {
		return ""
	}
	start := c.lineStarts[line]
	end := c.lineEnds[line]
	if start > len(c.content) {
		return ""
	}
	if end+1 > len(c.content) {
		end = len(c.content) - 1
	}
	if end < start {
		return ""
	}
	return c.content[start : end+1]
}

// GetLocation converts a byte offset to a 1-indexed line/column.
func (c *Container) GetLocation(index int) rules.Location {
	if index < 0 {
		index = 0
	}
	i := c.lineIndexFor(index)
	if i == 0 {
		return rules.Location{Line: 1, Column: 1}
	}
	col := index - c.lineStarts[i] + 1
	if col < 1 {
		col = 1
	}
	return rules.Location{Line: i, Column: col}
}

// GetBoundaryText returns the substring described by b, clamped to content
// length.
func (c *Container) GetBoundaryText(b rules.Boundary) string {
	start := b.Index
	end := b.Index + b.Length
	if start < 0 {
		start = 0
	}
	if end > len(c.content) {
		end = len(c.content)
	}
	if start > len(c.content) || end < start {
		return ""
	}
	return c.content[start:end]
}

// IsCommented reports whether offset index lies inside a comment, running
// the commented-state algorithm on first query and caching the result for
// every offset it resolves along the way.
func (c *Container) IsCommented(index int) bool {
	clamped := index
	if clamped < 0 {
		clamped = 0
	}
	if len(c.content) == 0 {
		return false
	}
	if clamped >= len(c.content) {
		clamped = len(c.content) - 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.commentedStates[clamped]; ok {
		if clamped != index {
			c.commentedStates[index] = v
		}
		return v
	}

	v := c.computeCommentedState(clamped)
	if clamped != index {
		c.commentedStates[index] = v
	}
	return v
}

// computeCommentedState implements the commented-state algorithm from the
// component design. Must be called with mu held.
func (c *Container) computeCommentedState(q int) bool {
	// A language may define both a block-comment pair and an inline marker
	// (e.g. "/*"/"*/" and "//"). The marker whose opening is nearest to (but
	// not after) q is the one actually in effect at q, so both candidates
	// are found and the closer one wins rather than always preferring the
	// block form.
	pMulti, okMulti := -1, false
	if c.lang.HasMultiLineComment() {
		pMulti, okMulti = c.rfindFrom(q, c.lang.CommentPrefix)
	}
	pInline, okInline := -1, false
	if c.lang.HasInlineComment() {
		pInline, okInline = c.rfindFrom(q, c.lang.InlineComment)
		// An inline marker inside a quoted string on its line (the "//" of
		// "https://...") does not open a comment; look further back.
		for okInline {
			quote := byte(0)
			for i := strings.LastIndexByte(c.content[:pInline], '\n') + 1; i < pInline; i++ {
				if ch := c.content[i]; quote == 0 && (ch == '"' || ch == '\'') {
					quote = ch
				} else if ch == quote {
					quote = 0
				}
			}
			if quote == 0 {
				break
			}
			pInline, okInline = c.rfindFrom(pInline-1, c.lang.InlineComment)
		}
	}

	switch {
	case okMulti && (!okInline || pMulti >= pInline):
		if _, already := c.commentedStates[pMulti]; !already {
			s := c.findFrom(pMulti, c.lang.CommentSuffix)
			if s < 0 {
				s = len(c.content) - 1
			} else {
				s = s + len(c.lang.CommentSuffix) - 1
				if s >= len(c.content) {
					s = len(c.content) - 1
				}
			}
			c.markRange(pMulti, s, true)
		}
	case okInline:
		if _, already := c.commentedStates[pInline]; !already {
			n := strings.IndexByte(c.content[pInline:], '\n')
			if n < 0 {
				n = len(c.content) - 1
			} else {
				n = pInline + n
			}
			c.markRange(pInline, n, true)
		}
	}

	// Back-fill: walk backwards from q, marking false until we hit a
	// previously-marked offset.
	for i := q; i >= 0; i-- {
		if _, ok := c.commentedStates[i]; ok {
			break
		}
		c.commentedStates[i] = false
	}

	return c.commentedStates[q]
}

// markRange marks every offset in [p, s] as commented, without overwriting
// entries already present (monotone-populated map).
func (c *Container) markRange(p, s int, v bool) {
	for i := p; i <= s; i++ {
		if _, ok := c.commentedStates[i]; !ok {
			c.commentedStates[i] = v
		}
	}
}

// rfindFrom finds the greatest p <= q such that content[p:] starts with marker.
func (c *Container) rfindFrom(q int, marker string) (int, bool) {
	if marker == "" {
		return 0, false
	}
	limit := q
	if limit > len(c.content)-1 {
		limit = len(c.content) - 1
	}
	for p := limit; p >= 0; p-- {
		if strings.HasPrefix(c.content[p:], marker) {
			return p, true
		}
	}
	return 0, false
}

// findFrom finds the least s >= p such that content[s:] starts with marker,
// or -1 if not found.
func (c *Container) findFrom(p int, marker string) int {
	if marker == "" {
		return -1
	}
	idx := strings.Index(c.content[p:], marker)
	if idx < 0 {
		return -1
	}
	return p + idx
}

// ScopeMatch reports whether a boundary qualifies under the given scope
// set: any scope set containing All, or a language without comment syntax
// at all, always matches; otherwise the boundary's start offset is checked
// against IsCommented.
func (c *Container) ScopeMatch(scopes rules.ScopeSet, b rules.Boundary) bool {
	if scopes.Has(rules.ScopeAll) || !c.lang.HasComments() {
		return true
	}
	inComment := c.IsCommented(b.Index)
	if inComment {
		return scopes.Has(rules.ScopeComment)
	}
	return scopes.Has(rules.ScopeCode)
}
