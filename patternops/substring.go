// Package patternops implements the pattern operators that turn a compiled
// clause into a set of (pattern_index, boundary) captures: SubstringIndex,
// RegexWithIndex, the Within condition operator, and JSONPath/XPath
// pre-projection.
package patternops

import (
	"strconv"
	"strings"

	"github.com/lumenscan/lumenscan/compiler"
	"github.com/lumenscan/lumenscan/rules"
)

// Capture is one (pattern_index, boundary) hit produced by a clause.
type Capture struct {
	PatternIndex int
	Boundary     rules.Boundary
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// SubstringIndex finds every occurrence of clause.Data in content, honoring
// case-insensitivity ("i" modifier) and, when UseWordBoundaries is set,
// requiring both edges of the match to be at a file boundary or adjacent to
// a non-word byte.
func SubstringIndex(content string, c *compiler.Clause, restrictTo []rules.Boundary) []Capture {
	labelIdx, err := strconv.Atoi(c.Label)
	if err != nil {
		labelIdx = 0
	}

	caseInsensitive := c.HasModifier("i")
	haystack := content
	if caseInsensitive {
		haystack = strings.ToLower(content)
	}

	var out []Capture
	for _, needle := range c.Data {
		if needle == "" {
			continue
		}
		query := needle
		if caseInsensitive {
			query = strings.ToLower(needle)
		}
		searchSpaces := restrictSpaces(haystack, restrictTo)
		for _, space := range searchSpaces {
			offset := 0
			for {
				idx := strings.Index(space.text[offset:], query)
				if idx < 0 {
					break
				}
				abs := space.base + offset + idx
				if !c.UseWordBoundaries || isWordBoundaryMatch(haystack, abs, len(needle)) {
					out = append(out, Capture{PatternIndex: labelIdx, Boundary: rules.Boundary{Index: abs, Length: len(needle)}})
				}
				offset += idx + 1
				if offset >= len(space.text) {
					break
				}
			}
		}
	}
	return out
}

func isWordBoundaryMatch(content string, start, length int) bool {
	if start > 0 && isWordByte(content[start-1]) {
		return false
	}
	end := start + length
	if end < len(content) && isWordByte(content[end]) {
		return false
	}
	return true
}

type searchSpace struct {
	text string
	base int
}

// restrictSpaces returns the substrings to search: the whole content when no
// JSONPath/XPath pre-projection narrowed the search, or the text at each
// projected boundary otherwise.
func restrictSpaces(content string, restrictTo []rules.Boundary) []searchSpace {
	if len(restrictTo) == 0 {
		return []searchSpace{{text: content, base: 0}}
	}
	out := make([]searchSpace, 0, len(restrictTo))
	for _, b := range restrictTo {
		end := b.Index + b.Length
		if end > len(content) {
			end = len(content)
		}
		if b.Index < 0 || b.Index > end {
			continue
		}
		out = append(out, searchSpace{text: content[b.Index:end], base: b.Index})
	}
	return out
}
