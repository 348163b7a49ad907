package textcontainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenscan/lumenscan/lang"
	"github.com/lumenscan/lumenscan/rules"
)

func goInfo() lang.Info {
	return lang.Info{Name: "go", CommentPrefix: "/*", CommentSuffix: "*/", InlineComment: "//", FileType: lang.FileTypeCode}
}

func TestContainer_EmptyContent(t *testing.T) {
	c := NewWithInfo("", goInfo())
	assert.Equal(t, 0, c.Len())
	loc := c.GetLocation(0)
	assert.Equal(t, rules.Location{Line: 1, Column: 1}, loc)
	assert.False(t, c.IsCommented(0))
}

func TestContainer_NoTrailingNewline(t *testing.T) {
	content := "line one\nline two"
	c := NewWithInfo(content, goInfo())
	assert.Equal(t, len(content)-1, c.lineEnds[len(c.lineEnds)-1])
}

func TestContainer_GetLineContent(t *testing.T) {
	content := "alpha\nbeta\ngamma\n"
	c := NewWithInfo(content, goInfo())

	assert.Equal(t, "alpha\n", c.GetLineContent(1))
	assert.Equal(t, "beta\n", c.GetLineContent(2))
	assert.Equal(t, "gamma\n", c.GetLineContent(3))
	// out of range clamps to the last line
	assert.Equal(t, "gamma\n", c.GetLineContent(99))
}

func TestContainer_GetLocation(t *testing.T) {
	content := "abc\ndef\nghi"
	c := NewWithInfo(content, goInfo())

	loc := c.GetLocation(0)
	assert.Equal(t, rules.Location{Line: 1, Column: 1}, loc)

	loc = c.GetLocation(4) // 'd' at start of line 2
	assert.Equal(t, rules.Location{Line: 2, Column: 1}, loc)

	loc = c.GetLocation(9) // 'h' in "ghi"
	assert.Equal(t, rules.Location{Line: 3, Column: 2}, loc)
}

func TestContainer_GetBoundaryText(t *testing.T) {
	content := "hello world"
	c := NewWithInfo(content, goInfo())
	text := c.GetBoundaryText(rules.Boundary{Index: 6, Length: 5})
	assert.Equal(t, "world", text)

	// clamped beyond content length
	text = c.GetBoundaryText(rules.Boundary{Index: 6, Length: 999})
	assert.Equal(t, "world", text)
}

// S1 — comment scope exclusion, per the end-to-end scenario. A rule with
// scope=code counts only the occurrences of "contoso.com" lying outside a
// comment.
func TestContainer_ScopeMatch_S1(t *testing.T) {
	info := goInfo()

	cases := []struct {
		name          string
		content       string
		wantCodeCount int
	}{
		{"inline code followed by inline comment", `var url = "https://contoso.com"; // contoso.com`, 1},
		{"single-quoted code then inline comment", `var url = 'https://contoso.com'; // contoso.com`, 1},
		{"block comment only", `/* https://contoso.com */`, 0},
		{"block comment then code", `/* contoso.com */ var url = "https://contoso.com"`, 1},
		{"inline comment only", `// var url = 'https://contoso.com';`, 0},
	}

	scopeCode := rules.NewScopeSet(rules.ScopeCode)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewWithInfo(tc.content, info)
			occurrences := indexesOf(tc.content, "contoso.com")
			require.NotEmpty(t, occurrences)

			count := 0
			for _, idx := range occurrences {
				b := rules.Boundary{Index: idx, Length: len("contoso.com")}
				if c.ScopeMatch(scopeCode, b) {
					count++
				}
			}
			assert.Equal(t, tc.wantCodeCount, count)
		})
	}
}

func indexesOf(s, substr string) []int {
	var out []int
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			out = append(out, i)
		}
	}
	return out
}

func TestContainer_ScopeMatch_AllScopeAlwaysAccepts(t *testing.T) {
	c := NewWithInfo("/* comment */ code", goInfo())
	b := rules.Boundary{Index: 2, Length: 1}
	assert.True(t, c.ScopeMatch(rules.NewScopeSet(rules.ScopeAll), b))
}

func TestContainer_ScopeMatch_LanguageWithoutComments(t *testing.T) {
	c := NewWithInfo("no comments here", lang.Info{Name: "plain"})
	b := rules.Boundary{Index: 0, Length: 2}
	assert.True(t, c.ScopeMatch(rules.NewScopeSet(rules.ScopeCode), b))
}

func TestContainer_IsCommented_Deterministic(t *testing.T) {
	c := NewWithInfo(`/* a */ code // trailing`, goInfo())
	first := c.IsCommented(2)
	second := c.IsCommented(2)
	assert.Equal(t, first, second)
}

func TestContainer_IsCommented_BackfillsUncommentedOffsets(t *testing.T) {
	content := "plain code /* later comment */"
	c := NewWithInfo(content, goInfo())
	// Offset 0 is before any comment marker; the back-fill walk should mark it false.
	assert.False(t, c.IsCommented(0))
}
