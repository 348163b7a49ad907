package patternops

import (
	"strconv"
	"strings"

	"github.com/antchfx/jsonquery"
	"github.com/antchfx/xmlquery"

	"github.com/lumenscan/lumenscan/rules"
)

// ProjectJSONPaths evaluates each JSONPath expression against content
// (parsed as JSON) and returns the Boundary of every selected node's
// literal text within content, located by string search per the
// component design ("determine the text's offset within the original
// content by matching the node's literal string"). A document that fails to
// parse yields zero boundaries (the pattern finds nothing in that file),
// never an error — pre-projection failures are local per §7.
//
// jsonquery is an XPath engine, not a JSONPath one, so each expression is
// translated via jsonPathToXPath before querying.
func ProjectJSONPaths(content string, expressions []string) []rules.Boundary {
	if len(expressions) == 0 {
		return nil
	}
	doc, err := jsonquery.Parse(strings.NewReader(content))
	if err != nil || doc == nil {
		return nil
	}

	var out []rules.Boundary
	for _, expr := range expressions {
		nodes, err := jsonquery.QueryAll(doc, jsonPathToXPath(expr))
		if err != nil {
			continue
		}
		for _, n := range nodes {
			text := n.InnerText()
			if b, ok := locateLiteral(content, text); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

// jsonPathToXPath translates a JSONPath expression into the XPath dialect
// jsonquery expects: object keys become named steps, "[*]" becomes an
// unnamed-node wildcard step ("/*", since jsonquery gives array items no
// name of their own), and a numeric index "[N]" becomes a 1-based position
// predicate on that wildcard ("/*[N+1]"). A leading "$" is stripped and
// "..foo" (recursive descent) becomes the XPath "//foo" anywhere-search.
func jsonPathToXPath(expr string) string {
	expr = strings.TrimPrefix(strings.TrimSpace(expr), "$")

	var b strings.Builder
	n := len(expr)
	for i := 0; i < n; {
		switch expr[i] {
		case '.':
			if i+1 < n && expr[i+1] == '.' {
				b.WriteString("//")
				i += 2
			} else {
				b.WriteString("/")
				i++
			}
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				i = n
				break
			}
			inner := expr[i+1 : i+end]
			i += end + 1
			b.WriteString("/")
			switch {
			case inner == "*":
				b.WriteString("*")
			case isIndex(inner):
				idx, _ := strconv.Atoi(inner)
				b.WriteString("*[" + strconv.Itoa(idx+1) + "]")
			default:
				b.WriteString(strings.Trim(inner, `'"`))
			}
		default:
			start := i
			for i < n && expr[i] != '.' && expr[i] != '[' {
				i++
			}
			b.WriteString(expr[start:i])
		}
	}

	result := b.String()
	if strings.HasPrefix(result, "//") {
		return result
	}
	return strings.TrimPrefix(result, "/")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// ProjectXPaths evaluates each XPath expression (namespace-agnostic via
// local-name()) against content (parsed as XML) and returns the Boundary of
// every selected node's literal text within content.
func ProjectXPaths(content string, expressions []string) []rules.Boundary {
	if len(expressions) == 0 {
		return nil
	}
	doc, err := xmlquery.Parse(strings.NewReader(content))
	if err != nil || doc == nil {
		return nil
	}

	var out []rules.Boundary
	for _, expr := range expressions {
		nodes, err := xmlquery.QueryAll(doc, expr)
		if err != nil {
			continue
		}
		for _, n := range nodes {
			text := n.InnerText()
			if b, ok := locateLiteral(content, text); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

// locateLiteral finds the first occurrence of text in content. An empty
// node text never anchors a projection boundary.
func locateLiteral(content, text string) (rules.Boundary, bool) {
	if text == "" {
		return rules.Boundary{}, false
	}
	idx := strings.Index(content, text)
	if idx < 0 {
		return rules.Boundary{}, false
	}
	return rules.Boundary{Index: idx, Length: len(text)}, true
}
