package ui

import (
	"strings"
)

// ParseCSS parses a primitive CSS file: selectors .class or #id and blocks of "key: value;".
// No combinators, no @rules. Later rules override earlier ones for the same property.
// Blocks with any other selector are skipped.
func ParseCSS(content string) *Stylesheet {
	sheet := &Stylesheet{}
	rest := stripCSSComments(content)
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := findMatchingBrace(rest, open)
		if end < 0 {
			break
		}
		selector := strings.TrimSpace(rest[:open])
		if len(selector) >= 2 && (selector[0] == '.' || selector[0] == '#') {
			sheet.Rules = append(sheet.Rules, Rule{Selector: selector, Props: parseDeclarations(rest[open+1 : end])})
		}
		rest = rest[end+1:]
	}
	return sheet
}

func stripCSSComments(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "/*")
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		end := strings.Index(s[start+2:], "*/")
		if end < 0 {
			return b.String()
		}
		s = s[start+2+end+2:]
	}
}

func findMatchingBrace(s string, openIdx int) int {
	depth := 1
	for i := openIdx + 1; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseDeclarations(body string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(body, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		if k = strings.TrimSpace(k); k != "" {
			props[k] = strings.TrimSpace(v)
		}
	}
	return props
}
