package graph

import "strings"

// hasWriteOperation reports whether any top-level definition in doc is a
// mutation or subscription. Only the keyword that opens a definition counts;
// names inside selection sets, arguments, strings and comments are skipped.
func hasWriteOperation(doc string) bool {
	depth := 0
	atDefinition := true
	for i := 0; i < len(doc); {
		c := doc[i]
		switch {
		case c == '#':
			for i < len(doc) && doc[i] != '\n' && doc[i] != '\r' {
				i++
			}
			continue
		case c == '"':
			i = skipString(doc, i)
			continue
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				atDefinition = true
			}
		case isNameStart(c):
			j := i + 1
			for j < len(doc) && isNameChar(doc[j]) {
				j++
			}
			if depth == 0 && atDefinition {
				switch doc[i:j] {
				case "mutation", "subscription":
					return true
				}
				atDefinition = false
			}
			i = j
			continue
		}
		i++
	}
	return false
}

// skipString returns the index just past the string literal starting at i.
func skipString(doc string, i int) int {
	if strings.HasPrefix(doc[i:], `"""`) {
		for j := i + 3; j < len(doc); j++ {
			if doc[j] == '\\' && strings.HasPrefix(doc[j+1:], `"""`) {
				j += 3
				continue
			}
			if strings.HasPrefix(doc[j:], `"""`) {
				return j + 3
			}
		}
		return len(doc)
	}
	for j := i + 1; j < len(doc); j++ {
		switch doc[j] {
		case '\\':
			j++
		case '"', '\n', '\r':
			return j + 1
		}
	}
	return len(doc)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
