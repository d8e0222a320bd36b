// Package sqlscript splits SQL scripts into individual statements.
//
// Scripts may contain line and block comments, quoted strings and
// dollar-quoted bodies; semicolons inside any of those do not end a
// statement. This keeps multi-statement migration and fixture files
// executable on drivers that only accept one statement per call.
package sqlscript

import "strings"

// Split returns the individual statements of script, in order, with
// comments removed and surrounding whitespace trimmed. Empty
// statements are dropped.
func Split(script string) []string {
	var (
		statements []string
		current    strings.Builder
	)

	i := 0
	for i < len(script) {
		rest := script[i:]

		switch {
		case strings.HasPrefix(rest, "--"):
			// Line comment: skip to end of line, keep the newline
			// so adjacent tokens stay separated.
			if end := strings.IndexByte(rest, '\n'); end >= 0 {
				i += end
			} else {
				i = len(script)
			}

		case strings.HasPrefix(rest, "/*"):
			// Block comment, no nesting.
			if end := strings.Index(rest[2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(script)
			}
			current.WriteByte(' ')

		case rest[0] == '\'':
			n := spanQuoted(rest, '\'')
			current.WriteString(rest[:n])
			i += n

		case rest[0] == '"':
			n := spanQuoted(rest, '"')
			current.WriteString(rest[:n])
			i += n

		case rest[0] == '$':
			if tag := dollarTag(rest); tag != "" {
				n := spanDollarQuoted(rest, tag)
				current.WriteString(rest[:n])
				i += n
			} else {
				current.WriteByte('$')
				i++
			}

		case rest[0] == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			i++

		default:
			current.WriteByte(rest[0])
			i++
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// spanQuoted returns the length of the quoted literal starting at
// s[0], which must be the quote character. A doubled quote is an
// escape. An unterminated literal spans to the end of input.
func spanQuoted(s string, quote byte) int {
	i := 1
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}

// dollarTag returns the full opening delimiter ("$$" or "$tag$") when
// s starts a dollar-quoted body, or "" when the dollar sign is plain
// text (for example a positional parameter like $1).
func dollarTag(s string) string {
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '$' {
			return s[:i+1]
		}
		if !isTagChar(c) {
			return ""
		}
	}
	return ""
}

func isTagChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// spanDollarQuoted returns the length of the dollar-quoted body
// starting at s[0], including both delimiters. An unterminated body
// spans to the end of input.
func spanDollarQuoted(s, tag string) int {
	if end := strings.Index(s[len(tag):], tag); end >= 0 {
		return len(tag) + end + len(tag)
	}
	return len(s)
}
