package postgres

import (
	"strconv"
	"strings"
)

// rebind rewrites "?" placeholders to PostgreSQL's "$1", "$2", ... form.
// Question marks inside single-quoted literals, double-quoted identifiers and
// comments are left alone.
func rebind(stmt string) string {
	if !strings.Contains(stmt, "?") {
		return stmt
	}

	var sb strings.Builder
	sb.Grow(len(stmt) + 8)
	n := 0
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		switch {
		case c == '\'' || c == '"':
			end := closing(stmt, i+1, c)
			sb.WriteString(stmt[i:end])
			i = end - 1
		case c == '-' && i+1 < len(stmt) && stmt[i+1] == '-':
			end := strings.IndexByte(stmt[i:], '\n')
			if end < 0 {
				sb.WriteString(stmt[i:])
				return sb.String()
			}
			sb.WriteString(stmt[i : i+end])
			i += end - 1
		case c == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// closing returns the index just past the quote that closes the literal
// opened before start. Doubled quotes are escapes.
func closing(s string, start int, quote byte) int {
	for i := start; i < len(s); i++ {
		if s[i] != quote {
			continue
		}
		if i+1 < len(s) && s[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}
