package utils

import "strings"

// literalEscaper rewrites the characters MySQL treats specially inside
// single-quoted string literals. Backslash must be escaped before quote so
// already-escaped sequences aren't doubled twice.
var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

// EscapeLiteral escapes a string for safe inclusion inside a single-quoted
// MySQL string literal. Values from configuration are interpolated directly
// into administrative statements, so every literal must pass through here.
//
// Examples:
//   - "secret" -> "secret"
//   - "it's" -> "it\'s"
//   - `back\slash` -> `back\\slash`
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// QuoteLiteral escapes a string and wraps it in single quotes.
//
// Examples:
//   - "ghost-17" -> "'ghost-17'"
//   - "pa'ss" -> "'pa\'ss'"
func QuoteLiteral(s string) string {
	return "'" + EscapeLiteral(s) + "'"
}

// StripQuotes removes surrounding single quotes from a literal if present and
// unescapes the common escape sequences. Used when reading values back out of
// statements returned by the server (e.g. SHOW GRANTS rows).
//
// Examples:
//   - "'ghost-17'" -> "ghost-17"
//   - "ghost-17" -> "ghost-17"
func StripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}

	return strings.NewReplacer(`\'`, `'`, `\\`, `\`).Replace(s)
}
