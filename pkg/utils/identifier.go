package utils

import "strings"

// BacktickIdentifier wraps an identifier in backticks. The whole name is
// treated as one identifier, so dots are part of the name rather than a
// database.table separator. Already backticked names are returned as-is, not
// double-quoted.
//
// Backticks inside a name cannot be escaped here; IsSafeIdentifier rejects
// such names before any statement is built.
//
// Examples:
//   - "ghost_prod" -> "`ghost_prod`"
//   - "my.db" -> "`my.db`"
//   - "`ghost_prod`" -> "`ghost_prod`"
//   - "" -> ""
func BacktickIdentifier(name string) string {
	if name == "" {
		return ""
	}

	if IsBackticked(name) {
		return name
	}

	return "`" + name + "`"
}

// IsBackticked checks if a string is already wrapped in backticks.
//
// Examples:
//   - "`posts`" -> true
//   - "posts" -> false
//   - "`db`.`posts`" -> false (qualified name, not a single backticked identifier)
//   - "" -> false
func IsBackticked(s string) bool {
	return len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' && !strings.Contains(s[1:len(s)-1], "`")
}

// StripBackticks removes backticks from an identifier if present.
//
// Examples:
//   - "`posts`" -> "posts"
//   - "posts" -> "posts"
//   - "`db`.`posts`" -> "db.posts"
//   - "" -> ""
func StripBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}
