package utils

import "strings"

// IsSafeIdentifier checks that a name can be interpolated into a backticked
// identifier position without breaking out of the quoting. Backticks cannot be
// escaped by BacktickIdentifier, so names containing them (or control bytes)
// are rejected before any statement is built.
//
// Examples:
//   - "ghost_prod" -> true
//   - "ghost-prod" -> true
//   - "x`y" -> false
//   - "" -> false
func IsSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}

	if strings.ContainsAny(name, "`\x00\n\r") {
		return false
	}

	return true
}

// IsSafeHostPart checks that a value can be used as the host portion of a
// MySQL account (the 'user'@'host' form). Hostnames, IP addresses, and
// wildcard patterns like "%" or "192.168.%" are all acceptable; quotes and
// control bytes are not (they would need escaping the account grammar does
// not reliably support across server versions).
//
// Examples:
//   - "localhost" -> true
//   - "db.example.com" -> true
//   - "%" -> true
//   - "bad'host" -> false
func IsSafeHostPart(host string) bool {
	if host == "" {
		return false
	}

	if strings.ContainsAny(host, "'`\\\x00\n\r") {
		return false
	}

	return true
}
