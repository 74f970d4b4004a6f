// Package utils provides common utility functions used throughout the Gatekeeper codebase.
//
// This package contains shared utilities that are used by multiple packages to avoid
// code duplication and ensure consistent behavior across the application.
//
// # Identifier Utilities (identifier.go)
//
// The identifier utilities provide consistent handling of MySQL identifiers,
// including proper backtick quoting for names that may contain special characters
// or reserved keywords:
//
//	// Simple identifier
//	name := utils.BacktickIdentifier("ghost_prod")
//	// Result: `ghost_prod`
//
//	// Already backticked (not double-backticked)
//	existing := utils.BacktickIdentifier("`ghost_prod`")
//	// Result: `ghost_prod`
//
// # Literal Utilities (literal.go)
//
// The literal utilities escape and quote values that are interpolated into
// single-quoted string literal positions of administrative statements. Every
// configuration-sourced value must pass through these before being embedded
// in SQL text:
//
//	stmt := "SET PASSWORD FOR " + account + " = PASSWORD(" + utils.QuoteLiteral(password) + ");"
//
// # Validation Utilities (validation.go)
//
// The validation utilities guard identifier and account-host positions that
// backtick or quote escaping cannot fully protect:
//
//	if !utils.IsSafeIdentifier(dbName) {
//		return errors.Errorf("invalid database name: %q", dbName)
//	}
//
// These utilities should be used whenever generating SQL text so that quoting
// behavior stays identical across every statement the tool issues.
package utils
