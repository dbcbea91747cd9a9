// Package normalize holds canonicalization helpers for user-supplied
// identifiers.
package normalize

import "strings"

// Email returns the canonical form of an email address used for storage and
// comparison: surrounding whitespace trimmed, lower-cased.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
