// internal/domain/identity.go
package domain

import "strings"

// CanonicalID returns the form of a user identifier used as a ledger key:
// surrounding space trimmed, lower-cased.
func CanonicalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
