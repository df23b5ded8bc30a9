// Package email normalizes and checks customer email addresses.
package email

import (
	"regexp"
	"strings"
)

// Deliberately loose: one @, no whitespace, a dot in the domain.
var pattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Normalize trims and lowercases an address. Lookups and immutability checks
// always compare normalized forms.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsValid reports whether the normalized address has a plausible shape.
func IsValid(addr string) bool {
	return pattern.MatchString(Normalize(addr))
}

// Equal compares two addresses after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
