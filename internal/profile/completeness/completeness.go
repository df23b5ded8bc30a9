// Package completeness answers the checkout gate's question: which required
// fields does this profile still lack?
package completeness

import (
	"fiscalid/internal/profile/models"
)

// Resolve returns the required keys for c that are absent or blank in m, in
// catalog order. The customer type key also counts as missing while c is
// Unclassified, because only a known classification satisfies it.
//
// Unclassified profiles are checked against the always-required fields only;
// their classification-specific fields cannot be determined yet.
func Resolve(c models.Classification, m models.FieldValueMap) []string {
	missing := []string{}
	for _, f := range models.Catalog() {
		if !f.RequiredUnder(c) {
			continue
		}
		if f.Key == models.KeyCustomerType && c == models.Unclassified {
			missing = append(missing, f.Key)
			continue
		}
		if m.Blank(f.Key) {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

// Complete reports whether Resolve finds nothing missing.
func Complete(c models.Classification, m models.FieldValueMap) bool {
	return len(Resolve(c, m)) == 0
}

// Labels maps keys to their user-facing labels, preserving order.
func Labels(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = models.Label(k)
	}
	return out
}

// Messages renders one "<label> es requerido" line per missing key.
func Messages(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = models.Label(k) + " es requerido"
	}
	return out
}
