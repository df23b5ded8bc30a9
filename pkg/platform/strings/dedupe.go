// Package strings provides string helpers shared by validators and stores.
package strings

import (
	"strings"

	"golang.org/x/text/cases"
)

// DedupeAndTrim trims each element and drops empties and exact duplicates,
// keeping first-seen order.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, func(s string) string { return s })
}

// DedupeFold is DedupeAndTrim with Unicode case-folded comparison. The first
// spelling seen wins, so "Perro" and "perro" collapse to "Perro".
func DedupeFold(values []string) []string {
	folder := cases.Fold()
	return dedupe(values, folder.String)
}

func dedupe(values []string, keyOf func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		k := keyOf(trimmed)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// SplitList splits a comma separated form value into trimmed, non-empty parts.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return DedupeAndTrim(strings.Split(raw, ","))
}
