package utils

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeFoodName canonicalizes a food name for equality comparison.
// It case-folds, trims and collapses whitespace runs to a single space.
// The boolean is false when nothing is left.
func NormalizeFoodName(raw string) (string, bool) {
	// Casers carry state, so never share one across goroutines.
	folded := cases.Fold().String(raw)
	normalized := strings.Join(strings.Fields(folded), " ")
	if normalized == "" {
		return "", false
	}
	return normalized, true
}

// NormalizeFoodNames normalizes every entry, dropping empties and repeats
// while keeping first-seen order.
func NormalizeFoodNames(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		normalized, ok := NormalizeFoodName(name)
		if !ok {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}
