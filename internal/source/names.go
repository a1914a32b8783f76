package source

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims s and returns its NFC form. Every name stored in the
// registry passes through here so lookups compare canonically equal text.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// SplitList splits a comma-separated cell into trimmed, non-empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(part, " \t\"'")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitNames is SplitList with each item normalized.
func splitNames(s string) []string {
	items := SplitList(s)
	for i, item := range items {
		items[i] = NormalizeName(item)
	}
	return items
}

// normalizeNames returns a normalized copy of names with empties dropped.
func normalizeNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = NormalizeName(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
