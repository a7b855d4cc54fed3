// Package name cleans raw performer-name candidates extracted from lineup
// sources.
package name

import (
	"regexp"
	"strings"
)

var (
	// "Artist A b2b Artist B" bills two independent performers.
	b2bPattern = regexp.MustCompile(`\s*[Bb]2[Bb]\s*`)
	// Parenthesized annotations like "(Sunrise Set)" are not part of the name.
	annotationPattern = regexp.MustCompile(`\s*\([^)]*\)`)
)

// Normalize splits combined-performance names on the b2b collaboration
// marker, strips parenthesized annotations, and deduplicates the result
// case-insensitively while preserving first-seen order and casing.
func Normalize(names []string) []string {
	var cleaned []string
	for _, n := range names {
		for _, part := range b2bPattern.Split(n, -1) {
			part = strings.TrimSpace(annotationPattern.ReplaceAllString(part, ""))
			if part != "" {
				cleaned = append(cleaned, part)
			}
		}
	}
	return Dedupe(cleaned)
}

// Dedupe removes case-insensitive duplicates, preserving first-seen order
// and first-seen casing. Entries are trimmed.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok || n == "" {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, n)
	}
	return result
}

// Key returns the canonical store key for an artist name.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
