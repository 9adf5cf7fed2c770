// Package excerpt provides bounded-excerpt helpers for fitting extracted
// content into display panes and prompt budgets.
package excerpt

import (
	"strings"
	"unicode/utf8"
)

// DefaultMax is the default excerpt length in characters.
const DefaultMax = 500

// Collapse folds all runs of whitespace into single spaces and trims the
// ends.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max bytes, preferring a word boundary when one
// falls in the latter half of the window. The second return reports whether
// anything was cut. Truncation never splits a UTF-8 sequence.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 {
		return "", s != ""
	}
	if len(s) <= max {
		return s, false
	}

	// Back the cut point up to a rune boundary so no UTF-8 sequence is
	// split.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > max/2 {
		cut = cut[:lastSpace]
	}
	return cut, true
}

// Summarize produces a single-line preview: whitespace collapsed, truncated
// at a word boundary, with an ellipsis when content was cut.
func Summarize(s string, max int) string {
	s = Collapse(s)
	cut, truncated := Truncate(s, max)
	if truncated {
		return cut + "..."
	}
	return cut
}
