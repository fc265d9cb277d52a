// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"strings"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

// minWordLen excludes short connective words ("of", "an") from the
// multi-token relevance test.
const minWordLen = 2

// Filter removes results that do not actually reference the queried company.
// The predicate is a recall-biased text match, not a semantic check; it only
// keeps the downstream model calls from wasting context on unrelated pages.
//
// Per category the output is a strict subsequence of the input: the filter
// never adds and never reorders.
func Filter(bundle types.Bundle, name string, threshold float64) types.Bundle {
	if threshold <= 0 {
		threshold = types.DefaultRelevanceThreshold
	}
	words := nameWords(name)
	full := strings.ToLower(strings.TrimSpace(name))

	filtered := make(types.Bundle, len(bundle))
	for cat, results := range bundle {
		var kept []types.RawResult
		for _, r := range results {
			if relevant(r, full, words, threshold) {
				kept = append(kept, r)
			}
		}
		filtered[cat] = kept
	}
	return filtered
}

// relevant reports whether a result references the company. A single-token
// name must appear as a substring of the result text. A multi-token name
// must have strictly more than threshold of its significant words present,
// so a 2-word name needs both and a 3-word name needs 2.
func relevant(r types.RawResult, fullName string, words []string, threshold float64) bool {
	text := strings.ToLower(r.Title + " " + r.Content + " " + r.URL)

	if len(words) <= 1 {
		// Single significant token, or a name made entirely of short words:
		// fall back to the whole name as a substring.
		target := fullName
		if len(words) == 1 {
			target = words[0]
		}
		return strings.Contains(text, target)
	}

	need := int(threshold*float64(len(words))) + 1
	if need > len(words) {
		need = len(words)
	}
	matches := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			matches++
		}
	}
	return matches >= need
}

// nameWords splits a company name into lowercased words longer than
// minWordLen characters.
func nameWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if len(w) > minWordLen {
			words = append(words, w)
		}
	}
	return words
}
