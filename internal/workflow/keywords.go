// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"strings"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

// riskKeywords weights negative indicator terms for the deterministic
// pre-screen. The weights are fixed business constants.
var riskKeywords = map[string]int{
	"lawsuit":    3,
	"fraud":      5,
	"scandal":    4,
	"regulation": 2,
	"negative":   1,
}

// negativeMarkers flags a result as a negative indicator worth feeding to
// the risk analysis prompt.
var negativeMarkers = []string{
	"scandal", "lawsuit", "fraud", "violation", "controversy", "investigation",
}

// KeywordScore computes the weighted risk-keyword score over every filtered
// result. Each keyword counts once per result. The score is a cheap signal
// cited to the model, not a verdict.
func KeywordScore(bundle types.Bundle) int {
	score := 0
	for _, results := range bundle {
		for _, r := range results {
			text := strings.ToLower(r.Title + " " + r.Content)
			for kw, weight := range riskKeywords {
				if strings.Contains(text, kw) {
					score += weight
				}
			}
		}
	}
	return score
}

// negativeResults collects the results the risk analysis should focus on:
// news items carrying a negative marker plus everything in the legal
// category, capped at limit.
func negativeResults(bundle types.Bundle, limit int) []types.RawResult {
	var out []types.RawResult
	for _, r := range bundle[types.CategoryNews] {
		text := strings.ToLower(r.Title + " " + r.Content)
		for _, marker := range negativeMarkers {
			if strings.Contains(text, marker) {
				out = append(out, r)
				break
			}
		}
	}
	out = append(out, bundle[types.CategoryLegal]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
