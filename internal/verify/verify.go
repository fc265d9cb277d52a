// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify semantically disambiguates the queried entity. One bounded
// model call over a sample of result titles decides whether the evidence
// describes the company the user meant, a different company, or a person.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/vetting-engine/internal/llm"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// newsTitleSample is the number of news titles added to the general sample.
const newsTitleSample = 3

const systemPrompt = "You are a strict data verification assistant. Your job is to prevent false matches and hallucinations."

// verifyPromptTmpl asks the model to classify the subject behind the sampled
// titles and report whether it matches the query.
var verifyPromptTmpl = template.Must(template.New("verify").Parse(`Analyze whether these search results match the input query.

INPUT QUERY: "{{.Name}}"

SEARCH RESULT TITLES:
{{range .Titles}}- {{.}}
{{end}}
Decide:
1. Are these results about a COMPANY or a PERSON, or is it impossible to tell?
2. What is the exact canonical name of the subject in the results?
3. Does that subject match the input query "{{.Name}}"?

Be very strict. If the results are about a different company or a person, is_match must be false.

Respond with a JSON object and nothing else:
{"entity_kind": "company|person|ambiguous", "canonical_name": "<exact name from results>", "is_match": true|false, "confidence": "high|medium|low"}
`))

// response is the fixed output schema for the verification call.
type response struct {
	EntityKind    string `json:"entity_kind"`
	CanonicalName string `json:"canonical_name"`
	IsMatch       bool   `json:"is_match"`
	Confidence    string `json:"confidence"`
}

// SampleTitles collects up to sample general titles plus a few news titles
// from the filtered bundle, in rank order.
func SampleTitles(bundle types.Bundle, sample int) []string {
	if sample <= 0 {
		sample = types.DefaultTitleSample
	}

	var titles []string
	for _, r := range bundle[types.CategoryGeneral] {
		if len(titles) >= sample {
			break
		}
		if r.Title != "" {
			titles = append(titles, r.Title)
		}
	}
	news := 0
	for _, r := range bundle[types.CategoryNews] {
		if news >= newsTitleSample {
			break
		}
		if r.Title != "" {
			titles = append(titles, r.Title)
			news++
		}
	}
	return titles
}

// Verify classifies the subject of the filtered evidence. A schema
// nonconformant response degrades to an ambiguous low-confidence verdict; a
// transport failure after retry is returned as an error because downstream
// correctness depends on this call.
func Verify(ctx context.Context, client llm.Client, name string, bundle types.Bundle, sample, maxRetries int) (types.VerificationVerdict, error) {
	titles := SampleTitles(bundle, sample)
	if len(titles) == 0 {
		return types.VerificationVerdict{}, fmt.Errorf("no result titles to verify")
	}

	var buf bytes.Buffer
	if err := verifyPromptTmpl.Execute(&buf, struct {
		Name   string
		Titles []string
	}{Name: name, Titles: titles}); err != nil {
		return types.VerificationVerdict{}, fmt.Errorf("rendering prompt: %w", err)
	}

	var resp response
	if err := llm.CompleteJSON(ctx, client, systemPrompt, buf.String(), &resp, maxRetries); err != nil {
		var se *llm.SchemaError
		if errors.As(err, &se) {
			// An unparsable verdict is treated as ambiguity, not a crash.
			return types.VerificationVerdict{
				EntityKind:    types.KindAmbiguous,
				CanonicalName: name,
				Confidence:    types.ConfidenceLow,
			}, nil
		}
		return types.VerificationVerdict{}, err
	}

	return types.VerificationVerdict{
		EntityKind:    parseKind(resp.EntityKind),
		CanonicalName: canonicalOr(resp.CanonicalName, name),
		IsMatch:       resp.IsMatch,
		Confidence:    parseConfidence(resp.Confidence),
	}, nil
}

// parseKind maps the model's entity kind onto the enum, defaulting to
// ambiguous for anything unrecognized.
func parseKind(s string) types.EntityKind {
	switch types.EntityKind(strings.ToLower(strings.TrimSpace(s))) {
	case types.KindCompany:
		return types.KindCompany
	case types.KindPerson:
		return types.KindPerson
	default:
		return types.KindAmbiguous
	}
}

// parseConfidence maps the model's confidence onto the enum, defaulting to low.
func parseConfidence(s string) types.Confidence {
	switch types.Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case types.ConfidenceHigh:
		return types.ConfidenceHigh
	case types.ConfidenceMedium:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// canonicalOr falls back to the query name when the model gave none.
func canonicalOr(canonical, name string) string {
	canonical = strings.TrimSpace(canonical)
	if canonical == "" || strings.EqualFold(canonical, "n/a") {
		return name
	}
	return canonical
}
