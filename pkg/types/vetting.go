// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the vetting-engine pipeline.
package types

import (
	"crypto/sha256"
	"fmt"
)

// VettingRequest is the immutable input to one pipeline run.
type VettingRequest struct {
	// CompanyName is the free-text company name entered by the user.
	CompanyName string `json:"company_name" yaml:"company_name"`

	// Executives optionally names the executives to investigate. When empty
	// the pipeline detects leadership from the executives search category.
	Executives []string `json:"executives,omitempty" yaml:"executives,omitempty"`
}

// Category identifies one of the fixed evidence search categories.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryNews       Category = "news"
	CategoryLegal      Category = "legal"
	CategorySocial     Category = "social"
	CategoryExecutives Category = "executives"
)

// Categories lists all search categories in report order.
var Categories = []Category{
	CategoryGeneral,
	CategoryNews,
	CategoryLegal,
	CategorySocial,
	CategoryExecutives,
}

// RawResult is a single search provider hit. Results are never mutated after
// aggregation; downstream stages reference them by Ref.
type RawResult struct {
	// Title is the page title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the page address.
	URL string `json:"url" yaml:"url"`

	// Content is the provider's extracted page text.
	Content string `json:"content" yaml:"content"`

	// Score is the provider's relevance score. Advisory only; the relevance
	// filter ignores it.
	Score float64 `json:"score" yaml:"score"`
}

// Ref returns a stable identifier for the result: the first 12 hex characters
// of SHA-256(url + title). Analysis nodes cite evidence by these refs.
func (r RawResult) Ref() string {
	h := sha256.New()
	h.Write([]byte(r.URL))
	h.Write([]byte(r.Title))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Bundle maps each search category to its ordered result sequence. Order is
// provider rank. The relevance filter produces a new Bundle whose per-category
// sequences are subsequences of the input.
type Bundle map[Category][]RawResult

// Total returns the result count across all categories.
func (b Bundle) Total() int {
	n := 0
	for _, rs := range b {
		n += len(rs)
	}
	return n
}

// DataFound reports whether at least one category returned a result.
func (b Bundle) DataFound() bool {
	return b.Total() > 0
}

// Refs returns the set of result identifiers present in the bundle.
func (b Bundle) Refs() map[string]bool {
	refs := make(map[string]bool)
	for _, rs := range b {
		for _, r := range rs {
			refs[r.Ref()] = true
		}
	}
	return refs
}

// EntityKind classifies the subject the collected evidence is about.
type EntityKind string

const (
	KindCompany   EntityKind = "company"
	KindPerson    EntityKind = "person"
	KindAmbiguous EntityKind = "ambiguous"
)

// Confidence is a coarse three-level confidence grade.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// VerificationVerdict is the Match Verifier's semantic disambiguation of the
// queried entity. Produced once per run; immutable.
type VerificationVerdict struct {
	// EntityKind says whether the evidence describes a company, a person, or
	// could not be determined.
	EntityKind EntityKind `json:"entity_kind" yaml:"entity_kind"`

	// CanonicalName is the subject name the verifier inferred from the
	// evidence. May differ from the query.
	CanonicalName string `json:"canonical_name" yaml:"canonical_name"`

	// IsMatch says whether the inferred subject is the entity the user meant.
	IsMatch bool `json:"is_match" yaml:"is_match"`

	// Confidence grades the verdict.
	Confidence Confidence `json:"confidence" yaml:"confidence"`
}

// ExtractedEntities holds the entity lens produced by the first analysis node.
// It steers later nodes and is not exposed directly in the summary.
type ExtractedEntities struct {
	// Executives lists detected executives, each as "Name (Role)".
	Executives []string `json:"executives" yaml:"executives"`

	// Incidents lists named incidents, scandals, or controversies.
	Incidents []string `json:"incidents" yaml:"incidents"`

	// Dates lists timeframes attached to negative events.
	Dates []string `json:"dates" yaml:"dates"`
}
