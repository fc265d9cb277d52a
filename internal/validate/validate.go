// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate screens raw company-name input before any paid call is
// made. The checks are pure string heuristics, evaluated in a fixed order
// with first match winning.
package validate

import (
	"regexp"
	"strings"
)

// Status is the screening outcome.
type Status string

const (
	// StatusValid means the name passed every check.
	StatusValid Status = "valid"

	// StatusWarn means the name is suspicious (likely a personal name) and
	// the pipeline may proceed only after explicit user confirmation.
	StatusWarn Status = "warn"

	// StatusBlocked means the name must be rejected and re-prompted.
	StatusBlocked Status = "blocked"
)

// ReasonCode identifies which rule matched.
type ReasonCode string

const (
	ReasonEmpty                ReasonCode = "empty"
	ReasonNumbersOnly          ReasonCode = "numbers_only"
	ReasonInvalidChars         ReasonCode = "invalid_chars"
	ReasonPersonalName         ReasonCode = "personal_name"
	ReasonPossiblePersonalName ReasonCode = "possible_personal_name"
)

// Result is the screening verdict for one input.
type Result struct {
	Status Status
	Reason ReasonCode
}

// companySuffixes are trailing words that mark a two-word name as a company
// rather than a person.
var companySuffixes = map[string]bool{
	"inc": true, "incorporated": true, "corp": true, "corporation": true,
	"llc": true, "ltd": true, "limited": true, "co": true, "company": true,
	"group": true, "holdings": true, "enterprises": true, "industries": true,
	"solutions": true, "systems": true, "technologies": true, "tech": true,
	"international": true, "global": true, "services": true, "partners": true,
	"capital": true, "ventures": true,
}

var (
	// honorificRe matches leading personal titles (Mr, Mrs, Dr, ...).
	honorificRe = regexp.MustCompile(`(?i)\b(mr|mrs|ms|miss|dr|prof)\b\.?`)

	// middleInitialRe matches "FirstName M. LastName".
	middleInitialRe = regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z]\.\s*[A-Z][a-z]+$`)

	// invalidCharsRe matches control and markup characters used for
	// injection; none of them appear in legitimate company names.
	invalidCharsRe = regexp.MustCompile("[<>{}|\\\\^~\\[\\]`]")

	digitsOnlyRe = regexp.MustCompile(`^[0-9]+$`)
)

// Check screens a raw company name. Rules run in order; the first match wins.
// Anything not matched is valid.
func Check(name string) Result {
	clean := strings.TrimSpace(name)

	if len(clean) < 2 {
		return Result{Status: StatusBlocked, Reason: ReasonEmpty}
	}
	if digitsOnlyRe.MatchString(clean) {
		return Result{Status: StatusBlocked, Reason: ReasonNumbersOnly}
	}
	if invalidCharsRe.MatchString(clean) {
		return Result{Status: StatusBlocked, Reason: ReasonInvalidChars}
	}
	if honorificRe.MatchString(clean) || middleInitialRe.MatchString(clean) {
		return Result{Status: StatusBlocked, Reason: ReasonPersonalName}
	}

	// Exactly two words with no company suffix looks like "First Last".
	words := strings.Fields(clean)
	if len(words) == 2 && !hasCompanySuffix(words[1]) {
		return Result{Status: StatusWarn, Reason: ReasonPossiblePersonalName}
	}

	return Result{Status: StatusValid}
}

// hasCompanySuffix reports whether the final word of a name is a known
// company suffix, ignoring case and a trailing period.
func hasCompanySuffix(word string) bool {
	return companySuffixes[strings.TrimSuffix(strings.ToLower(word), ".")]
}

// Message returns the user-facing explanation for a screening result.
func Message(name string, r Result) string {
	clean := strings.TrimSpace(name)
	switch r.Reason {
	case ReasonEmpty:
		return "company name cannot be empty"
	case ReasonNumbersOnly:
		return "enter a company name, not just numbers"
	case ReasonInvalidChars:
		return "company name contains invalid characters"
	case ReasonPersonalName:
		return "'" + clean + "' appears to be a personal name; this tool vets companies, not individuals"
	case ReasonPossiblePersonalName:
		return "'" + clean + "' may be a personal name; add a company suffix (Inc, LLC, Corp) or confirm it is a company"
	default:
		return ""
	}
}
