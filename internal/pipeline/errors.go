// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/vetting-engine/internal/validate"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// ValidationError rejects a run before any paid call is made. The message is
// shown to the user verbatim.
type ValidationError struct {
	Status  validate.Status
	Reason  validate.ReasonCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MismatchError aborts a run whose evidence describes a different subject
// than the one the user asked about.
type MismatchError struct {
	// DetectedName is the canonical name the verifier inferred.
	DetectedName string

	// Kind is the detected entity kind.
	Kind types.EntityKind
}

func (e *MismatchError) Error() string {
	if e.Kind == types.KindPerson {
		return fmt.Sprintf("search results describe a person (%s), not a company", e.DetectedName)
	}
	return fmt.Sprintf("search results describe a different subject (%s)", e.DetectedName)
}

// InsufficientDataError marks a run whose filtered evidence is too thin to
// justify full analysis. The pipeline absorbs it into a minimal report; it
// never reaches the caller.
type InsufficientDataError struct {
	Found   int
	Minimum int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d relevant results, need %d", e.Found, e.Minimum)
}
