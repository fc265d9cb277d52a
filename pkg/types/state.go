// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Stage identifies the furthest point a pipeline run reached.
type Stage string

const (
	StageInitialized       Stage = "initialized"
	StageValidated         Stage = "validated"
	StageAggregated        Stage = "aggregated"
	StageFiltered          Stage = "filtered"
	StageVerified          Stage = "verified"
	StageEntitiesExtracted Stage = "entities_extracted"
	StageRisksAnalyzed     Stage = "risks_analyzed"
	StageQuestionsAnswered Stage = "questions_answered"
	StageReportGenerated   Stage = "report_generated"
)

// AbortReason says why a gate short-circuited the run.
type AbortReason string

const (
	AbortInvalidInput     AbortReason = "invalid_input"
	AbortSubjectIsPerson  AbortReason = "subject_is_person"
	AbortSubjectMismatch  AbortReason = "subject_mismatch"
	AbortInsufficientData AbortReason = "insufficient_data"
)

// VettingState is the single mutable aggregate threaded through the pipeline.
// Ownership is handed off from stage to stage; each stage reads fields written
// by prior stages and writes only its own. Pointer fields stay nil until the
// owning stage runs.
type VettingState struct {
	// RunID uniquely identifies this pipeline run.
	RunID string `json:"run_id" yaml:"run_id"`

	Request VettingRequest `json:"request" yaml:"request"`

	// Raw is the aggregated evidence before relevance filtering.
	Raw Bundle `json:"raw,omitempty" yaml:"raw,omitempty"`

	// Filtered is the relevance-filtered evidence, a per-category subsequence
	// of Raw.
	Filtered Bundle `json:"filtered,omitempty" yaml:"filtered,omitempty"`

	// CategoryErrors records categories whose search failed and were treated
	// as empty.
	CategoryErrors []string `json:"category_errors,omitempty" yaml:"category_errors,omitempty"`

	Verdict  *VerificationVerdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Entities *ExtractedEntities   `json:"entities,omitempty" yaml:"entities,omitempty"`
	Risk     *RiskAssessment      `json:"risk,omitempty" yaml:"risk,omitempty"`
	Answers  []ComplianceAnswer   `json:"answers,omitempty" yaml:"answers,omitempty"`
	Report   *Report              `json:"report,omitempty" yaml:"report,omitempty"`

	// DegradedNodes names analysis nodes that failed and fell back to their
	// unavailable sentinel.
	DegradedNodes []string `json:"degraded_nodes,omitempty" yaml:"degraded_nodes,omitempty"`

	CurrentStage Stage       `json:"current_stage" yaml:"current_stage"`
	AbortReason  AbortReason `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`
}
