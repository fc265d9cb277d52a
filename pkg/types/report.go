// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Answer is a yes/no/maybe response to a compliance question.
type Answer string

const (
	AnswerYes   Answer = "yes"
	AnswerNo    Answer = "no"
	AnswerMaybe Answer = "maybe"
)

// ComplianceAnswer is the evaluated result for one of the seven fixed
// compliance questions.
type ComplianceAnswer struct {
	// QuestionID is the ordinal of the question, 1 through 7.
	QuestionID int `json:"question_id" yaml:"question_id"`

	// Question is the question text, carried for rendering.
	Question string `json:"question" yaml:"question"`

	Answer     Answer     `json:"answer" yaml:"answer"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`

	// Reasoning is a short evidence-backed explanation.
	Reasoning string `json:"reasoning" yaml:"reasoning"`

	// EvidenceRefs cites RawResult identifiers from the filtered bundle.
	// Refs not present in the bundle are discarded, never invented.
	EvidenceRefs []string `json:"evidence_refs" yaml:"evidence_refs"`
}

// Severity grades the overall risk level.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskCategory tags a class of negative finding.
type RiskCategory string

const (
	RiskScandal             RiskCategory = "scandal"
	RiskLegal               RiskCategory = "legal"
	RiskRegulatory          RiskCategory = "regulatory"
	RiskExecutiveMisconduct RiskCategory = "executive-misconduct"
	RiskPR                  RiskCategory = "pr"
)

// Pattern says whether negative findings look isolated or systemic.
type Pattern string

const (
	PatternIsolated Pattern = "isolated"
	PatternSystemic Pattern = "systemic"
	PatternNone     Pattern = "none"
)

// RiskAssessment is the risk analysis node's output.
type RiskAssessment struct {
	Severity   Severity       `json:"severity" yaml:"severity"`
	Categories []RiskCategory `json:"categories" yaml:"categories"`
	Pattern    Pattern        `json:"pattern" yaml:"pattern"`
	Confidence Confidence     `json:"confidence" yaml:"confidence"`

	// Summary is a short prose justification.
	Summary string `json:"summary" yaml:"summary"`

	// EvidenceRefs cites the RawResults the assessment rests on.
	EvidenceRefs []string `json:"evidence_refs" yaml:"evidence_refs"`

	// KeywordScore is the deterministic weighted risk-keyword score computed
	// over the filtered bundle before the model ran.
	KeywordScore int `json:"keyword_score" yaml:"keyword_score"`
}

// Recommendation is the final verdict for human review.
type Recommendation string

const (
	RecommendationApproved       Recommendation = "approved"
	RecommendationRequiresReview Recommendation = "requires_review"
	RecommendationRejected       Recommendation = "rejected"
)

// Report is the read-only structure handed to the rendering collaborator.
type Report struct {
	CompanyName string `json:"company_name" yaml:"company_name"`

	// CanonicalName is the verified subject name, when verification ran.
	CanonicalName string `json:"canonical_name,omitempty" yaml:"canonical_name,omitempty"`

	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`

	// Risk is nil when the risk node was unavailable.
	Risk *RiskAssessment `json:"risk_assessment,omitempty" yaml:"risk_assessment,omitempty"`

	// Answers holds one ComplianceAnswer per fixed question, in question
	// order. Present whenever the analysis workflow ran.
	Answers []ComplianceAnswer `json:"compliance_answers,omitempty" yaml:"compliance_answers,omitempty"`

	// SourcesChecked is the filtered result count the analysis drew from.
	SourcesChecked int `json:"sources_checked_count" yaml:"sources_checked_count"`

	// ExecutiveSummary is the synthesized prose summary.
	ExecutiveSummary string `json:"executive_summary" yaml:"executive_summary"`

	// KeyFindings lists the headline findings.
	KeyFindings []string `json:"key_findings,omitempty" yaml:"key_findings,omitempty"`

	// CostBand is the advisory spend estimate shown before analysis.
	CostBand string `json:"cost_band,omitempty" yaml:"cost_band,omitempty"`

	// DegradedNodes names analysis nodes whose output was unavailable.
	DegradedNodes []string `json:"degraded_nodes,omitempty" yaml:"degraded_nodes,omitempty"`

	// InsufficientData marks a minimal report produced when the sufficiency
	// gate failed.
	InsufficientData bool `json:"insufficient_data,omitempty" yaml:"insufficient_data,omitempty"`

	// AbortReason is set when a gate short-circuited the run.
	AbortReason AbortReason `json:"abort_reason,omitempty" yaml:"abort_reason,omitempty"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
