// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import "github.com/pdiddy/vetting-engine/pkg/types"

// Question is one of the seven fixed compliance questions. The set is a
// static business rule; it is never constructed at runtime.
type Question struct {
	ID   int
	Text string

	// HardBlock means a "no" answer rejects the company outright.
	HardBlock bool
}

// Questions lists the compliance questions in their fixed order.
var Questions = []Question{
	{ID: 1, Text: "Does the company have a positive corporate reputation?"},
	{ID: 2, Text: "Is the company free from current and serious public scandals?"},
	{ID: 3, Text: "Is the company free from current and serious regulatory violations?", HardBlock: true},
	{ID: 4, Text: "Is the company free from current and serious legal violations?", HardBlock: true},
	{ID: 5, Text: "Are the company's principals and executives free from serious misconduct?", HardBlock: true},
	{ID: 6, Text: "Is there no negative media event likely to cause a PR black eye?"},
	{ID: 7, Text: "Does the company comply with brand safety standards?"},
}

// questionByID returns the question with the given ordinal, or nil.
func questionByID(id int) *Question {
	for i := range Questions {
		if Questions[i].ID == id {
			return &Questions[i]
		}
	}
	return nil
}

// unavailableAnswers returns the sentinel answer set used when the Q&A node
// could not produce a schema-valid result: one low-confidence "maybe" per
// question so the report still carries all seven.
func unavailableAnswers() []types.ComplianceAnswer {
	answers := make([]types.ComplianceAnswer, 0, len(Questions))
	for _, q := range Questions {
		answers = append(answers, types.ComplianceAnswer{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     types.AnswerMaybe,
			Confidence: types.ConfidenceLow,
			Reasoning:  Unavailable,
		})
	}
	return answers
}
