// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

// scriptedClient answers each node call in sequence. An empty string in the
// script produces a transport error for that call.
type scriptedClient struct {
	script  []string
	calls   int
	prompts []string
}

func (c *scriptedClient) Complete(_ context.Context, _, user string) (string, error) {
	c.prompts = append(c.prompts, user)
	i := c.calls
	c.calls++
	if i >= len(c.script) || c.script[i] == "" {
		return "", errors.New("model unavailable")
	}
	return c.script[i], nil
}

const (
	extractOK     = `{"executives":["Jane Roe (CEO)"],"incidents":["2024 recall"],"dates":["2024"]}`
	riskOK        = `{"severity":"low","categories":[],"pattern":"none","confidence":"high","summary":"No material risk found.","evidence_refs":[]}`
	answersAllYes = `{"answers":[
		{"question_id":1,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":2,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":3,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":4,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":5,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":6,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]},
		{"question_id":7,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]}]}`
	reportOK = `{"executive_summary":"Acme is clean.","key_findings":["no lawsuits","stable leadership"]}`
)

func testState(results ...types.RawResult) *types.VettingState {
	bundle := types.Bundle{types.CategoryGeneral: results}
	return &types.VettingState{
		RunID:        "run-1",
		Request:      types.VettingRequest{CompanyName: "Acme Corp"},
		Raw:          bundle,
		Filtered:     bundle,
		CurrentStage: types.StageVerified,
		Verdict: &types.VerificationVerdict{
			EntityKind:    types.KindCompany,
			CanonicalName: "Acme Corporation",
			IsMatch:       true,
			Confidence:    types.ConfidenceHigh,
		},
	}
}

func TestRunCleanCompany(t *testing.T) {
	client := &scriptedClient{script: []string{extractOK, riskOK, answersAllYes, reportOK}}
	state := testState(
		types.RawResult{Title: "Acme Corp overview", URL: "https://a.example/1", Content: "solid company"},
		types.RawResult{Title: "Acme Corp earnings", URL: "https://a.example/2", Content: "growth"},
	)

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if client.calls != 4 {
		t.Errorf("model calls = %d, want 4", client.calls)
	}
	if state.CurrentStage != types.StageReportGenerated {
		t.Errorf("stage = %q, want report_generated", state.CurrentStage)
	}
	r := state.Report
	if r == nil {
		t.Fatal("Report not assembled")
	}
	if r.Recommendation != types.RecommendationApproved {
		t.Errorf("Recommendation = %q, want approved", r.Recommendation)
	}
	if r.CanonicalName != "Acme Corporation" {
		t.Errorf("CanonicalName = %q", r.CanonicalName)
	}
	if len(r.Answers) != len(Questions) {
		t.Errorf("answers = %d, want %d", len(r.Answers), len(Questions))
	}
	if r.SourcesChecked != 2 {
		t.Errorf("SourcesChecked = %d, want 2", r.SourcesChecked)
	}
	if len(r.DegradedNodes) != 0 {
		t.Errorf("DegradedNodes = %v, want none", r.DegradedNodes)
	}
	if r.ExecutiveSummary != "Acme is clean." {
		t.Errorf("ExecutiveSummary = %q", r.ExecutiveSummary)
	}
}

func TestRunHardBlockNoRejects(t *testing.T) {
	answers := strings.Replace(answersAllYes,
		`{"question_id":4,"answer":"yes"`,
		`{"question_id":4,"answer":"no"`, 1)
	client := &scriptedClient{script: []string{extractOK, riskOK, answers, reportOK}}
	state := testState(types.RawResult{Title: "Acme lawsuit", URL: "https://a.example/1", Content: "fraud case"})

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Report.Recommendation != types.RecommendationRejected {
		t.Errorf("Recommendation = %q, want rejected", state.Report.Recommendation)
	}
}

func TestRunRiskNodeDegrades(t *testing.T) {
	// Risk call fails both the initial attempt and the retry.
	client := &scriptedClient{script: []string{extractOK, "", "", answersAllYes, reportOK}}
	state := testState(types.RawResult{Title: "Acme", URL: "https://a.example/1", Content: "c"})
	var progress bytes.Buffer

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &progress); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if state.Risk != nil {
		t.Error("Risk should stay nil when the node degrades")
	}
	if len(state.DegradedNodes) != 1 || state.DegradedNodes[0] != NodeAnalyzeRisks {
		t.Errorf("DegradedNodes = %v, want [analyze_risks]", state.DegradedNodes)
	}
	// Missing risk forces human review even with clean answers.
	if state.Report.Recommendation != types.RecommendationRequiresReview {
		t.Errorf("Recommendation = %q, want requires_review", state.Report.Recommendation)
	}
	if !strings.Contains(progress.String(), NodeAnalyzeRisks) {
		t.Errorf("progress output missing degradation warning: %q", progress.String())
	}
}

func TestRunQuestionsNodeDegradesToSentinels(t *testing.T) {
	client := &scriptedClient{script: []string{extractOK, riskOK, "", "", reportOK}}
	state := testState(types.RawResult{Title: "Acme", URL: "https://a.example/1", Content: "c"})

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(state.Answers) != len(Questions) {
		t.Fatalf("answers = %d, want %d", len(state.Answers), len(Questions))
	}
	for _, a := range state.Answers {
		if a.Answer != types.AnswerMaybe || a.Confidence != types.ConfidenceLow || a.Reasoning != Unavailable {
			t.Errorf("answer %d = %+v, want maybe/low sentinel", a.QuestionID, a)
		}
	}
	if state.Report.Recommendation != types.RecommendationRequiresReview {
		t.Errorf("Recommendation = %q, want requires_review", state.Report.Recommendation)
	}
}

func TestRunReportNodeDegradesToUnavailable(t *testing.T) {
	client := &scriptedClient{script: []string{extractOK, riskOK, answersAllYes, "", ""}}
	state := testState(types.RawResult{Title: "Acme", URL: "https://a.example/1", Content: "c"})

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Report.ExecutiveSummary != Unavailable {
		t.Errorf("ExecutiveSummary = %q, want sentinel", state.Report.ExecutiveSummary)
	}
	// Degradation of the summary does not change the verdict.
	if state.Report.Recommendation != types.RecommendationApproved {
		t.Errorf("Recommendation = %q, want approved", state.Report.Recommendation)
	}
}

func TestRunFillsSkippedQuestions(t *testing.T) {
	partial := `{"answers":[{"question_id":1,"answer":"yes","confidence":"high","reasoning":"r","evidence_refs":[]}]}`
	client := &scriptedClient{script: []string{extractOK, riskOK, partial, reportOK}}
	state := testState(types.RawResult{Title: "Acme", URL: "https://a.example/1", Content: "c"})

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(state.Answers) != len(Questions) {
		t.Fatalf("answers = %d, want %d", len(state.Answers), len(Questions))
	}
	if state.Answers[0].Answer != types.AnswerYes {
		t.Errorf("answer 1 = %q, want yes", state.Answers[0].Answer)
	}
	if state.Answers[1].Reasoning != Unavailable {
		t.Errorf("skipped question should carry the sentinel, got %q", state.Answers[1].Reasoning)
	}
}

func TestRunDiscardsInventedRefs(t *testing.T) {
	result := types.RawResult{Title: "Acme fraud probe", URL: "https://a.example/1", Content: "fraud investigation"}
	real := result.Ref()
	risk := `{"severity":"high","categories":["legal"],"pattern":"isolated","confidence":"medium",
		"summary":"Ongoing probe.","evidence_refs":["` + real + `","deadbeef0000"]}`
	client := &scriptedClient{script: []string{extractOK, risk, answersAllYes, reportOK}}
	state := testState(result)

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(state.Risk.EvidenceRefs) != 1 || state.Risk.EvidenceRefs[0] != real {
		t.Errorf("EvidenceRefs = %v, want only %s", state.Risk.EvidenceRefs, real)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &scriptedClient{}
	state := testState(types.RawResult{Title: "Acme", URL: "https://a.example/1", Content: "c"})

	err := Run(ctx, client, state, 1, zap.NewNop(), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRecommend(t *testing.T) {
	yes := func() []types.ComplianceAnswer {
		var out []types.ComplianceAnswer
		for _, q := range Questions {
			out = append(out, types.ComplianceAnswer{QuestionID: q.ID, Question: q.Text, Answer: types.AnswerYes})
		}
		return out
	}
	withAnswer := func(id int, a types.Answer) []types.ComplianceAnswer {
		out := yes()
		out[id-1].Answer = a
		return out
	}
	lowRisk := &types.RiskAssessment{Severity: types.SeverityLow}

	tests := []struct {
		name    string
		risk    *types.RiskAssessment
		answers []types.ComplianceAnswer
		want    types.Recommendation
	}{
		{"clean", lowRisk, yes(), types.RecommendationApproved},
		{"critical severity", &types.RiskAssessment{Severity: types.SeverityCritical}, yes(), types.RecommendationRejected},
		{"hard block no", lowRisk, withAnswer(3, types.AnswerNo), types.RecommendationRejected},
		{"hard block no overrides missing risk", nil, withAnswer(5, types.AnswerNo), types.RecommendationRejected},
		{"soft no", lowRisk, withAnswer(1, types.AnswerNo), types.RecommendationRequiresReview},
		{"maybe", lowRisk, withAnswer(6, types.AnswerMaybe), types.RecommendationRequiresReview},
		{"high severity", &types.RiskAssessment{Severity: types.SeverityHigh}, yes(), types.RecommendationRequiresReview},
		{"medium severity", &types.RiskAssessment{Severity: types.SeverityMedium}, yes(), types.RecommendationRequiresReview},
		{"no risk assessment", nil, yes(), types.RecommendationRequiresReview},
	}
	for _, tt := range tests {
		if got := Recommend(tt.risk, tt.answers); got != tt.want {
			t.Errorf("%s: Recommend = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	bundle := types.Bundle{
		types.CategoryNews: {
			{Title: "Acme hit with lawsuit over fraud", Content: "fraud allegations", URL: "u1"},
			{Title: "Acme scandal deepens", Content: "negative coverage", URL: "u2"},
		},
	}
	// First result: lawsuit(3) + fraud(5). Second: scandal(4) + negative(1).
	if got := KeywordScore(bundle); got != 13 {
		t.Errorf("KeywordScore = %d, want 13", got)
	}
	if got := KeywordScore(types.Bundle{}); got != 0 {
		t.Errorf("KeywordScore(empty) = %d, want 0", got)
	}
}

func TestNegativeResults(t *testing.T) {
	bundle := types.Bundle{
		types.CategoryNews: {
			{Title: "Acme opens new office", URL: "u1"},
			{Title: "Acme under investigation", URL: "u2"},
		},
		types.CategoryLegal: {
			{Title: "Acme v. Smith", URL: "u3"},
		},
	}
	got := negativeResults(bundle, 10)
	if len(got) != 2 {
		t.Fatalf("negativeResults = %d results, want 2", len(got))
	}
	if got[0].URL != "u2" || got[1].URL != "u3" {
		t.Errorf("unexpected selection: %+v", got)
	}
}

func TestPromptsCarryRefs(t *testing.T) {
	result := types.RawResult{Title: "Acme lawsuit", URL: "https://a.example/1", Content: "fraud"}
	client := &scriptedClient{script: []string{extractOK, riskOK, answersAllYes, reportOK}}
	state := testState(result)

	if err := Run(context.Background(), client, state, 1, zap.NewNop(), &bytes.Buffer{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The extraction prompt must cite the result so refs can round-trip.
	if !strings.Contains(client.prompts[0], "[ref "+result.Ref()+"]") {
		t.Errorf("extract prompt missing ref:\n%s", client.prompts[0])
	}
}
