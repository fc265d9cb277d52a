// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow runs the four-node analysis over verified evidence:
// entity extraction, risk analysis, compliance Q&A, and report synthesis.
// Nodes degrade individually; a model failure in one node marks it degraded
// and the run continues with that node's sentinel output.
package workflow

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/vetting-engine/internal/llm"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// Unavailable is the sentinel text carried wherever a degraded node's prose
// output would have gone.
const Unavailable = "analysis unavailable"

// Node names as recorded in DegradedNodes.
const (
	NodeExtractEntities = "extract_entities"
	NodeAnalyzeRisks    = "analyze_risks"
	NodeAnswerQuestions = "answer_questions"
	NodeGenerateReport  = "generate_report"
)

const (
	// extractSample bounds per-category evidence fed to entity extraction.
	extractSample = 5

	// negativeLimit bounds the negative indicators fed to risk analysis.
	negativeLimit = 10
)

// NodeError wraps a node failure with the node's name.
type NodeError struct {
	Node string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.Node, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Run executes the analysis workflow over the state's filtered evidence and
// assembles the final report into state.Report. It only returns an error on
// context cancellation; individual node failures degrade instead.
func Run(ctx context.Context, client llm.Client, state *types.VettingState, maxRetries int, logger *zap.Logger, w io.Writer) error {
	company := state.Request.CompanyName
	if state.Verdict != nil && state.Verdict.CanonicalName != "" {
		company = state.Verdict.CanonicalName
	}
	refs := state.Filtered.Refs()

	if err := extractEntities(ctx, client, state, company, maxRetries); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		degrade(state, NodeExtractEntities, err, logger, w)
	} else {
		state.CurrentStage = types.StageEntitiesExtracted
	}

	if err := analyzeRisks(ctx, client, state, company, refs, maxRetries); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		degrade(state, NodeAnalyzeRisks, err, logger, w)
	} else {
		state.CurrentStage = types.StageRisksAnalyzed
	}

	if err := answerQuestions(ctx, client, state, company, refs, maxRetries); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		degrade(state, NodeAnswerQuestions, err, logger, w)
		state.Answers = unavailableAnswers()
	}
	state.CurrentStage = types.StageQuestionsAnswered

	summary, findings, err := generateSummary(ctx, client, state, company, maxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		degrade(state, NodeGenerateReport, err, logger, w)
		summary = Unavailable
	}

	state.Report = &types.Report{
		CompanyName:      state.Request.CompanyName,
		CanonicalName:    canonicalName(state),
		Recommendation:   Recommend(state.Risk, state.Answers),
		Risk:             state.Risk,
		Answers:          state.Answers,
		SourcesChecked:   state.Filtered.Total(),
		ExecutiveSummary: summary,
		KeyFindings:      findings,
		DegradedNodes:    state.DegradedNodes,
		GeneratedAt:      time.Now().UTC(),
	}
	state.CurrentStage = types.StageReportGenerated

	logger.Info("workflow complete",
		zap.String("company", company),
		zap.String("recommendation", string(state.Report.Recommendation)),
		zap.Strings("degraded", state.DegradedNodes))
	return nil
}

func canonicalName(state *types.VettingState) string {
	if state.Verdict != nil {
		return state.Verdict.CanonicalName
	}
	return ""
}

// degrade records a node failure without stopping the run.
func degrade(state *types.VettingState, node string, err error, logger *zap.Logger, w io.Writer) {
	state.DegradedNodes = append(state.DegradedNodes, node)
	logger.Warn("analysis node degraded", zap.String("node", node), zap.Error(err))
	fmt.Fprintf(w, "warning: %s unavailable: %v\n", node, err)
}

type extractResponse struct {
	Executives []string `json:"executives"`
	Incidents  []string `json:"incidents"`
	Dates      []string `json:"dates"`
}

// extractEntities pulls executives, incidents, and dates from the general and
// executives evidence.
func extractEntities(ctx context.Context, client llm.Client, state *types.VettingState, company string, maxRetries int) error {
	evidence := append(
		sampleContent(state.Filtered, types.CategoryGeneral, extractSample),
		sampleContent(state.Filtered, types.CategoryExecutives, extractSample)...)

	prompt, err := renderPrompt(extractPromptTmpl, struct {
		Company  string
		Evidence string
	}{Company: company, Evidence: formatEvidence(evidence)})
	if err != nil {
		return &NodeError{Node: NodeExtractEntities, Err: err}
	}

	var resp extractResponse
	if err := llm.CompleteJSON(ctx, client, extractSystem, prompt, &resp, maxRetries); err != nil {
		return &NodeError{Node: NodeExtractEntities, Err: err}
	}

	state.Entities = &types.ExtractedEntities{
		Executives: resp.Executives,
		Incidents:  resp.Incidents,
		Dates:      resp.Dates,
	}
	return nil
}

type riskResponse struct {
	Severity     string   `json:"severity"`
	Categories   []string `json:"categories"`
	Pattern      string   `json:"pattern"`
	Confidence   string   `json:"confidence"`
	Summary      string   `json:"summary"`
	EvidenceRefs []string `json:"evidence_refs"`
}

// analyzeRisks grades the negative indicators. The deterministic keyword score
// is computed first and fed to the model as a cited signal.
func analyzeRisks(ctx context.Context, client llm.Client, state *types.VettingState, company string, refs map[string]bool, maxRetries int) error {
	score := KeywordScore(state.Filtered)
	negatives := negativeResults(state.Filtered, negativeLimit)

	var entities string
	if state.Entities != nil {
		entities = strings.Join(append(state.Entities.Executives, state.Entities.Incidents...), "; ")
	}

	prompt, err := renderPrompt(riskPromptTmpl, struct {
		Company      string
		Evidence     string
		KeywordScore int
		Entities     string
	}{Company: company, Evidence: formatEvidence(negatives), KeywordScore: score, Entities: entities})
	if err != nil {
		return &NodeError{Node: NodeAnalyzeRisks, Err: err}
	}

	var resp riskResponse
	if err := llm.CompleteJSON(ctx, client, riskSystem, prompt, &resp, maxRetries); err != nil {
		return &NodeError{Node: NodeAnalyzeRisks, Err: err}
	}

	state.Risk = &types.RiskAssessment{
		Severity:     parseSeverity(resp.Severity),
		Categories:   parseCategories(resp.Categories),
		Pattern:      parsePattern(resp.Pattern),
		Confidence:   parseConfidence(resp.Confidence),
		Summary:      resp.Summary,
		EvidenceRefs: sanitizeRefs(resp.EvidenceRefs, refs),
		KeywordScore: score,
	}
	return nil
}

type answersResponse struct {
	Answers []struct {
		QuestionID   int      `json:"question_id"`
		Answer       string   `json:"answer"`
		Confidence   string   `json:"confidence"`
		Reasoning    string   `json:"reasoning"`
		EvidenceRefs []string `json:"evidence_refs"`
	} `json:"answers"`
}

// answerQuestions evaluates the seven fixed compliance questions. The result
// always carries exactly one answer per question in question order; questions
// the model skipped get the sentinel answer.
func answerQuestions(ctx context.Context, client llm.Client, state *types.VettingState, company string, refs map[string]bool, maxRetries int) error {
	riskSummary := Unavailable
	if state.Risk != nil {
		riskSummary = fmt.Sprintf("severity=%s pattern=%s: %s", state.Risk.Severity, state.Risk.Pattern, state.Risk.Summary)
	}

	evidence := append(
		negativeResults(state.Filtered, negativeLimit),
		sampleContent(state.Filtered, types.CategoryGeneral, 3)...)

	var executives string
	if state.Entities != nil {
		executives = strings.Join(state.Entities.Executives, "; ")
	}

	prompt, err := renderPrompt(questionsPromptTmpl, struct {
		Company     string
		RiskSummary string
		Executives  string
		Evidence    string
		Questions   []Question
	}{Company: company, RiskSummary: riskSummary, Executives: executives, Evidence: formatEvidence(evidence), Questions: Questions})
	if err != nil {
		return &NodeError{Node: NodeAnswerQuestions, Err: err}
	}

	var resp answersResponse
	if err := llm.CompleteJSON(ctx, client, questionsSystem, prompt, &resp, maxRetries); err != nil {
		return &NodeError{Node: NodeAnswerQuestions, Err: err}
	}

	byID := make(map[int]types.ComplianceAnswer, len(resp.Answers))
	for _, a := range resp.Answers {
		q := questionByID(a.QuestionID)
		if q == nil {
			continue
		}
		byID[a.QuestionID] = types.ComplianceAnswer{
			QuestionID:   q.ID,
			Question:     q.Text,
			Answer:       parseAnswer(a.Answer),
			Confidence:   parseConfidence(a.Confidence),
			Reasoning:    a.Reasoning,
			EvidenceRefs: sanitizeRefs(a.EvidenceRefs, refs),
		}
	}

	answers := make([]types.ComplianceAnswer, 0, len(Questions))
	for _, q := range Questions {
		a, ok := byID[q.ID]
		if !ok {
			a = types.ComplianceAnswer{
				QuestionID: q.ID,
				Question:   q.Text,
				Answer:     types.AnswerMaybe,
				Confidence: types.ConfidenceLow,
				Reasoning:  Unavailable,
			}
		}
		answers = append(answers, a)
	}
	state.Answers = answers
	return nil
}

type reportResponse struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyFindings      []string `json:"key_findings"`
}

// generateSummary synthesizes the executive summary and key findings.
func generateSummary(ctx context.Context, client llm.Client, state *types.VettingState, company string, maxRetries int) (string, []string, error) {
	riskSummary := Unavailable
	if state.Risk != nil {
		riskSummary = fmt.Sprintf("severity=%s pattern=%s: %s", state.Risk.Severity, state.Risk.Pattern, state.Risk.Summary)
	}

	var b strings.Builder
	for _, a := range state.Answers {
		fmt.Fprintf(&b, "%d. %s -> %s (%s): %s\n", a.QuestionID, a.Question, a.Answer, a.Confidence, a.Reasoning)
	}

	prompt, err := renderPrompt(reportPromptTmpl, struct {
		Company     string
		RiskSummary string
		Answers     string
	}{Company: company, RiskSummary: riskSummary, Answers: b.String()})
	if err != nil {
		return "", nil, &NodeError{Node: NodeGenerateReport, Err: err}
	}

	var resp reportResponse
	if err := llm.CompleteJSON(ctx, client, reportSystem, prompt, &resp, maxRetries); err != nil {
		return "", nil, &NodeError{Node: NodeGenerateReport, Err: err}
	}
	if strings.TrimSpace(resp.ExecutiveSummary) == "" {
		resp.ExecutiveSummary = Unavailable
	}
	return resp.ExecutiveSummary, resp.KeyFindings, nil
}

// Recommend derives the final verdict from the risk grade and the answers.
// The verdict is computed here, never by the model:
//
//   - rejected when severity is critical or any hard-block question is "no"
//   - approved only when risk is low with no pattern of concern and every
//     answer is a "yes"
//   - requires_review otherwise, including whenever risk is unavailable
func Recommend(risk *types.RiskAssessment, answers []types.ComplianceAnswer) types.Recommendation {
	for _, a := range answers {
		q := questionByID(a.QuestionID)
		if q != nil && q.HardBlock && a.Answer == types.AnswerNo {
			return types.RecommendationRejected
		}
	}
	if risk != nil && risk.Severity == types.SeverityCritical {
		return types.RecommendationRejected
	}

	if risk == nil || risk.Severity == types.SeverityHigh || risk.Severity == types.SeverityMedium {
		return types.RecommendationRequiresReview
	}
	for _, a := range answers {
		if a.Answer != types.AnswerYes {
			return types.RecommendationRequiresReview
		}
	}
	return types.RecommendationApproved
}

// sanitizeRefs keeps only refs that exist in the filtered bundle, sorted for
// stable output. Invented refs are dropped silently.
func sanitizeRefs(candidates []string, valid map[string]bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, ref := range candidates {
		ref = strings.TrimSpace(ref)
		if valid[ref] && !seen[ref] {
			out = append(out, ref)
			seen[ref] = true
		}
	}
	sort.Strings(out)
	return out
}

func parseSeverity(s string) types.Severity {
	switch types.Severity(strings.ToLower(strings.TrimSpace(s))) {
	case types.SeverityLow:
		return types.SeverityLow
	case types.SeverityHigh:
		return types.SeverityHigh
	case types.SeverityCritical:
		return types.SeverityCritical
	default:
		return types.SeverityMedium
	}
}

func parsePattern(s string) types.Pattern {
	switch types.Pattern(strings.ToLower(strings.TrimSpace(s))) {
	case types.PatternIsolated:
		return types.PatternIsolated
	case types.PatternSystemic:
		return types.PatternSystemic
	default:
		return types.PatternNone
	}
}

func parseCategories(ss []string) []types.RiskCategory {
	var out []types.RiskCategory
	for _, s := range ss {
		switch c := types.RiskCategory(strings.ToLower(strings.TrimSpace(s))); c {
		case types.RiskScandal, types.RiskLegal, types.RiskRegulatory, types.RiskExecutiveMisconduct, types.RiskPR:
			out = append(out, c)
		}
	}
	return out
}

func parseAnswer(s string) types.Answer {
	switch types.Answer(strings.ToLower(strings.TrimSpace(s))) {
	case types.AnswerYes:
		return types.AnswerYes
	case types.AnswerNo:
		return types.AnswerNo
	default:
		return types.AnswerMaybe
	}
}

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
