// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences the vetting stages: input validation, evidence
// aggregation, relevance filtering, match verification, the sufficiency gate,
// and the analysis workflow. Cheap checks run first so invalid or mismatched
// input never reaches the expensive calls.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/vetting-engine/internal/evidence"
	"github.com/pdiddy/vetting-engine/internal/llm"
	"github.com/pdiddy/vetting-engine/internal/validate"
	"github.com/pdiddy/vetting-engine/internal/verify"
	"github.com/pdiddy/vetting-engine/internal/workflow"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// Cost band thresholds over the filtered result count. The band is an
// advisory estimate of model spend shown before analysis starts.
const (
	costBandMediumAt = 10
	costBandHighAt   = 30
)

// RunStore persists completed runs. Persistence failures are reported as
// warnings, never as run failures.
type RunStore interface {
	SaveRun(state *types.VettingState) error
}

// RunOptions tune a single run.
type RunOptions struct {
	// AssumeCompany proceeds past the possible-personal-name warning without
	// interactive confirmation.
	AssumeCompany bool
}

// Pipeline wires the stage collaborators. Zero-value Logger and Progress are
// replaced with no-ops.
type Pipeline struct {
	Search   evidence.Backend
	LLM      llm.Client
	Store    RunStore
	Config   types.PipelineConfig
	Logger   *zap.Logger
	Progress io.Writer
}

// Run vets one company end to end. The returned state always reflects the
// furthest stage reached; when a gate aborts the run the error says why and
// state.AbortReason is set. Analysis-node failures do not error; they appear
// in the report's DegradedNodes.
func (p *Pipeline) Run(ctx context.Context, req types.VettingRequest, opts RunOptions) (*types.VettingState, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	w := p.Progress
	if w == nil {
		w = io.Discard
	}

	state := &types.VettingState{
		RunID:        uuid.NewString(),
		Request:      req,
		CurrentStage: types.StageInitialized,
	}
	logger.Info("run started", zap.String("run_id", state.RunID), zap.String("company", req.CompanyName))

	// Validation is free; everything after it costs money.
	vr := validate.Check(req.CompanyName)
	switch {
	case vr.Status == validate.StatusBlocked,
		vr.Status == validate.StatusWarn && !opts.AssumeCompany:
		state.AbortReason = types.AbortInvalidInput
		return state, &ValidationError{
			Status:  vr.Status,
			Reason:  vr.Reason,
			Message: validate.Message(req.CompanyName, vr),
		}
	case vr.Status == validate.StatusWarn:
		fmt.Fprintf(w, "note: treating %q as a company name\n", req.CompanyName)
	}
	state.CurrentStage = types.StageValidated

	fmt.Fprintf(w, "searching evidence for %q...\n", req.CompanyName)
	agg, err := evidence.Aggregate(ctx, p.Search, req, p.Config.Search, logger, w)
	if err != nil {
		return state, fmt.Errorf("aggregating evidence: %w", err)
	}
	state.Raw = agg.Bundle
	state.CategoryErrors = agg.CategoryErrors
	state.CurrentStage = types.StageAggregated

	if !agg.DataFound() {
		p.finishInsufficient(state, &InsufficientDataError{Found: 0, Minimum: p.minResults()}, logger, w)
		return state, nil
	}

	state.Filtered = evidence.Filter(state.Raw, req.CompanyName, p.relevanceThreshold())
	state.CurrentStage = types.StageFiltered
	fmt.Fprintf(w, "%d results found, %d relevant\n", state.Raw.Total(), state.Filtered.Total())

	// Verification needs general or news titles to look at. Without them the
	// subject cannot be confirmed, so the run never reaches the analysis
	// workflow: thin evidence ends as insufficient data, anything thicker is
	// an unverifiable subject.
	if len(verify.SampleTitles(state.Filtered, p.titleSample())) == 0 {
		if cause := p.checkSufficiency(state.Filtered); cause != nil {
			p.finishInsufficient(state, cause, logger, w)
			return state, nil
		}
		state.AbortReason = types.AbortSubjectMismatch
		return state, &MismatchError{DetectedName: req.CompanyName, Kind: types.KindAmbiguous}
	}

	verdict, err := verify.Verify(ctx, p.LLM, req.CompanyName, state.Filtered, p.titleSample(), p.Config.AI.MaxRetries)
	if err != nil {
		return state, fmt.Errorf("verifying subject match: %w", err)
	}
	state.Verdict = &verdict
	state.CurrentStage = types.StageVerified

	// Proceed only for a confirmed company match.
	if verdict.EntityKind == types.KindPerson {
		state.AbortReason = types.AbortSubjectIsPerson
		return state, &MismatchError{DetectedName: verdict.CanonicalName, Kind: verdict.EntityKind}
	}
	if verdict.EntityKind != types.KindCompany || !verdict.IsMatch {
		state.AbortReason = types.AbortSubjectMismatch
		return state, &MismatchError{DetectedName: verdict.CanonicalName, Kind: verdict.EntityKind}
	}

	if err := p.checkSufficiency(state.Filtered); err != nil {
		p.finishInsufficient(state, err, logger, w)
		return state, nil
	}

	band := costBand(state.Filtered.Total())
	fmt.Fprintf(w, "running analysis over %d sources (estimated cost: %s)...\n", state.Filtered.Total(), band)
	if err := workflow.Run(ctx, p.LLM, state, p.Config.AI.MaxRetries, logger, w); err != nil {
		return state, fmt.Errorf("analysis workflow: %w", err)
	}
	state.Report.CostBand = band

	p.persist(state, logger, w)
	return state, nil
}

// checkSufficiency decides whether the filtered evidence justifies the cost
// of full analysis.
func (p *Pipeline) checkSufficiency(filtered types.Bundle) *InsufficientDataError {
	min := p.minResults()
	if found := filtered.Total(); found < min {
		return &InsufficientDataError{Found: found, Minimum: min}
	}
	return nil
}

// finishInsufficient ends the run with the minimal report: requires_review,
// no analysis, no further spend.
func (p *Pipeline) finishInsufficient(state *types.VettingState, cause *InsufficientDataError, logger *zap.Logger, w io.Writer) {
	state.AbortReason = types.AbortInsufficientData
	state.Report = &types.Report{
		CompanyName:    state.Request.CompanyName,
		Recommendation: types.RecommendationRequiresReview,
		SourcesChecked: state.Filtered.Total(),
		ExecutiveSummary: fmt.Sprintf(
			"Insufficient public data to vet %s: %d relevant results found, %d required. Manual review needed.",
			state.Request.CompanyName, cause.Found, cause.Minimum),
		InsufficientData: true,
		AbortReason:      types.AbortInsufficientData,
		GeneratedAt:      time.Now().UTC(),
	}
	if state.Verdict != nil {
		state.Report.CanonicalName = state.Verdict.CanonicalName
	}
	state.CurrentStage = types.StageReportGenerated

	logger.Warn("insufficient data", zap.String("company", state.Request.CompanyName),
		zap.Int("found", cause.Found), zap.Int("minimum", cause.Minimum))
	fmt.Fprintf(w, "insufficient data: %d relevant results, need %d; producing minimal report\n",
		cause.Found, cause.Minimum)

	p.persist(state, logger, w)
}

// persist saves the finished run. Storage trouble is a warning, not a run
// failure.
func (p *Pipeline) persist(state *types.VettingState, logger *zap.Logger, w io.Writer) {
	if p.Store == nil || state.Report == nil {
		return
	}
	if err := p.Store.SaveRun(state); err != nil {
		logger.Warn("saving run", zap.String("run_id", state.RunID), zap.Error(err))
		fmt.Fprintf(w, "warning: could not save run: %v\n", err)
	}
}

// costBand grades expected model spend by filtered result volume.
func costBand(results int) string {
	switch {
	case results < costBandMediumAt:
		return "low"
	case results < costBandHighAt:
		return "medium"
	default:
		return "high"
	}
}

func (p *Pipeline) relevanceThreshold() float64 {
	if p.Config.RelevanceThreshold > 0 {
		return p.Config.RelevanceThreshold
	}
	return types.DefaultRelevanceThreshold
}

func (p *Pipeline) minResults() int {
	if p.Config.MinResults > 0 {
		return p.Config.MinResults
	}
	return types.DefaultMinResults
}

func (p *Pipeline) titleSample() int {
	if p.Config.TitleSample > 0 {
		return p.Config.TitleSample
	}
	return types.DefaultTitleSample
}
