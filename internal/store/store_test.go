// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleState(runID, company string, generated time.Time) *types.VettingState {
	return &types.VettingState{
		RunID:   runID,
		Request: types.VettingRequest{CompanyName: company},
		Report: &types.Report{
			CompanyName:      company,
			CanonicalName:    company + " Inc.",
			Recommendation:   types.RecommendationApproved,
			Risk:             &types.RiskAssessment{Severity: types.SeverityLow},
			SourcesChecked:   12,
			ExecutiveSummary: company + " shows no adverse findings.",
			KeyFindings:      []string{"clean record"},
			GeneratedAt:      generated,
		},
	}
}

func TestSaveAndGetReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state := sampleState("run-aaaa-1111", "Acme", time.Now().UTC())
	if err := s.SaveRun(state); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	report, err := s.GetReport(ctx, "run-aaaa-1111")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want Acme", report.CompanyName)
	}
	if report.Recommendation != types.RecommendationApproved {
		t.Errorf("Recommendation = %q", report.Recommendation)
	}
	if report.Risk == nil || report.Risk.Severity != types.SeverityLow {
		t.Errorf("Risk = %+v, want low severity", report.Risk)
	}
	if report.SourcesChecked != 12 {
		t.Errorf("SourcesChecked = %d, want 12", report.SourcesChecked)
	}
}

func TestGetReportByPrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(sampleState("abc-123", "Acme", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(sampleState("xyz-789", "Other", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	report, err := s.GetReport(ctx, "abc")
	if err != nil {
		t.Fatalf("GetReport by prefix: %v", err)
	}
	if report.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q, want Acme", report.CompanyName)
	}

	if _, err := s.GetReport(ctx, "missing"); err == nil {
		t.Error("want error for unknown run ID")
	}
}

func TestGetReportAmbiguousPrefix(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveRun(sampleState("abc-123", "Acme", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := s.SaveRun(sampleState("abc-456", "Acme", time.Now())); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if _, err := s.GetReport(context.Background(), "abc"); err == nil {
		t.Error("want error for ambiguous prefix")
	}
}

func TestSaveRunUpserts(t *testing.T) {
	s := newTestStore(t)

	state := sampleState("run-1", "Acme", time.Now())
	if err := s.SaveRun(state); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	state.Report.Recommendation = types.RecommendationRejected
	if err := s.SaveRun(state); err != nil {
		t.Fatalf("SaveRun update: %v", err)
	}

	runs, err := s.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].Recommendation != types.RecommendationRejected {
		t.Errorf("Recommendation = %q, want rejected", runs[0].Recommendation)
	}
}

func TestSaveRunWithoutReport(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveRun(&types.VettingState{RunID: "run-1"}); err == nil {
		t.Error("want error for run without report")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		state := sampleState(fmt.Sprintf("run-%d", i), fmt.Sprintf("Company%d", i), base.Add(time.Duration(i)*time.Hour))
		if err := s.SaveRun(state); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.ListRuns(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len(runs) = %d, want 3", len(runs))
	}
	if runs[0].ID != "run-4" || runs[1].ID != "run-3" || runs[2].ID != "run-2" {
		t.Errorf("order = %s, %s, %s; want run-4, run-3, run-2", runs[0].ID, runs[1].ID, runs[2].ID)
	}
	if runs[0].Company != "Company4" {
		t.Errorf("Company = %q, want Company4", runs[0].Company)
	}
}

func TestSearchRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acme := sampleState("run-1", "Acme", time.Now())
	if err := s.SaveRun(acme); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	globex := sampleState("run-2", "Globex", time.Now())
	globex.Report.ExecutiveSummary = "Globex faces an ongoing antitrust lawsuit."
	if err := s.SaveRun(globex); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	byName, err := s.SearchRuns(ctx, "Acme", 10)
	if err != nil {
		t.Fatalf("SearchRuns: %v", err)
	}
	if len(byName) != 1 || byName[0].ID != "run-1" {
		t.Errorf("search by name = %+v, want run-1", byName)
	}

	// Summary text is indexed too.
	bySummary, err := s.SearchRuns(ctx, "antitrust", 10)
	if err != nil {
		t.Fatalf("SearchRuns: %v", err)
	}
	if len(bySummary) != 1 || bySummary[0].ID != "run-2" {
		t.Errorf("search by summary = %+v, want run-2", bySummary)
	}

	none, err := s.SearchRuns(ctx, "unrelated", 10)
	if err != nil {
		t.Fatalf("SearchRuns: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("search for unrelated term = %+v, want none", none)
	}
}

func TestSearchAfterUpdateReflectsNewSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state := sampleState("run-1", "Acme", time.Now())
	state.Report.ExecutiveSummary = "Initial findings pending."
	if err := s.SaveRun(state); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	state.Report.ExecutiveSummary = "Regulatory settlement reached."
	if err := s.SaveRun(state); err != nil {
		t.Fatalf("SaveRun update: %v", err)
	}

	stale, err := s.SearchRuns(ctx, "pending", 10)
	if err != nil {
		t.Fatalf("SearchRuns: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("stale summary still indexed: %+v", stale)
	}
	fresh, err := s.SearchRuns(ctx, "settlement", 10)
	if err != nil {
		t.Fatalf("SearchRuns: %v", err)
	}
	if len(fresh) != 1 {
		t.Errorf("updated summary not indexed: %+v", fresh)
	}
}
