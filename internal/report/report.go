// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders finished vetting reports and run-history listings
// for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/vetting-engine/internal/store"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// FormatText writes a human-readable report to w.
func FormatText(r *types.Report, w io.Writer) {
	rule := strings.Repeat("=", 64)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "VETTING REPORT: %s\n", r.CompanyName)
	fmt.Fprintln(w, rule)

	if r.CanonicalName != "" && r.CanonicalName != r.CompanyName {
		fmt.Fprintf(w, "Verified name:   %s\n", r.CanonicalName)
	}
	fmt.Fprintf(w, "Recommendation:  %s\n", strings.ToUpper(string(r.Recommendation)))
	fmt.Fprintf(w, "Sources checked: %d\n", r.SourcesChecked)
	if r.CostBand != "" {
		fmt.Fprintf(w, "Cost band:       %s\n", r.CostBand)
	}
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(w, "Generated:       %s\n", r.GeneratedAt.Format("2006-01-02 15:04 MST"))
	}

	if r.InsufficientData {
		fmt.Fprintf(w, "\nNOTE: insufficient public data; this is a minimal report.\n")
	}
	if len(r.DegradedNodes) > 0 {
		fmt.Fprintf(w, "\nWARNING: partial analysis, unavailable: %s\n", strings.Join(r.DegradedNodes, ", "))
	}

	if r.Risk != nil {
		fmt.Fprintf(w, "\nRISK ASSESSMENT\n")
		fmt.Fprintf(w, "  Severity: %s  Pattern: %s  Confidence: %s  Keyword score: %d\n",
			r.Risk.Severity, r.Risk.Pattern, r.Risk.Confidence, r.Risk.KeywordScore)
		if len(r.Risk.Categories) > 0 {
			var cats []string
			for _, c := range r.Risk.Categories {
				cats = append(cats, string(c))
			}
			fmt.Fprintf(w, "  Categories: %s\n", strings.Join(cats, ", "))
		}
		if r.Risk.Summary != "" {
			fmt.Fprintf(w, "  %s\n", r.Risk.Summary)
		}
		if len(r.Risk.EvidenceRefs) > 0 {
			fmt.Fprintf(w, "  Evidence: %s\n", strings.Join(r.Risk.EvidenceRefs, ", "))
		}
	}

	if len(r.Answers) > 0 {
		fmt.Fprintf(w, "\nCOMPLIANCE QUESTIONS\n")
		for _, a := range r.Answers {
			fmt.Fprintf(w, "  %d. [%s/%s] %s\n", a.QuestionID, a.Answer, a.Confidence, a.Question)
			if a.Reasoning != "" {
				fmt.Fprintf(w, "     %s\n", a.Reasoning)
			}
			if len(a.EvidenceRefs) > 0 {
				fmt.Fprintf(w, "     evidence: %s\n", strings.Join(a.EvidenceRefs, ", "))
			}
		}
	}

	if r.ExecutiveSummary != "" {
		fmt.Fprintf(w, "\nEXECUTIVE SUMMARY\n%s\n", r.ExecutiveSummary)
	}
	if len(r.KeyFindings) > 0 {
		fmt.Fprintf(w, "\nKEY FINDINGS\n")
		for _, f := range r.KeyFindings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
}

// FormatJSON writes the report as indented JSON to w.
func FormatJSON(r *types.Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// FormatYAML writes the report as YAML to w.
func FormatYAML(r *types.Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(r)
}

// FormatRunTable writes run summaries as a human-readable table to w.
func FormatRunTable(runs []store.RunSummary, w io.Writer) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-24s  %-16s  %-8s  %-7s  %s\n",
		"Run ID", "Company", "Recommendation", "Severity", "Sources", "Date")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	for _, r := range runs {
		company := r.Company
		if len(company) > 24 {
			company = company[:21] + "..."
		}
		date := ""
		if !r.CreatedAt.IsZero() {
			date = r.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-36s  %-24s  %-16s  %-8s  %-7d  %s\n",
			r.ID, company, r.Recommendation, r.Severity, r.Sources, date)
	}

	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}
