// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/vetting-engine/internal/report"
	"github.com/pdiddy/vetting-engine/internal/store"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Browse past vetting runs (list, show, search)",
	Long: `Report reads the run history saved by vet. Use subcommands to list
recent runs, show one stored report, or full-text search past reports.`,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent vetting runs",
	RunE:  runReportList,
}

func runReportList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.ListRuns(context.Background(), limit)
	if err != nil {
		return err
	}
	return formatRuns(cmd, runs)
}

var reportShowCmd = &cobra.Command{
	Use:   "show [run ID]",
	Short: "Show a stored vetting report",
	Long: `Show renders one stored report by run ID. A unique ID prefix is
accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReportShow,
}

func runReportShow(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	r, err := s.GetReport(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return report.FormatJSON(r, os.Stdout)
	}
	report.FormatText(r, os.Stdout)
	return nil
}

var reportSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search past vetting reports",
	Long: `Search runs an FTS5 query over company names and report summaries of
stored runs, ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReportSearch,
}

func runReportSearch(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := s.SearchRuns(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}
	return formatRuns(cmd, runs)
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	s, err := store.New(types.StoreConfig{DataDir: dataDir})
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	return s, nil
}

func formatRuns(cmd *cobra.Command, runs []store.RunSummary) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	report.FormatRunTable(runs, os.Stdout)
	return nil
}

func init() {
	reportCmd.PersistentFlags().Int("limit", 20, "maximum runs to return")
	reportCmd.PersistentFlags().Bool("json", false, "output as JSON")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportSearchCmd)

	rootCmd.AddCommand(reportCmd)
}
