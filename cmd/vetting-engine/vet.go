// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/vetting-engine/internal/evidence"
	"github.com/pdiddy/vetting-engine/internal/llm"
	"github.com/pdiddy/vetting-engine/internal/pipeline"
	"github.com/pdiddy/vetting-engine/internal/report"
	"github.com/pdiddy/vetting-engine/internal/secrets"
	"github.com/pdiddy/vetting-engine/internal/store"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

const defaultModel = "claude-sonnet-4-5-20250929"

var vetCmd = &cobra.Command{
	Use:   "vet [company name]",
	Short: "Vet a company and produce a cited compliance report",
	Long: `Vet runs the full pipeline for one company: input screening, categorized
evidence search, subject verification, and the staged compliance analysis.
The report carries a recommendation (approved, requires_review, rejected),
the seven compliance answers with evidence citations, and a risk assessment.

A name that fails screening, resolves to a person, or matches a different
company aborts before any analysis spend. Thin evidence produces a minimal
requires_review report instead of a full analysis.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVet,
}

func runVet(cmd *cobra.Command, args []string) error {
	company := strings.TrimSpace(strings.Join(args, " "))
	executives, _ := cmd.Flags().GetStringSlice("executives")
	assumeCompany, _ := cmd.Flags().GetBool("assume-company")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	noStore, _ := cmd.Flags().GetBool("no-store")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := pipelineConfig(cmd)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer logger.Sync()
	}

	p := &pipeline.Pipeline{
		Search: &evidence.TavilyBackend{
			APIKey: cfg.Search.APIKey,
			Client: &http.Client{Timeout: cfg.Search.Timeout},
		},
		LLM:      llm.NewClaudeClient(cfg.AI),
		Config:   cfg,
		Logger:   logger,
		Progress: os.Stderr,
	}

	if !noStore {
		s, err := store.New(cfg.Store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: run history unavailable: %v\n", err)
		} else {
			defer s.Close()
			p.Store = s
		}
	}

	state, err := p.Run(context.Background(), types.VettingRequest{
		CompanyName: company,
		Executives:  executives,
	}, pipeline.RunOptions{AssumeCompany: assumeCompany})
	if err != nil {
		var ve *pipeline.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%s (use --assume-company to proceed with a warned name)", ve.Message)
		}
		return err
	}

	switch {
	case jsonOutput:
		return report.FormatJSON(state.Report, os.Stdout)
	case yamlOutput:
		return report.FormatYAML(state.Report, os.Stdout)
	default:
		report.FormatText(state.Report, os.Stdout)
		fmt.Fprintf(os.Stdout, "\nrun ID: %s\n", state.RunID)
		return nil
	}
}

// pipelineConfig assembles the run configuration from flags, viper config,
// and loaded secrets. Flags win over config values, config over key files.
func pipelineConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	searchKey := secrets.Default(loadedSecrets, secrets.KeySearch, viper.GetString("search.api_key"))
	if searchKey == "" {
		return types.PipelineConfig{}, fmt.Errorf("no search API key: set search.api_key or .secrets/%s", secrets.KeySearch)
	}
	modelKey := secrets.Default(loadedSecrets, secrets.KeyModel, viper.GetString("ai.api_key"))
	if modelKey == "" {
		return types.PipelineConfig{}, fmt.Errorf("no model API key: set ai.api_key or .secrets/%s", secrets.KeyModel)
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("ai.model")
	}
	if model == "" {
		model = defaultModel
	}

	newsWindow, _ := cmd.Flags().GetInt("news-window")
	minResults, _ := cmd.Flags().GetInt("min-results")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	return types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "vetting-engine/" + version,
			},
			APIKey:         searchKey,
			NewsWindowDays: newsWindow,
		},
		AI: types.AIConfig{
			Model:      model,
			APIKey:     modelKey,
			MaxRetries: 1,
		},
		Store:      types.StoreConfig{DataDir: dataDir},
		MinResults: minResults,
	}, nil
}

func init() {
	vetCmd.Flags().StringSlice("executives", nil, "executives to investigate (narrows the executives search)")
	vetCmd.Flags().Bool("assume-company", false, "proceed when the name looks like a personal name")
	vetCmd.Flags().Bool("json", false, "output the report as JSON")
	vetCmd.Flags().Bool("yaml", false, "output the report as YAML")
	vetCmd.Flags().Bool("no-store", false, "do not save the run to history")
	vetCmd.Flags().Bool("verbose", false, "enable debug logging")
	vetCmd.Flags().String("model", "", "model identifier (default: "+defaultModel+")")
	vetCmd.Flags().Int("news-window", 0, "news search window in days (0 = default 90)")
	vetCmd.Flags().Int("min-results", 0, "minimum relevant results required for full analysis (0 = default 3)")

	rootCmd.AddCommand(vetCmd)
}
