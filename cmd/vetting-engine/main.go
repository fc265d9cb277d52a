// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the vetting-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vetting-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the vetting-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "vetting-engine",
	Short: "Automated compliance vetting for company names",
	Long: `vetting-engine turns a free-text company name into a cited, risk-scored
compliance verdict. It screens the input, gathers categorized web evidence,
verifies the subject is the company you meant, and runs a staged analysis
that answers the fixed compliance questions with evidence citations.

Cheap checks run before expensive ones: invalid names, person names, and
mismatched subjects never reach the paid analysis calls.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./vetting-engine.yaml or ~/.config/vetting-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for run history (contains index/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vetting-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vetting-engine"))
		}
	}

	viper.SetEnvPrefix("VETTING_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
