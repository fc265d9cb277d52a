// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "vetting-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the evidence aggregation stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the search provider.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retries for a failed category search
	// before that category is treated as empty (default 1).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// NewsWindowDays bounds the news category to recent articles (default 90).
	NewsWindowDays int `json:"news_window_days" yaml:"news_window_days"`
}

// AIConfig holds shared settings for stages that call the language model.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the decoding temperature. All pipeline stages use a
	// fixed low value (default 0.1) for near-deterministic output.
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxRetries is the number of retries for a failed model call (default 1).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreConfig holds settings for the run-history store.
type StoreConfig struct {
	// DataDir is the base directory for persisted runs (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// Heuristic constants with no stated derivation in the business rules; kept
// configurable rather than hard-coded.
const (
	// DefaultRelevanceThreshold is the fraction of name words (ceiling) that
	// must appear in a result for it to be kept.
	DefaultRelevanceThreshold = 0.5

	// DefaultMinResults is the minimum filtered result count required to
	// justify the cost of full analysis.
	DefaultMinResults = 3

	// DefaultTitleSample is the number of general-category titles sampled by
	// the match verifier.
	DefaultTitleSample = 5

	// DefaultNewsWindowDays bounds the news category search.
	DefaultNewsWindowDays = 90

	// DefaultTemperature is the decoding temperature for all model calls.
	DefaultTemperature = 0.1
)

// PipelineConfig groups all stage configurations for one pipeline run.
type PipelineConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Store  StoreConfig  `json:"store" yaml:"store"`

	// RelevanceThreshold overrides DefaultRelevanceThreshold when > 0.
	RelevanceThreshold float64 `json:"relevance_threshold" yaml:"relevance_threshold"`

	// MinResults overrides DefaultMinResults when > 0.
	MinResults int `json:"min_results" yaml:"min_results"`

	// TitleSample overrides DefaultTitleSample when > 0.
	TitleSample int `json:"title_sample" yaml:"title_sample"`
}
