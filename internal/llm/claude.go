// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/vetting-engine/internal/httputil"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeClient calls the Claude Messages API. All pipeline stages share one
// client configured with a fixed low temperature.
type ClaudeClient struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

// NewClaudeClient builds a client from config, applying defaults.
func NewClaudeClient(cfg types.AIConfig) *ClaudeClient {
	temp := cfg.Temperature
	if temp <= 0 {
		temp = types.DefaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &ClaudeClient{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: temp,
		MaxTokens:   maxTokens,
	}
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends exactly one prompt to the Claude API and returns the
// response text. Failures are typed so CompleteJSON, the single retry layer
// for model calls, can decide whether another attempt is worth it.
func (c *ClaudeClient) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		System:      system,
		Messages: []claudeMessage{
			{Role: "user", Content: user},
		},
	}

	resp, err := httputil.PostJSON(ctx, c.HTTPClient, claudeAPIURL, map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}, reqBody)
	if err != nil {
		return "", &ProviderError{Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &ProviderError{
			Retryable: httputil.RetryableStatus(resp.StatusCode),
			Err:       fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body)),
		}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in Claude API response")
}
