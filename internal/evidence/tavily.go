// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/vetting-engine/internal/httputil"
	"github.com/pdiddy/vetting-engine/pkg/types"
)

// tavilyAPIURL is the Tavily search endpoint. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIURL = "https://api.tavily.com/search"

// TavilyBackend queries the Tavily web search API.
type TavilyBackend struct {
	APIKey string
	Client *http.Client
}

// Name returns the backend identifier.
func (b *TavilyBackend) Name() string { return "tavily" }

// tavilyRequest is the request body for the Tavily search API.
type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	Topic       string `json:"topic,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	Days        int    `json:"days,omitempty"`
}

// tavilyResponse is the response body from the Tavily search API.
type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// tavilyResult is a single hit in the Tavily response.
type tavilyResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search issues exactly one query against the Tavily API. Any failure is
// returned for the aggregator, which owns the single retry before degrading
// the category.
func (b *TavilyBackend) Search(ctx context.Context, q Query, cfg types.SearchConfig) ([]types.RawResult, error) {
	reqBody := tavilyRequest{
		Query:       q.Text,
		SearchDepth: string(q.Depth),
		MaxResults:  q.MaxResults,
		Days:        q.Days,
	}
	if q.Topic != TopicGeneral {
		reqBody.Topic = string(q.Topic)
	}

	headers := map[string]string{"Authorization": "Bearer " + b.APIKey}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	resp, err := httputil.PostJSON(ctx, b.Client, tavilyAPIURL, headers, reqBody)
	if err != nil {
		return nil, fmt.Errorf("Tavily API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Tavily API returned HTTP %d", resp.StatusCode)
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing Tavily response: %w", err)
	}

	results := make([]types.RawResult, 0, len(tr.Results))
	for _, r := range tr.Results {
		results = append(results, types.RawResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}
