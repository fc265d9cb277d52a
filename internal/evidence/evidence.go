// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence collects categorized search results for a company and
// filters them for relevance. Category queries are independent and fan out
// concurrently; a failed category degrades to an empty sequence instead of
// aborting the aggregation.
package evidence

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/vetting-engine/pkg/types"
)

// Depth selects the provider's search depth.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthAdvanced Depth = "advanced"
)

// Topic selects the provider's result corpus.
type Topic string

const (
	TopicGeneral Topic = "general"
	TopicNews    Topic = "news"
)

// Query holds the parameters for one provider call.
type Query struct {
	Text       string
	Depth      Depth
	Topic      Topic
	MaxResults int

	// Days bounds news results to a recent window; 0 means unbounded.
	Days int
}

// Backend searches the external provider. The Tavily implementation is the
// production backend; tests supply mocks.
type Backend interface {
	Name() string
	Search(ctx context.Context, q Query, cfg types.SearchConfig) ([]types.RawResult, error)
}

// categoryRetries is the number of extra attempts for a failed category
// before it is treated as empty.
const categoryRetries = 1

// retryDelay is the pause before a category's single retry. Tests override
// this to avoid real sleeps.
var retryDelay = 2 * time.Second

// categoryQueries builds the fixed categorized query set for a company.
// Each category carries its own depth, topic, and size.
func categoryQueries(req types.VettingRequest, cfg types.SearchConfig) map[types.Category]Query {
	name := req.CompanyName
	days := cfg.NewsWindowDays
	if days <= 0 {
		days = types.DefaultNewsWindowDays
	}

	queries := map[types.Category]Query{
		types.CategoryGeneral: {
			Text:       name + " company overview reputation",
			Depth:      DepthAdvanced,
			Topic:      TopicGeneral,
			MaxResults: 10,
		},
		types.CategoryNews: {
			Text:       name + " news scandal controversy lawsuit",
			Depth:      DepthAdvanced,
			Topic:      TopicNews,
			MaxResults: 10,
			Days:       days,
		},
		types.CategoryLegal: {
			Text:       name + " legal violations regulatory enforcement SEC violations",
			Depth:      DepthAdvanced,
			Topic:      TopicGeneral,
			MaxResults: 8,
		},
		types.CategorySocial: {
			Text:       name + " social media Twitter LinkedIn Facebook Instagram reputation",
			Depth:      DepthBasic,
			Topic:      TopicGeneral,
			MaxResults: 5,
		},
		types.CategoryExecutives: {
			Text:       name + " CEO CFO COO executives leadership management team board",
			Depth:      DepthAdvanced,
			Topic:      TopicGeneral,
			MaxResults: 10,
		},
	}

	// Known executives narrow the executives category to their misconduct
	// history instead of a leadership roster search.
	if len(req.Executives) > 0 {
		var quoted []string
		for _, e := range req.Executives {
			quoted = append(quoted, `"`+e+`"`)
		}
		queries[types.CategoryExecutives] = Query{
			Text:       strings.Join(quoted, " ") + " " + name + " scandal controversy misconduct allegations",
			Depth:      DepthAdvanced,
			Topic:      TopicGeneral,
			MaxResults: 8,
		}
	}

	return queries
}

// AggregateOutput holds the collected bundle and per-category failures.
type AggregateOutput struct {
	Bundle types.Bundle

	// CategoryErrors lists categories whose search failed after retrying;
	// their sequences are empty in the bundle.
	CategoryErrors []string
}

// DataFound reports whether at least one category returned a result.
func (o AggregateOutput) DataFound() bool {
	return o.Bundle.DataFound()
}

// Aggregate fans the fixed category queries out to the backend concurrently
// and collects the results into a bundle. A category that fails after one
// retry is recorded and left empty; aggregation only errors when the context
// is cancelled.
func Aggregate(ctx context.Context, b Backend, req types.VettingRequest, cfg types.SearchConfig, logger *zap.Logger, w io.Writer) (AggregateOutput, error) {
	queries := categoryQueries(req, cfg)

	type categoryResult struct {
		category types.Category
		results  []types.RawResult
		err      error
	}

	ch := make(chan categoryResult, len(queries))
	var wg sync.WaitGroup

	for cat, q := range queries {
		wg.Add(1)
		go func(cat types.Category, q Query) {
			defer wg.Done()
			results, err := searchWithRetry(ctx, b, q, cfg)
			ch <- categoryResult{category: cat, results: results, err: err}
		}(cat, q)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	out := AggregateOutput{Bundle: make(types.Bundle, len(queries))}
	for cr := range ch {
		if cr.err != nil {
			if ctx.Err() != nil {
				return AggregateOutput{}, ctx.Err()
			}
			msg := fmt.Sprintf("%s: %v", cr.category, cr.err)
			out.CategoryErrors = append(out.CategoryErrors, msg)
			logger.Warn("category search failed",
				zap.String("category", string(cr.category)),
				zap.Error(cr.err))
			fmt.Fprintf(w, "warning: %s search failed: %v\n", cr.category, cr.err)
			out.Bundle[cr.category] = nil
			continue
		}
		out.Bundle[cr.category] = cr.results
	}

	logger.Info("evidence aggregated",
		zap.String("company", req.CompanyName),
		zap.Int("results", out.Bundle.Total()),
		zap.Int("failed_categories", len(out.CategoryErrors)))

	return out, nil
}

// searchWithRetry issues one category query with a single retry on failure.
// This is the only retry layer for search; the backend itself never retries.
func searchWithRetry(ctx context.Context, b Backend, q Query, cfg types.SearchConfig) ([]types.RawResult, error) {
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = categoryRetries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		results, err := b.Search(ctx, q, cfg)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
