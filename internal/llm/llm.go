// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the language-model client used by the verification
// and analysis stages. Stages send a role-tagged prompt and parse the
// response against their own fixed JSON schema; schema nonconformance is a
// typed parse failure, never a crash.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Client abstracts the model API so tests can supply a mock. Complete sends
// one system/user prompt pair and returns the raw response text.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ProviderError is a model transport failure: the call never produced a
// response to parse.
type ProviderError struct {
	// Retryable says whether another attempt could succeed.
	Retryable bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// SchemaError reports a response that did not conform to the caller's
// declared schema.
type SchemaError struct {
	// Raw is the nonconforming response text, kept for diagnostics.
	Raw string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response does not match schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// backoffBase controls the base duration for exponential backoff between
// retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// CompleteJSON calls the client with up to maxRetries extra attempts on
// transport failure, then decodes the response into out. This is the only
// retry layer for model calls. It returns a *ProviderError when the
// transport never succeeded and a *SchemaError when the response text does
// not decode. A provider error marked non-retryable fails immediately.
func CompleteJSON(ctx context.Context, c Client, system, user string, out any, maxRetries int) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return &ProviderError{Err: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		raw, err := c.Complete(ctx, system, user)
		if err != nil {
			var pe *ProviderError
			if errors.As(err, &pe) && !pe.Retryable {
				return pe
			}
			lastErr = err
			continue
		}
		return DecodeJSON(raw, out)
	}
	return &ProviderError{Retryable: true, Err: fmt.Errorf("after %d retries: %w", maxRetries, lastErr)}
}

// DecodeJSON strips Markdown code fences the model sometimes wraps around
// its output and unmarshals the remainder into out.
func DecodeJSON(raw string, out any) error {
	text := stripFences(raw)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &SchemaError{Raw: raw, Err: err}
	}
	return nil
}

// stripFences removes a leading ```json (or bare ```) fence and the matching
// trailing fence.
func stripFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
