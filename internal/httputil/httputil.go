// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the provider clients.
// Retry policy lives with the callers, one retry per provider call; this
// package only builds requests and classifies responses.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PostJSON marshals body and issues one POST with JSON headers. The caller
// owns the response body and decides whether a failure is worth retrying.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

// RetryableStatus reports whether a response status warrants another
// attempt: rate limiting (429) or a server-side failure (5xx).
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
