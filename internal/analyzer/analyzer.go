// Package analyzer delegates Lighthouse-style audit sub-scores to an
// external page-analysis service.
//
// Unlike the telemetry reporter's at-most-once policy, this client is
// deliberately at-least-once: transient failures (transport errors, 5xx)
// are retried with truncated exponential backoff, while 4xx responses are
// permanent and fail immediately. The two delivery policies live in
// separate packages so they are never conflated in one retry abstraction.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts    = 4
	defaultRequestTimeout = 15 * time.Second
)

// Result holds the audit category scores (0–100) returned by the service.
type Result struct {
	Performance   int  `json:"performance"`
	Accessibility int  `json:"accessibility"`
	BestPractices int  `json:"best_practices"`
	SEO           int  `json:"seo"`
	PWA           *int `json:"pwa,omitempty"`
}

// Analyzer produces audit sub-scores for a URL.
type Analyzer interface {
	Analyze(ctx context.Context, url string) (Result, error)
}

// HTTPAnalyzer calls a remote analysis service over JSON/HTTP.
type HTTPAnalyzer struct {
	endpoint    string
	client      *http.Client
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error // injectable for tests
}

// NewHTTP returns an analyzer POSTing to endpoint.
func NewHTTP(endpoint string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: defaultRequestTimeout},
		maxAttempts: defaultMaxAttempts,
		sleep:       sleepCtx,
	}
}

// analyzeRequest is the service's request body.
type analyzeRequest struct {
	URL string `json:"url"`
}

// permanentError marks a response that must not be retried.
type permanentError struct {
	status int
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("analyzer: permanent failure, status %d", e.status)
}

// Analyze requests category scores for url, retrying transient failures
// with backoff until ctx expires or the attempt budget runs out.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, url string) (Result, error) {
	bo := newBackoff()
	var lastErr error

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		res, err := a.call(ctx, url)
		if err == nil {
			return res, nil
		}
		if pe, ok := err.(*permanentError); ok {
			return Result{}, pe
		}
		lastErr = err

		wait := bo.next()
		slog.Warn("analyzer: attempt failed, will retry",
			"url", url, "attempt", attempt, "retry_in", wait, "err", err)
		if err := a.sleep(ctx, wait); err != nil {
			return Result{}, fmt.Errorf("analyzer: %w", err)
		}
	}
	return Result{}, fmt.Errorf("analyzer: giving up after %d attempts: %w", a.maxAttempts, lastErr)
}

// call performs one request/response round trip.
func (a *HTTPAnalyzer) call(ctx context.Context, url string) (Result, error) {
	body, err := json.Marshal(analyzeRequest{URL: url})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Result{}, &permanentError{status: resp.StatusCode}
	default:
		return Result{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return res, nil
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
