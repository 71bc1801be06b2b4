package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// noSleep replaces the backoff wait so retry tests run instantly.
func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.URL != "https://example.com" {
			t.Errorf("request url = %q", req.URL)
		}
		_ = json.NewEncoder(w).Encode(Result{
			Performance: 82, Accessibility: 95, BestPractices: 88, SEO: 91,
		})
	}))
	defer srv.Close()

	a := NewHTTP(srv.URL)
	a.sleep = noSleep

	res, err := a.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Performance != 82 || res.SEO != 91 {
		t.Errorf("Result = %+v", res)
	}
}

func TestAnalyze_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Result{Performance: 70})
	}))
	defer srv.Close()

	a := NewHTTP(srv.URL)
	a.sleep = noSleep

	res, err := a.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Performance != 70 {
		t.Errorf("Performance = %d, want 70", res.Performance)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("service called %d times, want 3", got)
	}
}

func TestAnalyze_PermanentFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	a := NewHTTP(srv.URL)
	a.sleep = noSleep

	if _, err := a.Analyze(context.Background(), "https://example.com"); err == nil {
		t.Fatal("Analyze succeeded against a 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("service called %d times, want 1 (no retry on 4xx)", got)
	}
}

func TestAnalyze_ExhaustsAttemptBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewHTTP(srv.URL)
	a.sleep = noSleep

	if _, err := a.Analyze(context.Background(), "https://example.com"); err == nil {
		t.Fatal("Analyze succeeded against a permanently failing service")
	}
	if got := calls.Load(); got != int32(a.maxAttempts) {
		t.Errorf("service called %d times, want %d", got, a.maxAttempts)
	}
}

func TestAnalyze_CancelledContextStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewHTTP(srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	a.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel() // cancel during the first backoff wait
		return ctx.Err()
	}

	if _, err := a.Analyze(ctx, "https://example.com"); err == nil {
		t.Fatal("Analyze ignored context cancellation")
	}
}

func TestBackoff_Progression(t *testing.T) {
	b := newBackoff()
	prevCeiling := backoffInitial
	for i := 0; i < 10; i++ {
		d := b.next()
		// Jitter is ±25%, so each wait stays within 125% of its ceiling.
		max := time.Duration(float64(prevCeiling) * 1.25)
		if d < 0 || d > max {
			t.Fatalf("wait %d = %v, outside [0, %v]", i, d, max)
		}
		prevCeiling = time.Duration(float64(prevCeiling) * backoffMultiplier)
		if prevCeiling > backoffMax {
			prevCeiling = backoffMax
		}
	}
}
