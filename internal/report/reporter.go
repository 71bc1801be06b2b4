package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
)

// deliveryTimeout bounds one delivery attempt. The attempt runs on a
// context detached from the caller's, so engine shutdown does not cancel a
// report already in flight.
const deliveryTimeout = 10 * time.Second

// envelopeType tags every telemetry envelope.
const envelopeType = "core-web-vitals"

// envelope is the JSON body POSTed to the analytics endpoint.
type envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Reporter delivers snapshots and alerts to the analytics endpoint.
// Delivery is at-most-once: a failed POST is logged (subject to the shared
// error-rate limiter) and the payload is dropped. Send never returns an
// error to the caller.
type Reporter struct {
	endpoint  string
	client    *http.Client
	limiter   *ErrorLimiter
	reporting atomic.Bool
	now       func() time.Time
}

// New returns a Reporter posting to endpoint. An empty endpoint disables
// delivery entirely; Send becomes a no-op.
func New(endpoint string, limiter *ErrorLimiter) *Reporter {
	return &Reporter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: deliveryTimeout},
		limiter:  limiter,
		now:      time.Now,
	}
}

// Reporting reports whether a delivery is currently in flight.
func (r *Reporter) Reporting() bool {
	return r.reporting.Load()
}

// Send wraps data in the telemetry envelope and POSTs it. Failures are
// logged and dropped, never retried, never surfaced.
func (r *Reporter) Send(ctx context.Context, data any) {
	if r.endpoint == "" {
		return
	}

	r.reporting.Store(true)
	defer r.reporting.Store(false)

	body, err := json.Marshal(envelope{
		Type:      envelopeType,
		Data:      data,
		Timestamp: r.now().UnixMilli(),
	})
	if err != nil {
		r.fail(fmt.Errorf("marshal envelope: %w", err))
		return
	}

	// Detach from the caller's lifecycle so shutdown does not abort a
	// delivery already underway.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		r.fail(fmt.Errorf("build request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.fail(fmt.Errorf("http post: %w", err))
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		r.fail(fmt.Errorf("endpoint returned HTTP %d", resp.StatusCode))
		return
	}

	metrics.ReportsDelivered.Inc()
	slog.Debug("reporter: envelope delivered", "endpoint", r.endpoint)
}

// fail records a dropped delivery, logging at most the limiter's cap per
// identical failure per minute.
func (r *Reporter) fail(err error) {
	metrics.ReportsFailed.Inc()
	if r.limiter == nil || r.limiter.Allow(err.Error()) {
		slog.Error("reporter: delivery failed, payload dropped", "endpoint", r.endpoint, "err", err)
	}
}
