// Package metrics holds the engine's own Prometheus instrumentation,
// exposed by the host daemon on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SamplesCollected counts normalized samples per metric name.
	SamplesCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vitals_samples_collected_total",
		Help: "Normalized metric samples accepted by the collector.",
	}, []string{"metric"})

	// ReportsDelivered counts telemetry envelopes accepted by the sink.
	ReportsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitals_reports_delivered_total",
		Help: "Telemetry reports delivered to the analytics endpoint.",
	})

	// ReportsFailed counts envelopes dropped by the at-most-once policy.
	ReportsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitals_reports_failed_total",
		Help: "Telemetry reports dropped after a delivery failure.",
	})

	// ErrorsSuppressed counts log lines swallowed by the error-rate limiter.
	ErrorsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitals_errors_suppressed_total",
		Help: "Identical error signatures suppressed past the per-minute cap.",
	})

	// BenchmarkRuns counts completed benchmark passes.
	BenchmarkRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitals_benchmark_runs_total",
		Help: "Benchmark measurement passes appended to history.",
	})

	// SchedulerTicksSkipped counts ticks skipped because a run was in flight.
	SchedulerTicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vitals_scheduler_ticks_skipped_total",
		Help: "Scheduled ticks skipped by the skip-if-busy overlap policy.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
