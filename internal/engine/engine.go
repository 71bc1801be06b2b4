// Package engine ties the collector, scorer, benchmark runner, scheduler
// and reporter into one explicitly constructed instance. The host builds
// exactly one Engine at startup and passes it by reference to its
// consumers; Close unsubscribes everything and stops all timers.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/analyzer"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/benchmark"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/collector"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/compare"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/config"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/report"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/schedule"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/score"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/source"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/trend"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// Engine is the performance telemetry and regression-detection engine.
type Engine struct {
	cfg *config.EngineConfig

	collector *collector.Collector
	runner    *benchmark.Runner
	scheduler *schedule.Scheduler
	reporter  *report.Reporter

	closeOnce sync.Once
}

// New constructs the engine from cfg, measuring through provider.
func New(cfg config.EngineConfig, provider source.Provider) *Engine {
	e := &Engine{cfg: &cfg}

	limiter := report.NewErrorLimiter(report.DefaultErrorLimit)
	endpoint := ""
	if cfg.EnableAnalytics {
		endpoint = cfg.AnalyticsEndpoint
	}
	e.reporter = report.New(endpoint, limiter)

	var an analyzer.Analyzer
	if cfg.Analyzer.Endpoint != "" {
		an = analyzer.NewHTTP(cfg.Analyzer.Endpoint)
	}
	e.runner = benchmark.NewRunner(provider, an, cfg.Benchmark.Timeout)

	mode := collector.ReportOnce
	if cfg.ReportMode == config.ReportModeContinuous {
		mode = collector.ReportContinuous
	}
	e.collector = collector.New(provider, collector.Options{
		ReportAllChanges: cfg.ReportAllChanges,
		Mode:             mode,
		OnReport: func(snap vitals.Snapshot) {
			// Fire-and-forget: at-most-once delivery, no queue.
			go e.reporter.Send(context.Background(), snap)
		},
	})

	e.scheduler = schedule.New(e.runner, benchmark.RunConfig{
		URL:           cfg.Benchmark.URL,
		RunCount:      cfg.Benchmark.RunCount,
		Throttling:    cfg.Benchmark.Throttling,
		DeviceProfile: cfg.Benchmark.DeviceProfile,
		DisableCache:  cfg.Benchmark.DisableCache,
	}, cfg.ScheduledInterval, func(a schedule.Alert) {
		go e.reporter.Send(context.Background(), a)
	})

	return e
}

// Snapshot returns a copy of the live snapshot.
func (e *Engine) Snapshot() vitals.Snapshot { return e.collector.Snapshot() }

// Summary tallies the live snapshot's ratings and aggregate score.
func (e *Engine) Summary() score.Summary { return score.Summarize(e.Snapshot().MetricSet) }

// Supported reports whether any metric subscription succeeded. False means
// the host lacks the instrumentation layer entirely; consumers should show
// a "not supported" state rather than an error.
func (e *Engine) Supported() bool { return e.collector.Supported() }

// Restart forces re-collection with report-every-change semantics. Never
// fails.
func (e *Engine) Restart() { e.collector.Restart() }

// RunBenchmark executes one measurement pass and appends it to history.
func (e *Engine) RunBenchmark(ctx context.Context, label string) (benchmark.Record, error) {
	return e.runner.Run(ctx, benchmark.RunConfig{
		URL:           e.cfg.Benchmark.URL,
		Label:         label,
		RunCount:      e.cfg.Benchmark.RunCount,
		Throttling:    e.cfg.Benchmark.Throttling,
		DeviceProfile: e.cfg.Benchmark.DeviceProfile,
		DisableCache:  e.cfg.Benchmark.DisableCache,
	})
}

// History returns the chronological benchmark history.
func (e *Engine) History() []benchmark.Record { return e.runner.History() }

// Record looks up one history entry by ID.
func (e *Engine) Record(id string) (benchmark.Record, bool) { return e.runner.Record(id) }

// ClearHistory empties the benchmark history and unsets the baseline.
func (e *Engine) ClearHistory() { e.runner.Clear() }

// SetBaseline designates the record with the given ID as the comparison
// anchor.
func (e *Engine) SetBaseline(id string) error { return e.runner.SetBaseline(id) }

// Compare diffs two history records. An empty baselineID selects the
// designated baseline; an empty currentID selects the latest record.
func (e *Engine) Compare(baselineID, currentID string) (compare.Result, error) {
	var baseline benchmark.Record
	var ok bool
	if baselineID == "" {
		baseline, ok = e.runner.Baseline()
		if !ok {
			return compare.Result{}, fmt.Errorf("engine: no baseline designated")
		}
	} else if baseline, ok = e.runner.Record(baselineID); !ok {
		return compare.Result{}, fmt.Errorf("engine: %w", benchmark.ErrUnknownRecord)
	}

	var current benchmark.Record
	if currentID == "" {
		current, ok = e.runner.Latest()
		if !ok {
			return compare.Result{}, fmt.Errorf("engine: history is empty")
		}
	} else if current, ok = e.runner.Record(currentID); !ok {
		return compare.Result{}, fmt.Errorf("engine: %w", benchmark.ErrUnknownRecord)
	}

	return compare.Compare(baseline, current), nil
}

// Trend classifies recent per-metric trajectories over the configured
// window.
func (e *Engine) Trend() trend.Result {
	return trend.Analyze(e.runner.History(), e.cfg.TrendWindow)
}

// Export serializes the history as "json" or "csv".
func (e *Engine) Export(format string) (string, error) {
	return benchmark.Export(e.runner.History(), format)
}

// ScheduleTests starts the repeating benchmark timer.
func (e *Engine) ScheduleTests() { e.scheduler.Start() }

// StopScheduledTesting cancels the timer. Idempotent.
func (e *Engine) StopScheduledTesting() { e.scheduler.Stop() }

// LastAlert returns the most recent regression alert, if any.
func (e *Engine) LastAlert() (schedule.Alert, bool) { return e.scheduler.LastAlert() }

// Report delivers the current snapshot to the analytics endpoint under the
// at-most-once policy.
func (e *Engine) Report(ctx context.Context) { e.reporter.Send(ctx, e.Snapshot()) }

// Reporting reports whether a delivery is in flight.
func (e *Engine) Reporting() bool { return e.reporter.Reporting() }

// Close cancels all subscriptions and timers. Idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.scheduler.Stop()
		e.collector.Close()
	})
}
