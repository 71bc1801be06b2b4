package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/analyzer"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/score"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/source"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// DefaultCollectTimeout bounds one pass's metric collection.
const DefaultCollectTimeout = 5 * time.Second

// gzipEstimateRatio is the assumed gzip compression ratio applied to
// measured transfer sizes. A surfaced heuristic, not a measurement.
const gzipEstimateRatio = 0.7

// Placeholder audit sub-scores used when no analyzer is configured or the
// analyzer call fails. Always surfaced with Approximate = true.
const (
	placeholderAccessibility = 90
	placeholderBestPractices = 85
	placeholderSEO           = 90
	placeholderPerformance   = 75
)

// ErrUnknownRecord is returned when a record ID is not in history.
var ErrUnknownRecord = errors.New("benchmark: unknown record id")

// RunConfig configures one measurement pass.
type RunConfig struct {
	URL           string
	Label         string
	RunCount      int
	Throttling    string
	DeviceProfile string
	DisableCache  bool
}

// Runner executes measurement passes and owns the append-only history.
// Safe for concurrent use.
type Runner struct {
	provider source.Provider
	analyzer analyzer.Analyzer // may be nil
	timeout  time.Duration

	mu         sync.Mutex
	history    []Record
	baselineID string

	now   func() time.Time
	newID func() string
}

// NewRunner returns a Runner measuring through provider. an may be nil, in
// which case audit sub-scores are placeholder values.
func NewRunner(provider source.Provider, an analyzer.Analyzer, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultCollectTimeout
	}
	return &Runner{
		provider: provider,
		analyzer: an,
		timeout:  timeout,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run performs one full measurement pass and appends the resulting record
// to history. Collection is best effort: instrumentation gaps and timeouts
// produce partial records, never errors. Only a genuinely unexpected
// internal fault (here: caller-cancelled context before collection starts)
// returns an error.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, fmt.Errorf("benchmark: run aborted: %w", err)
	}

	rec := Record{
		ID:         r.newID(),
		Label:      cfg.Label,
		URL:        cfg.URL,
		CapturedAt: r.now().UTC(),
	}

	rec.Vitals = r.collectVitals(ctx)
	rec.Timing = r.readTiming(ctx)
	rec.Resources, rec.Bundle = r.readResources(ctx)
	rec.Memory = r.readMemory(ctx)
	rec.Scores = r.auditScores(ctx, cfg.URL, rec.Vitals)
	rec.Session = r.readSession(ctx)

	r.mu.Lock()
	r.history = append(r.history, rec)
	r.mu.Unlock()

	metrics.BenchmarkRuns.Inc()
	slog.Info("benchmark: run complete",
		"id", rec.ID, "url", rec.URL,
		"vitals_populated", rec.Vitals.Populated(),
		"resources", rec.Resources.Count)
	return rec, nil
}

// collectVitals subscribes once per metric and waits for the first sample
// of each under one bounded timeout. Metrics still pending at the deadline
// stay nil; best effort, not all-or-nothing.
func (r *Runner) collectVitals(ctx context.Context) vitals.MetricSet {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		set vitals.MetricSet
	)
	g, ctx := errgroup.WithContext(ctx)

	for _, m := range vitals.All() {
		m := m
		g.Go(func() error {
			ch := make(chan vitals.Sample, 1)
			unsub, err := r.provider.Subscribe(m, source.SubscribeOptions{}, func(s vitals.Sample) {
				select {
				case ch <- s:
				default:
				}
			})
			if err != nil {
				// Instrumentation unavailable, slot stays nil.
				return nil
			}
			defer unsub()

			select {
			case s := <-ch:
				rated := vitals.Normalize(s)
				mu.Lock()
				set.Set(m, &rated)
				mu.Unlock()
			case <-ctx.Done():
				// Collection timeout, non-fatal partial result.
			}
			return nil
		})
	}

	_ = g.Wait() // goroutines never return errors
	return set
}

// readTiming returns the navigation timing deltas, defaulting to zeros when
// the instrumentation is absent.
func (r *Runner) readTiming(ctx context.Context) Timing {
	nt, err := r.provider.NavigationTiming(ctx)
	if err != nil {
		return Timing{}
	}
	return Timing{
		DOMContentLoadedMs:     nt.DOMContentLoadedMs,
		WindowLoadedMs:         nt.WindowLoadedMs,
		FirstPaintMs:           nt.FirstPaintMs,
		FirstContentfulPaintMs: nt.FirstContentfulPaintMs,
	}
}

// readResources enumerates resource-timing entries into resource and bundle
// statistics, partitioning script vs stylesheet bytes.
func (r *Runner) readResources(ctx context.Context) (ResourceStats, BundleStats) {
	entries, err := r.provider.Resources(ctx)
	if err != nil {
		return ResourceStats{}, BundleStats{}
	}

	var rs ResourceStats
	var bs BundleStats
	for _, e := range entries {
		rs.Count++
		rs.TotalBytes += e.TransferSize

		switch {
		case isScript(e):
			rs.ScriptBytes += e.TransferSize
			bs.TotalBytes += e.TransferSize
			bs.Chunks = append(bs.Chunks, Chunk{
				Name:              e.Name,
				TransferBytes:     e.TransferSize,
				GzipEstimateBytes: gzipEstimate(e.TransferSize),
			})
		case isStylesheet(e):
			rs.StylesheetBytes += e.TransferSize
		}
	}
	bs.GzipEstimateBytes = gzipEstimate(bs.TotalBytes)
	return rs, bs
}

// readMemory returns heap counters or nil when the host does not expose them.
func (r *Runner) readMemory(ctx context.Context) *MemoryStats {
	mem, err := r.provider.Memory(ctx)
	if err != nil || mem == nil {
		return nil
	}
	return &MemoryStats{
		UsedHeapBytes:  mem.UsedHeapBytes,
		TotalHeapBytes: mem.TotalHeapBytes,
		HeapLimitBytes: mem.HeapLimitBytes,
	}
}

// auditScores delegates to the analyzer when one is configured; otherwise
// (or on analyzer failure) fixed placeholders are used and marked
// approximate. The performance placeholder falls back to the vitals score
// when any vitals were measured.
func (r *Runner) auditScores(ctx context.Context, url string, set vitals.MetricSet) Scores {
	if r.analyzer != nil {
		res, err := r.analyzer.Analyze(ctx, url)
		if err == nil {
			return Scores{
				Performance:   res.Performance,
				Accessibility: res.Accessibility,
				BestPractices: res.BestPractices,
				SEO:           res.SEO,
				PWA:           res.PWA,
			}
		}
		slog.Warn("benchmark: analyzer unavailable, using placeholder scores", "err", err)
	}

	perf := placeholderPerformance
	if set.Populated() > 0 {
		perf = score.Score(set)
	}
	return Scores{
		Performance:   perf,
		Accessibility: placeholderAccessibility,
		BestPractices: placeholderBestPractices,
		SEO:           placeholderSEO,
		Approximate:   true,
	}
}

// readSession captures the session context for the record.
func (r *Runner) readSession(ctx context.Context) vitals.SessionContext {
	info, err := r.provider.Session(ctx)
	if err != nil {
		return vitals.SessionContext{}
	}
	return vitals.SessionContext{
		URL:            info.URL,
		AgentString:    info.AgentString,
		IsLowEndDevice: vitals.LowEnd(info.DeviceMemoryGB, info.ConnectionType),
		DeviceMemoryGB: info.DeviceMemoryGB,
		ConnectionType: info.ConnectionType,
		PageLoadTimeMs: info.PageLoadTimeMs,
	}
}

// History returns a copy of the chronological history list.
func (r *Runner) History() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.history))
	copy(out, r.history)
	return out
}

// Record returns the history entry with the given ID.
func (r *Runner) Record(id string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.history {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}

// Latest returns the newest history entry.
func (r *Runner) Latest() (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Record{}, false
	}
	return r.history[len(r.history)-1], true
}

// Clear empties the history and unsets the baseline.
func (r *Runner) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
	r.baselineID = ""
}

// SetBaseline designates the record with the given ID as the comparison
// anchor.
func (r *Runner) SetBaseline(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.history {
		if rec.ID == id {
			r.baselineID = id
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRecord, id)
}

// Baseline returns the designated baseline record, if one is set.
func (r *Runner) Baseline() (Record, bool) {
	r.mu.Lock()
	id := r.baselineID
	r.mu.Unlock()
	if id == "" {
		return Record{}, false
	}
	return r.Record(id)
}

// gzipEstimate applies the fixed compression heuristic to n bytes.
func gzipEstimate(n int64) int64 {
	return int64(float64(n) * gzipEstimateRatio)
}

func isScript(e source.ResourceEntry) bool {
	return e.Initiator == "script" || strings.HasSuffix(e.Name, ".js") || strings.HasSuffix(e.Name, ".mjs")
}

func isStylesheet(e source.ResourceEntry) bool {
	return e.Initiator == "css" || strings.HasSuffix(e.Name, ".css")
}
