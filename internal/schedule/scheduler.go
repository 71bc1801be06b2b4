// Package schedule runs the benchmark runner on an interval, compares each
// run against the immediately prior record and raises a regression alert.
//
// Overlap policy: a tick arriving while the previous run is still in flight
// is skipped (counted, logged at debug), bounding concurrent report traffic
// at one run.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/benchmark"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/compare"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
)

// DefaultInterval between scheduled benchmark runs.
const DefaultInterval = time.Hour

// Alert is the single, overwritten regression alert slot.
type Alert struct {
	Summary      string          `json:"summary"`
	Regressions  []compare.Entry `json:"regressions"`
	Improvements []compare.Entry `json:"improvements"`
	TriggeredAt  time.Time       `json:"triggered_at"`
}

// Scheduler owns the repeating benchmark timer. Safe for concurrent use.
type Scheduler struct {
	runner       *benchmark.Runner
	cfg          benchmark.RunConfig
	interval     time.Duration
	onRegression func(Alert) // may be nil

	mu        sync.Mutex
	cancel    context.CancelFunc
	lastAlert *Alert

	inFlight atomic.Bool
	now      func() time.Time
}

// New returns a stopped Scheduler. interval <= 0 selects DefaultInterval.
func New(runner *benchmark.Runner, cfg benchmark.RunConfig, interval time.Duration, onRegression func(Alert)) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:       runner,
		cfg:          cfg,
		interval:     interval,
		onRegression: onRegression,
		now:          time.Now,
	}
}

// Start begins the repeating timer. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.loop(ctx)
	slog.Info("scheduler: started", "interval", s.interval, "url", s.cfg.URL)
}

// Stop cancels the timer. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		slog.Info("scheduler: stopped")
	}
}

// LastAlert returns a copy of the most recent regression alert, if any.
func (s *Scheduler) LastAlert() (Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAlert == nil {
		return Alert{}, false
	}
	return *s.lastAlert, true
}

func (s *Scheduler) loop(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// Each tick runs independently so a long benchmark cannot
			// stall the ticker; overlap is resolved by skip-if-busy.
			go s.tick(ctx)
		}
	}
}

// tick runs one benchmark pass and compares it against the prior record.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.SchedulerTicksSkipped.Inc()
		slog.Debug("scheduler: previous run still in flight, skipping tick")
		return
	}
	defer s.inFlight.Store(false)

	rec, err := s.runner.Run(ctx, s.cfg)
	if err != nil {
		slog.Warn("scheduler: benchmark run failed", "err", err)
		return
	}

	history := s.runner.History()
	if len(history) < 2 {
		return
	}
	prior := history[len(history)-2]

	res := compare.Compare(prior, rec)
	if len(res.Regressions) == 0 {
		return
	}

	alert := Alert{
		Summary:      res.Summary,
		Regressions:  res.Regressions,
		Improvements: res.Improvements,
		TriggeredAt:  s.now().UTC(),
	}

	s.mu.Lock()
	s.lastAlert = &alert
	s.mu.Unlock()

	slog.Warn("scheduler: performance regression detected",
		"summary", alert.Summary, "regressions", len(alert.Regressions))
	if s.onRegression != nil {
		s.onRegression(alert)
	}
}
