package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/benchmark"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/source"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// tickProvider serves a single adjustable LCP value per measurement pass.
type tickProvider struct {
	mu  sync.Mutex
	lcp float64
}

func (p *tickProvider) set(v float64) {
	p.mu.Lock()
	p.lcp = v
	p.mu.Unlock()
}

func (p *tickProvider) Subscribe(m vitals.Metric, _ source.SubscribeOptions, fn source.SampleFunc) (source.CancelFunc, error) {
	if m != vitals.LCP {
		return nil, source.ErrUnavailable
	}
	p.mu.Lock()
	v := p.lcp
	p.mu.Unlock()
	go fn(vitals.Sample{Metric: m, Value: v})
	return func() {}, nil
}

func (p *tickProvider) Session(context.Context) (source.SessionInfo, error) {
	return source.SessionInfo{}, nil
}

func (p *tickProvider) NavigationTiming(context.Context) (source.NavigationTiming, error) {
	return source.NavigationTiming{}, nil
}

func (p *tickProvider) Resources(context.Context) ([]source.ResourceEntry, error) {
	return nil, nil
}

func (p *tickProvider) Memory(context.Context) (*source.MemoryInfo, error) {
	return nil, source.ErrUnavailable
}

func TestScheduler_TickRaisesRegressionAlert(t *testing.T) {
	p := &tickProvider{lcp: 2000}
	r := benchmark.NewRunner(p, nil, time.Second)

	var (
		mu     sync.Mutex
		alerts []Alert
	)
	s := New(r, benchmark.RunConfig{URL: "https://example.com"}, time.Hour, func(a Alert) {
		mu.Lock()
		alerts = append(alerts, a)
		mu.Unlock()
	})

	// First tick has no prior record to compare against.
	s.tick(context.Background())
	if _, ok := s.LastAlert(); ok {
		t.Fatal("alert raised on the first run")
	}

	// Second tick regresses LCP by 50%.
	p.set(3000)
	s.tick(context.Background())

	alert, ok := s.LastAlert()
	if !ok {
		t.Fatal("no alert after a regressing run")
	}
	if len(alert.Regressions) != 1 || alert.Regressions[0].Metric != "LCP" {
		t.Errorf("Regressions = %+v", alert.Regressions)
	}
	if alert.TriggeredAt.IsZero() {
		t.Error("TriggeredAt not stamped")
	}

	mu.Lock()
	n := len(alerts)
	mu.Unlock()
	if n != 1 {
		t.Errorf("onRegression invoked %d times, want 1", n)
	}
}

func TestScheduler_NoAlertWhenStable(t *testing.T) {
	p := &tickProvider{lcp: 2000}
	r := benchmark.NewRunner(p, nil, time.Second)
	s := New(r, benchmark.RunConfig{URL: "https://example.com"}, time.Hour, nil)

	s.tick(context.Background())
	s.tick(context.Background())
	if _, ok := s.LastAlert(); ok {
		t.Error("alert raised with a flat metric")
	}
}

func TestScheduler_SkipsOverlappingTick(t *testing.T) {
	p := &tickProvider{lcp: 2000}
	r := benchmark.NewRunner(p, nil, time.Second)
	s := New(r, benchmark.RunConfig{URL: "https://example.com"}, time.Hour, nil)

	s.inFlight.Store(true)
	s.tick(context.Background())
	if got := len(r.History()); got != 0 {
		t.Errorf("busy tick still ran a benchmark: history has %d records", got)
	}

	s.inFlight.Store(false)
	s.tick(context.Background())
	if got := len(r.History()); got != 1 {
		t.Errorf("post-busy tick did not run: history has %d records", got)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	p := &tickProvider{lcp: 2000}
	r := benchmark.NewRunner(p, nil, time.Second)
	s := New(r, benchmark.RunConfig{URL: "https://example.com"}, time.Hour, nil)

	s.Start()
	s.Start() // no-op while running
	s.Stop()
	s.Stop() // idempotent
}
