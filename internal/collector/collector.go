package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/source"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// sessionCaptureTimeout bounds the synchronous session-context capture at
// construction time.
const sessionCaptureTimeout = 2 * time.Second

// ReportMode controls how often the report-ready callback fires.
type ReportMode int

const (
	// ReportOnce latches: the report callback fires for the first
	// qualifying snapshot only.
	ReportOnce ReportMode = iota

	// ReportContinuous fires the report callback on every qualifying
	// update.
	ReportContinuous
)

// Options configure a Collector.
type Options struct {
	// ReportAllChanges subscribes for every observed change instead of
	// settled values only.
	ReportAllChanges bool

	// Mode selects the report-ready callback cadence.
	Mode ReportMode

	// OnSample, when set, is invoked for every normalized sample.
	OnSample func(vitals.RatedMetric)

	// OnReport, when set, is invoked with a copy of the full snapshot once
	// the report-ready predicate holds (per Mode).
	OnReport func(vitals.Snapshot)
}

// Collector subscribes to the instrumentation provider and maintains the
// single live Snapshot. Safe for concurrent use.
type Collector struct {
	provider source.Provider
	opts     Options

	mu           sync.Mutex
	snap         vitals.Snapshot
	cancels      []source.CancelFunc
	subscribed   int
	reported     bool
	sessionKnown bool
	closed       bool

	now func() time.Time
}

// New constructs a Collector: it captures the session context, then
// subscribes to every metric. Metrics the host cannot measure leave their
// slot permanently null; New itself never fails. Push providers may not
// know their session yet, in which case the capture is retried on each
// incoming sample until it carries data.
func New(provider source.Provider, opts Options) *Collector {
	c := &Collector{
		provider: provider,
		opts:     opts,
		now:      time.Now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionCaptureTimeout)
	defer cancel()
	info, err := provider.Session(ctx)
	if err != nil {
		slog.Warn("collector: session context unavailable", "err", err)
	}
	c.snap.Session = sessionContext(info)
	c.sessionKnown = err == nil && info != (source.SessionInfo{})

	c.subscribeAll(source.SubscribeOptions{ReportAllChanges: opts.ReportAllChanges})
	return c
}

// sessionContext derives the snapshot's session context from raw provider
// info, classifying low-end devices from memory and connection type.
func sessionContext(info source.SessionInfo) vitals.SessionContext {
	return vitals.SessionContext{
		URL:            info.URL,
		AgentString:    info.AgentString,
		IsLowEndDevice: vitals.LowEnd(info.DeviceMemoryGB, info.ConnectionType),
		DeviceMemoryGB: info.DeviceMemoryGB,
		ConnectionType: info.ConnectionType,
		PageLoadTimeMs: info.PageLoadTimeMs,
	}
}

// subscribeAll registers a handler per metric; unavailable instrumentation
// is logged and skipped. Caller must not hold c.mu.
func (c *Collector) subscribeAll(opts source.SubscribeOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range vitals.All() {
		m := m
		cancel, err := c.provider.Subscribe(m, opts, func(s vitals.Sample) {
			c.handleSample(s)
		})
		if err != nil {
			slog.Debug("collector: metric not measurable on this host", "metric", m.String(), "err", err)
			continue
		}
		c.cancels = append(c.cancels, cancel)
		c.subscribed++
	}
}

// handleSample normalizes s, replaces its snapshot slot and drives the
// per-sample and report-ready callbacks.
func (c *Collector) handleSample(s vitals.Sample) {
	rated := vitals.Normalize(s)

	c.refreshSession()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.snap.Set(s.Metric, &rated)
	c.snap.CapturedAt = c.now().UTC()

	report := c.snap.Ready() && (c.opts.Mode == ReportContinuous || !c.reported)
	if report {
		c.reported = true
	}
	snapCopy := c.snap
	c.mu.Unlock()

	metrics.SamplesCollected.WithLabelValues(s.Metric.String()).Inc()

	if c.opts.OnSample != nil {
		c.opts.OnSample(rated)
	}
	if report && c.opts.OnReport != nil {
		c.opts.OnReport(snapCopy)
	}
}

// refreshSession re-reads the provider's session context while it is still
// unknown. A beacon source learns its session from the first payload that
// carries it, which lands after the Collector is constructed; without the
// refresh the snapshot (and every report built from it) would keep the zero
// session forever. Low-end classification is re-derived on back-fill.
func (c *Collector) refreshSession() {
	c.mu.Lock()
	known := c.sessionKnown || c.closed
	c.mu.Unlock()
	if known {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sessionCaptureTimeout)
	defer cancel()
	info, err := c.provider.Session(ctx)
	if err != nil || info == (source.SessionInfo{}) {
		return
	}

	c.mu.Lock()
	if !c.sessionKnown && !c.closed {
		c.snap.Session = sessionContext(info)
		c.sessionKnown = true
	}
	c.mu.Unlock()
}

// Snapshot returns a copy of the live snapshot. The rated metrics it points
// at are immutable.
func (c *Collector) Snapshot() vitals.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Supported reports whether at least one metric subscription succeeded.
// A false value means the host lacks the instrumentation layer entirely.
func (c *Collector) Supported() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscribed > 0
}

// Restart forces re-collection for interactive consumers: all existing
// subscriptions are cancelled and replaced with report-every-change,
// continuous-mode subscriptions. It is a no-op, never an error, when the
// host lacks the instrumentation APIs.
func (c *Collector) Restart() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	cancels := c.cancels
	c.cancels = nil
	c.subscribed = 0
	c.reported = false
	c.opts.Mode = ReportContinuous
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	c.subscribeAll(source.SubscribeOptions{ReportAllChanges: true})
}

// Close cancels every active subscription. Idempotent.
func (c *Collector) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancels := c.cancels
	c.cancels = nil
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
