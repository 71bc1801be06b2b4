package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

// Gauge names published by synthetic page probes. One gauge per vital,
// milliseconds except the unitless layout-shift score.
const (
	gaugeLCP  = "page_vitals_largest_contentful_paint_ms"
	gaugeFID  = "page_vitals_first_input_delay_ms"
	gaugeCLS  = "page_vitals_cumulative_layout_shift"
	gaugeFCP  = "page_vitals_first_contentful_paint_ms"
	gaugeTTFB = "page_vitals_time_to_first_byte_ms"
	gaugeINP  = "page_vitals_interaction_to_next_paint_ms"

	gaugeDOMContentLoaded = "page_timing_dom_content_loaded_ms"
	gaugeWindowLoaded     = "page_timing_window_loaded_ms"
	gaugeFirstPaint       = "page_timing_first_paint_ms"
)

// vitalGauges maps each metric to its exposition gauge name.
var vitalGauges = map[vitals.Metric]string{
	vitals.LCP:  gaugeLCP,
	vitals.FID:  gaugeFID,
	vitals.CLS:  gaugeCLS,
	vitals.FCP:  gaugeFCP,
	vitals.TTFB: gaugeTTFB,
	vitals.INP:  gaugeINP,
}

// Exposition is the poll-cadence instrumentation provider. It scrapes a
// Prometheus text exposition endpoint on an interval and emits a sample
// whenever a vital gauge changes value. Resource and memory enumeration are
// not available on this path.
type Exposition struct {
	endpoint string
	client   *http.Client
	interval time.Duration
	session  SessionInfo

	reg *registry
	now func() time.Time

	mu      sync.Mutex
	last    map[vitals.Metric]float64
	timing  NavigationTiming
	scraped bool
	seq     int
}

// NewExposition returns a provider polling endpoint every interval.
// session carries the probe's static context (page URL, agent string).
func NewExposition(endpoint string, interval time.Duration, session SessionInfo) *Exposition {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Exposition{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		interval: interval,
		session:  session,
		reg:      newRegistry(),
		now:      time.Now,
		last:     make(map[vitals.Metric]float64),
	}
}

// Subscribe implements Provider.
func (e *Exposition) Subscribe(m vitals.Metric, opts SubscribeOptions, fn SampleFunc) (CancelFunc, error) {
	return e.reg.add(m, opts, fn), nil
}

// Session implements Provider.
func (e *Exposition) Session(_ context.Context) (SessionInfo, error) {
	return e.session, nil
}

// NavigationTiming implements Provider. Before the first successful scrape
// the timing gauges are unknown and ErrUnavailable is returned.
func (e *Exposition) NavigationTiming(_ context.Context) (NavigationTiming, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.scraped {
		return NavigationTiming{}, ErrUnavailable
	}
	return e.timing, nil
}

// Resources implements Provider. The exposition path carries no
// resource-timing entries.
func (e *Exposition) Resources(_ context.Context) ([]ResourceEntry, error) {
	return nil, ErrUnavailable
}

// Memory implements Provider.
func (e *Exposition) Memory(_ context.Context) (*MemoryInfo, error) {
	return nil, ErrUnavailable
}

// Run polls the exposition endpoint until ctx is cancelled. Fetch or parse
// failures are logged and the previous values stay in effect.
func (e *Exposition) Run(ctx context.Context) {
	t := time.NewTicker(e.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := e.pollOnce(ctx); err != nil {
				slog.Warn("exposition: scrape failed", "endpoint", e.endpoint, "err", err)
			}
		}
	}
}

// pollOnce performs one scrape and dispatches samples for changed gauges.
func (e *Exposition) pollOnce(ctx context.Context) error {
	mfs, err := e.fetch(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.timing = NavigationTiming{
		DOMContentLoadedMs:     gaugeValue(mfs[gaugeDOMContentLoaded]),
		WindowLoadedMs:         gaugeValue(mfs[gaugeWindowLoaded]),
		FirstPaintMs:           gaugeValue(mfs[gaugeFirstPaint]),
		FirstContentfulPaintMs: gaugeValue(mfs[gaugeFCP]),
	}
	e.scraped = true

	var changed []vitals.Sample
	for m, name := range vitalGauges {
		mf, ok := mfs[name]
		if !ok {
			continue
		}
		v := gaugeValue(mf)
		if prev, seen := e.last[m]; seen && prev == v {
			continue
		}
		e.seq++
		changed = append(changed, vitals.Sample{
			Metric:     m,
			Value:      v,
			Delta:      v - e.last[m],
			SampleID:   fmt.Sprintf("exp-%s-%d", m, e.seq),
			CapturedAt: e.now().UTC(),
		})
		e.last[m] = v
	}
	e.mu.Unlock()

	for _, s := range changed {
		e.reg.dispatch(s)
	}
	return nil
}

// fetch GETs the exposition endpoint and parses it into metric families.
func (e *Exposition) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseExposition(resp.Body)
}

// parseExposition decodes a Prometheus text exposition. A partial result
// with trailing-format warnings still counts as success.
func parseExposition(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse exposition: %w", err)
	}
	return mfs, nil
}

// gaugeValue returns the first gauge/untyped value in mf, or 0 when the
// family is absent from the scrape.
func gaugeValue(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	for _, m := range mf.GetMetric() {
		switch {
		case m.Gauge != nil:
			return m.Gauge.GetValue()
		case m.Untyped != nil:
			return m.Untyped.GetValue()
		}
	}
	return 0
}
