package vitals

import "time"

// MetricSet holds one slot per tracked metric. A nil slot means the metric
// has not been observed (or the host lacks the instrumentation for it).
type MetricSet struct {
	LCP  *RatedMetric `json:"lcp"`
	FID  *RatedMetric `json:"fid"`
	CLS  *RatedMetric `json:"cls"`
	FCP  *RatedMetric `json:"fcp"`
	TTFB *RatedMetric `json:"ttfb"`
	INP  *RatedMetric `json:"inp"`
}

// Get returns the slot for m.
func (ms *MetricSet) Get(m Metric) *RatedMetric {
	switch m {
	case LCP:
		return ms.LCP
	case FID:
		return ms.FID
	case CLS:
		return ms.CLS
	case FCP:
		return ms.FCP
	case TTFB:
		return ms.TTFB
	case INP:
		return ms.INP
	default:
		return nil
	}
}

// Set replaces the slot for m. Populated slots are only ever replaced by a
// newer value, never reverted to nil; callers must not pass nil.
func (ms *MetricSet) Set(m Metric, rm *RatedMetric) {
	switch m {
	case LCP:
		ms.LCP = rm
	case FID:
		ms.FID = rm
	case CLS:
		ms.CLS = rm
	case FCP:
		ms.FCP = rm
	case TTFB:
		ms.TTFB = rm
	case INP:
		ms.INP = rm
	}
}

// Ready reports whether the set satisfies the report-ready predicate:
// LCP, CLS and at least one of FID/INP are populated.
func (ms *MetricSet) Ready() bool {
	return ms.LCP != nil && ms.CLS != nil && (ms.FID != nil || ms.INP != nil)
}

// Populated returns the number of non-nil slots.
func (ms *MetricSet) Populated() int {
	n := 0
	for _, m := range All() {
		if ms.Get(m) != nil {
			n++
		}
	}
	return n
}

// Snapshot is the current, continuously-updated set of rated metrics for
// the active page view, plus the once-per-session context. Only the
// collector mutates a Snapshot; everyone else receives copies.
type Snapshot struct {
	MetricSet
	Session    SessionContext `json:"session_context"`
	CapturedAt time.Time      `json:"captured_at"`
}
