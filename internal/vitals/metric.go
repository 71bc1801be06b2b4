package vitals

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metric identifies one of the six tracked page-quality metrics.
type Metric int

const (
	LCP Metric = iota // Largest Contentful Paint (ms)
	FID               // First Input Delay (ms)
	CLS               // Cumulative Layout Shift (unitless)
	FCP               // First Contentful Paint (ms)
	TTFB              // Time To First Byte (ms)
	INP               // Interaction to Next Paint (ms)

	metricCount
)

// All returns every tracked metric in canonical order.
func All() []Metric {
	return []Metric{LCP, FID, CLS, FCP, TTFB, INP}
}

// String returns the canonical upper-case metric name.
func (m Metric) String() string {
	switch m {
	case LCP:
		return "LCP"
	case FID:
		return "FID"
	case CLS:
		return "CLS"
	case FCP:
		return "FCP"
	case TTFB:
		return "TTFB"
	case INP:
		return "INP"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric maps a wire-level metric name to its Metric value.
// Matching is case-insensitive. Unknown names return an error so callers
// can log them instead of silently defaulting.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "LCP":
		return LCP, nil
	case "FID":
		return FID, nil
	case "CLS":
		return CLS, nil
	case "FCP":
		return FCP, nil
	case "TTFB":
		return TTFB, nil
	case "INP":
		return INP, nil
	default:
		return 0, fmt.Errorf("vitals: unrecognized metric name %q", name)
	}
}

// Rating is the qualitative bucket derived from a metric value.
type Rating string

const (
	RatingGood             Rating = "good"
	RatingNeedsImprovement Rating = "needs-improvement"
	RatingPoor             Rating = "poor"
)

// Threshold holds the fixed rating bounds for one metric.
// A value v rates poor when v > Poor, needs-improvement when v > Good,
// and good otherwise; a value exactly equal to Good still rates good.
type Threshold struct {
	Good float64
	Poor float64
}

// thresholds is the fixed per-metric threshold table. LCP, FID, FCP, TTFB
// and INP are milliseconds; CLS is the unitless layout-shift score.
var thresholds = [metricCount]Threshold{
	LCP:  {Good: 2500, Poor: 4000},
	FID:  {Good: 100, Poor: 300},
	CLS:  {Good: 0.1, Poor: 0.25},
	FCP:  {Good: 1800, Poor: 3000},
	TTFB: {Good: 800, Poor: 1800},
	INP:  {Good: 200, Poor: 500},
}

// Threshold returns the fixed rating bounds for m.
func (m Metric) Threshold() Threshold {
	return thresholds[m]
}

// Rate classifies value against m's fixed thresholds.
func Rate(m Metric, value float64) Rating {
	t := thresholds[m]
	switch {
	case value > t.Poor:
		return RatingPoor
	case value > t.Good:
		return RatingNeedsImprovement
	default:
		return RatingGood
	}
}

// Sample is one raw measurement delivered by an instrumentation source.
// Samples are immutable once created.
type Sample struct {
	Metric         Metric            `json:"-"`
	Value          float64           `json:"value"`
	Delta          float64           `json:"delta"`
	SampleID       string            `json:"sample_id"`
	NavigationType string            `json:"navigation_type,omitempty"`
	CapturedAt     time.Time         `json:"captured_at"`
	Entries        []json.RawMessage `json:"entries,omitempty"`
}

// RatedMetric is a Sample together with its derived rating.
type RatedMetric struct {
	Sample
	Name   string `json:"name"`
	Rating Rating `json:"rating"`
}

// Normalize derives the rated record for a raw sample using the fixed
// threshold table.
func Normalize(s Sample) RatedMetric {
	return RatedMetric{
		Sample: s,
		Name:   s.Metric.String(),
		Rating: Rate(s.Metric, s.Value),
	}
}
