// Package trend classifies recent per-metric trajectories over the last few
// benchmark records as improving, degrading or stable, using the same
// percent-change and polarity rules as the comparator.
package trend

import (
	"fmt"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/benchmark"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/compare"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// DefaultWindow is the number of most-recent records analyzed.
const DefaultWindow = 5

// insufficientData is the single recommendation returned for short histories.
const insufficientData = "Insufficient data for trend analysis — run at least two benchmarks."

// Direction is one metric's trajectory over the window.
type Direction string

const (
	Improving Direction = "improving"
	Degrading Direction = "degrading"
	Stable    Direction = "stable"
)

// Result holds the per-metric trajectories and derived recommendations.
type Result struct {
	Trends          map[string]Direction `json:"trends"`
	Recommendations []string             `json:"recommendations"`
}

// Analyze classifies each core metric's trajectory over the most recent
// min(window, len(history)) records. window <= 0 selects DefaultWindow.
// Fewer than two records yields empty trends plus exactly one
// insufficient-data recommendation.
func Analyze(history []benchmark.Record, window int) Result {
	res := Result{Trends: make(map[string]Direction)}

	if len(history) < 2 {
		res.Recommendations = []string{insufficientData}
		return res
	}

	if window <= 0 {
		window = DefaultWindow
	}
	if window > len(history) {
		window = len(history)
	}
	recent := history[len(history)-window:]

	for _, m := range vitals.All() {
		first, last, ok := endpoints(recent, m)
		if !ok {
			continue
		}

		pct := (last - first) / first * 100
		switch {
		case abs(pct) < compare.SignificanceThresholdPct:
			res.Trends[m.String()] = Stable
		case pct > 0: // all core metrics are higher-is-worse
			res.Trends[m.String()] = Degrading
			res.Recommendations = append(res.Recommendations, fmt.Sprintf(
				"%s degraded %.1f%% over the last %d runs — investigate recent changes.",
				m.String(), pct, len(recent)))
		default:
			res.Trends[m.String()] = Improving
		}
	}

	if len(res.Recommendations) == 0 {
		res.Recommendations = []string{"No degrading metrics — performance is holding steady."}
	}
	return res
}

// endpoints returns the first and last present value for m within the
// window. ok is false when fewer than two values are present or the first
// value is zero (percent change undefined).
func endpoints(recent []benchmark.Record, m vitals.Metric) (first, last float64, ok bool) {
	var values []float64
	for _, rec := range recent {
		if rm := rec.Vitals.Get(m); rm != nil {
			values = append(values, rm.Value)
		}
	}
	if len(values) < 2 || values[0] == 0 {
		return 0, 0, false
	}
	return values[0], values[len(values)-1], true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
