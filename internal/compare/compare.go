// Package compare diffs two benchmark records metric-by-metric. A change is
// significant past a fixed 5% threshold; a per-metric polarity table
// decides whether a significant change is a regression or an improvement.
// Compare is a pure function: identical inputs always yield identical
// results.
package compare

import (
	"fmt"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/benchmark"
	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// SignificanceThresholdPct is the fixed insignificance bound: changes with
// |percent change| at or below it are excluded from both lists. Not
// user-configurable.
const SignificanceThresholdPct = 5.0

// noChangesSummary is the summary text when both lists are empty.
const noChangesSummary = "No significant performance changes detected."

// Entry is one significant per-metric difference.
type Entry struct {
	Metric        string  `json:"metric"`
	Baseline      float64 `json:"baseline"`
	Current       float64 `json:"current"`
	PercentChange float64 `json:"percent_change"`
}

// Result is the outcome of one baseline/current comparison.
type Result struct {
	Regressions  []Entry `json:"regressions"`
	Improvements []Entry `json:"improvements"`
	Summary      string  `json:"summary"`
}

// field is one comparable metric: how to read it from a record and which
// direction is bad. All current metrics are higher-is-worse; the inverse
// polarity is supported for metrics added later.
type field struct {
	name           string
	higherIsBetter bool
	value          func(benchmark.Record) (float64, bool)
}

// fields is the fixed comparison set: the six vitals plus the load timings
// and total resource size.
var fields = buildFields()

func buildFields() []field {
	fs := make([]field, 0, 9)
	for _, m := range vitals.All() {
		m := m
		fs = append(fs, field{
			name: m.String(),
			value: func(rec benchmark.Record) (float64, bool) {
				rm := rec.Vitals.Get(m)
				if rm == nil {
					return 0, false
				}
				return rm.Value, true
			},
		})
	}
	fs = append(fs,
		field{name: "domContentLoaded", value: func(rec benchmark.Record) (float64, bool) {
			return timingValue(rec.Timing.DOMContentLoadedMs)
		}},
		field{name: "windowLoaded", value: func(rec benchmark.Record) (float64, bool) {
			return timingValue(rec.Timing.WindowLoadedMs)
		}},
		field{name: "totalResourceSize", value: func(rec benchmark.Record) (float64, bool) {
			if rec.Resources.TotalBytes == 0 {
				return 0, false
			}
			return float64(rec.Resources.TotalBytes), true
		}},
	)
	return fs
}

// timingValue treats a zero timing as missing: absent navigation timing is
// defaulted to 0 at collection, and a zero baseline would make percent
// change undefined.
func timingValue(v float64) (float64, bool) {
	if v == 0 {
		return 0, false
	}
	return v, true
}

// Compare diffs current against baseline. Metrics missing on either side
// are skipped silently (a malformed or partial record never causes an
// error).
func Compare(baseline, current benchmark.Record) Result {
	var res Result

	for _, f := range fields {
		base, ok := f.value(baseline)
		if !ok || base == 0 {
			continue
		}
		cur, ok := f.value(current)
		if !ok {
			continue
		}

		pct := (cur - base) / base * 100
		if abs(pct) <= SignificanceThresholdPct {
			continue
		}

		entry := Entry{Metric: f.name, Baseline: base, Current: cur, PercentChange: pct}
		worse := pct > 0
		if f.higherIsBetter {
			worse = !worse
		}
		if worse {
			res.Regressions = append(res.Regressions, entry)
		} else {
			res.Improvements = append(res.Improvements, entry)
		}
	}

	res.Summary = summarize(res)
	return res
}

func summarize(res Result) string {
	if len(res.Regressions) == 0 && len(res.Improvements) == 0 {
		return noChangesSummary
	}
	return fmt.Sprintf("%d regression(s), %d improvement(s) detected",
		len(res.Regressions), len(res.Improvements))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
