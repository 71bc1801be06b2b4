// Package score derives the 0–100 aggregate health score and the rating
// tally from a snapshot. Both functions are pure and recomputed on every
// read.
package score

import (
	"math"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// Rating weights: good carries full credit, needs-improvement half, poor none.
const (
	pointsGood             = 100
	pointsNeedsImprovement = 50
	pointsPoor             = 0
)

// Summary is the tallied view of a snapshot.
type Summary struct {
	Good             int `json:"good"`
	NeedsImprovement int `json:"needs_improvement"`
	Poor             int `json:"poor"`
	Total            int `json:"total"`
	Score            int `json:"score"`
}

// Score maps each populated metric's rating to points and returns the
// rounded mean, or 0 when nothing is populated.
func Score(ms vitals.MetricSet) int {
	var sum, n int
	for _, m := range vitals.All() {
		rm := ms.Get(m)
		if rm == nil {
			continue
		}
		sum += points(rm.Rating)
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// Summarize tallies the populated ratings and the aggregate score.
func Summarize(ms vitals.MetricSet) Summary {
	var s Summary
	for _, m := range vitals.All() {
		rm := ms.Get(m)
		if rm == nil {
			continue
		}
		s.Total++
		switch rm.Rating {
		case vitals.RatingGood:
			s.Good++
		case vitals.RatingNeedsImprovement:
			s.NeedsImprovement++
		case vitals.RatingPoor:
			s.Poor++
		}
	}
	s.Score = Score(ms)
	return s
}

func points(r vitals.Rating) int {
	switch r {
	case vitals.RatingGood:
		return pointsGood
	case vitals.RatingNeedsImprovement:
		return pointsNeedsImprovement
	default:
		return pointsPoor
	}
}
