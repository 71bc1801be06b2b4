package vitals

import "testing"

func TestRate_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		metric Metric
		value  float64
		want   Rating
	}{
		{"LCP well under good bound", LCP, 2000, RatingGood},
		{"LCP exactly at good bound", LCP, 2500, RatingGood},
		{"LCP between bounds", LCP, 3000, RatingNeedsImprovement},
		{"LCP exactly at poor bound", LCP, 4000, RatingNeedsImprovement},
		{"LCP past poor bound", LCP, 5000, RatingPoor},

		{"FID good", FID, 50, RatingGood},
		{"FID boundary good", FID, 100, RatingGood},
		{"FID needs improvement", FID, 200, RatingNeedsImprovement},
		{"FID poor", FID, 301, RatingPoor},

		{"CLS good", CLS, 0.05, RatingGood},
		{"CLS boundary good", CLS, 0.1, RatingGood},
		{"CLS needs improvement", CLS, 0.2, RatingNeedsImprovement},
		{"CLS poor", CLS, 0.3, RatingPoor},

		{"FCP good", FCP, 1800, RatingGood},
		{"FCP needs improvement", FCP, 2500, RatingNeedsImprovement},
		{"FCP poor", FCP, 3001, RatingPoor},

		{"TTFB good", TTFB, 800, RatingGood},
		{"TTFB needs improvement", TTFB, 1000, RatingNeedsImprovement},
		{"TTFB poor", TTFB, 2000, RatingPoor},

		{"INP good", INP, 200, RatingGood},
		{"INP needs improvement", INP, 350, RatingNeedsImprovement},
		{"INP poor", INP, 501, RatingPoor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Rate(tc.metric, tc.value); got != tc.want {
				t.Errorf("Rate(%s, %v) = %q, want %q", tc.metric, tc.value, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	rm := Normalize(Sample{Metric: LCP, Value: 5000, SampleID: "v3-1"})
	if rm.Rating != RatingPoor {
		t.Errorf("Rating = %q, want %q", rm.Rating, RatingPoor)
	}
	if rm.Name != "LCP" {
		t.Errorf("Name = %q, want LCP", rm.Name)
	}
	if rm.SampleID != "v3-1" {
		t.Errorf("SampleID = %q, want v3-1", rm.SampleID)
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"LCP", LCP, false},
		{"lcp", LCP, false},
		{" ttfb ", TTFB, false},
		{"INP", INP, false},
		{"TBT", 0, true}, // measured elsewhere, not part of the tracked set
		{"", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseMetric(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMetric(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMetric(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMetric(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLowEnd(t *testing.T) {
	mem := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		memoryGB *float64
		conn     string
		want     bool
	}{
		{"no signals", nil, "", false},
		{"plenty of memory, 4g", mem(8), "4g", false},
		{"1GB memory", mem(1), "4g", true},
		{"sub-1GB memory", mem(0.5), "", true},
		{"slow-2g connection", nil, "slow-2g", true},
		{"2g connection", mem(8), "2g", true},
		{"3g is not low-end", nil, "3g", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LowEnd(tc.memoryGB, tc.conn); got != tc.want {
				t.Errorf("LowEnd = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMetricSet_Ready(t *testing.T) {
	rated := func(m Metric, v float64) *RatedMetric {
		rm := Normalize(Sample{Metric: m, Value: v})
		return &rm
	}

	var ms MetricSet
	if ms.Ready() {
		t.Fatal("empty set reported ready")
	}

	ms.Set(LCP, rated(LCP, 1800))
	ms.Set(CLS, rated(CLS, 0.05))
	if ms.Ready() {
		t.Fatal("set without an input metric reported ready")
	}

	ms.Set(INP, rated(INP, 120))
	if !ms.Ready() {
		t.Fatal("LCP+CLS+INP should be ready")
	}

	var ms2 MetricSet
	ms2.Set(LCP, rated(LCP, 1800))
	ms2.Set(CLS, rated(CLS, 0.05))
	ms2.Set(FID, rated(FID, 50))
	if !ms2.Ready() {
		t.Fatal("LCP+CLS+FID should be ready")
	}
}
