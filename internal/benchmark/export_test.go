package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

func exportFixture() []Record {
	var set vitals.MetricSet
	for m, v := range map[vitals.Metric]float64{
		vitals.LCP: 1800, vitals.CLS: 0.05, vitals.TTFB: 600,
	} {
		rm := vitals.Normalize(vitals.Sample{Metric: m, Value: v})
		set.Set(m, &rm)
	}
	return []Record{
		{
			ID:         "rec-1",
			URL:        "https://example.com",
			CapturedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Vitals:     set,
			Timing:     Timing{DOMContentLoadedMs: 900, WindowLoadedMs: 1500},
			Resources:  ResourceStats{Count: 3, TotalBytes: 3400},
			Scores:     Scores{Performance: 100, Approximate: true},
		},
		{
			ID:         "rec-2",
			URL:        "https://example.com",
			CapturedAt: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
			Scores:     Scores{Performance: 75, Approximate: true},
		},
	}
}

func TestExport_CSV(t *testing.T) {
	out, err := Export(exportFixture(), "csv")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}

	wantHeader := []string{
		"id", "timestamp", "url",
		"cls", "fcp", "fid", "lcp", "ttfb",
		"domContentLoaded", "windowLoaded", "totalResourceSize", "performanceScore",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header = %v, want %v", rows[0], wantHeader)
	}

	first := rows[1]
	if first[0] != "rec-1" || first[1] != "2025-03-01T12:00:00Z" {
		t.Errorf("id/timestamp = %q/%q", first[0], first[1])
	}
	if first[3] != "0.05" || first[6] != "1800" || first[7] != "600" {
		t.Errorf("vitals cells = cls %q lcp %q ttfb %q", first[3], first[6], first[7])
	}
	if first[4] != "" || first[5] != "" {
		t.Errorf("missing vitals should render empty, got fcp %q fid %q", first[4], first[5])
	}
	if first[8] != "900" || first[10] != "3400" || first[11] != "100" {
		t.Errorf("timing/size/score cells = %q %q %q", first[8], first[10], first[11])
	}

	// A record with nothing measured still exports a full-width row.
	second := rows[2]
	if second[0] != "rec-2" || second[6] != "" || second[10] != "0" {
		t.Errorf("sparse row = %v", second)
	}
}

func TestExport_JSON(t *testing.T) {
	out, err := Export(exportFixture(), "json")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded []Record
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "rec-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestExport_UnsupportedFormat(t *testing.T) {
	if _, err := Export(nil, "xml"); err == nil {
		t.Error("Export accepted an unsupported format")
	}
}
