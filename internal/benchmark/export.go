package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// csvHeader is the fixed export column set, one row per record in insertion
// order.
var csvHeader = []string{
	"id", "timestamp", "url",
	"cls", "fcp", "fid", "lcp", "ttfb",
	"domContentLoaded", "windowLoaded", "totalResourceSize", "performanceScore",
}

// Export serializes history in the requested format ("json" or "csv").
func Export(history []Record, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return exportJSON(history)
	case "csv":
		return exportCSV(history)
	default:
		return "", fmt.Errorf("benchmark: unsupported export format %q", format)
	}
}

func exportJSON(history []Record) (string, error) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "", fmt.Errorf("benchmark: marshal history: %w", err)
	}
	return string(data), nil
}

func exportCSV(history []Record) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("benchmark: write csv header: %w", err)
	}
	for _, rec := range history {
		row := []string{
			rec.ID,
			rec.CapturedAt.UTC().Format(time.RFC3339),
			rec.URL,
			metricCell(rec.Vitals.CLS),
			metricCell(rec.Vitals.FCP),
			metricCell(rec.Vitals.FID),
			metricCell(rec.Vitals.LCP),
			metricCell(rec.Vitals.TTFB),
			floatCell(rec.Timing.DOMContentLoadedMs),
			floatCell(rec.Timing.WindowLoadedMs),
			strconv.FormatInt(rec.Resources.TotalBytes, 10),
			strconv.Itoa(rec.Scores.Performance),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("benchmark: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("benchmark: flush csv: %w", err)
	}
	return sb.String(), nil
}

// metricCell renders a vital's value, empty when the slot is nil.
func metricCell(rm *vitals.RatedMetric) string {
	if rm == nil {
		return ""
	}
	return floatCell(rm.Value)
}

func floatCell(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
