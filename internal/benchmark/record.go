package benchmark

import (
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// ResourceStats summarizes the page's resource-timing entries.
type ResourceStats struct {
	Count           int   `json:"count"`
	TotalBytes      int64 `json:"total_bytes"`
	ScriptBytes     int64 `json:"script_bytes"`
	StylesheetBytes int64 `json:"stylesheet_bytes"`
}

// Chunk is one script asset within the bundle statistics.
type Chunk struct {
	Name              string `json:"name"`
	TransferBytes     int64  `json:"transfer_bytes"`
	GzipEstimateBytes int64  `json:"gzip_estimate_bytes"`
}

// BundleStats summarizes the script payload. GzipEstimateBytes is an
// explicit heuristic (70% of measured transfer size), not a measurement.
type BundleStats struct {
	TotalBytes        int64   `json:"total_bytes"`
	GzipEstimateBytes int64   `json:"gzip_estimate_bytes"`
	Chunks            []Chunk `json:"chunks"`
}

// MemoryStats holds heap counters, present only when the host exposes them.
type MemoryStats struct {
	UsedHeapBytes  int64 `json:"used_heap_bytes"`
	TotalHeapBytes int64 `json:"total_heap_bytes"`
	HeapLimitBytes int64 `json:"heap_limit_bytes"`
}

// Timing holds the navigation timing deltas, absent values defaulted to 0.
type Timing struct {
	DOMContentLoadedMs     float64 `json:"dom_content_loaded_ms"`
	WindowLoadedMs         float64 `json:"window_loaded_ms"`
	FirstPaintMs           float64 `json:"first_paint_ms"`
	FirstContentfulPaintMs float64 `json:"first_contentful_paint_ms"`
}

// Scores holds the audit sub-scores. Approximate is true when the external
// analyzer was unavailable and fixed placeholder values were used instead.
type Scores struct {
	Performance   int  `json:"performance"`
	Accessibility int  `json:"accessibility"`
	BestPractices int  `json:"best_practices"`
	SEO           int  `json:"seo"`
	PWA           *int `json:"pwa,omitempty"`
	Approximate   bool `json:"approximate"`
}

// Record is one complete, immutable, point-in-time benchmark capture.
type Record struct {
	ID         string                `json:"id"`
	Label      string                `json:"label,omitempty"`
	URL        string                `json:"url"`
	CapturedAt time.Time             `json:"captured_at"`
	Session    vitals.SessionContext `json:"session_context"`
	Vitals     vitals.MetricSet      `json:"vitals"`
	Timing     Timing                `json:"timing"`
	Resources  ResourceStats         `json:"resource_stats"`
	Bundle     BundleStats           `json:"bundle_stats"`
	Memory     *MemoryStats          `json:"memory_stats,omitempty"`
	Scores     Scores                `json:"scores"`
}
