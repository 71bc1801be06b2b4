package source

import (
	"context"
	"errors"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// ErrUnavailable is returned when the host environment does not expose the
// requested instrumentation. The affected metric slot stays null; nothing
// else is affected.
var ErrUnavailable = errors.New("source: instrumentation unavailable")

// SampleFunc receives one raw measurement.
type SampleFunc func(vitals.Sample)

// CancelFunc tears down a single subscription. Safe to call more than once.
type CancelFunc func()

// SubscribeOptions control sample delivery cadence for one subscription.
type SubscribeOptions struct {
	// ReportAllChanges delivers every observed change to the metric.
	// When false, only the first (settled) sample is delivered.
	ReportAllChanges bool
}

// SessionInfo is the raw per-session environment a provider knows about.
type SessionInfo struct {
	URL            string   `json:"url"`
	AgentString    string   `json:"agent_string"`
	DeviceMemoryGB *float64 `json:"device_memory_gb,omitempty"`
	ConnectionType string   `json:"connection_type,omitempty"`
	PageLoadTimeMs float64  `json:"page_load_time_ms"`
}

// NavigationTiming holds the page-load timing deltas in milliseconds.
// Values the host did not measure are zero.
type NavigationTiming struct {
	DOMContentLoadedMs     float64 `json:"dom_content_loaded_ms"`
	WindowLoadedMs         float64 `json:"window_loaded_ms"`
	FirstPaintMs           float64 `json:"first_paint_ms"`
	FirstContentfulPaintMs float64 `json:"first_contentful_paint_ms"`
}

// ResourceEntry is one resource-timing record.
type ResourceEntry struct {
	Name         string `json:"name"`
	Initiator    string `json:"initiator"` // "script", "link", "css", "img", ...
	TransferSize int64  `json:"transfer_size"`
}

// MemoryInfo holds the host's JS heap counters, when exposed.
type MemoryInfo struct {
	UsedHeapBytes  int64 `json:"used_heap_bytes"`
	TotalHeapBytes int64 `json:"total_heap_bytes"`
	HeapLimitBytes int64 `json:"heap_limit_bytes"`
}

// Provider is the host runtime's instrumentation layer. Implementations
// must be safe for concurrent use; subscriber callbacks may be invoked from
// arbitrary goroutines.
type Provider interface {
	// Subscribe registers fn for samples of metric m and returns a cancel
	// handle. Returns ErrUnavailable when the host cannot measure m.
	Subscribe(m vitals.Metric, opts SubscribeOptions, fn SampleFunc) (CancelFunc, error)

	// Session returns the per-session environment known so far.
	Session(ctx context.Context) (SessionInfo, error)

	// NavigationTiming returns the page-load timing deltas.
	NavigationTiming(ctx context.Context) (NavigationTiming, error)

	// Resources enumerates the resource-timing entries observed so far.
	Resources(ctx context.Context) ([]ResourceEntry, error)

	// Memory returns heap counters, or ErrUnavailable when the host does
	// not expose them.
	Memory(ctx context.Context) (*MemoryInfo, error)
}
