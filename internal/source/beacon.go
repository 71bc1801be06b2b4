package source

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// maxBeaconBody caps the accepted beacon payload size.
const maxBeaconBody = 1 << 20 // 1 MiB

// beaconSample is the wire form of one measurement inside a beacon payload.
type beaconSample struct {
	Name           string            `json:"name"`
	Value          float64           `json:"value"`
	Delta          float64           `json:"delta"`
	ID             string            `json:"id"`
	NavigationType string            `json:"navigation_type"`
	Entries        []json.RawMessage `json:"entries"`
}

// beaconPayload is the JSON body POSTed by the in-page web-vitals script.
// Every section is optional; a beacon may carry only samples, only session
// context, or any mix.
type beaconPayload struct {
	Session   *SessionInfo      `json:"session"`
	Timing    *NavigationTiming `json:"navigation_timing"`
	Resources []ResourceEntry   `json:"resources"`
	Memory    *MemoryInfo       `json:"memory"`
	Samples   []beaconSample    `json:"samples"`
}

// Beacon is the push-cadence instrumentation provider. It implements both
// http.Handler (the /ingest/vitals endpoint) and Provider.
type Beacon struct {
	mu        sync.Mutex
	session   *SessionInfo
	timing    *NavigationTiming
	resources []ResourceEntry
	memory    *MemoryInfo

	reg *registry
	now func() time.Time
}

// NewBeacon returns an empty Beacon provider.
func NewBeacon() *Beacon {
	return &Beacon{reg: newRegistry(), now: time.Now}
}

// Subscribe implements Provider. The beacon path can carry any metric, so
// Subscribe never reports ErrUnavailable.
func (b *Beacon) Subscribe(m vitals.Metric, opts SubscribeOptions, fn SampleFunc) (CancelFunc, error) {
	return b.reg.add(m, opts, fn), nil
}

// Session implements Provider. Before the first beacon carrying session
// context arrives, a zero SessionInfo is returned.
func (b *Beacon) Session(_ context.Context) (SessionInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return SessionInfo{}, nil
	}
	return *b.session, nil
}

// NavigationTiming implements Provider.
func (b *Beacon) NavigationTiming(_ context.Context) (NavigationTiming, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timing == nil {
		return NavigationTiming{}, ErrUnavailable
	}
	return *b.timing, nil
}

// Resources implements Provider.
func (b *Beacon) Resources(_ context.Context) ([]ResourceEntry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.resources == nil {
		return nil, ErrUnavailable
	}
	out := make([]ResourceEntry, len(b.resources))
	copy(out, b.resources)
	return out, nil
}

// Memory implements Provider.
func (b *Beacon) Memory(_ context.Context) (*MemoryInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.memory == nil {
		return nil, ErrUnavailable
	}
	mem := *b.memory
	return &mem, nil
}

// ServeHTTP accepts one beacon payload per POST. Malformed bodies are
// rejected with 400; unrecognized metric names inside an otherwise valid
// payload are logged and skipped.
func (b *Beacon) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload beaconPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBeaconBody))
	if err := dec.Decode(&payload); err != nil {
		slog.Warn("beacon: rejected malformed payload", "remote", r.RemoteAddr, "err", err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	b.absorb(payload)
	w.WriteHeader(http.StatusAccepted)
}

// absorb stores the payload's context sections and dispatches its samples.
func (b *Beacon) absorb(payload beaconPayload) {
	b.mu.Lock()
	if payload.Session != nil {
		b.session = payload.Session
	}
	if payload.Timing != nil {
		b.timing = payload.Timing
	}
	if payload.Resources != nil {
		b.resources = payload.Resources
	}
	if payload.Memory != nil {
		b.memory = payload.Memory
	}
	b.mu.Unlock()

	for _, ws := range payload.Samples {
		m, err := vitals.ParseMetric(ws.Name)
		if err != nil {
			slog.Warn("beacon: skipping sample", "err", err)
			continue
		}
		b.reg.dispatch(vitals.Sample{
			Metric:         m,
			Value:          ws.Value,
			Delta:          ws.Delta,
			SampleID:       ws.ID,
			NavigationType: ws.NavigationType,
			CapturedAt:     b.now().UTC(),
			Entries:        ws.Entries,
		})
	}
}
