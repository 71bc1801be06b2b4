package source

import (
	"sync"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/vitals"
)

// subscription is one registered callback for a metric.
type subscription struct {
	fn         SampleFunc
	allChanges bool
	delivered  bool // set after first delivery when allChanges is false
}

// registry is the shared subscriber bookkeeping used by both providers.
// Delivery honors SubscribeOptions: single-delivery subscriptions receive
// only the first sample for their metric.
type registry struct {
	mu     sync.Mutex
	nextID int
	subs   map[vitals.Metric]map[int]*subscription
}

func newRegistry() *registry {
	return &registry{subs: make(map[vitals.Metric]map[int]*subscription)}
}

// add registers fn for m and returns its cancel handle.
func (r *registry) add(m vitals.Metric, opts SubscribeOptions, fn SampleFunc) CancelFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	if r.subs[m] == nil {
		r.subs[m] = make(map[int]*subscription)
	}
	r.subs[m][id] = &subscription{fn: fn, allChanges: opts.ReportAllChanges}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs[m], id)
	}
}

// dispatch delivers s to every live subscriber of s.Metric.
// Callbacks run outside the registry lock.
func (r *registry) dispatch(s vitals.Sample) {
	r.mu.Lock()
	var fns []SampleFunc
	for _, sub := range r.subs[s.Metric] {
		if !sub.allChanges {
			if sub.delivered {
				continue
			}
			sub.delivered = true
		}
		fns = append(fns, sub.fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
