// Package benchmark executes full measurement passes and owns the
// append-only, in-memory benchmark history.
//
// One pass collects the six vitals concurrently through one-shot
// subscriptions under a bounded timeout (best effort: metrics still
// pending at the deadline stay nil), reads navigation timing with absent
// values defaulted to 0, enumerates resource-timing entries into resource
// and bundle statistics, reads heap counters when exposed, and delegates
// audit sub-scores to the analyzer collaborator, falling back to fixed
// placeholder values that are surfaced as approximate.
package benchmark
