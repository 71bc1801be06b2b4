// Package report delivers telemetry envelopes to the configured analytics
// endpoint under the at-most-once policy: one POST, no retry, failures
// logged and dropped. This is deliberate (losing an occasional telemetry
// sample is acceptable) and is kept separate from the at-least-once
// backoff client in package analyzer.
//
// Delivery runs on a context detached from the engine lifecycle so a report
// in flight at shutdown still completes best-effort, the Go rendition of an
// unload-persistent transport.
//
// ErrorLimiter is the system-wide error-rate limiter: at most 10 identical
// error signatures per rolling minute bucket, older buckets pruned lazily.
package report
