// Package collector owns the live Snapshot. It captures the session context
// once at construction, subscribes to every metric the provider can
// deliver, normalizes each arriving sample into the snapshot, and invokes
// the report-ready callback once LCP, CLS and at least one input metric are
// populated.
//
// Two report modes exist: ReportOnce latches after the first qualifying
// snapshot (analytics delivery), ReportContinuous fires on every qualifying
// update (live dashboards). Restart always resubscribes in continuous,
// report-all-changes mode and never fails, even when the host lacks the
// instrumentation APIs.
package collector
