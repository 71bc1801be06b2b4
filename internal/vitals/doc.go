// Package vitals defines the closed set of Core Web Vitals metrics, the
// fixed quality thresholds that map a raw value to a good /
// needs-improvement / poor rating, and the shared record types (Sample,
// RatedMetric, MetricSet, Snapshot, SessionContext) passed between the
// collector, scorer, benchmark runner and delivery surfaces.
//
// The metric set is a compile-time enumeration: every switch over Metric is
// exhaustive, so an unrecognized metric can only appear at the wire
// boundary (ParseMetric), where it is logged and rejected rather than
// silently defaulted.
package vitals
