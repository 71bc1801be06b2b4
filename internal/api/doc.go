// Package api exposes the engine over HTTP: live snapshot and summary,
// benchmark history, baseline comparison, trend analysis, history export
// and a health probe. All responses are JSON except the CSV export.
package api
