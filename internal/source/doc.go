// Package source defines the instrumentation-provider interface the engine
// consumes measurements through, and the two providers that ship with it.
//
// The beacon provider (beacon.go) is push-cadence: an HTTP handler that
// accepts JSON sample beacons emitted by the in-page web-vitals script and
// fans them out to subscribers. The exposition provider (prom.go) is
// poll-cadence: it scrapes a Prometheus text exposition of page-vitals
// gauges and emits a sample whenever a gauge changes.
//
// Providers report ErrUnavailable for instrumentation the host does not
// expose; consumers treat that as absence of data, never as a failure.
package source
