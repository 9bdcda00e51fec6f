// Package server provides Scour's HTTP admin surface.
//
// The server is an operational sidecar to the sweeper, not a data
// plane: it exposes health probes, Prometheus metrics, a status
// endpoint, and a manual sweep trigger.
//
// # Endpoints
//
//	GET  /health         liveness probe
//	GET  /ready          readiness probe (database, catalog)
//	GET  /metrics        Prometheus exposition (path configurable)
//	GET  /api/v1/status  catalog and scheduler state
//	POST /api/v1/sweep   trigger a sweep run now
//
// The manual trigger runs a full sweep inline and reports the result.
// While a run is in flight, further triggers return 409 Conflict; runs
// are strictly sequential.
//
// # Lifecycle
//
// Start blocks until the context is cancelled, a shutdown signal
// arrives, or the listener fails. Shutdown drains in-flight requests
// within the configured shutdown timeout.
package server
