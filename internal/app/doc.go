// Package app wires the reconciliation service together and manages its
// lifecycle.
//
// NewApplication loads configuration (defaults, then YAML, then TSVMERGE_*
// environment variables), initializes slog and OpenTelemetry, builds the
// services and mounts the chi router:
//
//	/healthz, /healthz/ready, /healthz/live   health probes
//	/metrics                                  Prometheus scrape endpoint
//	/api/v1/events                            run event stream (WebSocket)
//	/api/v1/...                               reconcile API
//
// Every reconcile run publishes run:started and run:completed (or
// run:failed) events to the websocket hub; pivot runs also report skipped
// documents.
//
// Run blocks until SIGINT or SIGTERM and then drains in-flight requests
// within Server.ShutdownTimeout before flushing telemetry.
package app
