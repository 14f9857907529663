// Package daemon coordinates the long-running tubelift process.
//
// It owns the flock-based single-instance lock, the HTTP API the CLI talks to,
// and the Prometheus endpoint, and it forwards submissions, status queries,
// and cancellations to the workflow orchestrator. Pipeline logic lives in
// internal/workflow; the daemon only handles startup, shutdown, and the
// transport surface.
package daemon
