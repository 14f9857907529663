// Package api defines the wire-format types of the daemon's HTTP API and the
// client the CLI uses to talk to it.
//
// # Key Types
//
// Job: transport representation of a queued submission.
//
// QueueStatus: queue length plus the caller's 1-based positions.
//
// WorkflowStatus: orchestrator state, the active job, counters, and the most
// recent result.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromJob, FromQueueStatus, FromSnapshot, and FromEvents translate internal
// models so consumers never import queue or workflow types.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Errors are returned as {"error": "..."} with a non-2xx status; the client
// turns them into *StatusError.
package api
