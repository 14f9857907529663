// Package services defines shared utilities consumed by the pipeline and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, submitters, step names, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let the orchestrator
//     classify failures into terminal outcomes with errors.Is.
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across the pipeline.
package services
