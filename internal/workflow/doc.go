// Package workflow runs the single-worker download pipeline.
//
// The Orchestrator drains the in-memory queue one job at a time. For each job
// it sends a "started" message, fetches the media while throttled progress
// edits update that message, uploads the artifact, resolves a public link,
// removes the local file, and sends exactly one terminal message plus one
// event log line. Every failure, including panics, is contained at the job
// boundary and mapped to an Outcome so the loop always moves on to the next
// job.
//
// Trigger is idempotent: a submission that arrives while a drain is running is
// picked up by that drain instead of starting a second one. The drain flips
// back to Idle in the same critical section that observes the empty queue, so
// no submission can slip between the two.
package workflow
