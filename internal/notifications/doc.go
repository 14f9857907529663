// Package notifications delivers per-job status messages to submitters.
//
// A Notifier sends a message to a user and can later edit it through the
// returned Handle. Matrix posts into the submitter's room and edits with
// m.replace relations; ntfy publishes to a topic and, since ntfy cannot edit,
// publishes follow-ups instead; Log writes to slog and is the default when no
// transport is configured.
//
// Wrap any transport in BestEffort before handing it to the pipeline: it
// swallows and logs every delivery failure so a lost message can never fail a
// job that otherwise succeeded.
package notifications
