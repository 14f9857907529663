// Package eventlog records the append-only per-user activity log.
//
// Every terminal job outcome, queued link, and cancellation produces exactly
// one line. Sinks write lines to SQLite (Store), to a plain text file in the
// "[ts] User <id>: <message>" layout (TextFile), or to several sinks at once
// (Fanout). The pipeline never reads the log back; Store.Recent exists for
// operator tooling only.
package eventlog
