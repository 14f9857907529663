// Package preflight provides readiness checks for the storage backend, the
// chat transport, the yt-dlp toolchain, and the directories tubelift writes to.
//
// The daemon runs RunAll once at startup and logs every failure; it does not
// refuse to start, because a missing token only degrades uploads. The CLI
// "tubelift check" command renders the same results as a table.
package preflight
