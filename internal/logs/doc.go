// Package logs reads the daemon log file for `tubelift logs`.
//
// Last returns the final lines of a file with bounded memory. Follow polls
// from an offset and hands each new line to a callback until its context is
// cancelled. A file that shrinks (rotation or truncation) is re-read from the
// start.
package logs
