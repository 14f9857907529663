// Package progress throttles download progress into status message edits.
//
// A Reporter is bound to one sent notification. It turns a noisy stream of
// percentages into edits that only move forward in steps of at least Step
// points, and turns the single "finished" signal into exactly one edit with
// the uploading text. Reporting is best effort: nothing here returns an error
// to the caller.
package progress
