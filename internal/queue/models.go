package queue

import "time"

// Job is one submitted URL awaiting processing. Identity for cancellation is
// the (SubmitterID, URL) pair; ID exists for logging and correlation only and
// duplicates of the same pair are independent jobs.
type Job struct {
	ID          string    `json:"id"`
	SubmitterID string    `json:"submitter_id"`
	URL         string    `json:"url"`
	EnqueuedAt  time.Time `json:"enqueued_at"`
}

// Status is a point-in-time view of the queue from one submitter's
// perspective. Positions are 1-based and advisory: they go stale as soon as
// another mutation happens.
type Status struct {
	Total     int   `json:"total"`
	Positions []int `json:"positions"`
}

// Empty reports whether the queue held no jobs at all.
func (s Status) Empty() bool {
	return s.Total == 0
}
