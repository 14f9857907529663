package queue

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue is the in-memory FIFO of pending jobs.
type Queue struct {
	mu   sync.Mutex
	jobs []Job
	now  func() time.Time
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{now: time.Now}
}

// Submit appends a job to the tail. It always succeeds; the URL is not
// validated here.
func (q *Queue) Submit(submitter, url string) Job {
	job := Job{
		ID:          uuid.NewString(),
		SubmitterID: submitter,
		URL:         strings.TrimSpace(url),
		EnqueuedAt:  q.clock(),
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return job
}

// PeekStatus returns the queue length and the 1-based positions of the
// submitter's jobs in current order.
func (q *Queue) PeekStatus(submitter string) Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	status := Status{Total: len(q.jobs), Positions: []int{}}
	for i, job := range q.jobs {
		if job.SubmitterID == submitter {
			status.Positions = append(status.Positions, i+1)
		}
	}
	return status
}

// CancelAll removes every pending job of the submitter, preserving the
// relative order of the rest, and returns how many were removed.
func (q *Queue) CancelAll(submitter string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.jobs[:0]
	removed := 0
	for _, job := range q.jobs {
		if job.SubmitterID == submitter {
			removed++
			continue
		}
		kept = append(kept, job)
	}
	for i := len(kept); i < len(q.jobs); i++ {
		q.jobs[i] = Job{}
	}
	q.jobs = kept
	return removed
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// PopOrElse pops the head of the queue. When the queue is empty, onEmpty runs
// inside the same critical section before PopOrElse returns, so no Submit can
// land between observing the empty queue and onEmpty. onEmpty must not block.
func (q *Queue) PopOrElse(onEmpty func()) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.popLocked()
	if !ok && onEmpty != nil {
		onEmpty()
	}
	return job, ok
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Snapshot returns a copy of the pending jobs in processing order.
func (q *Queue) Snapshot() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}

func (q *Queue) popLocked() (Job, bool) {
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = Job{}
	q.jobs = q.jobs[1:]
	if len(q.jobs) == 0 {
		q.jobs = nil
	}
	return job, true
}

func (q *Queue) clock() time.Time {
	if q.now == nil {
		return time.Now()
	}
	return q.now()
}
