package workflow

import (
	"time"

	"tubelift/internal/queue"
)

// Snapshot returns the latest orchestrator information.
func (o *Orchestrator) Snapshot() Snapshot {
	queued := o.queue.Snapshot()

	o.mu.Lock()
	defer o.mu.Unlock()
	snap := Snapshot{
		State:     o.state,
		Pending:   len(queued),
		Queued:    queued,
		Processed: o.processed,
		Failed:    o.failed,
		LastError: o.lastErr,
	}
	if o.active != nil {
		job := *o.active
		snap.Active = &job
		snap.ActiveFrom = o.activeFrom
	}
	if o.lastJob != nil {
		last := *o.lastJob
		snap.LastJob = &last
	}
	return snap
}

func (o *Orchestrator) setActive(job *queue.Job, since time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job == nil {
		o.active = nil
		o.activeFrom = time.Time{}
		return
	}
	copy := *job
	o.active = &copy
	o.activeFrom = since
}

func (o *Orchestrator) setLastError(err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	o.lastErr = err.Error()
	o.mu.Unlock()
}

func (o *Orchestrator) recordResult(job queue.Job, outcome Outcome, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processed++
	if outcome.Kind != OutcomeSuccess {
		o.failed++
	}
	o.lastJob = &JobResult{Job: job, Outcome: outcome, Duration: elapsed, Finished: o.now()}
}
