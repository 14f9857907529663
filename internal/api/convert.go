package api

import (
	"tubelift/internal/deps"
	"tubelift/internal/eventlog"
	"tubelift/internal/queue"
	"tubelift/internal/workflow"
)

// FromJob converts a queue job to its API representation.
func FromJob(job queue.Job) Job {
	dto := Job{
		ID:          job.ID,
		SubmitterID: job.SubmitterID,
		URL:         job.URL,
	}
	if !job.EnqueuedAt.IsZero() {
		dto.EnqueuedAt = job.EnqueuedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromQueueStatus converts a queue status and renders its user message.
func FromQueueStatus(status queue.Status) QueueStatus {
	positions := status.Positions
	if positions == nil {
		positions = []int{}
	}
	return QueueStatus{
		Total:     status.Total,
		Positions: positions,
		Message:   workflow.StatusMessage(status),
	}
}

// FromSnapshot converts an orchestrator snapshot.
func FromSnapshot(snap workflow.Snapshot) WorkflowStatus {
	dto := WorkflowStatus{
		State:     snap.State.String(),
		Pending:   snap.Pending,
		Processed: snap.Processed,
		Failed:    snap.Failed,
		LastError: snap.LastError,
	}
	for _, job := range snap.Queued {
		dto.Queue = append(dto.Queue, FromJob(job))
	}
	if snap.Active != nil {
		active := FromJob(*snap.Active)
		dto.Active = &active
		if !snap.ActiveFrom.IsZero() {
			dto.ActiveSince = snap.ActiveFrom.UTC().Format(dateTimeFormat)
		}
	}
	if last := snap.LastJob; last != nil {
		result := JobResult{
			Job:        FromJob(last.Job),
			Outcome:    last.Outcome.Kind.String(),
			Link:       last.Outcome.Link,
			FileName:   last.Outcome.FileName,
			Detail:     last.Outcome.Detail,
			DurationMS: last.Duration.Milliseconds(),
		}
		if !last.Finished.IsZero() {
			result.FinishedAt = last.Finished.UTC().Format(dateTimeFormat)
		}
		dto.LastJob = &result
	}
	return dto
}

// FromEvents converts stored event log entries.
func FromEvents(events []eventlog.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, evt := range events {
		out = append(out, Event{
			ID:        evt.ID,
			UserID:    evt.UserID,
			Message:   evt.Message,
			CreatedAt: evt.CreatedAt.UTC().Format(dateTimeFormat),
		})
	}
	return out
}

// FromDependencies converts binary availability checks.
func FromDependencies(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, dep := range statuses {
		out = append(out, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Path:        dep.Path,
			Version:     dep.Version,
			Detail:      dep.Detail,
		})
	}
	return out
}
