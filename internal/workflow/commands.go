package workflow

import (
	"context"
	"strings"

	"tubelift/internal/logging"
	"tubelift/internal/queue"
	"tubelift/internal/services"
)

// Submit enqueues url for submitter, records the event, and signals the
// drain loop. It never fails; URL validation is left to the fetcher.
func (o *Orchestrator) Submit(ctx context.Context, submitter, url string) queue.Job {
	job := o.queue.Submit(submitter, url)
	o.metrics.jobSubmitted(o.queue.Len())

	ctx = services.WithJobID(services.WithSubmitter(ctx, submitter), job.ID)
	logging.WithContext(ctx, o.logger).Info("job queued",
		logging.String("url", job.URL),
		logging.String(logging.FieldEventType, "job_queued"),
	)
	o.appendEvent(context.WithoutCancel(ctx), submitter, queuedSummary(job.URL))
	o.Trigger()
	return job
}

// Status reports the queue length and the submitter's positions.
func (o *Orchestrator) Status(submitter string) queue.Status {
	return o.queue.PeekStatus(submitter)
}

// Cancel removes every pending job of submitter. A job that is already
// running is not affected.
func (o *Orchestrator) Cancel(ctx context.Context, submitter string) int {
	removed := o.queue.CancelAll(submitter)
	o.metrics.jobsCancelled(removed, o.queue.Len())

	ctx = services.WithSubmitter(ctx, submitter)
	logging.WithContext(ctx, o.logger).Info("jobs cancelled",
		logging.Int("removed", removed),
		logging.String(logging.FieldEventType, "jobs_cancelled"),
	)
	o.appendEvent(context.WithoutCancel(ctx), submitter, CancelMessage(removed))
	return removed
}

// LooksLikeURL reports whether text is a submission the front ends accept.
func LooksLikeURL(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
