package workflow

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/progress"
	"tubelift/internal/publish"
	"tubelift/internal/queue"
	"tubelift/internal/services"
)

const (
	stageNotify  = "notify"
	stageFetch   = "fetch"
	stageUpload  = "upload"
	stageLink    = "link"
	stageCleanup = "cleanup"
)

func (o *Orchestrator) processJob(ctx context.Context, job queue.Job) {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithSubmitter(ctx, job.SubmitterID)
	logger := logging.WithContext(ctx, o.logger)
	start := o.now()
	o.setActive(&job, start)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job finalization panicked",
				logging.Any("panic", r),
				logging.String(logging.FieldEventType, "job_panic"),
				logging.Alert("job_panic"),
			)
		}
		o.setActive(nil, time.Time{})
	}()

	logger.Info("job started",
		logging.String("url", job.URL),
		logging.Duration("queued_for", start.Sub(job.EnqueuedAt)),
		logging.String(logging.FieldEventType, "job_started"),
	)

	outcome := o.runPipeline(ctx, job)

	// Terminal delivery must survive shutdown of the run context.
	final := context.WithoutCancel(ctx)
	o.deliver(final, job.SubmitterID, outcome.Message())
	o.appendEvent(final, job.SubmitterID, outcome.Summary())

	elapsed := o.now().Sub(start)
	o.recordResult(job, outcome, elapsed)
	o.metrics.jobFinished(outcome.Kind, elapsed.Seconds())

	attrs := []logging.Attr{
		logging.String(logging.FieldOutcome, outcome.Kind.String()),
		logging.Duration("duration", elapsed),
		logging.String(logging.FieldEventType, "job_finished"),
	}
	switch outcome.Kind {
	case OutcomeSuccess:
		logger.Info("job finished", logging.Args(append(attrs, logging.String("link", outcome.Link))...)...)
	case OutcomePipelineError:
		logging.WarnWithContext(logger, "job failed", "job_failed", append(attrs,
			logging.String("detail", outcome.Detail),
			logging.String(logging.FieldImpact, "submitter received an error message"),
		)...)
	default:
		logging.WarnWithContext(logger, "job finished degraded", "job_degraded", append(attrs,
			logging.String("file", outcome.FileName),
			logging.String(logging.FieldErrorHint, "check storage credentials and backend status"),
			logging.String(logging.FieldImpact, "submitter received no public link"),
		)...)
	}
}

// runPipeline executes notify, fetch, upload and link for one job. Any panic
// becomes a pipeline error, and a fetched artifact is always removed.
func (o *Orchestrator) runPipeline(ctx context.Context, job queue.Job) (outcome Outcome) {
	var artifact fetch.Artifact
	stage := stageNotify
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "pipeline panicked", "pipeline_panic",
				logging.String(logging.FieldStage, stage),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.Alert("pipeline_panic"),
			)
			outcome = pipelineError(fmt.Sprintf("internal error during %s: %v", stage, r))
		}
		if artifact.Exists() {
			o.cleanupArtifact(ctx, job, artifact)
		}
	}()

	handle, _ := o.notifier.Send(ctx, job.SubmitterID, StartedMessage(job.URL))
	reporter := progress.New(o.notifier, handle, progress.Options{
		Step:         o.progressStep,
		MinInterval:  o.progressMinInterval,
		Format:       ProgressMessage,
		FinishedText: UploadingMessage,
		Logger:       o.logger,
	})

	stage = stageFetch
	if o.fetcher == nil {
		return pipelineError("no fetcher configured")
	}
	fetchCtx, cancel := o.stepContext(services.WithStage(ctx, stageFetch))
	fetched, err := o.fetcher.Fetch(fetchCtx, job.URL, reporter)
	artifact = fetched
	err = o.timeoutError(fetchCtx, stageFetch, err)
	cancel()
	if err != nil {
		o.setLastError(err)
		return pipelineError(services.Detail(err))
	}
	if !artifact.Exists() {
		return pipelineError("fetch returned no file")
	}

	name := artifact.Name
	if name == "" {
		name = artifact.Path
	}
	if o.publisher == nil {
		return uploadFailed(name)
	}
	dest := publish.Destination(o.uploadDir, artifact)

	stage = stageUpload
	uploadCtx, cancel := o.stepContext(services.WithStage(ctx, stageUpload))
	err = o.timeoutError(uploadCtx, stageUpload, o.publisher.Upload(uploadCtx, artifact, dest))
	cancel()
	if err != nil {
		o.setLastError(err)
		return uploadFailed(name)
	}

	stage = stageLink
	linkCtx, cancel := o.stepContext(services.WithStage(ctx, stageLink))
	link, err := o.publisher.Link(linkCtx, dest)
	err = o.timeoutError(linkCtx, stageLink, err)
	cancel()
	link = strings.TrimSpace(link)
	if err != nil || link == "" {
		if err != nil {
			o.setLastError(err)
		}
		return successNoLink(name)
	}
	return success(name, link)
}

func (o *Orchestrator) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stepTimeout)
}

func (o *Orchestrator) timeoutError(ctx context.Context, stage string, err error) error {
	if err == nil || o.stepTimeout <= 0 {
		return err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, stage, "", fmt.Sprintf("timed out after %s", o.stepTimeout), err)
	}
	return err
}

// deliver sends a terminal message. A panicking transport is logged and
// swallowed so the event line and job accounting still follow.
func (o *Orchestrator) deliver(ctx context.Context, user, text string) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "terminal notification panicked", "notify_panic",
				logging.String(logging.FieldStage, stageNotify),
				logging.Any("panic", r),
				logging.Alert("notify_panic"),
			)
		}
	}()
	_, _ = o.notifier.Send(ctx, user, text)
}

func removeArtifact(artifact fetch.Artifact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panicked: %v", r)
		}
	}()
	return artifact.Cleanup()
}

func (o *Orchestrator) cleanupArtifact(ctx context.Context, job queue.Job, artifact fetch.Artifact) {
	err := removeArtifact(artifact)
	if err == nil {
		return
	}
	final := context.WithoutCancel(ctx)
	logging.WarnWithContext(logging.WithContext(ctx, o.logger), "artifact cleanup failed", "artifact_cleanup_failed",
		logging.String(logging.FieldStage, stageCleanup),
		logging.String("path", artifact.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "remove the file from the temp directory manually"),
		logging.String(logging.FieldImpact, "downloaded file remains on disk"),
	)
	o.appendEvent(final, job.SubmitterID, cleanupFailedSummary(artifact.Name))
}

func (o *Orchestrator) appendEvent(ctx context.Context, user, text string) {
	if o.events == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("event log panicked", logging.Any("panic", r))
		}
	}()
	if err := o.events.Append(ctx, user, text, o.now()); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "event log append failed", "event_log_append_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "event line missing"),
		)
	}
}
