package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tubelift/internal/config"
	"tubelift/internal/eventlog"
	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/notifications"
	"tubelift/internal/publish"
	"tubelift/internal/queue"
)

// Dependencies are the collaborators the orchestrator drives.
type Dependencies struct {
	Queue     *queue.Queue
	Fetcher   fetch.Fetcher
	Publisher publish.Publisher
	Notifier  notifications.Notifier
	Events    eventlog.Sink
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Orchestrator is the single worker draining the job queue.
type Orchestrator struct {
	queue     *queue.Queue
	fetcher   fetch.Fetcher
	publisher publish.Publisher
	notifier  notifications.Notifier
	events    eventlog.Sink
	metrics   *Metrics
	logger    *slog.Logger

	uploadDir           string
	progressStep        int
	progressMinInterval time.Duration
	stepTimeout         time.Duration
	now                 func() time.Time

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	state      State
	stopped    bool
	active     *queue.Job
	activeFrom time.Time
	processed  int64
	failed     int64
	lastErr    string
	lastJob    *JobResult
}

// NewOrchestrator wires an orchestrator. Notifications are always delivered
// best effort; a nil Queue gets a fresh one.
func NewOrchestrator(cfg *config.Config, deps Dependencies) *Orchestrator {
	logger := logging.NewComponentLogger(deps.Logger, "workflow")
	q := deps.Queue
	if q == nil {
		q = queue.New()
	}
	notifier, ok := deps.Notifier.(*notifications.BestEffort)
	if !ok {
		notifier = notifications.NewBestEffort(deps.Notifier, deps.Logger)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		queue:     q,
		fetcher:   deps.Fetcher,
		publisher: deps.Publisher,
		notifier:  notifier,
		events:    deps.Events,
		metrics:   deps.Metrics,
		logger:    logger,
		now:       time.Now,
		runCtx:    runCtx,
		cancel:    cancel,
	}
	if cfg != nil {
		o.uploadDir = cfg.Storage.UploadDir
		o.progressStep = cfg.Workflow.ProgressStep
		o.progressMinInterval = cfg.ProgressMinInterval()
		o.stepTimeout = cfg.StepTimeout()
	}
	return o
}

// Queue exposes the underlying job queue.
func (o *Orchestrator) Queue() *queue.Queue {
	return o.queue
}

// Trigger starts a drain unless one is already running or the orchestrator
// has stopped. It reports whether a new drain started.
func (o *Orchestrator) Trigger() bool {
	o.mu.Lock()
	if o.stopped || o.state == StateDraining {
		o.mu.Unlock()
		return false
	}
	o.state = StateDraining
	o.wg.Add(1)
	o.mu.Unlock()

	go o.drain(o.runCtx)
	return true
}

// Wait blocks until no drain is running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Stop cancels the in-flight job, prevents new drains, and waits for the
// current one to exit. Pending jobs stay in the queue and are not processed.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
	o.cancel()
	o.wg.Wait()
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) drain(ctx context.Context) {
	defer o.wg.Done()
	logger := o.logger
	logger.Debug("drain started", logging.String(logging.FieldEventType, "drain_started"))

	for {
		if ctx.Err() != nil {
			o.setIdle()
			logger.Info("drain stopped by shutdown",
				logging.Int("pending", o.queue.Len()),
				logging.String(logging.FieldEventType, "drain_cancelled"),
			)
			return
		}
		job, ok := o.queue.PopOrElse(o.setIdle)
		if !ok {
			logger.Debug("queue empty; orchestrator idle", logging.String(logging.FieldEventType, "drain_finished"))
			return
		}
		o.metrics.jobStarted(o.queue.Len())
		o.processJob(ctx, job)
	}
}

func (o *Orchestrator) setIdle() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}
