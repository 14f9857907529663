package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"tubelift/internal/config"
	"tubelift/internal/deps"
	"tubelift/internal/eventlog"
	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/preflight"
	"tubelift/internal/queue"
	"tubelift/internal/services"
	"tubelift/internal/staging"
	"tubelift/internal/workflow"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another tubelift daemon instance is already running")

// Options carries optional collaborators.
type Options struct {
	// Events backs the events endpoint; nil disables it.
	Events *eventlog.Store
	// Gatherer backs /metrics; nil disables it.
	Gatherer prometheus.Gatherer
}

// Daemon coordinates the orchestrator with the API surface and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	orch     *workflow.Orchestrator
	events   *eventlog.Store
	gatherer prometheus.Gatherer

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Workflow     workflow.Snapshot
	LockFilePath string
	EventDBPath  string
	Storage      string
	Transport    string
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, orch *workflow.Orchestrator, opts Options) (*Daemon, error) {
	if cfg == nil || orch == nil {
		return nil, errors.New("daemon requires config and orchestrator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		orch:     orch,
		events:   opts.Events,
		gatherer: opts.Gatherer,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and starts the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}

	// With the lock held no other instance writes job directories, so any
	// left in temp_dir belong to jobs that died with a previous process.
	if swept := staging.SweepStale(ctx, d.cfg.Paths.TempDir, fetch.JobDirPattern, 0, d.logger); len(swept.Removed) > 0 {
		d.logger.Info("cleared interrupted downloads",
			logging.Int("removed", len(swept.Removed)),
			logging.String(logging.FieldEventType, "temp_sweep_summary"),
		)
	}

	if err := d.api.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.running.Store(true)
	d.orch.Trigger()
	d.logger.Info("tubelift daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.APIAddr()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop shuts down the API, cancels the in-flight job, and releases the lock.
// Pending jobs are dropped with the process.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.api.stop()
	d.orch.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("tubelift daemon stopped",
		logging.Int("dropped_pending", d.orch.Queue().Len()),
		logging.String(logging.FieldEventType, "daemon_stopped"),
	)
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Submit validates and enqueues a submission.
func (d *Daemon) Submit(ctx context.Context, submitter, link string) (queue.Job, error) {
	submitter = strings.TrimSpace(submitter)
	link = strings.TrimSpace(link)
	if submitter == "" {
		return queue.Job{}, services.Wrap(services.ErrValidation, "submit", "", "submitter is required", nil)
	}
	if !workflow.LooksLikeURL(link) {
		return queue.Job{}, services.Wrap(services.ErrValidation, "submit", "", workflow.InvalidSubmitMessage, nil)
	}
	return d.orch.Submit(ctx, submitter, link), nil
}

// QueueStatus reports the queue length and the submitter's positions.
func (d *Daemon) QueueStatus(submitter string) queue.Status {
	return d.orch.Status(strings.TrimSpace(submitter))
}

// Cancel removes every pending job of submitter.
func (d *Daemon) Cancel(ctx context.Context, submitter string) (int, error) {
	submitter = strings.TrimSpace(submitter)
	if submitter == "" {
		return 0, services.Wrap(services.ErrValidation, "cancel", "", "submitter is required", nil)
	}
	return d.orch.Cancel(ctx, submitter), nil
}

// Events returns recent event log entries, newest first.
func (d *Daemon) Events(ctx context.Context, limit int) ([]eventlog.Event, error) {
	if d.events == nil {
		return nil, errors.New("event store unavailable")
	}
	return d.events.Recent(ctx, limit)
}

// APIAddr returns the address the HTTP API listens on, or "" before Start.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Workflow:     d.orch.Snapshot(),
		LockFilePath: d.lockPath,
		Storage:      d.cfg.Storage.Backend,
		Transport:    preflight.NotificationTransport(d.cfg),
		Dependencies: preflight.CheckSystemDeps(ctx, d.cfg),
	}
	if d.events != nil {
		status.EventDBPath = d.events.Path()
	}
	return status
}
