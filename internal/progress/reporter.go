package progress

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"tubelift/internal/logging"
	"tubelift/internal/notifications"
)

// DefaultStep is the minimum percent advance between edits.
const DefaultStep = 5

// Editor edits a previously sent message.
type Editor interface {
	Edit(ctx context.Context, handle notifications.Handle, text string) error
}

// Options configures a Reporter.
type Options struct {
	Step        int
	MinInterval time.Duration
	// Format renders the percent edit text.
	Format       func(percent int) string
	FinishedText string
	Logger       *slog.Logger
}

// Reporter owns the progress state of one active job.
type Reporter struct {
	mu       sync.Mutex
	editor   Editor
	handle   notifications.Handle
	step     int
	last     int
	edits    int
	finished bool
	limiter  *rate.Limiter
	format   func(int) string
	doneText string
	sampler  *logging.ProgressSampler
	logger   *slog.Logger
}

// New binds a Reporter to handle. The editor should already swallow delivery
// errors; any error it returns is logged and dropped.
func New(editor Editor, handle notifications.Handle, opts Options) *Reporter {
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}
	format := opts.Format
	if format == nil {
		format = func(p int) string { return formatPercent(p) }
	}
	r := &Reporter{
		editor:   editor,
		handle:   handle,
		step:     step,
		format:   format,
		doneText: opts.FinishedText,
		sampler:  logging.NewProgressSampler(float64(step)),
		logger:   logging.NewComponentLogger(opts.Logger, "progress"),
	}
	if opts.MinInterval > 0 {
		r.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}
	return r
}

// Report records a download percentage. Values are clamped to [0,100] and
// truncated. An edit is sent only when the truncated value is at least Step
// points above the last reported one; smaller, repeated, or backwards values
// are ignored. Reports after Finished are ignored.
func (r *Reporter) Report(ctx context.Context, percent float64) {
	if r == nil {
		return
	}
	value := clamp(percent)

	r.mu.Lock()
	if r.finished || value-r.last < r.step {
		r.mu.Unlock()
		return
	}
	if r.limiter != nil && !r.limiter.Allow() {
		r.mu.Unlock()
		return
	}
	r.last = value
	r.edits++
	text := r.format(value)
	r.mu.Unlock()

	if r.sampler.ShouldLog(float64(value), "downloading") {
		logging.WithContext(ctx, r.logger).Debug("download progress",
			logging.Int(logging.FieldProgressPercent, value),
		)
	}
	r.edit(ctx, text)
}

// Finished sends the uploading edit. Only the first call has an effect; it is
// never throttled.
func (r *Reporter) Finished(ctx context.Context) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.edits++
	text := r.doneText
	r.mu.Unlock()

	logging.WithContext(ctx, r.logger).Debug("download finished",
		logging.String(logging.FieldEventType, "download_finished"),
	)
	r.edit(ctx, text)
}

// LastReported returns the last percent that produced an edit.
func (r *Reporter) LastReported() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Edits returns how many edits were attempted, including those skipped
// because the bound message was never delivered.
func (r *Reporter) Edits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.edits
}

func (r *Reporter) edit(ctx context.Context, text string) {
	if r.editor == nil || r.handle.IsZero() {
		return
	}
	if err := r.editor.Edit(ctx, r.handle, text); err != nil {
		logging.WithContext(ctx, r.logger).Debug("progress edit dropped", logging.Error(err))
	}
}

func clamp(percent float64) int {
	switch {
	case math.IsNaN(percent), percent <= 0:
		return 0
	case percent >= 100:
		return 100
	default:
		return int(percent)
	}
}
