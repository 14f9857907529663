package eventlog

import (
	"context"
	"log/slog"
	"time"

	"tubelift/internal/logging"
)

// Sink appends one event line for a user.
type Sink interface {
	Append(ctx context.Context, user, text string, ts time.Time) error
}

// Event is a persisted event log entry.
type Event struct {
	ID        int64
	UserID    string
	Message   string
	CreatedAt time.Time
}

// Fanout writes every line to all sinks and swallows their errors after
// logging them. Append always returns nil.
type Fanout struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewFanout builds a fan-out over the non-nil sinks.
func NewFanout(logger *slog.Logger, sinks ...Sink) *Fanout {
	filtered := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return &Fanout{sinks: filtered, logger: logging.NewComponentLogger(logger, "eventlog")}
}

// Append implements Sink.
func (f *Fanout) Append(ctx context.Context, user, text string, ts time.Time) error {
	if f == nil {
		return nil
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, user, text, ts); err != nil {
			logging.WarnWithContext(f.logger, "event log append failed", "event_log_append_failed",
				logging.String(logging.FieldSubmitter, user),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check event log paths and disk space"),
				logging.String(logging.FieldImpact, "event line missing from one sink"),
			)
		}
	}
	return nil
}

// Len reports the number of wired sinks.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
