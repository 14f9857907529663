package notifications

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"tubelift/internal/logging"
)

// Handle identifies a sent message for later edits. The zero value means the
// message was never delivered.
type Handle struct {
	Transport string `json:"transport,omitempty"`
	User      string `json:"user,omitempty"`
	ID        string `json:"id,omitempty"`
}

// IsZero reports whether the handle refers to no message.
func (h Handle) IsZero() bool {
	return h.ID == ""
}

// Notifier defines the message surface consumed by the pipeline.
type Notifier interface {
	Send(ctx context.Context, user, text string) (Handle, error)
	Edit(ctx context.Context, handle Handle, text string) error
}

// BestEffort wraps a Notifier so delivery failures are logged and dropped.
// Send failures yield a zero Handle, and edits of a zero Handle are skipped.
type BestEffort struct {
	next   Notifier
	logger *slog.Logger
	failed atomic.Int64
}

// NewBestEffort wraps next. A nil next behaves like a notifier that drops
// everything.
func NewBestEffort(next Notifier, logger *slog.Logger) *BestEffort {
	return &BestEffort{next: next, logger: logging.NewComponentLogger(logger, "notifications")}
}

// Send implements Notifier and never returns an error.
func (b *BestEffort) Send(ctx context.Context, user, text string) (Handle, error) {
	if b == nil || b.next == nil {
		return Handle{}, nil
	}
	handle, err := b.next.Send(ctx, user, text)
	if err != nil {
		b.failed.Add(1)
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "notification send failed", "notification_send_failed",
			logging.String(logging.FieldSubmitter, user),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check chat transport credentials and connectivity"),
			logging.String(logging.FieldImpact, "submitter misses this message"),
		)
		return Handle{}, nil
	}
	return handle, nil
}

// Edit implements Notifier and never returns an error.
func (b *BestEffort) Edit(ctx context.Context, handle Handle, text string) error {
	if b == nil || b.next == nil || handle.IsZero() {
		return nil
	}
	if err := b.next.Edit(ctx, handle, text); err != nil {
		b.failed.Add(1)
		logging.WarnWithContext(logging.WithContext(ctx, b.logger), "notification edit failed", "notification_edit_failed",
			logging.String(logging.FieldSubmitter, handle.User),
			logging.String("message_id", handle.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "status message shows stale progress"),
		)
	}
	return nil
}

// Failures returns how many deliveries were dropped.
func (b *BestEffort) Failures() int64 {
	if b == nil {
		return 0
	}
	return b.failed.Load()
}

// Log writes messages to slog. It is used when no transport is configured.
type Log struct {
	logger *slog.Logger
	seq    atomic.Int64
}

// NewLog returns a slog-backed notifier.
func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logging.NewComponentLogger(logger, "notifications")}
}

// Send implements Notifier.
func (l *Log) Send(ctx context.Context, user, text string) (Handle, error) {
	id := l.seq.Add(1)
	logging.WithContext(ctx, l.logger).Info("message",
		logging.String(logging.FieldSubmitter, user),
		logging.Int64("message_id", id),
		logging.String("text", flatten(text)),
	)
	return Handle{Transport: "log", User: user, ID: formatInt(id)}, nil
}

// Edit implements Notifier.
func (l *Log) Edit(ctx context.Context, handle Handle, text string) error {
	logging.WithContext(ctx, l.logger).Info("message edited",
		logging.String(logging.FieldSubmitter, handle.User),
		logging.String("message_id", handle.ID),
		logging.String("text", flatten(text)),
	)
	return nil
}

func flatten(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(text), "\n", " | ")
}
