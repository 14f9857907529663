package notifications

import (
	"log/slog"
	"strings"
	"time"

	"tubelift/internal/config"
)

// NewFromConfig selects the transport: Matrix when a client is supplied, ntfy
// when a topic is configured, otherwise slog. The result is always wrapped in
// BestEffort.
func NewFromConfig(cfg *config.Config, matrix MatrixSender, logger *slog.Logger) *BestEffort {
	var next Notifier
	switch {
	case matrix != nil:
		next = NewMatrix(matrix)
	case cfg != nil && strings.TrimSpace(cfg.Notifications.NtfyTopic) != "":
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		next = NewNtfy(cfg.Notifications.NtfyTopic, timeout)
	default:
		next = NewLog(logger)
	}
	return NewBestEffort(next, logger)
}

// Transport names the underlying notifier for diagnostics.
func (b *BestEffort) Transport() string {
	if b == nil {
		return "none"
	}
	switch b.next.(type) {
	case *Matrix:
		return "matrix"
	case *Ntfy:
		return "ntfy"
	case *Log:
		return "log"
	case nil:
		return "none"
	default:
		return "custom"
	}
}
