package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tubelift/internal/logging"
)

// SweepResult lists what a sweep removed and what it could not.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a path with the error that prevented its removal.
type SweepError struct {
	Path  string
	Error error
}

// SweepStale removes entries in the download directory whose name matches
// pattern (filepath.Match syntax) and whose modification time is older than
// maxAge. A crashed or killed daemon leaves partial yt-dlp output in its job
// directories; this is meant to run before the worker starts so nothing it
// touches can belong to a live job. Entries that do not match are never
// touched, and an empty or malformed pattern removes nothing.
//
// A non-positive maxAge removes every matching entry.
func SweepStale(ctx context.Context, dir, pattern string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	var result SweepResult
	if logger == nil {
		logger = logging.NewNop()
	}

	dir = strings.TrimSpace(dir)
	if dir == "" || pattern == "" {
		return result
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		result.Errors = append(result.Errors, SweepError{Path: pattern, Error: err})
		return result
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: dir, Error: err})
		}
		return result
	}

	now := time.Now()
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}
		target := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !os.IsNotExist(err) {
				result.Errors = append(result.Errors, SweepError{Path: target, Error: err})
			}
			continue
		}
		age := now.Sub(info.ModTime())
		if maxAge > 0 && age < maxAge {
			continue
		}
		if err := os.RemoveAll(target); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: target, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale download", "temp_sweep_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check temp_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, target)
		logger.Info("removed stale download",
			logging.String("path", target),
			logging.Duration("age", age),
			logging.String(logging.FieldEventType, "temp_sweep"),
		)
	}
	return result
}
