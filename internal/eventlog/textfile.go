package eventlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const textTimestampLayout = "2006-01-02 15:04:05.000000"

// TextFile appends event lines to a plain text file.
type TextFile struct {
	mu   sync.Mutex
	path string
}

// NewTextFile returns a sink writing to path. The file is created on first use.
func NewTextFile(path string) *TextFile {
	return &TextFile{path: strings.TrimSpace(path)}
}

// Path returns the target file path.
func (t *TextFile) Path() string { return t.path }

// Append implements Sink.
func (t *TextFile) Append(_ context.Context, user, text string, ts time.Time) error {
	if t == nil || t.path == "" {
		return nil
	}
	line := FormatLine(user, text, ts)

	t.mu.Lock()
	defer t.mu.Unlock()
	if dir := filepath.Dir(t.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create event log directory: %w", err)
		}
	}
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	if _, err := file.WriteString(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("write event log: %w", err)
	}
	return file.Close()
}

// FormatLine renders one event line including the trailing newline.
// Newlines inside text are flattened so each event stays on one line.
func FormatLine(user, text string, ts time.Time) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return fmt.Sprintf("[%s] User %s: %s\n", ts.Format(textTimestampLayout), user, text)
}
