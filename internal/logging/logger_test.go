package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubelift/internal/config"
	"tubelift/internal/logging"
	"tubelift/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, "", false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("daemon ready")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "tubelift.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "daemon ready") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndAttrs(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:  "console",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "workflow").Info("job finished",
		logging.String(logging.FieldOutcome, "success"),
		logging.String("detail", "has spaces"),
	)
	logger.Debug("hidden")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "INFO workflow: job finished") {
		t.Fatalf("expected component prefix, got %q", text)
	}
	if !strings.Contains(text, `outcome=success`) || !strings.Contains(text, `detail="has spaces"`) {
		t.Fatalf("expected formatted attrs, got %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", text)
	}
	if strings.Contains(text, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", text)
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{
		Format:  "json",
		Level:   "info",
		Outputs: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithJobID(context.Background(), "job-1")
	ctx = services.WithSubmitter(ctx, "!room:example.org")
	logging.WithContext(ctx, logger).Info("started")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, content)
	}
	if entry[logging.FieldJobID] != "job-1" {
		t.Fatalf("expected job id field, got %v", entry)
	}
	if entry[logging.FieldSubmitter] != "!room:example.org" {
		t.Fatalf("expected submitter field, got %v", entry)
	}
	if entry["level"] != "info" || entry["msg"] != "started" {
		t.Fatalf("unexpected level/msg: %v", entry)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleLoggerLiftsJobID(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Outputs: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithJobID(context.Background(), "0123456789abcdef")
	jobLogger := logging.WithContext(ctx, logging.NewComponentLogger(logger, "workflow"))
	jobLogger.WithGroup("upload").Info("sent", logging.Int("bytes", 42))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "workflow: sent [job=01234567]") {
		t.Fatalf("expected job id after message, got %q", text)
	}
	if !strings.Contains(text, "upload.bytes=42") {
		t.Fatalf("expected grouped attr, got %q", text)
	}
	if strings.Contains(text, "job_id=") {
		t.Fatalf("job id should not be repeated as an attribute: %q", text)
	}
}

func TestParseLevelOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg, "debug", false)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("override should enable debug logging")
	}
}
