package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/matrix-org/gomatrix"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tubelift/internal/bot"
	"tubelift/internal/config"
	"tubelift/internal/daemon"
	"tubelift/internal/eventlog"
	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/notifications"
	"tubelift/internal/preflight"
	"tubelift/internal/publish"
	"tubelift/internal/queue"
	"tubelift/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the tubelift daemon and blocks until SIGINT/SIGTERM or cmdCtx
// is cancelled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg, opts.LogLevel, opts.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logPreflight(signalCtx, logger, cfg)

	store, err := eventlog.Open(signalCtx, cfg.EventLog.DatabasePath)
	if err != nil {
		logger.Error("open event store", logging.Error(err))
		return err
	}
	defer store.Close()
	events := eventlog.NewFanout(logger, store, eventlog.NewTextFile(cfg.EventLog.TextPath))

	publisher, err := publish.NewFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}

	var matrixClient *gomatrix.Client
	if cfg.Matrix.Enabled {
		matrixClient, err = gomatrix.NewClient(cfg.Matrix.HomeserverURL, cfg.Matrix.UserID, cfg.Matrix.AccessToken)
		if err != nil {
			return fmt.Errorf("create matrix client: %w", err)
		}
	}
	var sender notifications.MatrixSender
	if matrixClient != nil {
		sender = matrixClient
	}
	notifier := notifications.NewFromConfig(cfg, sender, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch := workflow.NewOrchestrator(cfg, workflow.Dependencies{
		Queue:     queue.New(),
		Fetcher:   fetch.NewYtDlp(cfg, logger),
		Publisher: publisher,
		Notifier:  notifier,
		Events:    events,
		Metrics:   workflow.NewMetrics(registry),
		Logger:    logger,
	})

	d, err := daemon.New(cfg, logger, orch, daemon.Options{Events: store, Gatherer: registry})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	pidPath := filepath.Join(cfg.Paths.LogDir, "tubelift.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)
	logger.Info("tubelift ready",
		logging.String(logging.FieldEventType, "daemon_ready"),
		logging.String("storage", cfg.Storage.Backend),
		logging.String("transport", notifier.Transport()),
		logging.String("api", d.APIAddr()),
	)

	if matrixClient != nil {
		chat := bot.New(orch, matrixClient, cfg.Matrix.UserID, logger)
		go func() {
			if err := chat.Run(signalCtx, matrixClient); err != nil {
				logger.Error("matrix bot stopped", logging.Error(err))
			}
		}()
	}

	<-signalCtx.Done()
	logger.Info("tubelift daemon shutting down",
		logging.Int("pending", orch.Queue().Len()),
		logging.String(logging.FieldEventType, "daemon_shutdown"),
	)
	return nil
}

func logPreflight(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	for _, result := range preflight.RunAll(ctx, cfg) {
		if result.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run 'tubelift check' for details"),
			logging.String(logging.FieldImpact, "jobs may fail until this is fixed"),
		)
	}
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
