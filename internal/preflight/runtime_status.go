package preflight

import (
	"context"
	"strings"

	"tubelift/internal/config"
)

// CheckStorageFromConfig evaluates the configured storage backend.
func CheckStorageFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "Storage"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	switch cfg.Storage.Backend {
	case config.StorageYandex:
		if strings.TrimSpace(cfg.Storage.YandexToken) == "" {
			return Result{Name: "Yandex.Disk", Detail: "Missing token"}
		}
		return CheckYandexDisk(ctx, cfg.Storage.YandexBaseURL, cfg.Storage.YandexToken)
	case config.StorageDirectory:
		return CheckDirectoryAccess("Publish directory", cfg.Storage.DirectoryPath)
	default:
		return Result{Name: name, Detail: "Unsupported backend " + cfg.Storage.Backend}
	}
}

// NotificationTransport names the transport terminal messages go through.
func NotificationTransport(cfg *config.Config) string {
	switch {
	case cfg == nil:
		return "unknown"
	case cfg.Matrix.Enabled:
		return "matrix"
	case strings.TrimSpace(cfg.Notifications.NtfyTopic) != "":
		return "ntfy"
	default:
		return "log"
	}
}
