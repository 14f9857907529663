package publish

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tubelift/internal/config"
	"tubelift/internal/fetch"
	"tubelift/internal/textutil"
)

// Publisher uploads artifacts and resolves their public links.
type Publisher interface {
	Upload(ctx context.Context, artifact fetch.Artifact, dest string) error
	Link(ctx context.Context, dest string) (string, error)
}

// HTTPDoer describes the HTTP client used by HTTP-backed publishers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Destination returns the remote path for artifact under uploadDir.
func Destination(uploadDir string, artifact fetch.Artifact) string {
	return textutil.RemotePath(uploadDir, artifact.Path)
}

// NewFromConfig builds the configured storage backend.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("publisher: nil config")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case config.StorageYandex:
		timeout := time.Duration(cfg.Storage.RequestTimeout) * time.Second
		return NewYandex(cfg.Storage.YandexBaseURL, cfg.Storage.YandexToken, timeout, logger), nil
	case config.StorageDirectory:
		return NewDirectory(cfg.Storage.DirectoryPath, cfg.Storage.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("publisher: unsupported storage backend %q", cfg.Storage.Backend)
	}
}
