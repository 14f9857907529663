package publish

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"tubelift/internal/fetch"
	"tubelift/internal/fileutil"
	"tubelift/internal/services"
)

// Directory publishes by copying artifacts under a local root. Links are
// PublicBaseURL joined with the destination path, or file:// URLs when no base
// is configured.
type Directory struct {
	Root          string
	PublicBaseURL string
}

// NewDirectory builds a directory publisher.
func NewDirectory(root, publicBaseURL string) *Directory {
	return &Directory{
		Root:          strings.TrimSpace(root),
		PublicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// Upload implements Publisher.
func (d *Directory) Upload(ctx context.Context, artifact fetch.Artifact, dest string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "copy", "", err)
	}
	target, err := d.localPath(dest)
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "copy", "", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "copy", "create target directory", err)
	}
	if _, err := fileutil.CopyAtomic(artifact.Path, target, 0o644); err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "copy", "", err)
	}
	return nil
}

// Link implements Publisher.
func (d *Directory) Link(_ context.Context, dest string) (string, error) {
	target, err := d.localPath(dest)
	if err != nil {
		return "", services.Wrap(services.ErrLinkUnavailable, "publish", "link", "", err)
	}
	if _, err := os.Stat(target); err != nil {
		return "", services.Wrap(services.ErrLinkUnavailable, "publish", "link", "published file missing", err)
	}
	if d.PublicBaseURL == "" {
		return (&url.URL{Scheme: "file", Path: target}).String(), nil
	}
	segments := strings.Split(strings.TrimPrefix(path.Clean("/"+dest), "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return d.PublicBaseURL + "/" + strings.Join(segments, "/"), nil
}

func (d *Directory) localPath(dest string) (string, error) {
	if d.Root == "" {
		return "", errors.New("directory publisher has no root")
	}
	clean := path.Clean("/" + strings.TrimSpace(dest))
	if clean == "/" {
		return "", fmt.Errorf("invalid destination %q", dest)
	}
	return filepath.Join(d.Root, filepath.FromSlash(clean)), nil
}
