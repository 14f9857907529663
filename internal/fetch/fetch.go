package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives progress for one fetch. Calls happen before Fetch returns.
type Sink interface {
	Report(ctx context.Context, percent float64)
	Finished(ctx context.Context)
}

// Fetcher produces a local artifact for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string, sink Sink) (Artifact, error)
}

// Artifact is a downloaded file. Dir, when set, is a scratch directory owned
// by the artifact and removed by Cleanup.
type Artifact struct {
	Path  string
	Name  string
	Title string
	Size  int64
	Dir   string
}

// Exists reports whether the artifact refers to a file.
func (a Artifact) Exists() bool {
	return a.Path != ""
}

// Cleanup deletes the artifact file and its scratch directory. Missing files
// are not an error.
func (a Artifact) Cleanup() error {
	var errs []error
	if a.Path != "" {
		if err := os.Remove(a.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove artifact: %w", err))
		}
	}
	if a.Dir != "" {
		if err := os.RemoveAll(a.Dir); err != nil {
			errs = append(errs, fmt.Errorf("remove artifact directory: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newArtifact(path, dir, title string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat downloaded file: %w", err)
	}
	if info.IsDir() {
		return Artifact{}, fmt.Errorf("downloaded path %s is a directory", path)
	}
	return Artifact{
		Path:  path,
		Name:  filepath.Base(path),
		Title: title,
		Size:  info.Size(),
		Dir:   dir,
	}, nil
}

type nopSink struct{}

func (nopSink) Report(context.Context, float64) {}
func (nopSink) Finished(context.Context)        {}
