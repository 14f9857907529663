package fetch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"tubelift/internal/config"
	"tubelift/internal/logging"
	"tubelift/internal/services"
)

const progressInterval = 250 * time.Millisecond

// JobDirPattern names the per-job scratch directories created under temp_dir.
// Startup cleanup matches on it so unrelated files in temp_dir are left alone.
const JobDirPattern = "job-*"

// runFunc executes one download into dir, forwarding progress updates. It
// returns the downloaded file path when known and the media title.
type runFunc func(ctx context.Context, url, dir string, onProgress func(ytdlp.ProgressUpdate)) (path, title string, err error)

// YtDlp fetches media with the yt-dlp binary.
type YtDlp struct {
	tempDir        string
	format         string
	mergeFormat    string
	titleMaxLength int
	allowPlaylists bool
	logger         *slog.Logger
	run            runFunc
}

// NewYtDlp builds a yt-dlp fetcher from configuration.
func NewYtDlp(cfg *config.Config, logger *slog.Logger) *YtDlp {
	f := &YtDlp{
		tempDir:        cfg.Paths.TempDir,
		format:         cfg.Fetcher.Format,
		mergeFormat:    cfg.Fetcher.MergeOutputFormat,
		titleMaxLength: cfg.Fetcher.TitleMaxLength,
		allowPlaylists: cfg.Fetcher.AllowPlaylists,
		logger:         logging.NewComponentLogger(logger, "fetch"),
	}
	f.run = f.runYtDlp
	return f
}

// Fetch implements Fetcher.
func (f *YtDlp) Fetch(ctx context.Context, url string, sink Sink) (Artifact, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "validate", "empty URL", nil)
	}
	if sink == nil {
		sink = nopSink{}
	}
	if err := os.MkdirAll(f.tempDir, 0o755); err != nil {
		return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "prepare", "create temp directory", err)
	}
	dir, err := os.MkdirTemp(f.tempDir, JobDirPattern)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "prepare", "create job directory", err)
	}

	logger := logging.WithContext(ctx, f.logger)
	logger.Info("download started", logging.String("url", url), logging.String("dir", dir))

	gate := &progressGate{sink: sink}
	path, title, runErr := f.run(ctx, url, dir, func(update ytdlp.ProgressUpdate) {
		if update.Status == ytdlp.ProgressStatusDownloading {
			gate.report(ctx, update.Percent())
		}
	})
	gate.close()

	if runErr != nil {
		f.discard(logger, dir)
		return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "download", "yt-dlp download failed", runErr)
	}

	if path == "" || !strings.HasPrefix(filepath.Clean(path), filepath.Clean(dir)+string(filepath.Separator)) {
		path, err = locateOutput(dir)
		if err != nil {
			f.discard(logger, dir)
			return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "locate", "downloaded file not found", err)
		}
	}
	artifact, err := newArtifact(path, dir, title)
	if err != nil {
		f.discard(logger, dir)
		return Artifact{}, services.Wrap(services.ErrFetch, "fetch", "locate", "downloaded file unreadable", err)
	}

	sink.Finished(ctx)
	logger.Info("download finished",
		logging.String("file", artifact.Name),
		logging.Int64("size_bytes", artifact.Size),
		logging.String(logging.FieldEventType, "download_finished"),
	)
	return artifact, nil
}

func (f *YtDlp) outputTemplate(dir string) string {
	length := f.titleMaxLength
	if length <= 0 {
		length = 200
	}
	return filepath.Join(dir, "%(title)."+strconv.Itoa(length)+"s.%(ext)s")
}

func (f *YtDlp) runYtDlp(ctx context.Context, url, dir string, onProgress func(ytdlp.ProgressUpdate)) (string, string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Output(f.outputTemplate(dir))
	if f.format != "" {
		dl = dl.Format(f.format)
	}
	if f.mergeFormat != "" {
		dl = dl.MergeOutputFormat(f.mergeFormat)
	}
	if !f.allowPlaylists {
		dl = dl.NoPlaylist()
	}
	dl.ProgressFunc(progressInterval, onProgress)

	result, err := dl.Run(ctx, url)
	if err != nil {
		return "", "", err
	}

	var path, title string
	if result != nil {
		if infos, infoErr := result.GetExtractedInfo(); infoErr == nil && len(infos) > 0 {
			if infos[0].Filename != nil {
				path = *infos[0].Filename
			}
			if infos[0].Title != nil {
				title = *infos[0].Title
			}
		}
	}
	return path, title, nil
}

func (f *YtDlp) discard(logger *slog.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logging.WarnWithContext(logger, "failed to remove partial download", "fetch_cleanup_failed",
			logging.String("dir", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the directory manually"),
			logging.String(logging.FieldImpact, "partial download remains on disk"),
		)
	}
}

// locateOutput returns the largest finished file in dir, ignoring partial and
// sidecar files left by yt-dlp.
func locateOutput(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	type candidate struct {
		path string
		size int64
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if isPartial(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, name), size: info.Size()})
	}
	if len(found) == 0 {
		return "", errors.New("no output files in job directory")
	}
	sort.Slice(found, func(i, j int) bool { return found[i].size > found[j].size })
	return found[0].path, nil
}

func isPartial(name string) bool {
	for _, suffix := range []string{".part", ".ytdl", ".temp", ".json"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return strings.Contains(name, ".part-Frag")
}

// progressGate drops updates that arrive after the download returned.
type progressGate struct {
	mu     sync.Mutex
	sink   Sink
	closed bool
}

func (g *progressGate) report(ctx context.Context, percent float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.sink.Report(ctx, percent)
}

func (g *progressGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}
