package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"tubelift/internal/config"
	"tubelift/internal/deps"
)

const checkTimeout = 5 * time.Second

// CheckYandexDisk verifies the OAuth token against the disk info endpoint.
func CheckYandexDisk(ctx context.Context, baseURL, token string) Result {
	const name = "Yandex.Disk"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing token"}
	}
	status, err := probe(ctx, base+"/", "OAuth "+strings.TrimSpace(token))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%s)", summarizeNetError(err))}
	}
	switch status {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", status)}
	}
}

// CheckMatrix verifies the access token with the whoami endpoint.
func CheckMatrix(ctx context.Context, homeserver, token string) Result {
	const name = "Matrix"

	base := strings.TrimRight(strings.TrimSpace(homeserver), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing homeserver url"}
	}
	if strings.TrimSpace(token) == "" {
		return Result{Name: name, Detail: "missing access token"}
	}
	status, err := probe(ctx, base+"/_matrix/client/v3/account/whoami", "Bearer "+strings.TrimSpace(token))
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%s)", summarizeNetError(err))}
	}
	switch status {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid access token)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%d)", status)}
	}
}

func probe(ctx context.Context, url, authorization string) (int, error) {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: checkTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the fetcher needs. Both the
// daemon status endpoint and the CLI check command use it.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	ytdlp := cfg.YtDlpBinary()
	statuses := deps.CheckBinaries(ctx, []deps.Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytdlp,
			Description: "Required for downloading media",
			VersionArg:  "--version",
		},
	})
	ffmpeg := deps.CheckFFmpegForYtDlp(ytdlp)
	ffmpeg.Optional = true
	return append(statuses, ffmpeg)
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	return err.Error()
}
