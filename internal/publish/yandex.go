package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/services"
)

const defaultYandexBaseURL = "https://cloud-api.yandex.net/v1/disk"

// Yandex publishes to Yandex.Disk through its REST API.
type Yandex struct {
	baseURL string
	token   string
	api     HTTPDoer
	// upload streams file bodies and has no overall timeout; large files can
	// take longer than an API round trip.
	upload HTTPDoer
	logger *slog.Logger
}

// NewYandex builds a Yandex.Disk publisher. timeout bounds API calls only.
func NewYandex(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Yandex {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return NewYandexWithClient(baseURL, token, &http.Client{Timeout: timeout}, &http.Client{}, logger)
}

// NewYandexWithClient builds a publisher with explicit HTTP clients.
func NewYandexWithClient(baseURL, token string, api, upload HTTPDoer, logger *slog.Logger) *Yandex {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultYandexBaseURL
	}
	if upload == nil {
		upload = api
	}
	return &Yandex{
		baseURL: baseURL,
		token:   strings.TrimSpace(token),
		api:     api,
		upload:  upload,
		logger:  logging.NewComponentLogger(logger, "publish"),
	}
}

type uploadLink struct {
	Href   string `json:"href"`
	Method string `json:"method"`
}

type resourceInfo struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
}

type apiError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// Upload implements Publisher.
func (y *Yandex) Upload(ctx context.Context, artifact fetch.Artifact, dest string) error {
	link, err := y.requestUploadLink(ctx, dest)
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "upload link", "storage did not issue an upload URL", err)
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "open artifact", "", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "stat artifact", "", err)
	}

	method := strings.ToUpper(strings.TrimSpace(link.Method))
	if method == "" {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, link.Href, file)
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "build upload request", "", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := y.upload.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUploadTransport, "publish", "upload", "transfer failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return services.Wrap(services.ErrUploadTransport, "publish", "upload",
			fmt.Sprintf("storage returned %d", resp.StatusCode), nil)
	}

	logging.WithContext(ctx, y.logger).Info("upload complete",
		logging.String("remote_path", dest),
		logging.Int64("size_bytes", info.Size()),
		logging.String(logging.FieldEventType, "upload_complete"),
	)
	return nil
}

// Link implements Publisher. A failed publish call is tolerated when the
// resource already carries a public URL.
func (y *Yandex) Link(ctx context.Context, dest string) (string, error) {
	if err := y.publish(ctx, dest); err != nil {
		logging.WithContext(ctx, y.logger).Debug("publish request failed; checking existing link",
			logging.String("remote_path", dest),
			logging.Error(err),
		)
	}

	var info resourceInfo
	if err := y.getJSON(ctx, http.MethodGet, "/resources", url.Values{"path": {dest}}, &info); err != nil {
		return "", services.Wrap(services.ErrLinkUnavailable, "publish", "resource info", "", err)
	}
	link := strings.TrimSpace(info.PublicURL)
	if link == "" {
		return "", services.Wrap(services.ErrLinkUnavailable, "publish", "resource info", "no public_url on resource", nil)
	}
	return link, nil
}

func (y *Yandex) requestUploadLink(ctx context.Context, dest string) (uploadLink, error) {
	var link uploadLink
	params := url.Values{"path": {dest}, "overwrite": {"true"}}
	if err := y.getJSON(ctx, http.MethodGet, "/resources/upload", params, &link); err != nil {
		return uploadLink{}, err
	}
	if strings.TrimSpace(link.Href) == "" {
		return uploadLink{}, fmt.Errorf("upload link response missing href")
	}
	return link, nil
}

func (y *Yandex) publish(ctx context.Context, dest string) error {
	return y.getJSON(ctx, http.MethodPut, "/resources/publish", url.Values{"path": {dest}}, nil)
}

func (y *Yandex) getJSON(ctx context.Context, method, path string, params url.Values, out any) error {
	endpoint := y.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+y.token)
	req.Header.Set("Accept", "application/json")

	resp, err := y.api.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, describeAPIError(body))
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func describeAPIError(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil {
		for _, candidate := range []string{apiErr.Message, apiErr.Description, apiErr.Error} {
			if msg := strings.TrimSpace(candidate); msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
