package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrDaemonUnavailable is returned when the daemon cannot be reached.
var ErrDaemonUnavailable = errors.New("tubelift daemon is not reachable")

// StatusError is a non-2xx API response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Code)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Code, e.Message)
}

// Client talks to the daemon HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for bind, which may be a host:port pair or a full
// URL. A non-positive timeout defaults to ten seconds.
func NewClient(bind, token string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(bind), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: timeout},
	}
}

// Submit enqueues url for submitter.
func (c *Client) Submit(ctx context.Context, submitter, link string) (SubmitResponse, error) {
	var resp SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/jobs", nil, SubmitRequest{Submitter: submitter, URL: link}, &resp)
	return resp, err
}

// Queue returns the queue length and the submitter's positions.
func (c *Client) Queue(ctx context.Context, submitter string) (QueueStatus, error) {
	var resp QueueStatus
	query := url.Values{"submitter": []string{submitter}}
	err := c.do(ctx, http.MethodGet, "/api/queue", query, nil, &resp)
	return resp, err
}

// Cancel removes every pending job of submitter.
func (c *Client) Cancel(ctx context.Context, submitter string) (CancelResponse, error) {
	var resp CancelResponse
	err := c.do(ctx, http.MethodPost, "/api/cancel", nil, CancelRequest{Submitter: submitter}, &resp)
	return resp, err
}

// Status returns daemon runtime information.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var resp DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, nil, &resp)
	return resp, err
}

// Events returns up to limit recent event log entries, newest first.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	var resp EventsResponse
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}
	if err := c.do(ctx, http.MethodGet, "/api/events", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Health reports whether the daemon answers its liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var resp HealthResponse
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		message := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			message = apiErr.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: message}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
