package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const userAgent = "tubelift/0.1.0"

// Ntfy publishes messages to an ntfy topic. ntfy has no edit operation, so
// Edit publishes a follow-up tagged with the original message id.
type Ntfy struct {
	endpoint string
	client   *http.Client
	seq      atomic.Int64
}

// NewNtfy builds an ntfy notifier for the topic URL. A timeout of zero or
// less falls back to ten seconds.
func NewNtfy(topic string, timeout time.Duration) *Ntfy {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Ntfy{
		endpoint: strings.TrimSpace(topic),
		client:   &http.Client{Timeout: timeout},
	}
}

// Send implements Notifier.
func (n *Ntfy) Send(ctx context.Context, user, text string) (Handle, error) {
	id := formatInt(n.seq.Add(1))
	if err := n.publish(ctx, user, id, text, "default"); err != nil {
		return Handle{}, err
	}
	return Handle{Transport: "ntfy", User: user, ID: id}, nil
}

// Edit implements Notifier.
func (n *Ntfy) Edit(ctx context.Context, handle Handle, text string) error {
	return n.publish(ctx, handle.User, handle.ID, text, "low")
}

func (n *Ntfy) publish(ctx context.Context, user, id, text, priority string) error {
	if n == nil || n.client == nil || n.endpoint == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "tubelift")
	tags := []string{"tubelift"}
	if user = strings.TrimSpace(user); user != "" {
		tags = append(tags, user)
	}
	if id != "" {
		tags = append(tags, "msg-"+id)
	}
	req.Header.Set("Tags", strings.Join(tags, ","))
	if priority != "" && priority != "default" {
		req.Header.Set("Priority", priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
