package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tubelift/internal/fetch"
	"tubelift/internal/logging"
	"tubelift/internal/notifications"
	"tubelift/internal/queue"
	"tubelift/internal/testsupport"
)

// concurrencyProbe tracks how many pipeline bodies run at once.
type concurrencyProbe struct {
	current atomic.Int32
	max     atomic.Int32
}

func (p *concurrencyProbe) enter() {
	n := p.current.Add(1)
	for {
		m := p.max.Load()
		if n <= m || p.max.CompareAndSwap(m, n) {
			return
		}
	}
}

func (p *concurrencyProbe) exit() { p.current.Add(-1) }

type fakeFetcher struct {
	t     *testing.T
	dir   string
	probe *concurrencyProbe

	mu    sync.Mutex
	calls []string
	// behave overrides the default success path for a URL.
	behave func(ctx context.Context, url string, sink fetch.Sink) (fetch.Artifact, error)
	// progress is replayed into the sink on success.
	progress []float64
	last     fetch.Artifact
	started  chan string
	release  chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, sink fetch.Sink) (fetch.Artifact, error) {
	f.probe.enter()
	defer f.probe.exit()

	f.mu.Lock()
	f.calls = append(f.calls, url)
	behave := f.behave
	f.mu.Unlock()

	if f.started != nil {
		f.started <- url
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return fetch.Artifact{}, ctx.Err()
		}
	}
	if behave != nil {
		if artifact, err := behave(ctx, url, sink); artifact.Exists() || err != nil {
			return artifact, err
		}
	}
	for _, p := range f.progress {
		sink.Report(ctx, p)
	}
	artifact := f.makeArtifact(url)
	sink.Finished(ctx)
	return artifact, nil
}

func (f *fakeFetcher) makeArtifact(url string) fetch.Artifact {
	f.t.Helper()
	jobDir, err := os.MkdirTemp(f.dir, "job-*")
	if err != nil {
		f.t.Fatalf("mkdir job dir: %v", err)
	}
	name := strings.NewReplacer("/", "_", ":", "_").Replace(url) + ".mp4"
	path := filepath.Join(jobDir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		f.t.Fatalf("write artifact: %v", err)
	}
	artifact := fetch.Artifact{Path: path, Name: name, Dir: jobDir, Size: 5}
	f.mu.Lock()
	f.last = artifact
	f.mu.Unlock()
	return artifact
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakePublisher struct {
	probe     *concurrencyProbe
	uploadErr error
	linkErr   error
	link      string
	panicOn   string

	mu      sync.Mutex
	uploads []string
}

func (p *fakePublisher) Upload(_ context.Context, artifact fetch.Artifact, dest string) error {
	p.probe.enter()
	defer p.probe.exit()
	if p.panicOn != "" && strings.Contains(dest, p.panicOn) {
		panic("publisher exploded")
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		return err
	}
	p.mu.Lock()
	p.uploads = append(p.uploads, dest)
	p.mu.Unlock()
	return p.uploadErr
}

func (p *fakePublisher) Link(_ context.Context, dest string) (string, error) {
	if p.linkErr != nil {
		return "", p.linkErr
	}
	if p.link != "" {
		return p.link, nil
	}
	return "https://disk.example/" + filepath.Base(dest), nil
}

type sentMessage struct {
	User string
	Text string
	Edit bool
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []sentMessage
	seq      int
	fail     bool
	// panicOn makes Send panic for texts containing it.
	panicOn string
}

func (n *recordingNotifier) Send(_ context.Context, user, text string) (notifications.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.panicOn != "" && strings.Contains(text, n.panicOn) {
		panic("transport exploded")
	}
	if n.fail {
		return notifications.Handle{}, errors.New("transport down")
	}
	n.seq++
	n.messages = append(n.messages, sentMessage{User: user, Text: text})
	return notifications.Handle{Transport: "test", User: user, ID: string(rune('a' + n.seq))}, nil
}

func (n *recordingNotifier) Edit(_ context.Context, h notifications.Handle, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("transport down")
	}
	n.messages = append(n.messages, sentMessage{User: h.User, Text: text, Edit: true})
	return nil
}

func (n *recordingNotifier) For(user string) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.messages {
		if m.User == user {
			out = append(out, m)
		}
	}
	return out
}

// Terminal returns non-edit messages for user except the started message.
func (n *recordingNotifier) Terminal(user string) []string {
	var out []string
	for _, m := range n.For(user) {
		if m.Edit || strings.HasPrefix(m.Text, "Download started: ") {
			continue
		}
		out = append(out, m.Text)
	}
	return out
}

type recordingEvents struct {
	mu    sync.Mutex
	lines []string
}

func (e *recordingEvents) Append(_ context.Context, user, text string, ts time.Time) error {
	if ts.IsZero() {
		return errors.New("missing timestamp")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = append(e.lines, user+"|"+text)
	return nil
}

func (e *recordingEvents) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.lines...)
}

type harness struct {
	orch      *Orchestrator
	fetcher   *fakeFetcher
	publisher *fakePublisher
	notifier  *recordingNotifier
	events    *recordingEvents
	probe     *concurrencyProbe
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	probe := &concurrencyProbe{}
	h := &harness{
		fetcher:   &fakeFetcher{t: t, dir: t.TempDir(), probe: probe},
		publisher: &fakePublisher{probe: probe},
		notifier:  &recordingNotifier{},
		events:    &recordingEvents{},
		probe:     probe,
	}
	h.orch = NewOrchestrator(cfg, Dependencies{
		Queue:     queue.New(),
		Fetcher:   h.fetcher,
		Publisher: h.publisher,
		Notifier:  h.notifier,
		Events:    h.events,
		Logger:    logging.NewNop(),
	})
	t.Cleanup(h.orch.Stop)
	return h
}

// blockFetches makes every fetch announce itself and wait for a release.
func (h *harness) blockFetches() {
	h.fetcher.started = make(chan string, 64)
	h.fetcher.release = make(chan struct{})
}

func (h *harness) awaitStarted(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-h.fetcher.started:
		if got != want {
			t.Fatalf("started %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q to start", want)
	}
}
