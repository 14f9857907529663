package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tubelift/internal/fetch"
	"tubelift/internal/notifications"
	"tubelift/internal/services"
)

func TestOrchestratorProcessesJobsInOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.orch.Submit(ctx, "u1", "https://a")
	h.orch.Submit(ctx, "u2", "https://b")
	h.orch.Submit(ctx, "u1", "https://c")
	h.orch.Wait()

	want := []string{"https://a", "https://b", "https://c"}
	if got := h.fetcher.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetch order = %v, want %v", got, want)
	}
	if max := h.probe.max.Load(); max != 1 {
		t.Fatalf("max concurrent pipelines = %d, want 1", max)
	}
	if h.orch.State() != StateIdle {
		t.Fatalf("state = %v, want idle", h.orch.State())
	}
	if h.orch.Queue().Len() != 0 {
		t.Fatalf("queue not drained: %d", h.orch.Queue().Len())
	}
}

func TestOrchestratorSuccessFlow(t *testing.T) {
	h := newHarness(t)
	h.fetcher.progress = []float64{3, 7, 8, 12, 50, 49}
	h.publisher.link = "https://disk.example/file"

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Wait()

	var texts []string
	for _, m := range h.notifier.For("u1") {
		texts = append(texts, m.Text)
	}
	name := h.fetcher.last.Name
	want := []string{
		StartedMessage("https://a"),
		ProgressMessage(7),
		ProgressMessage(12),
		ProgressMessage(50),
		UploadingMessage,
		success(name, "https://disk.example/file").Message(),
	}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("messages = %q, want %q", texts, want)
	}

	wantEvents := []string{
		"u1|Queued link: https://a",
		"u1|Uploaded: https://disk.example/file",
	}
	if got := h.events.Lines(); !reflect.DeepEqual(got, wantEvents) {
		t.Fatalf("events = %q, want %q", got, wantEvents)
	}

	if _, err := os.Stat(h.fetcher.last.Path); !os.IsNotExist(err) {
		t.Fatalf("artifact still present: %v", err)
	}
	if _, err := os.Stat(h.fetcher.last.Dir); !os.IsNotExist(err) {
		t.Fatalf("artifact dir still present: %v", err)
	}

	snap := h.orch.Snapshot()
	if snap.Processed != 1 || snap.Failed != 0 {
		t.Fatalf("snapshot counts = %d/%d", snap.Processed, snap.Failed)
	}
	if snap.LastJob == nil || snap.LastJob.Outcome.Kind != OutcomeSuccess {
		t.Fatalf("unexpected last job: %+v", snap.LastJob)
	}
	if snap.Active != nil {
		t.Fatalf("expected no active job, got %+v", snap.Active)
	}
}

func TestOrchestratorStatusWhileBusy(t *testing.T) {
	h := newHarness(t)
	h.blockFetches()
	ctx := context.Background()

	h.orch.Submit(ctx, "u1", "https://a")
	h.awaitStarted(t, "https://a")
	h.orch.Submit(ctx, "u1", "https://b")
	h.orch.Submit(ctx, "u1", "https://c")

	status := h.orch.Status("u1")
	if status.Total != 2 || !reflect.DeepEqual(status.Positions, []int{1, 2}) {
		t.Fatalf("status = %+v, want total 2 positions [1 2]", status)
	}
	other := h.orch.Status("u2")
	if other.Total != 2 || len(other.Positions) != 0 {
		t.Fatalf("other status = %+v", other)
	}
	snap := h.orch.Snapshot()
	if snap.Active == nil || snap.Active.URL != "https://a" {
		t.Fatalf("active job = %+v, want https://a", snap.Active)
	}
	if snap.State != StateDraining {
		t.Fatalf("state = %v, want draining", snap.State)
	}
	if snap.Pending != 2 || len(snap.Queued) != 2 || snap.Queued[0].URL != "https://b" || snap.Queued[1].URL != "https://c" {
		t.Fatalf("queued = %+v, want [https://b https://c]", snap.Queued)
	}

	close(h.fetcher.release)
	h.orch.Wait()
	if got := len(h.fetcher.Calls()); got != 3 {
		t.Fatalf("fetch calls = %d, want 3", got)
	}
}

func TestOrchestratorCancelLeavesActiveJob(t *testing.T) {
	h := newHarness(t)
	h.blockFetches()
	ctx := context.Background()

	h.orch.Submit(ctx, "u1", "https://a")
	h.awaitStarted(t, "https://a")
	h.orch.Submit(ctx, "u1", "https://b")
	h.orch.Submit(ctx, "u2", "https://c")

	if removed := h.orch.Cancel(ctx, "u1"); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if status := h.orch.Status("u1"); status.Total != 1 || len(status.Positions) != 0 {
		t.Fatalf("status after cancel = %+v", status)
	}
	if removed := h.orch.Cancel(ctx, "u1"); removed != 0 {
		t.Fatalf("second cancel removed %d", removed)
	}

	close(h.fetcher.release)
	h.orch.Wait()

	want := []string{"https://a", "https://c"}
	if got := h.fetcher.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("fetch calls = %v, want %v", got, want)
	}
	lines := h.events.Lines()
	found := false
	for _, line := range lines {
		if line == "u1|Cancelled jobs: 1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("cancel event missing: %q", lines)
	}
}

func TestOrchestratorFetchFailureIsIsolated(t *testing.T) {
	h := newHarness(t)
	fetchErr := services.Wrap(services.ErrFetch, "fetch", "download", "yt-dlp download failed", errors.New("unsupported URL"))
	h.fetcher.behave = func(_ context.Context, url string, _ fetch.Sink) (fetch.Artifact, error) {
		if url == "https://bad" {
			return fetch.Artifact{}, fetchErr
		}
		return fetch.Artifact{}, nil
	}

	h.orch.Submit(context.Background(), "u1", "https://bad")
	h.orch.Submit(context.Background(), "u2", "https://good")
	h.orch.Wait()

	detail := services.Detail(fetchErr)
	if got := h.notifier.Terminal("u1"); !reflect.DeepEqual(got, []string{"Failed to process link:\n" + detail}) {
		t.Fatalf("u1 terminal = %q", got)
	}
	if got := h.notifier.Terminal("u2"); len(got) != 1 || !strings.HasPrefix(got[0], "Uploaded to storage:") {
		t.Fatalf("u2 terminal = %q", got)
	}
	if !containsLine(h.events.Lines(), "u1|Error: "+detail) {
		t.Fatalf("error event missing: %q", h.events.Lines())
	}
	snap := h.orch.Snapshot()
	if snap.Processed != 2 || snap.Failed != 1 {
		t.Fatalf("snapshot counts = %d/%d", snap.Processed, snap.Failed)
	}
	if !strings.Contains(snap.LastError, "unsupported URL") {
		t.Fatalf("last error = %q", snap.LastError)
	}
}

func TestOrchestratorUploadFailureRemovesArtifact(t *testing.T) {
	h := newHarness(t)
	h.publisher.uploadErr = services.Wrap(services.ErrUploadTransport, "upload", "put", "status 503", nil)

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Wait()

	if got := h.notifier.Terminal("u1"); !reflect.DeepEqual(got, []string{UploadFailedMessage}) {
		t.Fatalf("terminal = %q", got)
	}
	name := h.fetcher.last.Name
	if !containsLine(h.events.Lines(), "u1|Upload failed: "+name) {
		t.Fatalf("upload failure event missing: %q", h.events.Lines())
	}
	if _, err := os.Stat(h.fetcher.last.Path); !os.IsNotExist(err) {
		t.Fatalf("artifact still present: %v", err)
	}
}

func TestOrchestratorMissingLink(t *testing.T) {
	h := newHarness(t)
	h.publisher.linkErr = services.Wrap(services.ErrLinkUnavailable, "link", "publish", "no public_url", nil)

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Wait()

	if got := h.notifier.Terminal("u1"); !reflect.DeepEqual(got, []string{NoLinkMessage}) {
		t.Fatalf("terminal = %q", got)
	}
	name := h.fetcher.last.Name
	if !containsLine(h.events.Lines(), "u1|Uploaded without link: "+name) {
		t.Fatalf("no-link event missing: %q", h.events.Lines())
	}
	if snap := h.orch.Snapshot(); snap.LastJob == nil || snap.LastJob.Outcome.Kind != OutcomeSuccessNoLink {
		t.Fatalf("last job = %+v", snap.LastJob)
	}
}

func TestOrchestratorRecoversFromPanics(t *testing.T) {
	h := newHarness(t)
	h.publisher.panicOn = "boom"

	h.orch.Submit(context.Background(), "u1", "https://boom")
	h.orch.Submit(context.Background(), "u2", "https://fine")
	h.orch.Wait()

	want := "Failed to process link:\ninternal error during upload: publisher exploded"
	if got := h.notifier.Terminal("u1"); !reflect.DeepEqual(got, []string{want}) {
		t.Fatalf("u1 terminal = %q", got)
	}
	if got := h.notifier.Terminal("u2"); len(got) != 1 || !strings.HasPrefix(got[0], "Uploaded to storage:") {
		t.Fatalf("u2 terminal = %q", got)
	}
	if h.orch.State() != StateIdle {
		t.Fatalf("state = %v, want idle", h.orch.State())
	}
}

func TestOrchestratorTerminalNotifyPanicStillLogsEvent(t *testing.T) {
	h := newHarness(t)
	h.notifier.panicOn = "Uploaded to storage:"

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Submit(context.Background(), "u2", "https://b")
	h.orch.Wait()

	lines := h.events.Lines()
	var uploaded []string
	for _, line := range lines {
		if strings.Contains(line, "|Uploaded: ") {
			uploaded = append(uploaded, line)
		}
	}
	if len(uploaded) != 2 || !strings.HasPrefix(uploaded[0], "u1|") || !strings.HasPrefix(uploaded[1], "u2|") {
		t.Fatalf("event lines = %q, want an upload line per job", lines)
	}
	snap := h.orch.Snapshot()
	if snap.Processed != 2 {
		t.Fatalf("processed = %d, want 2", snap.Processed)
	}
	if h.orch.State() != StateIdle {
		t.Fatalf("state = %v, want idle", h.orch.State())
	}
}

func TestOrchestratorNotifierFailureDoesNotFailJob(t *testing.T) {
	h := newHarness(t)
	h.notifier.fail = true
	h.fetcher.progress = []float64{50}

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Wait()

	if got := len(h.publisher.uploads); got != 1 {
		t.Fatalf("uploads = %d, want 1", got)
	}
	snap := h.orch.Snapshot()
	if snap.LastJob == nil || snap.LastJob.Outcome.Kind != OutcomeSuccess {
		t.Fatalf("last job = %+v", snap.LastJob)
	}
	best, ok := h.orch.notifier.(*notifications.BestEffort)
	if !ok {
		t.Fatalf("notifier not wrapped: %T", h.orch.notifier)
	}
	// started and terminal sends fail; edits are skipped without a handle
	if got := best.Failures(); got != 2 {
		t.Fatalf("failures = %d, want 2", got)
	}
}

func TestOrchestratorStepTimeout(t *testing.T) {
	h := newHarness(t)
	h.orch.stepTimeout = 50 * time.Millisecond
	h.fetcher.behave = func(ctx context.Context, _ string, _ fetch.Sink) (fetch.Artifact, error) {
		<-ctx.Done()
		return fetch.Artifact{}, ctx.Err()
	}

	h.orch.Submit(context.Background(), "u1", "https://slow")
	h.orch.Wait()

	got := h.notifier.Terminal("u1")
	if len(got) != 1 || !strings.Contains(got[0], "timed out after 50ms") {
		t.Fatalf("terminal = %q", got)
	}
}

func TestOrchestratorTriggerIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.blockFetches()

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.awaitStarted(t, "https://a")
	if h.orch.Trigger() {
		t.Fatal("expected Trigger to be a no-op while draining")
	}
	close(h.fetcher.release)
	h.orch.Wait()

	if h.orch.State() != StateIdle {
		t.Fatalf("state = %v, want idle", h.orch.State())
	}
	if !h.orch.Trigger() {
		t.Fatal("expected Trigger to start a drain when idle")
	}
	h.orch.Wait()
	if h.orch.State() != StateIdle {
		t.Fatalf("state after empty drain = %v", h.orch.State())
	}
	if got := len(h.fetcher.Calls()); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestOrchestratorStopCancelsActiveJob(t *testing.T) {
	h := newHarness(t)
	h.blockFetches()

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.awaitStarted(t, "https://a")
	h.orch.Submit(context.Background(), "u1", "https://b")

	h.orch.Stop()

	if got := h.orch.Queue().Len(); got != 1 {
		t.Fatalf("pending after stop = %d, want 1", got)
	}
	if got := h.notifier.Terminal("u1"); len(got) != 1 || !strings.HasPrefix(got[0], "Failed to process link:") {
		t.Fatalf("terminal = %q", got)
	}
	if h.orch.Trigger() {
		t.Fatal("Trigger must not start after Stop")
	}
	if h.orch.State() != StateIdle {
		t.Fatalf("state = %v, want idle", h.orch.State())
	}
}

func TestOrchestratorNoLostWakeups(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const total = 100
	for i := 0; i < total; i++ {
		h.orch.Submit(ctx, fmt.Sprintf("u%d", i%3), fmt.Sprintf("https://v/%d", i))
		if i%7 == 0 {
			h.orch.Wait()
		}
	}
	h.orch.Wait()

	if got := len(h.fetcher.Calls()); got != total {
		t.Fatalf("fetch calls = %d, want %d", got, total)
	}
	if got := h.orch.Queue().Len(); got != 0 {
		t.Fatalf("queue left with %d jobs", got)
	}
	if max := h.probe.max.Load(); max != 1 {
		t.Fatalf("max concurrent pipelines = %d", max)
	}
}

func TestOrchestratorMetrics(t *testing.T) {
	h := newHarness(t)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	h.orch.metrics = metrics
	h.publisher.linkErr = errors.New("no link")

	h.blockFetches()
	ctx := context.Background()
	h.orch.Submit(ctx, "u1", "https://a")
	h.awaitStarted(t, "https://a")
	h.orch.Submit(ctx, "u1", "https://b")
	h.orch.Submit(ctx, "u2", "https://c")
	h.orch.Cancel(ctx, "u2")
	close(h.fetcher.release)
	h.orch.Wait()

	if got := testutil.ToFloat64(metrics.submitted); got != 3 {
		t.Fatalf("submitted = %v, want 3", got)
	}
	if got := testutil.ToFloat64(metrics.cancelled); got != 1 {
		t.Fatalf("cancelled = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.outcomes.WithLabelValues("success_no_link")); got != 2 {
		t.Fatalf("no-link outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.pending); got != 0 {
		t.Fatalf("pending = %v, want 0", got)
	}
	if got := testutil.CollectAndCount(metrics.duration); got != 1 {
		t.Fatalf("duration series = %d, want 1", got)
	}
}

func TestOrchestratorWithoutEventSink(t *testing.T) {
	h := newHarness(t)
	h.orch.events = nil

	h.orch.Submit(context.Background(), "u1", "https://a")
	h.orch.Wait()

	if got := h.notifier.Terminal("u1"); len(got) != 1 {
		t.Fatalf("terminal = %q", got)
	}
}

func containsLine(lines []string, want string) bool {
	for _, line := range lines {
		if line == want {
			return true
		}
	}
	return false
}
