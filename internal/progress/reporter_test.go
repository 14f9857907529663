package progress

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"

	"tubelift/internal/notifications"
)

type recordingEditor struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (e *recordingEditor) Edit(_ context.Context, _ notifications.Handle, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, text)
	return e.err
}

func (e *recordingEditor) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}

var handle = notifications.Handle{Transport: "test", User: "u", ID: "1"}

func newTestReporter(editor Editor, opts Options) *Reporter {
	if opts.FinishedText == "" {
		opts.FinishedText = "uploading"
	}
	if opts.Format == nil {
		opts.Format = func(p int) string { return formatPercent(p) }
	}
	return New(editor, handle, opts)
}

func TestReportThreshold(t *testing.T) {
	tests := []struct {
		name   string
		inputs []float64
		want   []int
	}{
		{"below first step", []float64{0, 1, 4.99}, nil},
		{"exact steps", []float64{5, 10, 15}, []int{5, 10, 15}},
		{"truncates fractions", []float64{5.9, 10.99}, []int{5, 10}},
		{"jumps report landing value", []float64{3, 17, 21, 22}, []int{17, 22}},
		{"ignores backwards noise", []float64{50, 20, 49, 54.9, 55}, []int{50, 55}},
		{"clamps above 100", []float64{90, 150, 200}, []int{90, 100}},
		{"clamps negatives and NaN", []float64{-10, math.NaN(), 5}, []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := &recordingEditor{}
			r := newTestReporter(editor, Options{})
			for _, p := range tt.inputs {
				r.Report(context.Background(), p)
			}
			var want []string
			for _, p := range tt.want {
				want = append(want, formatPercent(p))
			}
			if got := editor.snapshot(); !reflect.DeepEqual(got, want) {
				t.Fatalf("edits = %q, want %q", got, want)
			}
		})
	}
}

func TestAtMostOneEditPerBand(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	editor := &recordingEditor{}
	r := newTestReporter(editor, Options{Format: func(p int) string { return string(rune('A' + p)) }})

	var values []int
	for i := 0; i < 2000; i++ {
		before := r.LastReported()
		r.Report(context.Background(), rng.Float64()*110)
		if after := r.LastReported(); after != before {
			values = append(values, after)
		}
	}
	for i := 1; i < len(values); i++ {
		if values[i]-values[i-1] < DefaultStep {
			t.Fatalf("edits %d and %d are within one band", values[i-1], values[i])
		}
	}
	if len(editor.snapshot()) != len(values) {
		t.Fatalf("edit count %d does not match reported changes %d", len(editor.snapshot()), len(values))
	}
	if len(values) > 100/DefaultStep {
		t.Fatalf("too many edits: %d", len(values))
	}
}

func TestFinishedAlwaysEditsOnce(t *testing.T) {
	cases := map[string][]float64{
		"no progress":      nil,
		"partial progress": {5, 30},
		"complete":         {100},
	}
	for name, inputs := range cases {
		t.Run(name, func(t *testing.T) {
			editor := &recordingEditor{}
			r := newTestReporter(editor, Options{})
			for _, p := range inputs {
				r.Report(context.Background(), p)
			}
			before := len(editor.snapshot())
			r.Finished(context.Background())
			r.Finished(context.Background())
			r.Report(context.Background(), 100)

			got := editor.snapshot()
			if len(got) != before+1 {
				t.Fatalf("expected exactly one finished edit, got %q", got)
			}
			if got[len(got)-1] != "uploading" {
				t.Fatalf("last edit = %q", got[len(got)-1])
			}
		})
	}
}

func TestMinIntervalNeverSuppressesFinished(t *testing.T) {
	editor := &recordingEditor{}
	r := newTestReporter(editor, Options{MinInterval: time.Hour})
	r.Report(context.Background(), 10)
	r.Report(context.Background(), 50)
	r.Report(context.Background(), 90)
	r.Finished(context.Background())

	got := editor.snapshot()
	want := []string{formatPercent(10), "uploading"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("edits = %q, want %q", got, want)
	}
	if r.LastReported() != 10 {
		t.Fatalf("rate-limited reports must not advance state, last = %d", r.LastReported())
	}
}

func TestEditorErrorsAreDropped(t *testing.T) {
	editor := &recordingEditor{err: errors.New("network down")}
	r := newTestReporter(editor, Options{})
	r.Report(context.Background(), 20)
	r.Finished(context.Background())
	if len(editor.snapshot()) != 2 {
		t.Fatalf("expected both edits attempted, got %q", editor.snapshot())
	}
}

func TestZeroHandleSkipsTransport(t *testing.T) {
	editor := &recordingEditor{}
	r := New(editor, notifications.Handle{}, Options{FinishedText: "uploading"})
	r.Report(context.Background(), 40)
	r.Finished(context.Background())
	if len(editor.snapshot()) != 0 {
		t.Fatalf("expected no edits for undelivered message, got %q", editor.snapshot())
	}
	if r.Edits() != 2 || r.LastReported() != 40 {
		t.Fatalf("state should still advance: edits=%d last=%d", r.Edits(), r.LastReported())
	}
}

func TestNilReporterIsSafe(t *testing.T) {
	var r *Reporter
	r.Report(context.Background(), 50)
	r.Finished(context.Background())
}

func TestConcurrentReports(t *testing.T) {
	editor := &recordingEditor{}
	r := newTestReporter(editor, Options{})
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := 0; p <= 100; p++ {
				r.Report(context.Background(), float64(p))
			}
		}()
	}
	wg.Wait()
	if n := len(editor.snapshot()); n < 1 || n > 100/DefaultStep {
		t.Fatalf("expected between 1 and %d edits, got %d", 100/DefaultStep, n)
	}
}
