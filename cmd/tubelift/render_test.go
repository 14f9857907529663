package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B", "C"}, [][]string{{"1"}, {"x", "y", "z"}}, []columnAlignment{alignRight})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 5 {
		t.Fatalf("expected bordered table, got:\n%s", out)
	}
	if !strings.Contains(out, "x") || !strings.Contains(out, "z") {
		t.Fatalf("missing cells:\n%s", out)
	}
	width := len([]rune(lines[0]))
	for _, line := range lines {
		if len([]rune(line)) != width {
			t.Fatalf("ragged table output:\n%s", out)
		}
	}
}

func TestRenderTableWithoutHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"a"}}, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderStatusLine(t *testing.T) {
	tests := []struct {
		name     string
		kind     statusKind
		message  string
		colorize bool
		want     string
	}{
		{name: "ok with message", kind: statusOK, message: "ready", want: "  Daemon:          [OK] ready"},
		{name: "error no message", kind: statusError, want: "  Daemon:          [ERROR]"},
		{name: "colorized warn", kind: statusWarn, message: "slow", colorize: true, want: ansiYellow + "  Daemon:          [WARN] slow" + ansiReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderStatusLine("Daemon", tt.kind, tt.message, tt.colorize); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
}
