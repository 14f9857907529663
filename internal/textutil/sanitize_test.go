package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain", "clip.mp4", "clip.mp4"},
		{"unsafe characters", `a/b\c:d*e?f"g<h>i|j.mp4`, "a-b-c-d-efghij.mp4"},
		{"control characters", "tab\there\x00.mp4", "tabhere.mp4"},
		{"decomposed accents become composed", "Cafe\u0301.mp4", "Caf\u00e9.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFileName(tt.in); got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemotePath(t *testing.T) {
	tests := []struct {
		dir   string
		local string
		want  string
	}{
		{"/YouTubeDownloads", "/tmp/job-1/clip.mp4", "/YouTubeDownloads/clip.mp4"},
		{"uploads/", "/tmp/a:b.mp4", "/uploads/a-b.mp4"},
		{"", "/tmp/clip.mp4", "/clip.mp4"},
		{"/x", "", "/x/download"},
	}
	for _, tt := range tests {
		if got := RemotePath(tt.dir, tt.local); got != tt.want {
			t.Fatalf("RemotePath(%q, %q) = %q, want %q", tt.dir, tt.local, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("привет", 3); got != "при" {
		t.Fatalf("Truncate runes = %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("Truncate disabled = %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("Truncate short = %q", got)
	}
}
