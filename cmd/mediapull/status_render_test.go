package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"mediapull/internal/deps"
	"mediapull/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("yt-dlp", statusError, "binary not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "yt-dlp:", "[ERROR] binary not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("ffmpeg", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line with reset, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	statuses := []deps.Status{
		{Name: "yt-dlp", Available: false, Detail: `binary "yt-dlp" not found`},
		{Name: "ffmpeg", Available: true, Command: "/usr/bin/ffmpeg"},
		{Name: "deno", Available: false, Optional: true},
	}
	lines := dependencyLines(statuses, false)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], `[ERROR] binary "yt-dlp" not found`) {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] Ready (command: /usr/bin/ffmpeg)") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[WARN] not available (optional)") {
		t.Fatalf("unexpected third line %q", lines[2])
	}
	if !strings.Contains(lines[3], "Missing:") || !strings.Contains(lines[3], "yt-dlp must be installed") {
		t.Fatalf("unexpected summary line %q", lines[3])
	}
}

func TestCheckLinesDowngradeAdvisory(t *testing.T) {
	lines := checkLines([]preflight.Result{
		{Name: "Output directory", Passed: true, Detail: "/out (read/write ok)"},
		{Name: "SponsorBlock API", Advisory: true, Detail: "server error (503)"},
		{Name: "Log directory", Detail: "/logs (error: does not exist)"},
	}, false)
	for i, want := range []string{"[OK]", "[WARN]", "[ERROR]"} {
		if !strings.Contains(lines[i], want) {
			t.Fatalf("line %d = %q, want %s", i, lines[i], want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
