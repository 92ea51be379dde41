package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mediapull/internal/config"
	"mediapull/internal/history"
	"mediapull/internal/pipeline"
	"mediapull/internal/testsupport"
)

const stubYtDlp = `out=""
title=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift ;;
    --get-title) title=1 ;;
  esac
  shift
done
if [ -n "$title" ]; then
  echo "CLI Clip"
  exit 0
fi
case "$out" in
  *_temp_video*) ext=mp4 ;;
  *) ext=m4a ;;
esac
target=$(printf '%s' "$out" | sed "s/%(ext)s/$ext/")
head -c 4096 /dev/zero > "$target"
echo "[download] 100.0% of 4.00KiB at 1.00MiB/s ETA 00:00"`

const stubFFmpeg = `for last; do :; done
head -c 1024 /dev/zero > "$last"`

const stubFFprobe = `echo '{"streams":[{"codec_type":"video","width":1920,"height":1080}],"format":{"duration":"12.0"}}'`

func stubToolConfig(t *testing.T) *config.Config {
	t.Helper()
	isolateHome(t)
	return testsupport.NewConfig(t,
		testsupport.WithStubTool("yt-dlp", stubYtDlp),
		testsupport.WithStubTool("ffmpeg", stubFFmpeg),
		testsupport.WithStubTool("ffprobe", stubFFprobe),
	)
}

func TestRunStreamsEventsAndRecordsHistory(t *testing.T) {
	cfg := stubToolConfig(t)
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"run", "https://www.youtube.com/watch?v=cli001", "--quality", "720"}, path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	list := parseEvents(t, out)
	last := list[len(list)-1]
	if last.Event != "result" {
		t.Fatalf("expected terminal result, got %+v", last)
	}
	var payload pipeline.StandardPayload
	if err := json.Unmarshal(last.Data, &payload); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "CLI Clip.mp4")
	if payload.OutputPath != want || payload.Title != "CLI Clip" || payload.Size != 1024 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	for _, ev := range list[:len(list)-1] {
		if ev.Event == "result" || ev.Event == "error" {
			t.Fatalf("terminal event before the end: %+v", ev)
		}
	}

	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].VideoID != "cli001" || entries[0].Quality != "720" {
		t.Fatalf("unexpected history %+v", entries)
	}
}

func TestRunOutputDirOverride(t *testing.T) {
	cfg := stubToolConfig(t)
	path := writeTestConfig(t, cfg)
	target := filepath.Join(t.TempDir(), "elsewhere")

	out, _, err := runCLI(t, []string{"run", "https://youtu.be/cli002", "--output-dir", target, "--no-history"}, path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(target, "CLI Clip.mp4")); err != nil {
		t.Fatalf("expected output in override dir: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.HistoryDB); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no history database with --no-history, stat err = %v", err)
	}
}

func TestRunReportsUsageErrorsOnStream(t *testing.T) {
	cfg := stubToolConfig(t)
	path := writeTestConfig(t, cfg)

	tests := []struct {
		name string
		args []string
	}{
		{"invalid chapters", []string{"--chapters", "{not json"}},
		{"invalid bitrate mode", []string{"--bitrate-mode", "turbo"}},
		{"invalid per-resolution", []string{"--bitrate-mode", "per_resolution", "--per-resolution", "[1]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", "https://youtu.be/cli003"}, tt.args...)
			out, _, err := runCLI(t, args, path)
			if !errors.Is(err, errReported) {
				t.Fatalf("expected reported failure, got %v", err)
			}
			list := parseEvents(t, out)
			if len(list) != 1 || list[0].Event != "error" || list[0].Code != "usage" {
				t.Fatalf("expected a single usage error event, got %+v", list)
			}
		})
	}
}

func TestRunReportsConfigErrorsOnStream(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"loud\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"run", "https://youtu.be/cli004"}, path)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	list := parseEvents(t, out)
	if list[0].Event != "error" || list[0].Code != "usage" {
		t.Fatalf("expected usage error event, got %+v", list)
	}
}

func TestRunClassifiesToolFailure(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithMaxAttempts(1),
		testsupport.WithStubTool("yt-dlp", `echo "ERROR: [youtube] cli005: Private video. Sign in if you've been granted access" >&2
exit 1`),
		testsupport.WithStubTool("ffmpeg", stubFFmpeg),
		testsupport.WithStubTool("ffprobe", stubFFprobe),
	)
	path := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"run", "https://youtu.be/cli005"}, path)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected reported failure, got %v", err)
	}
	list := parseEvents(t, out)
	last := list[len(list)-1]
	if last.Event != "error" || last.Code != "private_video" {
		t.Fatalf("expected private_video error, got %+v", last)
	}
}
