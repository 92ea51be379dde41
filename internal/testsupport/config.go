package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediapull/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Retry delays are zeroed so fetch loops run without waiting.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Download.RetryDelays = []int{0}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithMaxAttempts overrides the fetch attempt budget.
func WithMaxAttempts(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Download.MaxAttempts = n
	}
}

// WithSponsorBlock enables SponsorBlock against the given API base URL.
func WithSponsorBlock(apiURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SponsorBlock.Enabled = true
		b.cfg.SponsorBlock.APIURL = apiURL
	}
}

// WithStubTool writes a shell script stub into the temp bin directory and
// points the matching tools entry at it. Supported names are yt-dlp, ffmpeg,
// ffprobe, and deno.
func WithStubTool(name, body string) ConfigOption {
	return func(b *configBuilder) {
		target := WriteScript(b.t, filepath.Join(b.baseDir, "bin"), name, body)
		switch name {
		case "yt-dlp":
			b.cfg.Tools.YtDlp = target
		case "ffmpeg":
			b.cfg.Tools.FFmpeg = target
		case "ffprobe":
			b.cfg.Tools.FFprobe = target
		case "deno":
			b.cfg.Tools.Deno = target
		default:
			b.t.Fatalf("unsupported stub tool %q", name)
		}
	}
}

// WriteScript writes an executable /bin/sh script and returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}
