package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediapull/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "mediapull", "config.toml"); resolved != want {
		t.Fatalf("resolved = %q, want %q", resolved, want)
	}
	if want := filepath.Join(tempHome, "Downloads"); cfg.Paths.OutputDir != want {
		t.Fatalf("output dir = %q, want %q", cfg.Paths.OutputDir, want)
	}
	if want := filepath.Join(tempHome, ".local", "share", "mediapull", "history.db"); cfg.Paths.HistoryDB != want {
		t.Fatalf("history db = %q, want %q", cfg.Paths.HistoryDB, want)
	}
	if cfg.Tools.YtDlp != "yt-dlp" {
		t.Fatalf("expected bare yt-dlp name, got %q", cfg.Tools.YtDlp)
	}
	if cfg.Download.MaxAttempts != 6 || cfg.Download.SilentRetries != 2 || cfg.Download.AttemptTimeout != 300 {
		t.Fatalf("unexpected retry defaults: %+v", cfg.Download)
	}
	if got := cfg.Download.RetryDelayDurations(); len(got) != 5 || got[0] != 10*time.Second || got[4] != time.Minute {
		t.Fatalf("unexpected retry delays: %v", got)
	}
	if cfg.Encoding.HardwareEncoder != "h264_videotoolbox" || cfg.Encoding.SoftwareEncoder != "libx264" {
		t.Fatalf("unexpected encoder chain: %+v", cfg.Encoding)
	}
	if cfg.SponsorBlock.Enabled {
		t.Fatal("expected sponsorblock disabled by default")
	}
	if len(cfg.SponsorBlock.Categories) != 8 {
		t.Fatalf("expected default categories, got %v", cfg.SponsorBlock.Categories)
	}
	if cfg.History.MaxEntries != 500 {
		t.Fatalf("history max entries = %d", cfg.History.MaxEntries)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	content := `
[paths]
output_dir = "~/videos"

[tools]
ytdlp = "~/bin/yt-dlp"

[download]
quality = "4k"
max_attempts = 3
retry_delays = [1, 2]
cookies_browser = " Firefox "

[encoding]
bitrate_mode = "per-resolution"

[encoding.per_resolution]
1080 = 12
720 = 6

[sponsorblock]
enabled = true
api_url = "https://sb.example/"
categories = ["Sponsor", "sponsor", " intro "]

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "videos") {
		t.Fatalf("output dir = %q", cfg.Paths.OutputDir)
	}
	if cfg.Tools.YtDlp != filepath.Join(tempHome, "bin", "yt-dlp") {
		t.Fatalf("ytdlp = %q", cfg.Tools.YtDlp)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" {
		t.Fatalf("ffmpeg = %q", cfg.Tools.FFmpeg)
	}
	if cfg.Download.Quality != "4k" || cfg.Download.MaxAttempts != 3 {
		t.Fatalf("unexpected download section: %+v", cfg.Download)
	}
	if cfg.Download.CookiesBrowser != "firefox" {
		t.Fatalf("cookies browser = %q", cfg.Download.CookiesBrowser)
	}
	if cfg.Encoding.BitrateMode != config.BitrateModePerResolution {
		t.Fatalf("bitrate mode = %q", cfg.Encoding.BitrateMode)
	}
	if cfg.Encoding.PerResolution["1080"] != 12 || cfg.Encoding.PerResolution["720"] != 6 {
		t.Fatalf("per resolution = %v", cfg.Encoding.PerResolution)
	}
	if cfg.SponsorBlock.APIURL != "https://sb.example" {
		t.Fatalf("api url = %q", cfg.SponsorBlock.APIURL)
	}
	if strings.Join(cfg.SponsorBlock.Categories, ",") != "sponsor,intro" {
		t.Fatalf("categories = %v", cfg.SponsorBlock.Categories)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestCookieEnvFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDIAPULL_COOKIES_BROWSER", "Chrome")
	t.Setenv("MEDIAPULL_COOKIES_PROFILE", "Profile 1")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Download.CookiesBrowser != "chrome" || cfg.Download.CookiesProfile != "Profile 1" {
		t.Fatalf("unexpected cookie settings: %+v", cfg.Download)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"decreasing delays", func(c *config.Config) { c.Download.RetryDelays = []int{20, 10} }, "non-decreasing"},
		{"zero attempts", func(c *config.Config) { c.Download.MaxAttempts = 0 }, "max_attempts"},
		{"bitrate mode", func(c *config.Config) { c.Encoding.BitrateMode = "turbo" }, "bitrate_mode"},
		{"per resolution key", func(c *config.Config) { c.Encoding.PerResolution = map[string]int{"hd": 5} }, "pixel height"},
		{"per resolution value", func(c *config.Config) { c.Encoding.PerResolution = map[string]int{"1080": 0} }, "positive"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"browser with profile", func(c *config.Config) { c.Download.CookiesBrowser = "firefox:work" }, "cookies_profile"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	cfg := config.Default()
	if err := toml.Unmarshal([]byte(config.SampleConfig()), &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
	if cfg.Encoding.PerResolution["2160"] != 45 {
		t.Fatalf("expected per_resolution table in sample, got %v", cfg.Encoding.PerResolution)
	}
	if cfg.Notifications.NtfyTopic != "" || !cfg.Notifications.Completed || !cfg.Notifications.Errors {
		t.Fatalf("expected notifications off by topic with both toggles on, got %+v", cfg.Notifications)
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[download]") {
		t.Fatalf("sample missing download section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Dir(cfg.Paths.HistoryDB)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
