package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output and bookkeeping locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
}

// Tools names the external executables. Bare names are resolved through PATH.
type Tools struct {
	YtDlp   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Deno    string `toml:"deno"`
}

// Download contains fetch retry policy and yt-dlp invocation settings.
type Download struct {
	Quality          string `toml:"quality"`
	MaxAttempts      int    `toml:"max_attempts"`
	RetryDelays      []int  `toml:"retry_delays"`
	SilentRetries    int    `toml:"silent_retries"`
	AttemptTimeout   int    `toml:"attempt_timeout"`
	TitleTimeout     int    `toml:"title_timeout"`
	VideoInfoTimeout int    `toml:"video_info_timeout"`
	PlaylistTimeout  int    `toml:"playlist_timeout"`
	CookiesBrowser   string `toml:"cookies_browser"`
	CookiesProfile   string `toml:"cookies_profile"`
}

// Encoding contains the merge encoder chain and bitrate policy.
type Encoding struct {
	HardwareEncoder string `toml:"hardware_encoder"`
	SoftwareEncoder string `toml:"software_encoder"`
	Preset          string `toml:"preset"`
	AudioBitrate    string `toml:"audio_bitrate"`
	// BitrateMode is one of auto, custom, or per_resolution.
	BitrateMode   string         `toml:"bitrate_mode"`
	CustomBitrate int            `toml:"custom_bitrate"`
	PerResolution map[string]int `toml:"per_resolution"`
	Timeout       int            `toml:"timeout"`
}

// Chapters contains chapter split settings.
type Chapters struct {
	SplitTimeout int `toml:"split_timeout"`
}

// SponsorBlock contains segment removal settings.
type SponsorBlock struct {
	Enabled        bool     `toml:"enabled"`
	APIURL         string   `toml:"api_url"`
	Categories     []string `toml:"categories"`
	RequestTimeout int      `toml:"request_timeout"`
}

// History contains download history settings.
type History struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completed      bool   `toml:"completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediapull.
//
// Configuration sections by subsystem:
//   - Paths: output directory, log directory, history database
//   - Tools: yt-dlp, ffmpeg, ffprobe, and deno executables
//   - Download: quality default, retry schedule, timeouts, browser cookies
//   - Encoding: hardware/software encoder chain and bitrate policy
//   - Chapters: chapter split timeout
//   - SponsorBlock: segment API and category filter
//   - History: download history retention
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Tools         Tools         `toml:"tools"`
	Download      Download      `toml:"download"`
	Encoding      Encoding      `toml:"encoding"`
	Chapters      Chapters      `toml:"chapters"`
	SponsorBlock  SponsorBlock  `toml:"sponsorblock"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediapull.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryDB) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Paths.HistoryDB), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	return nil
}

// Seconds converts a whole-second setting into a duration.
func Seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

// RetryDelayDurations returns the configured retry delays as durations.
func (d Download) RetryDelayDurations() []time.Duration {
	delays := make([]time.Duration, 0, len(d.RetryDelays))
	for _, secs := range d.RetryDelays {
		delays = append(delays, Seconds(secs))
	}
	return delays
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
