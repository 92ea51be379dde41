package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeEncoding()
	c.normalizeSponsorBlock()
	if c.Chapters.SplitTimeout <= 0 {
		c.Chapters.SplitTimeout = defaultSplitTimeout
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = defaultHistoryMaxEntries
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

// normalizeTools expands tool values that look like paths and leaves bare
// executable names for PATH lookup.
func (c *Config) normalizeTools() error {
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"tools.ytdlp", &c.Tools.YtDlp, defaultYtDlp},
		{"tools.ffmpeg", &c.Tools.FFmpeg, defaultFFmpeg},
		{"tools.ffprobe", &c.Tools.FFprobe, defaultFFprobe},
		{"tools.deno", &c.Tools.Deno, defaultDeno},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			*field.value = field.fallback
			continue
		}
		if strings.ContainsAny(trimmed, `/\`) || strings.HasPrefix(trimmed, "~") {
			expanded, err := expandPath(trimmed)
			if err != nil {
				return fmt.Errorf("%s: %w", field.key, err)
			}
			trimmed = expanded
		}
		*field.value = trimmed
	}
	return nil
}

func (c *Config) normalizeDownload() {
	c.Download.Quality = strings.TrimSpace(c.Download.Quality)
	if c.Download.Quality == "" {
		c.Download.Quality = defaultQuality
	}
	if c.Download.MaxAttempts <= 0 {
		c.Download.MaxAttempts = defaultMaxAttempts
	}
	if len(c.Download.RetryDelays) == 0 {
		c.Download.RetryDelays = defaultRetryDelays()
	}
	if c.Download.SilentRetries < 0 {
		c.Download.SilentRetries = 0
	}
	if c.Download.AttemptTimeout <= 0 {
		c.Download.AttemptTimeout = defaultAttemptTimeout
	}
	if c.Download.TitleTimeout <= 0 {
		c.Download.TitleTimeout = defaultTitleTimeout
	}
	if c.Download.VideoInfoTimeout <= 0 {
		c.Download.VideoInfoTimeout = defaultVideoInfoTimeout
	}
	if c.Download.PlaylistTimeout <= 0 {
		c.Download.PlaylistTimeout = defaultPlaylistTimeout
	}
	c.Download.CookiesBrowser = strings.ToLower(strings.TrimSpace(c.Download.CookiesBrowser))
	if c.Download.CookiesBrowser == "" {
		if value, ok := os.LookupEnv("MEDIAPULL_COOKIES_BROWSER"); ok {
			c.Download.CookiesBrowser = strings.ToLower(strings.TrimSpace(value))
		}
	}
	c.Download.CookiesProfile = strings.TrimSpace(c.Download.CookiesProfile)
	if c.Download.CookiesProfile == "" {
		if value, ok := os.LookupEnv("MEDIAPULL_COOKIES_PROFILE"); ok {
			c.Download.CookiesProfile = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeEncoding() {
	c.Encoding.HardwareEncoder = strings.TrimSpace(c.Encoding.HardwareEncoder)
	c.Encoding.SoftwareEncoder = strings.TrimSpace(c.Encoding.SoftwareEncoder)
	if c.Encoding.SoftwareEncoder == "" {
		c.Encoding.SoftwareEncoder = defaultSoftwareEncoder
	}
	c.Encoding.Preset = strings.TrimSpace(c.Encoding.Preset)
	if c.Encoding.Preset == "" {
		c.Encoding.Preset = defaultPreset
	}
	c.Encoding.AudioBitrate = strings.TrimSpace(c.Encoding.AudioBitrate)
	if c.Encoding.AudioBitrate == "" {
		c.Encoding.AudioBitrate = defaultAudioBitrate
	}
	c.Encoding.BitrateMode = strings.ToLower(strings.TrimSpace(c.Encoding.BitrateMode))
	c.Encoding.BitrateMode = strings.ReplaceAll(c.Encoding.BitrateMode, "-", "_")
	if c.Encoding.BitrateMode == "" {
		c.Encoding.BitrateMode = defaultBitrateMode
	}
	if c.Encoding.Timeout <= 0 {
		c.Encoding.Timeout = defaultEncodeTimeout
	}
}

func (c *Config) normalizeSponsorBlock() {
	c.SponsorBlock.APIURL = strings.TrimRight(strings.TrimSpace(c.SponsorBlock.APIURL), "/")
	if c.SponsorBlock.APIURL == "" {
		c.SponsorBlock.APIURL = defaultSponsorBlockURL
	}
	if c.SponsorBlock.RequestTimeout <= 0 {
		c.SponsorBlock.RequestTimeout = defaultSponsorTimeout
	}
	categories := make([]string, 0, len(c.SponsorBlock.Categories))
	seen := make(map[string]struct{}, len(c.SponsorBlock.Categories))
	for _, category := range c.SponsorBlock.Categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		categories = append(categories, normalized)
	}
	if len(categories) == 0 {
		categories = DefaultSponsorCategories()
	}
	c.SponsorBlock.Categories = categories
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
