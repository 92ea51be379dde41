package config

const (
	defaultConfigPath        = "~/.config/mediapull/config.toml"
	defaultOutputDir         = "~/Downloads"
	defaultLogDir            = "~/.local/share/mediapull/logs"
	defaultHistoryDB         = "~/.local/share/mediapull/history.db"
	defaultYtDlp             = "yt-dlp"
	defaultFFmpeg            = "ffmpeg"
	defaultFFprobe           = "ffprobe"
	defaultDeno              = "deno"
	defaultQuality           = "1080"
	defaultMaxAttempts       = 6
	defaultSilentRetries     = 2
	defaultAttemptTimeout    = 300
	defaultTitleTimeout      = 30
	defaultVideoInfoTimeout  = 90
	defaultPlaylistTimeout   = 120
	defaultHardwareEncoder   = "h264_videotoolbox"
	defaultSoftwareEncoder   = "libx264"
	defaultPreset            = "medium"
	defaultAudioBitrate      = "192k"
	defaultBitrateMode       = BitrateModeAuto
	defaultCustomBitrate     = 15
	defaultEncodeTimeout     = 3600
	defaultSplitTimeout      = 120
	defaultSponsorBlockURL   = "https://sponsor.ajay.app"
	defaultSponsorTimeout    = 10
	defaultHistoryMaxEntries = 500
	defaultNtfyTimeout       = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Bitrate modes accepted by encoding.bitrate_mode.
const (
	BitrateModeAuto          = "auto"
	BitrateModeCustom        = "custom"
	BitrateModePerResolution = "per_resolution"
)

func defaultRetryDelays() []int {
	return []int{10, 20, 30, 45, 60}
}

// DefaultSponsorCategories lists the SponsorBlock categories removed by default.
func DefaultSponsorCategories() []string {
	return []string{"sponsor", "intro", "outro", "selfpromo", "preview", "music_offtopic", "interaction", "filler"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Tools: Tools{
			YtDlp:   defaultYtDlp,
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			Deno:    defaultDeno,
		},
		Download: Download{
			Quality:          defaultQuality,
			MaxAttempts:      defaultMaxAttempts,
			RetryDelays:      defaultRetryDelays(),
			SilentRetries:    defaultSilentRetries,
			AttemptTimeout:   defaultAttemptTimeout,
			TitleTimeout:     defaultTitleTimeout,
			VideoInfoTimeout: defaultVideoInfoTimeout,
			PlaylistTimeout:  defaultPlaylistTimeout,
		},
		Encoding: Encoding{
			HardwareEncoder: defaultHardwareEncoder,
			SoftwareEncoder: defaultSoftwareEncoder,
			Preset:          defaultPreset,
			AudioBitrate:    defaultAudioBitrate,
			BitrateMode:     defaultBitrateMode,
			CustomBitrate:   defaultCustomBitrate,
			Timeout:         defaultEncodeTimeout,
		},
		Chapters: Chapters{
			SplitTimeout: defaultSplitTimeout,
		},
		SponsorBlock: SponsorBlock{
			Enabled:        false,
			APIURL:         defaultSponsorBlockURL,
			Categories:     DefaultSponsorCategories(),
			RequestTimeout: defaultSponsorTimeout,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
