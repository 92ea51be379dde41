package pipeline

import (
	"strings"

	"mediapull/internal/chapters"
	"mediapull/internal/encoding"
	"mediapull/internal/failure"
	"mediapull/internal/progress"
	"mediapull/internal/ytdlp"
)

// Options configures a single run.
type Options struct {
	URL          string
	OutputDir    string
	Quality      string
	AudioOnly    bool
	SponsorBlock bool
	Trim         ytdlp.Trim
	Cookies      ytdlp.Cookies
	Bitrate      encoding.BitratePolicy
	Chapters     []chapters.Chapter
}

// Mode returns the stage layout the run uses. Audio-only wins over chapters,
// and chapters win over sponsor removal because cutting segments would shift
// every chapter timestamp.
func (o Options) Mode() progress.Mode {
	switch {
	case o.AudioOnly:
		return progress.ModeAudioOnly
	case len(o.Chapters) > 0:
		return progress.ModeChapters
	case o.SponsorBlock:
		return progress.ModeSponsorBlock
	default:
		return progress.ModeStandard
	}
}

// Validate reports missing required inputs as usage errors.
func (o Options) Validate() error {
	if strings.TrimSpace(o.URL) == "" {
		return failure.New(failure.KindUsage, "A URL is required")
	}
	if strings.TrimSpace(o.OutputDir) == "" {
		return failure.New(failure.KindUsage, "An output directory is required")
	}
	return nil
}
