package ytdlp

import (
	"strconv"
	"strings"
)

// DefaultHeight is used when a quality string cannot be parsed.
const DefaultHeight = 1080

// resolutionFirstMin is the height from which resolution outranks codec.
const resolutionFirstMin = 1440

// Selectors holds the yt-dlp format selector templates. "{h}" is replaced with
// the requested height.
type Selectors struct {
	H264Preferred   string
	ResolutionFirst string
	Generic         string
	Audio           string
}

// DefaultSelectors returns the built-in selector templates.
func DefaultSelectors() Selectors {
	return Selectors{
		H264Preferred:   "bv*[vcodec^=avc1][height<={h}]/bv*[height<={h}][ext=mp4]/bv*[height<={h}]/bv*",
		ResolutionFirst: "bv*[height>=2160]/bv*[height>=1440]/bv*",
		Generic:         "bv*[height<={h}]/bv*",
		Audio:           "bestaudio[acodec^=mp4a][ext=m4a]/bestaudio[ext=m4a]/bestaudio/best",
	}
}

// ParseQuality converts a quality label such as "1080p", "720", or "4k" to a
// pixel height.
func ParseQuality(quality string) int {
	trimmed := strings.TrimSpace(quality)
	switch strings.ToLower(trimmed) {
	case "4k", "2160", "2160p":
		return 2160
	}
	stripped := strings.NewReplacer("p", "", "k", "", "K", "").Replace(trimmed)
	height, err := strconv.Atoi(stripped)
	if err != nil {
		return DefaultHeight
	}
	return height
}

// Video returns the selector for a video fetch attempt. attempt is 0-based
// and lastFormatID is the format yt-dlp reported on an earlier attempt, if
// any. High resolutions always use the resolution-first selector; lower ones
// fall back to the generic selector once an attempt has failed after picking
// a concrete format.
func (s Selectors) Video(height, attempt int, lastFormatID string) string {
	if height >= resolutionFirstMin {
		return s.ResolutionFirst
	}
	template := s.H264Preferred
	if attempt > 0 && lastFormatID != "" {
		template = s.Generic
	}
	return strings.ReplaceAll(template, "{h}", strconv.Itoa(height))
}

// AudioSelector returns the audio-only selector.
func (s Selectors) AudioSelector() string {
	return s.Audio
}
