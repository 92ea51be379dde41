package ffprobe

import (
	"regexp"
	"strconv"
	"strings"

	"mediapull/internal/progress"
)

var (
	resolutionPattern = regexp.MustCompile(`(\d{3,4})x(\d{3,4})`)
	durationPattern   = regexp.MustCompile(`Duration:\s+(\d{2}:\d{2}:\d{2}\.\d{2})`)
)

// ParseResolution extracts WIDTHxHEIGHT from ffmpeg banner text, preferring
// the video stream line. Returns zeros when absent.
func ParseResolution(banner string) (int, int) {
	for _, line := range strings.Split(banner, "\n") {
		if strings.Contains(line, "Video:") {
			if w, h, ok := matchResolution(line); ok {
				return w, h
			}
		}
	}
	if w, h, ok := matchResolution(banner); ok {
		return w, h
	}
	return 0, 0
}

func matchResolution(text string) (int, int, bool) {
	m := resolutionPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}

// ParseDuration extracts the "Duration: HH:MM:SS.cc" value in seconds, or 0.
func ParseDuration(banner string) float64 {
	m := durationPattern.FindStringSubmatch(banner)
	if m == nil {
		return 0
	}
	seconds, ok := progress.ParseClock(m[1])
	if !ok {
		return 0
	}
	return seconds
}
