package progress

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	fetchPattern  = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+~?(\S+)\s+at\s+(\S+)\s+ETA\s+(\S+)`)
	speedPattern  = regexp.MustCompile(`([\d.]+)(Ki|Mi|Gi)?B/s`)
	formatPattern = regexp.MustCompile(`Downloading format (\S+)`)

	encodeTimePattern = regexp.MustCompile(`time=(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	encodeFPSPattern  = regexp.MustCompile(`fps=\s*(\d+\.?\d*)`)
)

// Sample is one normalized progress observation from an external tool.
type Sample struct {
	Percent    float64
	SpeedMBps  float64
	ETASeconds float64
	FPS        float64
}

// ParseFetchLine parses a yt-dlp download line such as
// "[download]  42.5% of 1.23GiB at 12.3MiB/s ETA 01:24".
func ParseFetchLine(line string) (Sample, bool) {
	m := fetchPattern.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}
	percent, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Sample{}, false
	}
	return Sample{
		Percent:    clampPercent(percent),
		SpeedMBps:  ParseSpeed(m[3]),
		ETASeconds: ParseETA(m[4]),
	}, true
}

// ParseSpeed converts a yt-dlp speed token to MiB/s. Tokens without a binary
// prefix are treated as bytes per second.
func ParseSpeed(token string) float64 {
	m := speedPattern.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] {
	case "Gi":
		return value * 1024
	case "Mi":
		return value
	case "Ki":
		return value / 1024
	default:
		return value / (1024 * 1024)
	}
}

// ParseETA converts MM:SS or HH:MM:SS to seconds; anything else yields 0.
func ParseETA(token string) float64 {
	parts := strings.Split(strings.TrimSpace(token), ":")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		values = append(values, v)
	}
	switch len(values) {
	case 3:
		return float64(values[0]*3600 + values[1]*60 + values[2])
	case 2:
		return float64(values[0]*60 + values[1])
	default:
		return 0
	}
}

// FormatID extracts the format identifier from a "Downloading format" line.
func FormatID(line string) (string, bool) {
	m := formatPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseEncodeLine parses an ffmpeg status line carrying time= and fps= fields.
// totalSeconds is the known media duration; when it is not positive the
// percent stays 0.
func ParseEncodeLine(line string, totalSeconds float64) (Sample, bool) {
	m := encodeTimePattern.FindStringSubmatch(line)
	if m == nil {
		return Sample{}, false
	}
	current := clockSeconds(m[1], m[2], m[3], m[4])
	sample := Sample{}
	if totalSeconds > 0 {
		ratio := current / totalSeconds
		if ratio > 1 {
			ratio = 1
		}
		sample.Percent = ratio * 100
	}
	if fm := encodeFPSPattern.FindStringSubmatch(line); fm != nil {
		if fps, err := strconv.ParseFloat(fm[1], 64); err == nil {
			sample.FPS = fps
		}
	}
	return sample, true
}

// ParseClock converts an HH:MM:SS.cc timestamp into seconds.
func ParseClock(value string) (float64, bool) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, false
	}
	return clockSeconds(m[1], m[2], m[3], m[4]), true
}

var clockPattern = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

func clockSeconds(h, m, s, cs string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	centis, _ := strconv.Atoi(cs)
	return float64(hours*3600+minutes*60+seconds) + float64(centis)/100
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
