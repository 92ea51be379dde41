package ytdlp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	tableResolution = regexp.MustCompile(`^(\d{3,4})x(\d{3,4})`)
	tableHeight     = regexp.MustCompile(`^(\d{3,4})p`)
	tableFPS        = regexp.MustCompile(`^(\d+)fps`)
	tableBitrate    = regexp.MustCompile(`(?i)^~?(\d+\.?\d*)k`)
	tableSize       = regexp.MustCompile(`^~?(\d+\.?\d*)(Mi|Gi|Ki)B`)
)

// ParseFormatTable parses the text table printed by `yt-dlp --list-formats`.
// Rows before the "ID ... EXT" header and separator rows are skipped; rows
// with neither a video height nor an audio codec are dropped.
func ParseFormatTable(output string) []Format {
	var formats []Format
	inTable := false
	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "ID") && strings.Contains(line, "EXT") {
			inTable = true
			continue
		}
		if strings.HasPrefix(line, "---") || !inTable || line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		f := Format{FormatID: parts[0], Ext: parts[1]}
		parseTableResolution(&f, parts)
		parseTableCodecs(&f, parts)
		for _, part := range parts {
			if m := tableFPS.FindStringSubmatch(part); m != nil {
				f.FPS, _ = strconv.ParseFloat(m[1], 64)
				break
			}
		}
		for _, part := range parts {
			if m := tableBitrate.FindStringSubmatch(part); m != nil {
				f.TBR, _ = strconv.ParseFloat(m[1], 64)
				break
			}
		}
		for _, part := range parts {
			if m := tableSize.FindStringSubmatch(part); m != nil {
				size := parseTableSize(m[1], m[2])
				f.FilesizeApprox = &size
				break
			}
		}
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "video only"):
			f.FormatNote = "video only"
		case strings.Contains(lower, "audio only"):
			f.FormatNote = "audio only"
		}
		if f.Height > 0 || f.ACodec != "" {
			formats = append(formats, f)
		}
	}
	return formats
}

func parseTableResolution(f *Format, parts []string) {
	for _, part := range parts {
		if m := tableResolution.FindStringSubmatch(part); m != nil {
			f.Width, _ = strconv.Atoi(m[1])
			f.Height, _ = strconv.Atoi(m[2])
			return
		}
		if m := tableHeight.FindStringSubmatch(part); m != nil {
			f.Height, _ = strconv.Atoi(m[1])
			return
		}
	}
}

func parseTableCodecs(f *Format, parts []string) {
	for _, part := range parts {
		switch {
		case hasAnyPrefix(part, "avc1", "h264", "vp9", "vp09", "av01"):
			f.VCodec = part
		case hasAnyPrefix(part, "mp4a", "aac", "opus"):
			f.ACodec = part
		}
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func parseTableSize(value, unit string) int64 {
	v, _ := strconv.ParseFloat(value, 64)
	switch unit {
	case "Gi":
		v *= 1024 * 1024 * 1024
	case "Mi":
		v *= 1024 * 1024
	case "Ki":
		v *= 1024
	}
	return int64(v)
}

// formatsFromJSON converts the formats array of `yt-dlp -J` output, keeping
// entries that carry video height or a real audio codec.
func formatsFromJSON(raw []rawFormat) []Format {
	var formats []Format
	for _, r := range raw {
		f := Format{
			FormatID:       r.FormatID,
			Ext:            r.Ext,
			Height:         derefInt(r.Height),
			Width:          derefInt(r.Width),
			FPS:            derefFloat(r.FPS),
			VCodec:         orNone(r.VCodec),
			ACodec:         orNone(r.ACodec),
			TBR:            derefFloat(r.TBR),
			Filesize:       r.Filesize,
			FilesizeApprox: r.FilesizeApprox,
			FormatNote:     r.FormatNote,
		}
		if f.Height > 0 || f.ACodec != "none" {
			formats = append(formats, f)
		}
	}
	return formats
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// FormatDuration renders seconds as H:MM:SS or M:SS.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0:00"
	}
	total := int(seconds)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatViews renders a view count such as "1.2M views".
func FormatViews(views int64) string {
	switch {
	case views >= 1_000_000_000:
		return fmt.Sprintf("%.1fB views", float64(views)/1e9)
	case views >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(views)/1e6)
	case views >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(views)/1e3)
	default:
		return fmt.Sprintf("%d views", views)
	}
}
