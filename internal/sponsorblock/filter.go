package sponsorblock

import (
	"sort"
	"strconv"
	"strings"
)

// Interval is a kept time range, in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Merge sorts segments by start and folds overlapping or touching ranges.
// The input slice is not modified.
func Merge(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}
	sorted := append([]Segment(nil), segments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	merged := []Segment{sorted[0]}
	for _, seg := range sorted[1:] {
		last := &merged[len(merged)-1]
		if seg.Start <= last.End {
			if seg.End > last.End {
				last.End = seg.End
			}
			continue
		}
		merged = append(merged, seg)
	}
	return merged
}

// KeepIntervals returns the complement of segments within [0, duration].
func KeepIntervals(segments []Segment, duration float64) []Interval {
	var keep []Interval
	lastEnd := 0.0
	for _, seg := range Merge(segments) {
		if seg.Start > lastEnd {
			keep = append(keep, Interval{Start: lastEnd, End: seg.Start})
		}
		if seg.End > lastEnd {
			lastEnd = seg.End
		}
	}
	if lastEnd < duration {
		keep = append(keep, Interval{Start: lastEnd, End: duration})
	}
	return keep
}

// Filters builds the ffmpeg video and audio filters that keep everything
// outside the segments. ok is false when nothing would be kept.
func Filters(segments []Segment, duration float64) (video, audio string, ok bool) {
	keep := KeepIntervals(segments, duration)
	if len(keep) == 0 {
		return "", "", false
	}
	parts := make([]string, 0, len(keep))
	for _, iv := range keep {
		parts = append(parts, "between(t,"+formatSeconds(iv.Start)+","+formatSeconds(iv.End)+")")
	}
	expr := strings.Join(parts, "+")
	video = "select='" + expr + "',setpts=N/FRAME_RATE/TB"
	audio = "aselect='" + expr + "',asetpts=N/SR/TB"
	return video, audio, true
}

// TotalDuration sums the raw segment lengths.
func TotalDuration(segments []Segment) float64 {
	var total float64
	for _, seg := range segments {
		total += seg.Duration()
	}
	return total
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
