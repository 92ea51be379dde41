package ytdlp_test

import (
	"strings"
	"testing"

	"mediapull/internal/ytdlp"
)

func TestParseQuality(t *testing.T) {
	tests := map[string]int{
		"1080p": 1080,
		"720":   720,
		"4k":    2160,
		"4K":    2160,
		"2160p": 2160,
		"best":  1080,
		"":      1080,
		" 480 ": 480,
	}
	for in, want := range tests {
		if got := ytdlp.ParseQuality(in); got != want {
			t.Fatalf("ParseQuality(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestVideoSelectorPolicy(t *testing.T) {
	s := ytdlp.DefaultSelectors()

	first := s.Video(1080, 0, "")
	if first != "bv*[vcodec^=avc1][height<=1080]/bv*[height<=1080][ext=mp4]/bv*[height<=1080]/bv*" {
		t.Fatalf("unexpected h264 selector: %s", first)
	}
	if got := s.Video(1080, 2, ""); got != first {
		t.Fatalf("without an observed format the selector must not change, got %s", got)
	}
	if got := s.Video(720, 1, "137"); got != "bv*[height<=720]/bv*" {
		t.Fatalf("unexpected generic selector: %s", got)
	}
	for attempt := 0; attempt < 6; attempt++ {
		if got := s.Video(2160, attempt, "313"); got != "bv*[height>=2160]/bv*[height>=1440]/bv*" {
			t.Fatalf("attempt %d: resolution-first selector changed: %s", attempt, got)
		}
	}
	if got := s.Video(1440, 0, ""); !strings.HasPrefix(got, "bv*[height>=2160]") {
		t.Fatalf("1440 should be resolution-first, got %s", got)
	}
}

func TestCustomSelectorsAreUsed(t *testing.T) {
	s := ytdlp.DefaultSelectors()
	s.Generic = "custom[h={h}]"
	if got := s.Video(480, 1, "18"); got != "custom[h=480]" {
		t.Fatalf("got %s", got)
	}
	if s.AudioSelector() != "bestaudio[acodec^=mp4a][ext=m4a]/bestaudio[ext=m4a]/bestaudio/best" {
		t.Fatalf("unexpected audio selector %s", s.AudioSelector())
	}
}
