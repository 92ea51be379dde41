package mediaurl_test

import (
	"testing"

	"mediapull/internal/mediaurl"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		video    string
		playlist string
		isList   bool
		isMix    bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", "", false, false},
		{"short link", " https://youtu.be/abc123?t=10 ", "abc123", "", false, false},
		{"playlist page", "https://www.youtube.com/playlist?list=PL123", "", "PL123", true, false},
		{"video in playlist", "https://www.youtube.com/watch?v=abc&list=PL123", "abc", "PL123", false, false},
		{"mix", "https://www.youtube.com/watch?v=abc&list=RDabc", "abc", "RDabc", false, true},
		{"garbage", "::not a url", "", "", false, false},
		{"path separators in id", "https://www.youtube.com/watch?v=x%2F..%2F..%2Fescape", "", "", false, false},
		{"template field in id", "https://youtu.be/%25(title)s", "", "", false, false},
		{"dash and underscore", "https://www.youtube.com/watch?v=a-b_C9", "a-b_C9", "", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := mediaurl.Parse(tc.url)
			if got.VideoID != tc.video || got.PlaylistID != tc.playlist || got.IsPlaylist != tc.isList || got.IsMix != tc.isMix {
				t.Fatalf("Parse(%q) = %+v", tc.url, got)
			}
		})
	}
}

func TestVideoIDOrUnknown(t *testing.T) {
	for _, raw := range []string{"https://example.com/file.mp4", "https://www.youtube.com/watch?v=../../etc"} {
		if got := mediaurl.Parse(raw).VideoIDOrUnknown(); got != mediaurl.UnknownVideoID {
			t.Fatalf("Parse(%q).VideoIDOrUnknown() = %q", raw, got)
		}
	}
}

func TestWatchURL(t *testing.T) {
	if got := mediaurl.WatchURL("abc"); got != "https://www.youtube.com/watch?v=abc" {
		t.Fatalf("got %q", got)
	}
}
