// Package mediaurl extracts video and playlist identifiers from YouTube URLs.
package mediaurl

import (
	"net/url"
	"regexp"
	"strings"
)

// UnknownVideoID names temp files when a URL carries no usable video id.
const UnknownVideoID = "unknown"

// videoIDPattern limits ids to characters that are safe inside a file name
// and a yt-dlp output template.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Parsed describes what a URL points at.
type Parsed struct {
	URL        string
	VideoID    string
	PlaylistID string
	IsPlaylist bool
	// IsMix marks auto-generated radio playlists ("RD" prefix) which cannot be
	// listed and are treated as their seed video.
	IsMix bool
}

// Parse inspects a URL. Malformed input yields a Parsed with only URL set.
func Parse(raw string) Parsed {
	trimmed := strings.TrimSpace(raw)
	out := Parsed{URL: trimmed}
	u, err := url.Parse(trimmed)
	if err != nil {
		return out
	}
	query := u.Query()
	var id string
	if v := query.Get("v"); v != "" {
		id = v
	} else if strings.EqualFold(u.Hostname(), "youtu.be") {
		id = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	}
	if videoIDPattern.MatchString(id) {
		out.VideoID = id
	}
	if list := query.Get("list"); list != "" {
		out.PlaylistID = list
		out.IsMix = strings.HasPrefix(list, "RD")
	}
	if u.Path == "/playlist" || (out.PlaylistID != "" && out.VideoID == "") {
		out.IsPlaylist = true
	}
	return out
}

// VideoIDOrUnknown returns the video id, or UnknownVideoID when absent or
// rejected.
func (p Parsed) VideoIDOrUnknown() string {
	if p.VideoID == "" {
		return UnknownVideoID
	}
	return p.VideoID
}

// WatchURL returns the canonical single-video URL for id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}
