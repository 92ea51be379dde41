package ytdlp

// Format is one downloadable stream variant.
type Format struct {
	FormatID       string  `json:"format_id"`
	Ext            string  `json:"ext"`
	Height         int     `json:"height"`
	Width          int     `json:"width"`
	FPS            float64 `json:"fps"`
	VCodec         string  `json:"vcodec"`
	ACodec         string  `json:"acodec"`
	TBR            float64 `json:"tbr"`
	Filesize       *int64  `json:"filesize"`
	FilesizeApprox *int64  `json:"filesize_approx"`
	FormatNote     string  `json:"format_note"`
}

// Chapter is a titled time range within a video.
type Chapter struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Duration returns the chapter length in seconds.
func (c Chapter) Duration() float64 {
	return c.EndTime - c.StartTime
}

// VideoInfo is the analyzed metadata of a single video.
type VideoInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	Duration     float64   `json:"duration"`
	DurationStr  string    `json:"duration_str"`
	Views        int64     `json:"views"`
	ViewsStr     string    `json:"views_str"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	UploadDate   string    `json:"upload_date"`
	Formats      []Format  `json:"formats"`
	Chapters     []Chapter `json:"chapters"`
}

// PlaylistItem is one entry of a flat playlist listing.
type PlaylistItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Duration    float64 `json:"duration"`
	Channel     string  `json:"channel"`
	Index       int     `json:"index"`
	IsAvailable bool    `json:"is_available"`
}

// PlaylistInfo is the analyzed listing of a playlist.
type PlaylistInfo struct {
	PlaylistTitle string         `json:"playlist_title"`
	PlaylistID    string         `json:"playlist_id"`
	Items         []PlaylistItem `json:"items"`
}

// rawVideo mirrors the subset of `yt-dlp -J` output that mediapull reads.
type rawVideo struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Channel   string      `json:"channel"`
	Uploader  string      `json:"uploader"`
	Duration  float64     `json:"duration"`
	ViewCount int64       `json:"view_count"`
	Thumbnail string      `json:"thumbnail"`
	Upload    string      `json:"upload_date"`
	Chapters  []Chapter   `json:"chapters"`
	Formats   []rawFormat `json:"formats"`
}

type rawFormat struct {
	FormatID       string   `json:"format_id"`
	Ext            string   `json:"ext"`
	Height         *int     `json:"height"`
	Width          *int     `json:"width"`
	FPS            *float64 `json:"fps"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	TBR            *float64 `json:"tbr"`
	Filesize       *int64   `json:"filesize"`
	FilesizeApprox *int64   `json:"filesize_approx"`
	FormatNote     string   `json:"format_note"`
}

type rawPlaylist struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Entries []*rawPlaylistItem `json:"entries"`
}

type rawPlaylistItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
	Channel  string  `json:"channel"`
	Uploader string  `json:"uploader"`
}
