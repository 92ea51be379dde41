package ytdlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/mediaurl"
	"mediapull/internal/procexec"
	"mediapull/internal/progress"
	"mediapull/internal/services"
)

// DefaultTitle names output files when the title lookup fails.
const DefaultTitle = "video"

const (
	defaultTitleTimeout    = 30 * time.Second
	defaultInfoTimeout     = 90 * time.Second
	defaultPlaylistTimeout = 120 * time.Second
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec procexec.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithFFmpegDir passes --ffmpeg-location so yt-dlp uses the same ffmpeg as
// the merge stage.
func WithFFmpegDir(dir string) Option {
	return func(c *Client) {
		c.ffmpegDir = strings.TrimSpace(dir)
	}
}

// WithTimeouts overrides the metadata command timeouts. Zero keeps the default.
func WithTimeouts(title, info, playlist time.Duration) Option {
	return func(c *Client) {
		if title > 0 {
			c.titleTimeout = title
		}
		if info > 0 {
			c.infoTimeout = info
		}
		if playlist > 0 {
			c.playlistTimeout = playlist
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "ytdlp")
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary          string
	ffmpegDir       string
	exec            procexec.Executor
	titleTimeout    time.Duration
	infoTimeout     time.Duration
	playlistTimeout time.Duration
	logger          *slog.Logger
}

// New constructs a yt-dlp client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:          binary,
		exec:            procexec.OSExecutor{},
		titleTimeout:    defaultTitleTimeout,
		infoTimeout:     defaultInfoTimeout,
		playlistTimeout: defaultPlaylistTimeout,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) command(args []string, timeout time.Duration) procexec.Command {
	full := make([]string, 0, len(args)+2)
	if c.ffmpegDir != "" {
		full = append(full, "--ffmpeg-location", c.ffmpegDir)
	}
	full = append(full, args...)
	return procexec.Command{Binary: c.binary, Args: full, Timeout: timeout}
}

// Download runs a single stream download attempt. A non-zero exit is
// reported through the Result; errors mean the attempt never completed.
func (c *Client) Download(ctx context.Context, args DownloadArgs, timeout time.Duration, onLine func(procexec.Line)) (procexec.Result, error) {
	cmd := c.command(args.Build(), timeout)
	cmd.OnLine = onLine
	return c.exec.Run(ctx, cmd)
}

// Title looks up the video title for naming output files. It never fails;
// any problem yields DefaultTitle.
func (c *Client) Title(ctx context.Context, rawURL string, cookies Cookies) string {
	args := append([]string{"--get-title", "--no-playlist"}, cookies.Args()...)
	args = append(args, rawURL)
	cmd := c.command(args, c.titleTimeout)
	cmd.CaptureStdout = true
	res, err := c.exec.Run(ctx, cmd)
	if err != nil || !res.Success() {
		c.logger.Debug("title lookup failed", logging.Error(err), logging.Int("exit_code", res.ExitCode))
		return DefaultTitle
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(res.Stdout)), "\n")
	if first = strings.TrimSpace(first); first == "" {
		return DefaultTitle
	}
	return first
}

// VideoInfo analyzes a single video: JSON metadata first, then the format
// table, falling back to the JSON formats when the table is unusable.
func (c *Client) VideoInfo(ctx context.Context, rawURL string, cookies Cookies, rep events.Reporter) (*VideoInfo, error) {
	if rep == nil {
		rep = events.Discard{}
	}
	parsed := mediaurl.Parse(rawURL)
	target := parsed.URL
	if parsed.IsMix {
		rep.Log(events.LevelWarning, "Mix/Radio playlists can't be downloaded as playlists. Downloading single video.")
		if parsed.VideoID != "" {
			target = mediaurl.WatchURL(parsed.VideoID)
		}
	}

	rep.Log(events.LevelInfo, "Fetching video info...")
	rep.Progress(progress.StageAnalyze, 10, progress.Sample{})

	args := append([]string{"-J", "--no-playlist"}, cookies.Args()...)
	data, err := c.dumpJSON(ctx, append(args, target), c.infoTimeout, "Analysis")
	if err != nil {
		return nil, err
	}
	var raw rawVideo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, failure.Wrapf(failure.KindParse, "Failed to parse yt-dlp output", err)
	}
	rep.Progress(progress.StageAnalyze, 50, progress.Sample{})

	info := &VideoInfo{
		ID:           raw.ID,
		Title:        firstNonEmpty(raw.Title, "Unknown"),
		Channel:      firstNonEmpty(raw.Channel, raw.Uploader, "Unknown"),
		Duration:     raw.Duration,
		DurationStr:  FormatDuration(raw.Duration),
		Views:        raw.ViewCount,
		ViewsStr:     FormatViews(raw.ViewCount),
		URL:          target,
		ThumbnailURL: raw.Thumbnail,
		UploadDate:   raw.Upload,
		Chapters:     raw.Chapters,
	}
	if info.Chapters == nil {
		info.Chapters = []Chapter{}
	}

	rep.Log(events.LevelInfo, "Fetching format table...")
	rep.Progress(progress.StageAnalyze, 60, progress.Sample{})
	info.Formats = c.formatTable(ctx, target, cookies, rep)
	if len(info.Formats) == 0 {
		info.Formats = formatsFromJSON(raw.Formats)
	}
	if info.Formats == nil {
		info.Formats = []Format{}
	}

	rep.Progress(progress.StageAnalyze, 100, progress.Sample{})
	rep.Log(events.LevelInfo, fmt.Sprintf("Found %d formats, %d chapters", len(info.Formats), len(info.Chapters)))
	return info, nil
}

func (c *Client) formatTable(ctx context.Context, target string, cookies Cookies, rep events.Reporter) []Format {
	args := append([]string{"--list-formats", "--no-playlist"}, cookies.Args()...)
	cmd := c.command(append(args, target), c.infoTimeout)
	cmd.CaptureStdout = true
	res, err := c.exec.Run(ctx, cmd)
	switch {
	case errors.Is(err, services.ErrTimeout):
		rep.Log(events.LevelWarning, "Format table fetch timed out, using JSON formats")
		return nil
	case err != nil:
		c.logger.Debug("format table unavailable", logging.Error(err))
		return nil
	case !res.Success():
		c.logger.Debug("format table exited non-zero", logging.Int("exit_code", res.ExitCode))
		return nil
	}
	return ParseFormatTable(string(res.Stdout))
}

// Playlist lists the entries of a playlist without resolving each video.
func (c *Client) Playlist(ctx context.Context, rawURL string, cookies Cookies, rep events.Reporter) (*PlaylistInfo, error) {
	if rep == nil {
		rep = events.Discard{}
	}
	rep.Log(events.LevelInfo, "Fetching playlist info...")
	rep.Progress(progress.StageAnalyze, 10, progress.Sample{})

	args := append([]string{"-J", "--flat-playlist"}, cookies.Args()...)
	data, err := c.dumpJSON(ctx, append(args, strings.TrimSpace(rawURL)), c.playlistTimeout, "Playlist analysis")
	if err != nil {
		return nil, err
	}
	var raw rawPlaylist
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, failure.Wrapf(failure.KindParse, "Failed to parse playlist data", err)
	}

	info := &PlaylistInfo{
		PlaylistTitle: firstNonEmpty(raw.Title, "Playlist"),
		PlaylistID:    raw.ID,
		Items:         []PlaylistItem{},
	}
	for i, entry := range raw.Entries {
		if entry == nil {
			continue
		}
		info.Items = append(info.Items, PlaylistItem{
			ID:          entry.ID,
			Title:       firstNonEmpty(entry.Title, fmt.Sprintf("Video %d", i+1)),
			URL:         firstNonEmpty(entry.URL, mediaurl.WatchURL(entry.ID)),
			Duration:    entry.Duration,
			Channel:     firstNonEmpty(entry.Channel, entry.Uploader),
			Index:       i + 1,
			IsAvailable: entry.Title != "[Private video]" && entry.Title != "[Deleted video]",
		})
	}

	rep.Progress(progress.StageAnalyze, 100, progress.Sample{})
	rep.Log(events.LevelInfo, fmt.Sprintf("Found %d videos in playlist", len(info.Items)))
	return info, nil
}

// dumpJSON runs a metadata command and returns its stdout, translating
// timeouts and tool failures into classified errors.
func (c *Client) dumpJSON(ctx context.Context, args []string, timeout time.Duration, what string) ([]byte, error) {
	cmd := c.command(args, timeout)
	cmd.CaptureStdout = true
	res, err := c.exec.Run(ctx, cmd)
	if err != nil {
		if errors.Is(err, services.ErrTimeout) {
			msg := fmt.Sprintf("%s timed out after %ds", what, int(timeout.Seconds()))
			return nil, failure.Wrapf(failure.KindTimeout, msg, err)
		}
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, failure.Wrapf(failure.KindGeneric, err.Error(), err)
	}
	if !res.Success() {
		return nil, failure.Classify(res.StderrTail)
	}
	return res.Stdout, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
