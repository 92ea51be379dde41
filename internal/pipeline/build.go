package pipeline

import (
	"log/slog"
	"path/filepath"
	"strings"

	"mediapull/internal/chapters"
	"mediapull/internal/config"
	"mediapull/internal/deps"
	"mediapull/internal/encoding"
	"mediapull/internal/events"
	"mediapull/internal/fetch"
	"mediapull/internal/media/ffprobe"
	"mediapull/internal/sponsorblock"
	"mediapull/internal/ytdlp"
)

// FromConfig wires the production collaborators for cfg. Progress from every
// stage goes to rep.
func FromConfig(cfg *config.Config, rep events.Reporter, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	ffmpeg := deps.FFmpegPath(cfg.Tools.YtDlp, cfg.Tools.FFmpeg)

	clientOpts := []ytdlp.Option{
		ytdlp.WithLogger(logger),
		ytdlp.WithTimeouts(
			config.Seconds(cfg.Download.TitleTimeout),
			config.Seconds(cfg.Download.VideoInfoTimeout),
			config.Seconds(cfg.Download.PlaylistTimeout),
		),
	}
	if strings.ContainsRune(ffmpeg, filepath.Separator) {
		clientOpts = append(clientOpts, ytdlp.WithFFmpegDir(filepath.Dir(ffmpeg)))
	}
	client, err := ytdlp.New(cfg.Tools.YtDlp, clientOpts...)
	if err != nil {
		return nil, err
	}

	chain := encoding.NewChain(ffmpeg, append(encoding.ChainOptions(cfg.Encoding), encoding.WithLogger(logger))...)
	prober := ffprobe.NewProber(cfg.Tools.FFprobe, ffmpeg)

	built := Deps{
		Fetcher:   fetch.NewController(client, fetch.ScheduleFromConfig(cfg.Download), rep, fetch.WithLogger(logger)),
		Titles:    client,
		Prober:    prober,
		Merger:    chain,
		Splitter:  chapters.NewSplitter(ffmpeg, chapters.WithTimeout(config.Seconds(cfg.Chapters.SplitTimeout)), chapters.WithLogger(logger)),
		Sponsor:   sponsorblock.NewRemover(sponsorblock.NewConfiguredClient(cfg.SponsorBlock), prober, chain, logger),
		Selectors: ytdlp.DefaultSelectors(),
	}
	all := append([]Option{WithReporter(rep), WithLogger(logger)}, opts...)
	return New(built, all...), nil
}
