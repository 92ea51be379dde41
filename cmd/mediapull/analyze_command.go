package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"mediapull/internal/config"
	"mediapull/internal/deps"
	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/ytdlp"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var cookiesBrowser string
	var cookiesProfile string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Inspect a video or playlist without downloading",
	}
	analyzeCmd.PersistentFlags().StringVar(&cookiesBrowser, "cookies-browser", "", "Read cookies from this browser")
	analyzeCmd.PersistentFlags().StringVar(&cookiesProfile, "cookies-profile", "", "Browser profile for --cookies-browser")

	run := func(fn func(context.Context, *ytdlp.Client, string, ytdlp.Cookies, events.Reporter) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				events.NewEmitter(cmd.OutOrStdout(), nil).Error(failure.KindUsage, err.Error())
				return errReported
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				events.NewEmitter(cmd.OutOrStdout(), nil).Error(failure.KindUsage, err.Error())
				return errReported
			}
			emitter := events.NewEmitter(cmd.OutOrStdout(), logger)

			client, err := newAnalyzeClient(cfg, ctx)
			if err != nil {
				emitter.Fail(err)
				return errReported
			}
			cookies := ytdlp.Cookies{
				Browser: firstNonEmpty(cookiesBrowser, cfg.Download.CookiesBrowser),
				Profile: firstNonEmpty(cookiesProfile, cfg.Download.CookiesProfile),
			}
			info, err := fn(cmd.Context(), client, args[0], cookies, emitter)
			if err != nil {
				reportFailure(emitter, err)
				return errReported
			}
			emitter.Result(info)
			return nil
		}
	}

	analyzeCmd.AddCommand(&cobra.Command{
		Use:         "video URL",
		Short:       "Print title, formats, and chapters of one video",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: run(func(c context.Context, client *ytdlp.Client, url string, cookies ytdlp.Cookies, rep events.Reporter) (any, error) {
			return client.VideoInfo(c, url, cookies, rep)
		}),
	})
	analyzeCmd.AddCommand(&cobra.Command{
		Use:         "playlist URL",
		Short:       "List the entries of a playlist",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: run(func(c context.Context, client *ytdlp.Client, url string, cookies ytdlp.Cookies, rep events.Reporter) (any, error) {
			return client.Playlist(c, url, cookies, rep)
		}),
	})

	return analyzeCmd
}

func newAnalyzeClient(cfg *config.Config, ctx *commandContext) (*ytdlp.Client, error) {
	logger, _ := ctx.ensureLogger()
	return ytdlp.New(cfg.Tools.YtDlp,
		ytdlp.WithLogger(logger),
		ytdlp.WithTimeouts(
			config.Seconds(cfg.Download.TitleTimeout),
			config.Seconds(cfg.Download.VideoInfoTimeout),
			config.Seconds(cfg.Download.PlaylistTimeout),
		),
		ytdlp.WithFFmpegDir(ffmpegDir(cfg)),
	)
}

func ffmpegDir(cfg *config.Config) string {
	status := deps.ResolveFFmpeg(cfg.Tools.YtDlp, cfg.Tools.FFmpeg)
	if !status.Available {
		return ""
	}
	return filepath.Dir(status.Command)
}
