package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediapull/internal/chapters"
	"mediapull/internal/config"
	"mediapull/internal/encoding"
	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/history"
	"mediapull/internal/logging"
	"mediapull/internal/pipeline"
	"mediapull/internal/preflight"
	"mediapull/internal/staging"
	"mediapull/internal/ytdlp"
)

// staleTempAge is how old an abandoned temp artifact must be before a new
// run sweeps it from the output directory.
const staleTempAge = 24 * time.Hour

type runFlags struct {
	quality        string
	outputDir      string
	audioOnly      bool
	sponsorBlock   bool
	sponsorSet     bool
	noHistory      bool
	trimStart      string
	trimEnd        string
	cookiesBrowser string
	cookiesProfile string
	bitrateMode    string
	customBitrate  int
	perResolution  string
	chaptersJSON   string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:     "run URL",
		Aliases: []string{"download"},
		Short:   "Download a video and stream progress as JSON lines",
		Long: `Download a single video (or its audio), merge and post-process it, and
write newline-delimited JSON events to stdout.

Every invocation ends with exactly one "result" or "error" event. Logs are
written to stderr and, when paths.log_dir is set, to mediapull.log.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.sponsorSet = cmd.Flags().Changed("sponsorblock")

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
			res, err := runDownload(cmd.Context(), cfg, logger, emitter, args[0], flags)
			notifyOutcome(cmd.Context(), cfg.Notifications, logger, args[0], res, err)
			if err != nil {
				reportFailure(emitter, err)
				return errReported
			}
			emitter.Result(res.Payload())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.quality, "quality", "q", "", "Target height such as 1080 or 720p, or best (default from config)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for the finished file (default paths.output_dir)")
	f.BoolVar(&flags.audioOnly, "audio-only", false, "Download the best audio stream without merging")
	f.BoolVar(&flags.sponsorBlock, "sponsorblock", false, "Cut SponsorBlock segments after merging (default sponsorblock.enabled)")
	f.BoolVar(&flags.noHistory, "no-history", false, "Do not record this download in the history")
	f.StringVar(&flags.trimStart, "trim-start", "", "Only download from this timestamp (HH:MM:SS)")
	f.StringVar(&flags.trimEnd, "trim-end", "", "Only download up to this timestamp (HH:MM:SS)")
	f.StringVar(&flags.cookiesBrowser, "cookies-browser", "", "Read cookies from this browser")
	f.StringVar(&flags.cookiesProfile, "cookies-profile", "", "Browser profile for --cookies-browser")
	f.StringVar(&flags.bitrateMode, "bitrate-mode", "", "Video bitrate policy: auto, custom, or per_resolution")
	f.IntVar(&flags.customBitrate, "custom-bitrate", 0, "Bitrate in Mbps for --bitrate-mode custom")
	f.StringVar(&flags.perResolution, "per-resolution", "", `Height to Mbps map for per_resolution, e.g. '{"1080":8,"720":5}'`)
	f.StringVar(&flags.chaptersJSON, "chapters", "", `Chapters to split into, e.g. '[{"title":"Intro","start_time":0,"end_time":30}]'`)

	return cmd
}

func runDownload(ctx context.Context, cfg *config.Config, logger *slog.Logger, rep events.Reporter, rawURL string, flags runFlags) (pipeline.Result, error) {
	list, err := chapters.Parse(flags.chaptersJSON)
	if err != nil {
		return pipeline.Result{}, err
	}
	fallback, err := encoding.PolicyFromConfig(cfg.Encoding)
	if err != nil {
		return pipeline.Result{}, err
	}
	policy, err := encoding.ParsePolicy(flags.bitrateMode, flags.customBitrate, flags.perResolution, fallback)
	if err != nil {
		return pipeline.Result{}, err
	}

	outputDir, err := prepareOutputDir(cfg, flags.outputDir)
	if err != nil {
		return pipeline.Result{}, err
	}
	staging.CleanStale(ctx, outputDir, staleTempAge, logger)

	var opts []pipeline.Option
	if cfg.History.Enabled && !flags.noHistory {
		store, err := history.OpenFromConfig(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.history_db or delete the database to start fresh"),
				logging.String(logging.FieldImpact, "this download will not be recorded"),
			)
		} else {
			defer store.Close()
			opts = append(opts, pipeline.WithHistory(store))
		}
	}

	p, err := pipeline.FromConfig(cfg, rep, logger, opts...)
	if err != nil {
		return pipeline.Result{}, err
	}

	sponsor := cfg.SponsorBlock.Enabled
	if flags.sponsorSet {
		sponsor = flags.sponsorBlock
	}
	return p.Run(ctx, pipeline.Options{
		URL:          rawURL,
		OutputDir:    outputDir,
		Quality:      firstNonEmpty(flags.quality, cfg.Download.Quality),
		AudioOnly:    flags.audioOnly,
		SponsorBlock: sponsor,
		Trim:         ytdlp.Trim{Start: flags.trimStart, End: flags.trimEnd},
		Cookies: ytdlp.Cookies{
			Browser: firstNonEmpty(flags.cookiesBrowser, cfg.Download.CookiesBrowser),
			Profile: firstNonEmpty(flags.cookiesProfile, cfg.Download.CookiesProfile),
		},
		Bitrate:  policy,
		Chapters: list,
	})
}

// prepareOutputDir resolves the output directory override and verifies the
// run can write there before any download starts.
func prepareOutputDir(cfg *config.Config, override string) (string, error) {
	dir := cfg.Paths.OutputDir
	if strings.TrimSpace(override) != "" {
		expanded, err := config.ExpandPath(override)
		if err != nil {
			return "", failure.Wrapf(failure.KindUsage, "Invalid output directory", err)
		}
		dir = expanded
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", failure.Wrapf(failure.KindUsage, fmt.Sprintf("Cannot create output directory %s", dir), err)
	}
	if check := preflight.CheckDirectoryAccess("Output directory", dir); !check.Passed {
		return "", failure.New(failure.KindUsage, fmt.Sprintf("Output directory %s: %s", dir, check.Detail))
	}
	return dir, nil
}

func reportFailure(emitter *events.Emitter, err error) {
	if errors.Is(err, context.Canceled) {
		emitter.Error(failure.KindGeneric, "Download cancelled")
		return
	}
	emitter.Fail(err)
}
