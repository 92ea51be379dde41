package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"mediapull/internal/chapters"
	"mediapull/internal/encoding"
	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/fetch"
	"mediapull/internal/fileutil"
	"mediapull/internal/history"
	"mediapull/internal/logging"
	"mediapull/internal/media/ffprobe"
	"mediapull/internal/mediaurl"
	"mediapull/internal/progress"
	"mediapull/internal/services"
	"mediapull/internal/staging"
	"mediapull/internal/textutil"
	"mediapull/internal/ytdlp"
)

// Temp file markers. Each is prefixed with the video id so independent runs
// never collide.
const (
	videoTempSuffix = "_temp_video"
	audioTempSuffix = "_temp_audio"
	audioOnlySuffix = "_audio"
)

// Fetcher downloads one stream with retries.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (fetch.Result, error)
}

// TitleSource looks up the title used to name output files.
type TitleSource interface {
	Title(ctx context.Context, rawURL string, cookies ytdlp.Cookies) string
}

// Prober reports the resolution and duration of a downloaded stream.
type Prober interface {
	Probe(ctx context.Context, path string) (ffprobe.Source, error)
}

// Merger combines the two streams into the final file.
type Merger interface {
	Merge(ctx context.Context, rep events.Reporter, stage progress.Stage, job encoding.Job) (encoding.Candidate, error)
}

// ChapterSplitter cuts the merged file into chapter files.
type ChapterSplitter interface {
	Split(ctx context.Context, rep events.Reporter, stage progress.Stage, videoPath, outputDir, title string, list []chapters.Chapter) ([]string, error)
}

// SponsorRemover cuts sponsor segments from the merged file in place.
type SponsorRemover interface {
	Remove(ctx context.Context, rep events.Reporter, stage progress.Stage, videoPath, videoID string) (string, error)
}

// HistoryRecorder stores finished downloads.
type HistoryRecorder interface {
	Add(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Deps are the collaborators a pipeline drives. Splitter and Sponsor may be
// nil when the corresponding post-step is never requested.
type Deps struct {
	Fetcher   Fetcher
	Titles    TitleSource
	Prober    Prober
	Merger    Merger
	Splitter  ChapterSplitter
	Sponsor   SponsorRemover
	Selectors ytdlp.Selectors
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReporter routes progress and log notices.
func WithReporter(rep events.Reporter) Option {
	return func(p *Pipeline) {
		if rep != nil {
			p.reporter = rep
		}
	}
}

// WithHistory records successful downloads.
func WithHistory(rec HistoryRecorder) Option {
	return func(p *Pipeline) {
		p.history = rec
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.NewComponentLogger(logger, "pipeline")
	}
}

// Pipeline orchestrates one download run.
type Pipeline struct {
	deps     Deps
	reporter events.Reporter
	history  HistoryRecorder
	logger   *slog.Logger
}

// New constructs a pipeline over deps.
func New(deps Deps, opts ...Option) *Pipeline {
	if deps.Selectors == (ytdlp.Selectors{}) {
		deps.Selectors = ytdlp.DefaultSelectors()
	}
	p := &Pipeline{
		deps:     deps,
		reporter: events.Discard{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the run described by opts. Temp artifacts of the video are
// removed before Run returns, on success and on failure.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if err := p.checkDeps(opts); err != nil {
		return Result{}, err
	}

	videoID := mediaurl.Parse(opts.URL).VideoIDOrUnknown()
	ctx = services.WithVideoID(ctx, videoID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, p.logger)

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, failure.Wrapf(failure.KindUsage, fmt.Sprintf("Cannot create output directory: %v", err), err)
	}
	lock, err := acquireLock(opts.OutputDir, videoID)
	if err != nil {
		return Result{}, err
	}
	defer lock.release()
	defer func() {
		cleaned := staging.CleanRun(opts.OutputDir, videoID, logger)
		if len(cleaned.Removed) > 0 {
			logger.Debug("temp artifacts removed", logging.Int("count", len(cleaned.Removed)))
		}
	}()

	mode := opts.Mode()
	if opts.SponsorBlock && mode == progress.ModeChapters {
		p.reporter.Log(events.LevelInfo, "SponsorBlock disabled for chapter downloads")
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", mode.String()),
		logging.String("quality", opts.Quality),
		logging.Bool("sponsorblock", mode == progress.ModeSponsorBlock),
		logging.String("output_dir", opts.OutputDir),
	)
	p.reporter.Log(events.LevelInfo, "Starting download: "+opts.Quality)

	var result Result
	if mode == progress.ModeAudioOnly {
		result, err = p.runAudioOnly(ctx, logger, opts, videoID)
	} else {
		result, err = p.runVideo(ctx, logger, opts, videoID, mode)
	}
	if err != nil {
		code, message := failure.From(err)
		logging.ErrorWithContext(logger, "run failed", "run_failure",
			logging.String(logging.FieldErrorCode, string(code)),
			logging.String("message", message),
		)
		return Result{}, err
	}

	result.Mode = mode
	result.VideoID = videoID
	p.recordHistory(ctx, logger, opts, result)
	p.reporter.Progress(progress.StageComplete, 100, progress.Sample{})
	logger.Info("run complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("output_path", result.OutputPath),
		logging.Int("output_files", len(result.OutputFiles)),
		logging.Int64("size_bytes", result.Size),
	)
	return result, nil
}

func (p *Pipeline) checkDeps(opts Options) error {
	missing := func(what string) error {
		return services.Wrap(services.ErrConfiguration, "pipeline", "run", what+" not configured", nil)
	}
	switch {
	case p.deps.Fetcher == nil:
		return missing("fetcher")
	case p.deps.Titles == nil:
		return missing("title source")
	case opts.AudioOnly:
		return nil
	case p.deps.Prober == nil:
		return missing("prober")
	case p.deps.Merger == nil:
		return missing("merger")
	case opts.Mode() == progress.ModeChapters && p.deps.Splitter == nil:
		return missing("chapter splitter")
	case opts.Mode() == progress.ModeSponsorBlock && p.deps.Sponsor == nil:
		return missing("sponsor remover")
	}
	return nil
}

func (p *Pipeline) runVideo(ctx context.Context, logger *slog.Logger, opts Options, videoID string, mode progress.Mode) (Result, error) {
	layout := progress.LayoutFor(mode)
	height := ytdlp.ParseQuality(opts.Quality)
	selectors := p.deps.Selectors

	p.reporter.Log(events.LevelInfo, "Downloading video stream...")
	video, err := p.deps.Fetcher.Fetch(ctx, fetch.Request{
		URL:     opts.URL,
		VideoID: videoID,
		Selector: func(attempt int, lastFormatID string) string {
			return selectors.Video(height, attempt, lastFormatID)
		},
		OutputTemplate: filepath.Join(opts.OutputDir, videoID+videoTempSuffix+".%(ext)s"),
		Trim:           opts.Trim,
		Cookies:        opts.Cookies,
		Stage:          layout.Video,
		Exclude:        audioTempSuffix,
	})
	if err != nil {
		return Result{}, err
	}

	p.reporter.Log(events.LevelInfo, "Downloading audio stream...")
	audio, err := p.deps.Fetcher.Fetch(ctx, fetch.Request{
		URL:            opts.URL,
		VideoID:        videoID,
		Selector:       func(int, string) string { return selectors.AudioSelector() },
		OutputTemplate: filepath.Join(opts.OutputDir, videoID+audioTempSuffix+".%(ext)s"),
		Trim:           opts.Trim,
		Cookies:        opts.Cookies,
		Stage:          layout.Audio,
		Exclude:        videoTempSuffix,
	})
	if err != nil {
		return Result{}, err
	}

	p.reporter.Log(events.LevelInfo, "Merging and encoding...")
	title := p.deps.Titles.Title(ctx, opts.URL, opts.Cookies)
	finalPath := textutil.OutputPath(opts.OutputDir, title, ".mp4")

	src, err := p.deps.Prober.Probe(ctx, video.Path)
	if err != nil {
		return Result{}, err
	}
	logger.With(logging.FieldStage, layout.Merge.Name).Debug("source probed",
		logging.Int("width", src.Width),
		logging.Int("height", src.Height),
		logging.Float64("duration_seconds", src.DurationSeconds),
	)

	encoder, err := p.deps.Merger.Merge(ctx, p.reporter, layout.Merge, encoding.Job{
		VideoPath:       video.Path,
		AudioPath:       audio.Path,
		OutputPath:      finalPath,
		Width:           src.Width,
		Height:          src.Height,
		DurationSeconds: src.DurationSeconds,
		Policy:          opts.Bitrate,
	})
	if err != nil {
		fileutil.RemoveQuietly(finalPath)
		return Result{}, err
	}

	result := Result{Title: title, OutputPath: finalPath, Encoder: encoder.Encoder}
	switch mode {
	case progress.ModeChapters:
		p.reporter.Log(events.LevelInfo, fmt.Sprintf("Splitting into %d chapters...", len(opts.Chapters)))
		files, err := p.deps.Splitter.Split(ctx, p.reporter, layout.Post, finalPath, opts.OutputDir, title, opts.Chapters)
		fileutil.RemoveQuietly(finalPath)
		if err != nil {
			return Result{}, err
		}
		result.OutputPath = chapters.Dir(opts.OutputDir, title)
		result.OutputFiles = files
		p.reporter.Log(events.LevelInfo, fmt.Sprintf("Chapter download complete: %d files", len(files)))
		return result, nil
	case progress.ModeSponsorBlock:
		p.reporter.Log(events.LevelInfo, "Checking SponsorBlock...")
		path, err := p.deps.Sponsor.Remove(ctx, p.reporter, layout.Post, finalPath, videoID)
		if err != nil {
			return Result{}, err
		}
		result.OutputPath = path
	}

	result.Size = fileutil.Size(result.OutputPath)
	p.reporter.Log(events.LevelInfo, "Download complete: "+filepath.Base(result.OutputPath))
	return result, nil
}

func (p *Pipeline) runAudioOnly(ctx context.Context, logger *slog.Logger, opts Options, videoID string) (Result, error) {
	layout := progress.LayoutFor(progress.ModeAudioOnly)
	selectors := p.deps.Selectors

	p.reporter.Log(events.LevelInfo, "Downloading audio...")
	audio, err := p.deps.Fetcher.Fetch(ctx, fetch.Request{
		URL:            opts.URL,
		VideoID:        videoID,
		Selector:       func(int, string) string { return selectors.AudioSelector() },
		OutputTemplate: filepath.Join(opts.OutputDir, videoID+audioOnlySuffix+".%(ext)s"),
		Trim:           opts.Trim,
		Cookies:        opts.Cookies,
		Stage:          layout.Audio,
		Exclude:        videoTempSuffix,
	})
	if err != nil {
		return Result{}, err
	}

	title := p.deps.Titles.Title(ctx, opts.URL, opts.Cookies)
	finalPath := textutil.OutputPath(opts.OutputDir, title, filepath.Ext(audio.Path))

	p.reporter.Progress(layout.Post.Name, layout.Post.Offset, progress.Sample{})
	if err := fileutil.MoveFile(audio.Path, finalPath); err != nil {
		return Result{}, failure.Wrapf(failure.KindGeneric, fmt.Sprintf("Could not rename audio file: %v", err), err)
	}
	p.reporter.Progress(layout.Post.Name, layout.Post.End(), progress.Sample{})
	logger.With(logging.FieldStage, layout.Post.Name).Debug("audio renamed", logging.String("from", audio.Path), logging.String("to", finalPath))

	return Result{
		Title:      title,
		OutputPath: finalPath,
		Size:       fileutil.Size(finalPath),
	}, nil
}

func (p *Pipeline) recordHistory(ctx context.Context, logger *slog.Logger, opts Options, result Result) {
	if p.history == nil {
		return
	}
	entry := history.Entry{
		VideoID:    result.VideoID,
		Title:      result.Title,
		URL:        opts.URL,
		Quality:    opts.Quality,
		Mode:       result.Mode.String(),
		OutputPath: result.OutputPath,
		FileSize:   result.Size,
	}
	if result.Mode == progress.ModeChapters {
		for _, f := range result.OutputFiles {
			entry.FileSize += fileutil.Size(f)
		}
	}
	if _, err := p.history.Add(ctx, entry); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history_db path permissions"),
			logging.String(logging.FieldImpact, "download missing from history"),
		)
	}
}
