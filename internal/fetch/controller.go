package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/procexec"
	"mediapull/internal/progress"
	"mediapull/internal/services"
	"mediapull/internal/ytdlp"
)

// ExhaustedMessage is reported when the final attempt left nothing to
// classify (timeout, missing output, or silent failure).
const ExhaustedMessage = "All download attempts failed"

const defaultSyncWait = 2 * time.Second

// Downloader runs one yt-dlp download attempt.
type Downloader interface {
	Download(ctx context.Context, args ytdlp.DownloadArgs, timeout time.Duration, onLine func(procexec.Line)) (procexec.Result, error)
}

// SelectorFunc returns the format selector for a 0-based attempt given the
// format id observed on earlier attempts ("" when none).
type SelectorFunc func(attempt int, lastFormatID string) string

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Request describes one stream to fetch.
type Request struct {
	URL            string
	VideoID        string
	Selector       SelectorFunc
	OutputTemplate string
	Trim           ytdlp.Trim
	Cookies        ytdlp.Cookies
	Stage          progress.Stage
	// Exclude disqualifies candidate files whose name contains it, so the
	// video stage never picks up the audio temp file and vice versa.
	Exclude string
}

// AttemptState is the per-attempt view of a fetch loop.
type AttemptState struct {
	Attempt      int
	LastFormatID string
	Delay        time.Duration
}

// Result reports a successful fetch.
type Result struct {
	Path     string
	Attempts int
	FormatID string
}

// Option configures the controller.
type Option func(*Controller)

// WithWait replaces the backoff sleep (tests use a no-op).
func WithWait(wait WaitFunc) Option {
	return func(c *Controller) {
		if wait != nil {
			c.wait = wait
		}
	}
}

// WithSyncWait sets how long to wait for the filesystem before the broader
// output search.
func WithSyncWait(d time.Duration) Option {
	return func(c *Controller) {
		c.syncWait = d
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logging.NewComponentLogger(logger, "fetch")
	}
}

// Controller executes fetch requests against a Downloader.
type Controller struct {
	client   Downloader
	schedule Schedule
	reporter events.Reporter
	logger   *slog.Logger
	wait     WaitFunc
	syncWait time.Duration
}

// NewController constructs a controller. A nil reporter discards progress.
func NewController(client Downloader, schedule Schedule, reporter events.Reporter, opts ...Option) *Controller {
	if reporter == nil {
		reporter = events.Discard{}
	}
	c := &Controller{
		client:   client,
		schedule: schedule,
		reporter: reporter,
		logger:   logging.NewNop(),
		wait:     sleepContext,
		syncWait: defaultSyncWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch runs the retry loop until the output file is confirmed on disk or
// the attempt budget is spent.
func (c *Controller) Fetch(ctx context.Context, req Request) (Result, error) {
	if req.Selector == nil {
		return Result{}, services.Wrap(services.ErrValidation, req.Stage.Name, "fetch", "selector required", nil)
	}
	logger := c.logger.With(logging.String(logging.FieldStage, req.Stage.Name))
	maxAttempts := c.schedule.attempts()

	var (
		state   AttemptState
		lastErr *failure.Error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		state.Attempt = attempt
		state.Delay = c.schedule.Delay(attempt)
		if attempt > 0 {
			c.announceRetry(logger, state, maxAttempts)
			if err := c.backoff(ctx, req.Stage, state.Delay); err != nil {
				return Result{}, err
			}
		}

		args := ytdlp.DownloadArgs{
			URL:            req.URL,
			Selector:       req.Selector(attempt, state.LastFormatID),
			OutputTemplate: req.OutputTemplate,
			Trim:           req.Trim,
			Cookies:        req.Cookies,
		}
		logger.Debug("fetch attempt starting",
			logging.Int(logging.FieldAttempt, attempt+1),
			logging.String("selector", args.Selector),
		)

		res, err := c.client.Download(ctx, args, c.schedule.AttemptTimeout, func(line procexec.Line) {
			if sample, ok := progress.ParseFetchLine(line.Text); ok {
				c.reporter.Progress(req.Stage.Name, req.Stage.Overall(sample.Percent), sample)
			}
			if id, ok := progress.FormatID(line.Text); ok {
				state.LastFormatID = id
			}
		})

		switch {
		case err != nil && ctx.Err() != nil:
			return Result{}, ctx.Err()
		case errors.Is(err, services.ErrTimeout):
			lastErr = nil
			c.reporter.Log(events.LevelWarning, "Download timed out")
			logger.Warn("fetch attempt timed out",
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.String(logging.FieldEventType, "fetch_timeout"),
				logging.String(logging.FieldErrorHint, "slow network or stalled server; the attempt will be retried"),
			)
		case err != nil && !services.IsRetryable(err):
			return Result{}, failure.Wrapf(failure.KindGeneric, fmt.Sprintf("Cannot run yt-dlp: %v", err), err)
		case err != nil:
			lastErr = nil
			c.reporter.Log(events.LevelError, fmt.Sprintf("Download error: %v", err))
			logger.Error("fetch attempt failed to run", logging.Int(logging.FieldAttempt, attempt+1), logging.Error(err))
		case res.Success():
			if path, ok := c.locateOutput(ctx, req); ok {
				logger.Info("stream fetched",
					logging.String("path", path),
					logging.Int(logging.FieldAttempt, attempt+1),
					logging.String("format_id", state.LastFormatID),
				)
				return Result{Path: path, Attempts: attempt + 1, FormatID: state.LastFormatID}, nil
			}
			lastErr = nil
			c.reporter.Log(events.LevelWarning, "Download reported success but file not found, retrying...")
			logger.Warn("fetch output missing after success",
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.String(logging.FieldEventType, "fetch_output_missing"),
				logging.String(logging.FieldErrorHint, "check output directory permissions and free space"),
			)
		default:
			classified := failure.Classify(res.StderrTail)
			lastErr = nil
			if strings.TrimSpace(res.StderrTail) != "" {
				lastErr = classified
			}
			if attempt < maxAttempts-1 && attempt >= c.schedule.SilentRetries {
				c.reporter.Log(events.LevelWarning, "Download failed: "+classified.Message)
			}
			logger.Debug("fetch attempt failed",
				logging.Int(logging.FieldAttempt, attempt+1),
				logging.Int("exit_code", res.ExitCode),
				logging.String(logging.FieldErrorCode, string(classified.Kind)),
			)
		}
	}

	if lastErr != nil {
		return Result{}, lastErr
	}
	return Result{}, failure.New(failure.KindGeneric, ExhaustedMessage)
}

func (c *Controller) announceRetry(logger *slog.Logger, state AttemptState, maxAttempts int) {
	secs := int(state.Delay.Round(time.Second) / time.Second)
	if c.schedule.Silent(state.Attempt) {
		c.reporter.Log(events.LevelDebug, fmt.Sprintf("Retry %d in %ds...", state.Attempt, secs))
		logger.Debug("fetch retry scheduled", logging.Int(logging.FieldAttempt, state.Attempt+1), logging.Duration("delay", state.Delay))
		return
	}
	c.reporter.Log(events.LevelWarning, fmt.Sprintf("Retry %d/%d in %ds...", state.Attempt, maxAttempts-1, secs))
	logging.WarnWithContext(logger, "fetch retry scheduled", "fetch_retry",
		logging.Int(logging.FieldAttempt, state.Attempt+1),
		logging.Duration("delay", state.Delay),
		logging.String(logging.FieldErrorHint, "repeated failures usually mean throttling or a stale yt-dlp"),
		logging.String(logging.FieldImpact, "download delayed"),
	)
}

// backoff waits delay in one-second steps, emitting a heartbeat per step
// with the remaining seconds as eta.
func (c *Controller) backoff(ctx context.Context, stage progress.Stage, delay time.Duration) error {
	retry := stage.Retry()
	for remaining := delay; remaining > 0; remaining -= time.Second {
		c.reporter.Progress(retry.Name, stage.Offset, progress.Sample{ETASeconds: math.Ceil(remaining.Seconds())})
		if err := c.wait(ctx, min(time.Second, remaining)); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
