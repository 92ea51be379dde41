package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"mediapull/internal/config"
	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/procexec"
	"mediapull/internal/progress"
	"mediapull/internal/services"
)

const (
	// DefaultTimeout bounds a single encoder candidate.
	DefaultTimeout = time.Hour
	// StderrExcerptChars bounds the diagnostic text in conversion errors.
	StderrExcerptChars = 200
)

// Candidate is one encoder attempt in the fallback chain.
type Candidate struct {
	Encoder string
	// Preset is passed as -preset when set (software encoders only).
	Preset string
}

// BuildFunc renders the full ffmpeg argument list for a candidate.
type BuildFunc func(Candidate) []string

// Option configures a Chain.
type Option func(*Chain)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec procexec.Executor) Option {
	return func(c *Chain) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithCandidates replaces the encoder order.
func WithCandidates(candidates ...Candidate) Option {
	return func(c *Chain) {
		filtered := make([]Candidate, 0, len(candidates))
		for _, cand := range candidates {
			if strings.TrimSpace(cand.Encoder) != "" {
				filtered = append(filtered, cand)
			}
		}
		if len(filtered) > 0 {
			c.candidates = filtered
		}
	}
}

// WithTimeout overrides the per-candidate ceiling.
func WithTimeout(d time.Duration) Option {
	return func(c *Chain) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAudioBitrate overrides the AAC bitrate used by merge jobs.
func WithAudioBitrate(rate string) Option {
	return func(c *Chain) {
		if rate = strings.TrimSpace(rate); rate != "" {
			c.audioBitrate = rate
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logging.NewComponentLogger(logger, "encoding")
	}
}

// Chain runs ffmpeg with each candidate encoder in order until one succeeds.
type Chain struct {
	binary       string
	candidates   []Candidate
	timeout      time.Duration
	audioBitrate string
	exec         procexec.Executor
	logger       *slog.Logger
}

// DefaultCandidates is hardware first, then software with a preset.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{Encoder: "h264_videotoolbox"},
		{Encoder: "libx264", Preset: "medium"},
	}
}

// NewChain constructs a fallback chain around an ffmpeg binary.
func NewChain(binary string, opts ...Option) *Chain {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	chain := &Chain{
		binary:       binary,
		candidates:   DefaultCandidates(),
		timeout:      DefaultTimeout,
		audioBitrate: "192k",
		exec:         procexec.OSExecutor{},
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// ChainOptions translates the encoding config section into chain options.
func ChainOptions(cfg config.Encoding) []Option {
	return []Option{
		WithCandidates(
			Candidate{Encoder: cfg.HardwareEncoder},
			Candidate{Encoder: cfg.SoftwareEncoder, Preset: cfg.Preset},
		),
		WithTimeout(config.Seconds(cfg.Timeout)),
		WithAudioBitrate(cfg.AudioBitrate),
	}
}

// Binary returns the ffmpeg executable.
func (c *Chain) Binary() string {
	return c.binary
}

// AudioBitrate returns the AAC bitrate used for re-encoded audio.
func (c *Chain) AudioBitrate() string {
	return c.audioBitrate
}

// Candidates returns a copy of the encoder order.
func (c *Chain) Candidates() []Candidate {
	return append([]Candidate(nil), c.candidates...)
}

// Run tries each candidate in order. Progress is parsed from ffmpeg status
// lines against durationSeconds and reported on stage. A timeout stops the
// chain immediately; exhausting every candidate yields a conversion error.
func (c *Chain) Run(ctx context.Context, rep events.Reporter, stage progress.Stage, durationSeconds float64, build BuildFunc) (Candidate, error) {
	if rep == nil {
		rep = events.Discard{}
	}
	logger := logging.WithContext(ctx, c.logger)
	sampler := logging.NewProgressSampler(25)

	var lastErr error
	for i, cand := range c.candidates {
		last := i == len(c.candidates)-1
		rep.Log(events.LevelInfo, fmt.Sprintf("Encoding with %s...", cand.Encoder))
		logger.Info("encoder attempt started",
			logging.String("encoder", cand.Encoder),
			logging.Int("candidate", i+1),
			logging.Int("candidates", len(c.candidates)),
		)

		sampler.Reset()
		cmd := procexec.Command{
			Binary:  c.binary,
			Args:    build(cand),
			Timeout: c.timeout,
			OnLine: func(line procexec.Line) {
				sample, ok := progress.ParseEncodeLine(line.Text, durationSeconds)
				if !ok {
					return
				}
				overall := stage.Overall(sample.Percent)
				rep.Progress(stage.Name, overall, progress.Sample{FPS: sample.FPS})
				if sampler.ShouldLog(sample.Percent, stage.Name) {
					logger.Debug("encode progress",
						logging.String("encoder", cand.Encoder),
						logging.Float64("percent", sample.Percent),
						logging.Float64("fps", sample.FPS),
					)
				}
			},
		}

		res, err := c.exec.Run(ctx, cmd)
		switch {
		case err != nil && ctx.Err() != nil:
			return Candidate{}, ctx.Err()
		case errors.Is(err, services.ErrTimeout):
			msg := fmt.Sprintf("Encoding timed out (>%s)", humanDuration(c.timeout))
			logging.WarnWithContext(logger, "encoder timed out", "encode_timeout",
				logging.String("encoder", cand.Encoder),
				logging.String(logging.FieldErrorHint, "raise encoding.timeout for very long sources"),
				logging.String(logging.FieldImpact, "encode aborted without fallback"),
			)
			return Candidate{}, failure.Wrapf(failure.KindTimeout, msg, err)
		case err != nil:
			lastErr = failure.Wrapf(failure.KindConversion, fmt.Sprintf("FFmpeg encoding failed: %v", err), err)
		case res.Success():
			rep.Log(events.LevelInfo, fmt.Sprintf("Encoding complete with %s", cand.Encoder))
			logger.Info("encoder attempt succeeded",
				logging.String("encoder", cand.Encoder),
				logging.Duration("elapsed", res.Elapsed),
			)
			return cand, nil
		default:
			lastErr = failure.New(failure.KindConversion, "FFmpeg encoding failed: "+stderrExcerpt(res.StderrTail))
		}

		if !last {
			next := c.candidates[i+1].Encoder
			rep.Log(events.LevelWarning, fmt.Sprintf("%s failed, falling back to %s...", cand.Encoder, next))
			logging.WarnWithContext(logger, "encoder failed; falling back", "encoder_fallback",
				logging.String("encoder", cand.Encoder),
				logging.String("next_encoder", next),
				logging.Int("exit_code", res.ExitCode),
				logging.Error(lastErr),
				logging.String(logging.FieldErrorHint, "hardware encoder unavailable on this host"),
				logging.String(logging.FieldImpact, "encoding continues on the next candidate"),
			)
		}
	}
	if lastErr == nil {
		lastErr = failure.New(failure.KindConversion, "All encoders failed")
	}
	return Candidate{}, lastErr
}

// Merge combines separate video and audio streams into one H.264/AAC MP4.
func (c *Chain) Merge(ctx context.Context, rep events.Reporter, stage progress.Stage, job Job) (Candidate, error) {
	if err := job.Validate(); err != nil {
		return Candidate{}, err
	}
	if rep != nil && job.Policy.Mode != PolicyAuto {
		rep.Log(events.LevelInfo, "Bitrate mode: "+job.Policy.String())
	}
	return c.Run(ctx, rep, stage, job.DurationSeconds, func(cand Candidate) []string {
		return job.Args(cand, c.audioBitrate)
	})
}

func stderrExcerpt(tail string) string {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return "unknown error"
	}
	if utf8.RuneCountInString(tail) <= StderrExcerptChars {
		return tail
	}
	runes := []rune(tail)
	return string(runes[len(runes)-StderrExcerptChars:])
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}
