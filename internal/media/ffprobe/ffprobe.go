package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"mediapull/internal/procexec"
	"mediapull/internal/services"
)

// DefaultTimeout bounds each probe invocation.
const DefaultTimeout = 15 * time.Second

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
	BitRate   string `json:"bit_rate"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// VideoStream returns the first video stream.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// DurationSeconds returns the container duration in seconds, falling back to
// the first video stream, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	if video, ok := r.VideoStream(); ok {
		if d := parseFloat(video.Duration); d > 0 {
			return d
		}
	}
	return 0
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// Source is the subset of media properties the encoder needs.
type Source struct {
	Width           int
	Height          int
	DurationSeconds float64
}

// HasResolution reports whether both dimensions are known.
func (s Source) HasResolution() bool {
	return s.Width > 0 && s.Height > 0
}

// Option configures a Prober.
type Option func(*Prober)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec procexec.Executor) Option {
	return func(p *Prober) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// WithTimeout overrides the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// Prober reads resolution and duration with ffprobe, falling back to the
// banner ffmpeg prints for "ffmpeg -i".
type Prober struct {
	ffprobe string
	ffmpeg  string
	exec    procexec.Executor
	timeout time.Duration
}

// NewProber constructs a prober. Either binary may be empty; at least one is
// needed for Probe to return anything.
func NewProber(ffprobeBinary, ffmpegBinary string, opts ...Option) *Prober {
	p := &Prober{
		ffprobe: strings.TrimSpace(ffprobeBinary),
		ffmpeg:  strings.TrimSpace(ffmpegBinary),
		exec:    procexec.OSExecutor{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func (p *Prober) Inspect(ctx context.Context, path string) (Result, error) {
	if p.ffprobe == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "", "ffprobe inspect", "ffprobe binary not configured", nil)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}
	res, err := p.exec.Run(ctx, procexec.Command{
		Binary:        p.ffprobe,
		Args:          []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
		Timeout:       p.timeout,
		CaptureStdout: true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	if !res.Success() {
		return Result{}, services.Wrap(services.ErrExternalTool, "", "ffprobe inspect", strings.TrimSpace(res.StderrTail), fmt.Errorf("exit status %d", res.ExitCode))
	}

	var result Result
	if err := json.Unmarshal(res.Stdout, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Probe returns the source resolution and duration. Unknown values are zero;
// an error is returned only for context cancellation.
func (p *Prober) Probe(ctx context.Context, path string) (Source, error) {
	var src Source
	if p.ffprobe != "" {
		if result, err := p.Inspect(ctx, path); err == nil {
			if video, ok := result.VideoStream(); ok {
				src.Width, src.Height = video.Width, video.Height
			}
			src.DurationSeconds = result.DurationSeconds()
		}
		if err := ctx.Err(); err != nil {
			return Source{}, err
		}
	}
	if src.HasResolution() && src.DurationSeconds > 0 {
		return src, nil
	}

	banner, err := p.banner(ctx, path)
	if err != nil {
		return src, err
	}
	if !src.HasResolution() {
		src.Width, src.Height = ParseResolution(banner)
	}
	if src.DurationSeconds <= 0 {
		src.DurationSeconds = ParseDuration(banner)
	}
	return src, nil
}

// Duration returns the media duration in seconds, or 0 when unknown.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	src, err := p.Probe(ctx, path)
	return src.DurationSeconds, err
}

// banner runs "ffmpeg -i path" and returns its stderr. ffmpeg exits non-zero
// because no output is named; only the banner matters.
func (p *Prober) banner(ctx context.Context, path string) (string, error) {
	if p.ffmpeg == "" {
		return "", nil
	}
	res, err := p.exec.Run(ctx, procexec.Command{
		Binary:  p.ffmpeg,
		Args:    []string{"-hide_banner", "-i", path},
		Timeout: p.timeout,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if err != nil {
		return "", nil
	}
	return res.StderrTail, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
