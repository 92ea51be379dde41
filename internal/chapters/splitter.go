package chapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/procexec"
	"mediapull/internal/progress"
	"mediapull/internal/services"
	"mediapull/internal/textutil"
)

// DefaultTimeout bounds a single chapter extraction.
const DefaultTimeout = 120 * time.Second

// Chapter is a user-selected time range to extract.
type Chapter struct {
	Title     string  `json:"title"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

// Parse decodes a JSON chapter list. Invalid input is a usage error.
func Parse(raw string) ([]Chapter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var list []Chapter
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, failure.Wrapf(failure.KindUsage, "Invalid chapters JSON", err)
	}
	return list, nil
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec procexec.Executor) Option {
	return func(s *Splitter) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// WithTimeout overrides the per-chapter timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Splitter) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		s.logger = logging.NewComponentLogger(logger, "chapters")
	}
}

// Splitter cuts a finished video into per-chapter files with stream copy.
type Splitter struct {
	binary  string
	exec    procexec.Executor
	timeout time.Duration
	logger  *slog.Logger
}

// NewSplitter constructs a splitter around an ffmpeg binary.
func NewSplitter(binary string, opts ...Option) *Splitter {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	s := &Splitter{
		binary:  binary,
		exec:    procexec.OSExecutor{},
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the folder chapter files are written to.
func Dir(outputDir, title string) string {
	return filepath.Join(outputDir, textutil.SanitizeFileName(title))
}

// FileName returns "NN - <chapter>.mp4" for the 0-based index.
func FileName(index int, ch Chapter) string {
	name := ch.Title
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Chapter %d", index+1)
	}
	return fmt.Sprintf("%02d - %s.mp4", index+1, textutil.SanitizeFileName(name))
}

// Split writes each chapter to Dir(outputDir, title) and returns the files
// that were produced. A chapter that fails or times out is logged and
// skipped; only cancellation and an unusable output directory are errors.
func (s *Splitter) Split(ctx context.Context, rep events.Reporter, stage progress.Stage, videoPath, outputDir, title string, list []Chapter) ([]string, error) {
	if rep == nil {
		rep = events.Discard{}
	}
	logger := logging.WithContext(ctx, s.logger)

	dir := Dir(outputDir, title)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, progress.StageSplitChapters, "create chapter dir", dir, err)
	}

	total := len(list)
	outputs := make([]string, 0, total)
	for i, ch := range list {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		name := ch.Title
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Chapter %d", i+1)
		}
		out := filepath.Join(dir, FileName(i, ch))
		rep.Progress(stage.Name, stage.Overall(float64(i)/float64(total)*100), progress.Sample{})
		rep.Log(events.LevelInfo, fmt.Sprintf("Splitting chapter %d/%d: %s", i+1, total, name))

		res, err := s.exec.Run(ctx, procexec.Command{
			Binary:  s.binary,
			Args:    Args(videoPath, ch, out),
			Timeout: s.timeout,
		})
		switch {
		case err != nil && ctx.Err() != nil:
			return outputs, ctx.Err()
		case errors.Is(err, services.ErrTimeout):
			rep.Log(events.LevelWarning, "Chapter split timed out: "+name)
			logging.WarnWithContext(logger, "chapter split timed out", "chapter_timeout",
				logging.String("chapter", name),
				logging.Duration("timeout", s.timeout),
				logging.String(logging.FieldImpact, "chapter skipped"),
			)
		case err != nil || !res.Success():
			rep.Log(events.LevelWarning, "Failed to split chapter: "+name)
			logging.WarnWithContext(logger, "chapter split failed", "chapter_failed",
				logging.String("chapter", name),
				logging.Int("exit_code", res.ExitCode),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, failure.Truncate(strings.TrimSpace(res.StderrTail), 200)),
				logging.String(logging.FieldImpact, "chapter skipped"),
			)
		default:
			outputs = append(outputs, out)
		}
	}

	rep.Progress(stage.Name, stage.End(), progress.Sample{})
	rep.Log(events.LevelInfo, fmt.Sprintf("Split %d/%d chapters", len(outputs), total))
	logger.Info("chapter split finished",
		logging.Int("written", len(outputs)),
		logging.Int("requested", total),
		logging.String("dir", dir),
	)
	return outputs, nil
}

// Args renders the stream-copy extraction command for one chapter.
func Args(videoPath string, ch Chapter, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-ss", formatSeconds(ch.StartTime),
		"-to", formatSeconds(ch.EndTime),
		"-c", "copy",
		"-movflags", "+faststart",
		outputPath,
	}
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
