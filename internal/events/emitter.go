package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"sync"

	"mediapull/internal/failure"
	"mediapull/internal/logging"
	"mediapull/internal/progress"
)

// Level is the severity carried by a log event.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Reporter receives user-visible progress and log notices from long-running
// operations.
type Reporter interface {
	Progress(stage string, percent float64, sample progress.Sample)
	Log(level Level, message string)
}

type progressEvent struct {
	Event      string  `json:"event"`
	Stage      string  `json:"stage"`
	Percent    float64 `json:"percent"`
	SpeedMBps  float64 `json:"speed_mbps"`
	ETASeconds float64 `json:"eta_seconds"`
	FPS        float64 `json:"fps"`
}

type logEvent struct {
	Event   string `json:"event"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

type resultEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type errorEvent struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Emitter serializes events to a writer. It is safe for concurrent use.
type Emitter struct {
	mu       sync.Mutex
	enc      *json.Encoder
	logger   *slog.Logger
	sampler  *logging.ProgressSampler
	closed   bool
	writeErr error
}

// NewEmitter constructs an emitter writing to w and mirroring to logger.
func NewEmitter(w io.Writer, logger *slog.Logger) *Emitter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Emitter{
		enc:     enc,
		logger:  logging.NewComponentLogger(logger, "events"),
		sampler: logging.NewProgressSampler(10),
	}
}

// Progress emits a progress event with the stream's rounding applied.
func (e *Emitter) Progress(stage string, percent float64, sample progress.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	ev := progressEvent{
		Event:      "progress",
		Stage:      stage,
		Percent:    round(percent, 1),
		SpeedMBps:  round(sample.SpeedMBps, 2),
		ETASeconds: round(sample.ETASeconds, 1),
		FPS:        round(sample.FPS, 1),
	}
	e.write(ev)
	if e.sampler.ShouldLog(percent, stage) {
		e.logger.Info("progress",
			logging.String(logging.FieldStage, stage),
			logging.Float64("percent", ev.Percent),
			logging.Float64("speed_mbps", ev.SpeedMBps),
		)
	}
}

// Log emits a log event and mirrors it into the structured logger.
func (e *Emitter) Log(level Level, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.write(logEvent{Event: "log", Level: level, Message: message})
	e.logger.Log(context.Background(), slogLevel(level), message)
}

// Result emits the terminal success event. Later events are dropped.
func (e *Emitter) Result(data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.write(resultEvent{Event: "result", Data: data})
}

// Error emits the terminal failure event. Later events are dropped.
func (e *Emitter) Error(code failure.Kind, message string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.write(errorEvent{Event: "error", Code: string(code), Message: message})
	e.logger.Error("run failed",
		logging.String(logging.FieldErrorCode, string(code)),
		logging.String("message", message),
	)
}

// Fail emits the terminal error event for err using its classified kind.
func (e *Emitter) Fail(err error) {
	if err == nil {
		return
	}
	code, message := failure.From(err)
	e.Error(code, message)
}

// Closed reports whether a terminal event has been written.
func (e *Emitter) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Err returns the first write error encountered, if any.
func (e *Emitter) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeErr
}

func (e *Emitter) write(v any) {
	if err := e.enc.Encode(v); err != nil && e.writeErr == nil {
		e.writeErr = err
		logging.WarnWithContext(e.logger, "event stream write failed", "event_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "caller will not see further events"),
		)
	}
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
