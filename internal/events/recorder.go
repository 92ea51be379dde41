package events

import (
	"sync"

	"mediapull/internal/progress"
)

// ProgressRecord is one observed progress notice.
type ProgressRecord struct {
	Stage   string
	Percent float64
	Sample  progress.Sample
}

// LogRecord is one observed log notice.
type LogRecord struct {
	Level   Level
	Message string
}

// Recorder is an in-memory Reporter, used where the caller inspects progress
// after the fact.
type Recorder struct {
	mu       sync.Mutex
	progress []ProgressRecord
	logs     []LogRecord
}

func (r *Recorder) Progress(stage string, percent float64, sample progress.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, ProgressRecord{Stage: stage, Percent: percent, Sample: sample})
}

func (r *Recorder) Log(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, LogRecord{Level: level, Message: message})
}

// ProgressRecords returns a copy of the recorded progress notices.
func (r *Recorder) ProgressRecords() []ProgressRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ProgressRecord(nil), r.progress...)
}

// LogRecords returns a copy of the recorded log notices.
func (r *Recorder) LogRecords() []LogRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LogRecord(nil), r.logs...)
}

// Stages returns the distinct stage names in first-seen order.
func (r *Recorder) Stages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	seen := map[string]bool{}
	for _, p := range r.progress {
		if !seen[p.Stage] {
			seen[p.Stage] = true
			out = append(out, p.Stage)
		}
	}
	return out
}

// Discard is a Reporter that drops everything.
type Discard struct{}

func (Discard) Progress(string, float64, progress.Sample) {}

func (Discard) Log(Level, string) {}
