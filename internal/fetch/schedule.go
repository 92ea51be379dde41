package fetch

import (
	"time"

	"mediapull/internal/config"
)

// Schedule is the retry policy of a fetch loop.
type Schedule struct {
	MaxAttempts int
	// Delays is indexed by attempt-1 and clamped to its last entry.
	Delays []time.Duration
	// SilentRetries is the number of retries logged at debug level before
	// retries become user-visible warnings.
	SilentRetries  int
	AttemptTimeout time.Duration
}

// DefaultSchedule returns the built-in retry policy.
func DefaultSchedule() Schedule {
	return Schedule{
		MaxAttempts:    6,
		Delays:         []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second, 45 * time.Second, 60 * time.Second},
		SilentRetries:  2,
		AttemptTimeout: 300 * time.Second,
	}
}

// Delay returns the wait before the given 0-based attempt. Attempt 0 never
// waits.
func (s Schedule) Delay(attempt int) time.Duration {
	if attempt <= 0 || len(s.Delays) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(s.Delays) {
		idx = len(s.Delays) - 1
	}
	return s.Delays[idx]
}

// Silent reports whether the retry before attempt is logged quietly.
func (s Schedule) Silent(attempt int) bool {
	return attempt <= s.SilentRetries
}

func (s Schedule) attempts() int {
	if s.MaxAttempts < 1 {
		return 1
	}
	return s.MaxAttempts
}

// ScheduleFromConfig builds the retry policy from the download settings.
// Unset values keep the defaults.
func ScheduleFromConfig(cfg config.Download) Schedule {
	s := DefaultSchedule()
	if cfg.MaxAttempts > 0 {
		s.MaxAttempts = cfg.MaxAttempts
	}
	if len(cfg.RetryDelays) > 0 {
		s.Delays = cfg.RetryDelayDurations()
	}
	if cfg.SilentRetries >= 0 {
		s.SilentRetries = cfg.SilentRetries
	}
	if cfg.AttemptTimeout > 0 {
		s.AttemptTimeout = config.Seconds(cfg.AttemptTimeout)
	}
	return s
}
