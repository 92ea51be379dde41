// Package logging assembles structured slog loggers and formatting helpers used
// across mediapull.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can automatically
// tag log lines with media IDs, stages, and correlation IDs. Loggers write to
// stderr (and optionally a file) because stdout is reserved for the event
// stream consumed by callers. The package also provides a no-op logger for
// tests and wiring code that cannot fail.
package logging
