// Package notifications pushes download milestones to ntfy.
//
// NewService returns a noop implementation when no topic is configured, so
// callers publish unconditionally. Delivery failures are returned to the
// caller, which logs them; a notification never changes a run's outcome.
package notifications
