// Package events writes the line-delimited JSON event stream that callers of
// mediapull consume on stdout.
//
// Four event kinds exist: progress, log, result, and error. Exactly one of
// result or error terminates a run; the Emitter drops anything written after
// it. Log events are mirrored into the structured logger and progress is
// sampled into it so the log file tells the same story as the stream.
package events
