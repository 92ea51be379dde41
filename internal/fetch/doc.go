// Package fetch drives one yt-dlp stream download through a bounded retry
// loop.
//
// Each attempt recomputes the format selector, streams tool output through
// the progress normalizer, and confirms success by locating the output file
// on disk. Failed attempts wait out a non-decreasing backoff while emitting a
// once-per-second heartbeat on the "<stage>_retry" stage. When the budget is
// exhausted the last classified tool error is returned.
package fetch
