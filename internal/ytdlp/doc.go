// Package ytdlp builds yt-dlp invocations and interprets their output.
//
// Selector policy, argv construction, and metadata parsing live here; the
// retry loop that drives Download lives in internal/fetch. All process
// execution goes through a procexec.Executor so tests can substitute canned
// output.
package ytdlp
