// Package progress normalizes the progress output of yt-dlp and ffmpeg into a
// common Sample and composes per-stage percentages into the overall pipeline
// range.
package progress
