// Package ffprobe reads source properties for the encode stage.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Source: resolution and duration used to pin output size and scale progress
//   - Prober: runs ffprobe, then falls back to the "ffmpeg -i" banner
//
// The banner parsers (ParseResolution, ParseDuration) are exported so other
// ffmpeg-driven stages can reuse them on captured stderr.
package ffprobe
