// Package procexec runs external tools (yt-dlp, ffmpeg, ffprobe) and streams
// their output line by line.
//
// Lines are split on LF or CR so carriage-return progress redraws arrive as
// individual lines. Each command runs in its own process group which is
// killed as a whole on timeout or cancellation. Callers receive a Result with
// the exit code and a bounded stderr tail for error classification; a
// non-zero exit is reported through Result, not as an error.
package procexec
