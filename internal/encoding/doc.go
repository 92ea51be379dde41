// Package encoding turns downloaded streams into the final H.264/AAC MP4.
//
// A Chain holds an ordered list of encoder candidates, hardware first. Each
// candidate runs ffmpeg once with a per-candidate ceiling; a zero exit ends
// the chain, a non-zero exit moves on to the next candidate, and a timeout
// aborts without fallback. BitratePolicy renders the explicit rate flags
// (-b:v, -maxrate, -bufsize) from the source height.
//
// Job describes the standard merge of a video-only and an audio-only stream.
// Other callers, such as SponsorBlock segment removal, reuse Chain.Run with
// their own argument builder so they inherit the same fallback behavior.
package encoding
