// Package services defines shared utilities consumed by the pipeline stages
// and the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp media identifiers, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures from yt-dlp,
//     ffmpeg, and the SponsorBlock API carry a consistent category.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
