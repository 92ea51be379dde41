// Package sponsorblock removes community-flagged segments (sponsor reads,
// intros, reminders to subscribe) from a finished video.
//
// Client asks the SponsorBlock API for every video sharing the first four
// hex digits of sha256(videoID) and keeps only the exact match. Filters turns
// the merged segments into select/aselect expressions that keep the rest, and
// Remover re-encodes through the shared encoder chain before replacing the
// original file. Every failure short of cancellation keeps the original.
package sponsorblock
