// Package pipeline runs one download end to end: fetch the video stream,
// fetch the audio stream, merge them through the encoder chain, then either
// split the result into chapters or cut sponsor segments from it.
//
// Audio-only runs fetch a single stream and rename it to the video title.
// Every run holds a per-video lock in the output directory and removes its
// temp artifacts whether it succeeds or fails. Terminal errors are returned,
// never emitted; the command layer reports them exactly once.
package pipeline
