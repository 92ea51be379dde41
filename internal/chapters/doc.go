// Package chapters splits a merged video into one file per chapter.
//
// Extraction uses ffmpeg stream copy, so it is fast and lossless but cuts on
// keyframes. Files land in "<output>/<title>/NN - <chapter>.mp4".
package chapters
