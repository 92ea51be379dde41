// Package staging removes the intermediate files a run leaves in the output
// directory: per-stream temp downloads and yt-dlp partial files.
package staging
