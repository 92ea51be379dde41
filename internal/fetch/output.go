package fetch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// MinOutputBytes is the smallest file accepted as a finished download.
const MinOutputBytes = 1024

// locateOutput confirms a successful attempt by finding its output file. The
// exact template stem is tried first; after a short wait for the filesystem
// to settle, any file carrying both the video id and the stream marker is
// accepted.
func (c *Controller) locateOutput(ctx context.Context, req Request) (string, bool) {
	dir := filepath.Dir(req.OutputTemplate)
	stem := templateStem(req.OutputTemplate)

	if path, ok := findCandidate(dir, func(name string) bool {
		return strings.Contains(name, stem)
	}, req.Exclude); ok {
		return path, true
	}

	if c.syncWait > 0 {
		if err := c.wait(ctx, c.syncWait); err != nil {
			return "", false
		}
	}

	marker := strings.TrimPrefix(strings.TrimPrefix(stem, req.VideoID), "_")
	if req.VideoID == "" || marker == "" {
		return "", false
	}
	return findCandidate(dir, func(name string) bool {
		return strings.Contains(name, req.VideoID) && strings.Contains(name, marker)
	}, req.Exclude)
}

// templateStem returns the file name of a yt-dlp output template up to its
// first dot, e.g. "abc_temp_video" for "/out/abc_temp_video.%(ext)s".
func templateStem(template string) string {
	base := filepath.Base(template)
	stem, _, _ := strings.Cut(base, ".")
	return stem
}

func findCandidate(dir string, match func(name string) bool, exclude string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !match(name) || isPartial(name) {
			continue
		}
		if exclude != "" && strings.Contains(name, exclude) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() <= MinOutputBytes {
			continue
		}
		return filepath.Join(dir, name), true
	}
	return "", false
}

func isPartial(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.Contains(name, ".part-Frag")
}
