package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"mediapull/internal/logging"
)

// TempMarker tags intermediate stream files in the output directory.
const TempMarker = "_temp_"

// PartialSuffix is the extension yt-dlp gives unfinished downloads.
const PartialSuffix = ".part"

// CleanResult contains the outcome of a cleanup operation.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// FileInfo describes a leftover temp artifact.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size_bytes"`
}

// IsTempArtifact reports whether name is an intermediate file of a run.
func IsTempArtifact(name string) bool {
	return strings.Contains(name, TempMarker) || strings.HasSuffix(name, PartialSuffix)
}

// CleanRun removes the temp artifacts of one video: files in dir whose name
// contains videoID and is a temp artifact. Finished outputs are never touched.
func CleanRun(dir, videoID string, logger *slog.Logger) CleanResult {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return CleanResult{}
	}
	return clean(dir, logger, "temp_cleanup", func(name string, _ os.FileInfo) bool {
		return strings.Contains(name, videoID) && IsTempArtifact(name)
	})
}

// CleanStale removes temp artifacts of any video older than maxAge. These are
// left behind by runs that were killed before their own cleanup.
func CleanStale(ctx context.Context, dir string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	cutoff := time.Now().Add(-maxAge)
	return clean(dir, logger, "stale_cleanup", func(name string, info os.FileInfo) bool {
		if ctx.Err() != nil {
			return false
		}
		return IsTempArtifact(name) && info.ModTime().Before(cutoff)
	})
}

func clean(dir string, logger *slog.Logger, eventType string, match func(string, os.FileInfo) bool) CleanResult {
	result := CleanResult{}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: dir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !match(entry.Name(), info) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			logger.Debug("failed to remove temp artifact",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldEventType, eventType+"_failed"),
			)
			continue
		}
		result.Removed = append(result.Removed, path)
		logger.Debug("removed temp artifact",
			logging.String("path", path),
			logging.String(logging.FieldEventType, eventType),
		)
	}

	return result
}

// ListTemp returns the temp artifacts in dir, oldest first.
func ListTemp(dir string) ([]FileInfo, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !IsTempArtifact(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}
