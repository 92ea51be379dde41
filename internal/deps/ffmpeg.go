package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveFFmpeg reports the ffmpeg binary the merge stage will execute.
//
// An explicit path in the configuration wins. Otherwise an ffmpeg that sits
// next to the yt-dlp executable is preferred, since bundled installs ship
// both together, and the configured name is resolved from PATH last.
func ResolveFFmpeg(ytdlpCommand, configured string) Status {
	result := Status{
		Name:        "ffmpeg",
		Description: "Merges and encodes streams, splits chapters",
	}

	configured = strings.TrimSpace(configured)
	if configured == "" {
		configured = "ffmpeg"
	}
	if strings.ContainsRune(configured, filepath.Separator) {
		result.Command = configured
		if info, err := os.Stat(configured); err == nil && isExecutable(info) {
			result.Available = true
			return result
		}
		result.Detail = fmt.Sprintf("binary %q not found", configured)
		return result
	}

	ytdlpBinary := strings.TrimSpace(ytdlpCommand)
	if ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			if candidate, ok := siblingCandidate(resolved, configured); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	if ffmpegPath, err := exec.LookPath(configured); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = configured
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", configured)
	return result
}

// FFmpegPath returns the resolved ffmpeg command, or the configured name
// when resolution fails so the failure surfaces at execution time.
func FFmpegPath(ytdlpCommand, configured string) string {
	return ResolveFFmpeg(ytdlpCommand, configured).Command
}

func siblingCandidate(ytdlpPath, name string) (string, bool) {
	if ytdlpPath == "" {
		return "", false
	}
	dir := filepath.Dir(ytdlpPath)
	if runtime.GOOS == "windows" && !strings.HasSuffix(name, ".exe") {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
