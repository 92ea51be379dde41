package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"mediapull/internal/config"
)

// Requirement defines an external dependency mediapull relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Available commands are reported with their resolved path.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Check reports every tool the configuration names. ffmpeg is resolved the
// way the pipeline resolves it, preferring a copy beside yt-dlp.
func Check(cfg *config.Config) []Status {
	ytdlp := CheckBinaries([]Requirement{{
		Name:        "yt-dlp",
		Command:     cfg.Tools.YtDlp,
		Description: "Fetches video and audio streams",
	}})[0]
	ffmpeg := ResolveFFmpeg(cfg.Tools.YtDlp, cfg.Tools.FFmpeg)
	optional := CheckBinaries([]Requirement{
		{
			Name:        "ffprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Reads source resolution and duration (falls back to ffmpeg)",
			Optional:    true,
		},
		{
			Name:        "deno",
			Command:     cfg.Tools.Deno,
			Description: "JavaScript runtime yt-dlp uses for YouTube challenges",
			Optional:    true,
		},
	})
	return append([]Status{ytdlp, ffmpeg}, optional...)
}

// Missing returns the required dependencies that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
