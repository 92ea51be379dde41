package encoding

import (
	"fmt"
	"strings"

	"mediapull/internal/services"
)

// Job merges a downloaded video stream with a separate audio stream.
type Job struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
	// Width and Height pin the output size so hardware encoders do not
	// downscale. Zero leaves sizing to ffmpeg.
	Width           int
	Height          int
	DurationSeconds float64
	Policy          BitratePolicy
}

// Validate checks that the job names all three files.
func (j Job) Validate() error {
	switch {
	case strings.TrimSpace(j.VideoPath) == "":
		return services.Wrap(services.ErrValidation, "", "merge", "video path required", nil)
	case strings.TrimSpace(j.AudioPath) == "":
		return services.Wrap(services.ErrValidation, "", "merge", "audio path required", nil)
	case strings.TrimSpace(j.OutputPath) == "":
		return services.Wrap(services.ErrValidation, "", "merge", "output path required", nil)
	}
	return nil
}

// Args renders the ffmpeg command line for one candidate encoder.
func (j Job) Args(cand Candidate, audioBitrate string) []string {
	args := []string{"-y", "-i", j.VideoPath, "-i", j.AudioPath, "-c:v", cand.Encoder}
	if j.Width > 0 && j.Height > 0 {
		args = append(args, "-s", fmt.Sprintf("%dx%d", j.Width, j.Height))
	}
	args = append(args, j.Policy.Args(j.Height)...)
	if audioBitrate == "" {
		audioBitrate = "192k"
	}
	args = append(args,
		"-c:a", "aac",
		"-b:a", audioBitrate,
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-shortest",
	)
	if cand.Preset != "" {
		args = append(args, "-preset", cand.Preset)
	}
	return append(args, j.OutputPath)
}
