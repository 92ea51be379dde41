package pipeline

import "mediapull/internal/progress"

// Result describes the files a finished run produced.
type Result struct {
	Mode        progress.Mode
	VideoID     string
	Title       string
	OutputPath  string
	OutputFiles []string
	Size        int64
	Encoder     string
}

// StandardPayload is the result event body of a merged download.
type StandardPayload struct {
	OutputPath string `json:"output_path"`
	Title      string `json:"title"`
	Size       int64  `json:"size"`
}

// ChapterPayload is the result event body of a chapter split.
type ChapterPayload struct {
	OutputFiles  []string `json:"output_files"`
	Title        string   `json:"title"`
	ChapterCount int      `json:"chapter_count"`
}

// AudioPayload is the result event body of an audio-only download.
type AudioPayload struct {
	OutputPath string `json:"output_path"`
	Title      string `json:"title"`
}

// Payload returns the result event body for the run mode.
func (r Result) Payload() any {
	switch r.Mode {
	case progress.ModeChapters:
		files := r.OutputFiles
		if files == nil {
			files = []string{}
		}
		return ChapterPayload{OutputFiles: files, Title: r.Title, ChapterCount: len(files)}
	case progress.ModeAudioOnly:
		return AudioPayload{OutputPath: r.OutputPath, Title: r.Title}
	default:
		return StandardPayload{OutputPath: r.OutputPath, Title: r.Title, Size: r.Size}
	}
}
