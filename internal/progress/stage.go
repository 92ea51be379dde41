package progress

// Stage names reported in progress events.
const (
	StageDownloadVideo = "download_video"
	StageDownloadAudio = "download_audio"
	StageConvert       = "convert"
	StageSplitChapters = "split_chapters"
	StageSponsorBlock  = "sponsorblock"
	StageRename        = "rename"
	StageAnalyze       = "analyze"
	StageComplete      = "complete"
)

// RetrySuffix is appended to a stage name for backoff heartbeats.
const RetrySuffix = "_retry"

// Stage reserves a slice of the overall [0,100] progress range.
type Stage struct {
	Name   string
	Offset float64
	Weight float64
}

// Overall maps a sub-stage percent into the pipeline range. The result never
// leaves [Offset, Offset+Weight].
func (s Stage) Overall(sub float64) float64 {
	return s.Offset + clampPercent(sub)/100*s.Weight
}

// End is the upper bound of the stage slice.
func (s Stage) End() float64 {
	return s.Offset + s.Weight
}

// Retry returns the heartbeat stage used while waiting between attempts.
func (s Stage) Retry() Stage {
	return Stage{Name: s.Name + RetrySuffix, Offset: s.Offset, Weight: 0}
}

// IsZero reports whether the stage is unused in a layout.
func (s Stage) IsZero() bool {
	return s.Name == "" && s.Weight == 0
}

// Mode selects a stage layout.
type Mode int

const (
	ModeStandard Mode = iota
	ModeSponsorBlock
	ModeChapters
	ModeAudioOnly
)

func (m Mode) String() string {
	switch m {
	case ModeSponsorBlock:
		return "sponsorblock"
	case ModeChapters:
		return "chapters"
	case ModeAudioOnly:
		return "audio-only"
	default:
		return "standard"
	}
}

// Layout assigns stage slices for one pipeline run. Unused stages are zero.
type Layout struct {
	Video Stage
	Audio Stage
	Merge Stage
	Post  Stage
}

// LayoutFor returns the stage slices for a run mode.
func LayoutFor(mode Mode) Layout {
	switch mode {
	case ModeChapters:
		return Layout{
			Video: Stage{Name: StageDownloadVideo, Offset: 0, Weight: 35},
			Audio: Stage{Name: StageDownloadAudio, Offset: 35, Weight: 20},
			Merge: Stage{Name: StageConvert, Offset: 55, Weight: 25},
			Post:  Stage{Name: StageSplitChapters, Offset: 80, Weight: 20},
		}
	case ModeAudioOnly:
		return Layout{
			Audio: Stage{Name: StageDownloadAudio, Offset: 0, Weight: 80},
			Post:  Stage{Name: StageRename, Offset: 80, Weight: 20},
		}
	case ModeSponsorBlock:
		layout := LayoutFor(ModeStandard)
		layout.Post = Stage{Name: StageSponsorBlock, Offset: 85, Weight: 15}
		return layout
	default:
		return Layout{
			Video: Stage{Name: StageDownloadVideo, Offset: 0, Weight: 40},
			Audio: Stage{Name: StageDownloadAudio, Offset: 40, Weight: 20},
			Merge: Stage{Name: StageConvert, Offset: 60, Weight: 25},
		}
	}
}

// Stages lists the used stages in execution order.
func (l Layout) Stages() []Stage {
	out := make([]Stage, 0, 4)
	for _, s := range []Stage{l.Video, l.Audio, l.Merge, l.Post} {
		if !s.IsZero() {
			out = append(out, s)
		}
	}
	return out
}
