package sponsorblock

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mediapull/internal/encoding"
	"mediapull/internal/events"
	"mediapull/internal/fileutil"
	"mediapull/internal/logging"
	"mediapull/internal/progress"
)

// OutputSuffix marks the temporary re-encoded file.
const OutputSuffix = "_nosponsor"

// SegmentSource looks up skip segments for a video id.
type SegmentSource interface {
	Segments(ctx context.Context, videoID string) ([]Segment, error)
}

// DurationProber reports a media duration in seconds, 0 when unknown.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Remover cuts sponsor segments out of a finished file in place.
type Remover struct {
	source SegmentSource
	prober DurationProber
	chain  *encoding.Chain
	logger *slog.Logger
}

// NewRemover wires a segment source, a duration probe and the encoder chain
// used for the re-encode.
func NewRemover(source SegmentSource, prober DurationProber, chain *encoding.Chain, logger *slog.Logger) *Remover {
	return &Remover{
		source: source,
		prober: prober,
		chain:  chain,
		logger: logging.NewComponentLogger(logger, "sponsorblock"),
	}
}

// TempPath returns the path the re-encode is written to before it replaces
// the original.
func TempPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + OutputSuffix + ext
}

// Remove strips sponsor segments from videoPath and returns the path of the
// finished file, which is always videoPath. Any lookup, probe or encode
// failure leaves the original untouched; only cancellation is an error.
func (r *Remover) Remove(ctx context.Context, rep events.Reporter, stage progress.Stage, videoPath, videoID string) (string, error) {
	if rep == nil {
		rep = events.Discard{}
	}
	logger := logging.WithContext(ctx, r.logger)
	rep.Progress(stage.Name, stage.Offset, progress.Sample{})

	segments, err := r.source.Segments(ctx, videoID)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return videoPath, ctxErr
	}
	if err != nil {
		rep.Log(events.LevelDebug, "SponsorBlock API unavailable")
		logger.Debug("segment lookup failed", logging.Error(err))
		segments = nil
	}
	if len(segments) == 0 {
		rep.Log(events.LevelInfo, "No sponsor segments found")
		rep.Progress(stage.Name, stage.End(), progress.Sample{})
		return videoPath, nil
	}
	rep.Log(events.LevelInfo, fmt.Sprintf("Found %d sponsor segments (%.0fs total)", len(segments), TotalDuration(segments)))
	logger.Debug("sponsor segments found", logging.Any("segments", segments))

	duration, err := r.prober.Duration(ctx, videoPath)
	if err != nil {
		return videoPath, err
	}
	if duration <= 0 {
		rep.Log(events.LevelWarning, "Could not determine duration, skipping SponsorBlock")
		logging.WarnWithContext(logger, "sponsor removal skipped", "sponsorblock_no_duration",
			logging.String("path", videoPath),
			logging.String(logging.FieldErrorHint, "ffprobe and ffmpeg could not read the duration"),
			logging.String(logging.FieldImpact, "sponsor segments kept"),
		)
		return videoPath, nil
	}

	videoFilter, audioFilter, ok := Filters(segments, duration)
	if !ok {
		return videoPath, nil
	}

	tempPath := TempPath(videoPath)
	_, err = r.chain.Run(ctx, rep, stage, duration, func(cand encoding.Candidate) []string {
		args := []string{
			"-y",
			"-i", videoPath,
			"-vf", videoFilter,
			"-af", audioFilter,
			"-c:v", cand.Encoder,
			"-c:a", "aac",
			"-b:a", r.chain.AudioBitrate(),
			"-movflags", "+faststart",
		}
		if cand.Preset != "" {
			args = append(args, "-preset", cand.Preset)
		}
		return append(args, tempPath)
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		fileutil.RemoveQuietly(tempPath)
		return videoPath, ctxErr
	}
	if err != nil {
		fileutil.RemoveQuietly(tempPath)
		rep.Log(events.LevelWarning, "SponsorBlock processing failed, keeping original")
		logging.WarnWithContext(logger, "sponsor removal failed", "sponsorblock_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "original file kept"),
		)
		return videoPath, nil
	}

	if err := fileutil.MoveFile(tempPath, videoPath); err != nil {
		fileutil.RemoveQuietly(tempPath)
		rep.Log(events.LevelWarning, fmt.Sprintf("SponsorBlock error: %v", err))
		logging.WarnWithContext(logger, "replace original failed", "sponsorblock_replace_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "original file kept"),
		)
		return videoPath, nil
	}
	rep.Log(events.LevelInfo, "Sponsor segments removed successfully")
	logger.Info("sponsor segments removed",
		logging.Int("segments", len(segments)),
		logging.Float64("removed_seconds", TotalDuration(segments)),
	)
	return videoPath, nil
}
