package encoding_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mediapull/internal/config"
	"mediapull/internal/encoding"
	"mediapull/internal/events"
	"mediapull/internal/failure"
	"mediapull/internal/procexec"
	"mediapull/internal/progress"
	"mediapull/internal/services"
)

type stubExecutor struct {
	calls   []procexec.Command
	respond func(call int, cmd procexec.Command) (procexec.Result, error)
}

func (s *stubExecutor) Run(_ context.Context, cmd procexec.Command) (procexec.Result, error) {
	s.calls = append(s.calls, cmd)
	return s.respond(len(s.calls)-1, cmd)
}

func encoderOf(cmd procexec.Command) string {
	for i, arg := range cmd.Args {
		if arg == "-c:v" && i+1 < len(cmd.Args) {
			return cmd.Args[i+1]
		}
	}
	return ""
}

var convertStage = progress.Stage{Name: progress.StageConvert, Offset: 60, Weight: 25}

func testJob() encoding.Job {
	return encoding.Job{
		VideoPath:       "/tmp/abc_temp_video.mp4",
		AudioPath:       "/tmp/abc_temp_audio.m4a",
		OutputPath:      "/tmp/Clip.mp4",
		Width:           1920,
		Height:          1080,
		DurationSeconds: 10,
		Policy:          encoding.Custom(15),
	}
}

func TestJobArgs(t *testing.T) {
	job := testJob()
	got := strings.Join(job.Args(encoding.Candidate{Encoder: "libx264", Preset: "medium"}, "192k"), " ")
	want := "-y -i /tmp/abc_temp_video.mp4 -i /tmp/abc_temp_audio.m4a -c:v libx264 -s 1920x1080 " +
		"-b:v 15M -maxrate 17M -bufsize 30M -c:a aac -b:a 192k -pix_fmt yuv420p -movflags +faststart " +
		"-shortest -preset medium /tmp/Clip.mp4"
	if got != want {
		t.Fatalf("unexpected args:\n got %s\nwant %s", got, want)
	}

	job.Width, job.Height = 0, 0
	job.Policy = encoding.Auto()
	got = strings.Join(job.Args(encoding.Candidate{Encoder: "h264_videotoolbox"}, ""), " ")
	if strings.Contains(got, "-s ") || strings.Contains(got, "-b:v") || strings.Contains(got, "-preset") {
		t.Fatalf("unexpected size, rate or preset flags: %s", got)
	}
}

func TestMergeFallsBackToSoftware(t *testing.T) {
	exec := &stubExecutor{respond: func(call int, cmd procexec.Command) (procexec.Result, error) {
		if call == 0 {
			return procexec.Result{ExitCode: 1, StderrTail: "Error while opening encoder"}, nil
		}
		cmd.OnLine(procexec.Line{Stream: procexec.StreamStderr, Text: "frame=  120 fps= 30 q=28.0 size=512kB time=00:00:05.00 bitrate=838.9kbits/s"})
		return procexec.Result{}, nil
	}}
	var rec events.Recorder
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))

	cand, err := chain.Merge(context.Background(), &rec, convertStage, testJob())
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	if cand.Encoder != "libx264" {
		t.Fatalf("expected software encoder, got %q", cand.Encoder)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 ffmpeg runs, got %d", len(exec.calls))
	}
	if encoderOf(exec.calls[0]) != "h264_videotoolbox" || encoderOf(exec.calls[1]) != "libx264" {
		t.Fatalf("unexpected encoder order: %q, %q", encoderOf(exec.calls[0]), encoderOf(exec.calls[1]))
	}
	if exec.calls[0].Timeout != time.Hour {
		t.Fatalf("expected 1h ceiling, got %s", exec.calls[0].Timeout)
	}

	records := rec.ProgressRecords()
	if len(records) != 1 || records[0].Stage != progress.StageConvert || records[0].Percent != 72.5 || records[0].Sample.FPS != 30 {
		t.Fatalf("unexpected progress records %+v", records)
	}
	var sawFallback bool
	for _, entry := range rec.LogRecords() {
		if entry.Level == events.LevelWarning && strings.Contains(entry.Message, "falling back to libx264") {
			sawFallback = true
		}
	}
	if !sawFallback {
		t.Fatalf("expected fallback warning, got %+v", rec.LogRecords())
	}
}

func TestRunTimeoutStopsChain(t *testing.T) {
	exec := &stubExecutor{respond: func(int, procexec.Command) (procexec.Result, error) {
		return procexec.Result{}, services.Wrap(services.ErrTimeout, "", "ffmpeg", "timed out after 1h0m0s", nil)
	}}
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))
	_, err := chain.Merge(context.Background(), events.Discard{}, convertStage, testJob())

	var classified *failure.Error
	if !errors.As(err, &classified) || classified.Kind != failure.KindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("timeout must not fall back, got %d runs", len(exec.calls))
	}
}

func TestRunExhaustionReportsStderrTail(t *testing.T) {
	tail := strings.Repeat("x", 300) + "END"
	exec := &stubExecutor{respond: func(int, procexec.Command) (procexec.Result, error) {
		return procexec.Result{ExitCode: 1, StderrTail: tail}, nil
	}}
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))
	_, err := chain.Merge(context.Background(), nil, convertStage, testJob())

	var classified *failure.Error
	if !errors.As(err, &classified) || classified.Kind != failure.KindConversion {
		t.Fatalf("expected conversion error, got %v", err)
	}
	excerpt := strings.TrimPrefix(classified.Message, "FFmpeg encoding failed: ")
	if len(excerpt) != encoding.StderrExcerptChars || !strings.HasSuffix(excerpt, "END") {
		t.Fatalf("unexpected excerpt %q", excerpt)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected both candidates to run, got %d", len(exec.calls))
	}
}

func TestRunMissingBinaryIsConversionError(t *testing.T) {
	exec := &stubExecutor{respond: func(int, procexec.Command) (procexec.Result, error) {
		return procexec.Result{}, services.Wrap(services.ErrNotFound, "", "ffmpeg", "executable not found", nil)
	}}
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))
	_, err := chain.Merge(context.Background(), nil, convertStage, testJob())
	if kind, _ := failure.From(err); kind != failure.KindConversion {
		t.Fatalf("expected conversion_error, got %s (%v)", kind, err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := &stubExecutor{respond: func(int, procexec.Command) (procexec.Result, error) {
		cancel()
		return procexec.Result{}, context.Canceled
	}}
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))
	if _, err := chain.Merge(ctx, nil, convertStage, testJob()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("cancellation must stop the chain, got %d runs", len(exec.calls))
	}
}

func TestMergeValidatesJob(t *testing.T) {
	exec := &stubExecutor{respond: func(int, procexec.Command) (procexec.Result, error) {
		return procexec.Result{}, nil
	}}
	chain := encoding.NewChain("ffmpeg", encoding.WithExecutor(exec))
	job := testJob()
	job.AudioPath = ""
	if _, err := chain.Merge(context.Background(), nil, convertStage, job); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("invalid job must not run ffmpeg")
	}
}

func TestChainOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Encoding.HardwareEncoder = "h264_nvenc"
	cfg.Encoding.Preset = "fast"
	cfg.Encoding.Timeout = 120
	chain := encoding.NewChain("/usr/bin/ffmpeg", encoding.ChainOptions(cfg.Encoding)...)

	cands := chain.Candidates()
	if len(cands) != 2 || cands[0].Encoder != "h264_nvenc" || cands[0].Preset != "" || cands[1].Encoder != "libx264" || cands[1].Preset != "fast" {
		t.Fatalf("unexpected candidates %+v", cands)
	}
	if chain.Binary() != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected binary %q", chain.Binary())
	}
}
