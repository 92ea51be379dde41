package procexec_test

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mediapull/internal/procexec"
	"mediapull/internal/services"
	"mediapull/internal/testsupport"
)

func TestSplitLinesHandlesCarriageReturns(t *testing.T) {
	input := "[download]  10.0%\r[download]  20.0%\r\nmerged\nlast"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(procexec.SplitLines)
	var got []string
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}
	want := []string{"[download]  10.0%", "[download]  20.0%", "merged", "last"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines = %q, want %q", got, want)
	}
}

func TestRunStreamsBothPipes(t *testing.T) {
	dir := t.TempDir()
	bin := testsupport.WriteScript(t, dir, "tool", `printf 'one\rtwo\n'
echo "warn line" 1>&2
exit 3`)

	var lines []procexec.Line
	res, err := procexec.OSExecutor{}.Run(context.Background(), procexec.Command{
		Binary: bin,
		OnLine: func(l procexec.Line) { lines = append(lines, l) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.ExitCode != 3 || res.Success() {
		t.Fatalf("exit code = %d", res.ExitCode)
	}
	if res.StderrTail != "warn line\n" {
		t.Fatalf("stderr tail = %q", res.StderrTail)
	}
	var stdout, stderr []string
	for _, l := range lines {
		if l.Stream == procexec.StreamStderr {
			stderr = append(stderr, l.Text)
		} else {
			stdout = append(stdout, l.Text)
		}
	}
	if strings.Join(stdout, ",") != "one,two" {
		t.Fatalf("stdout lines = %v", stdout)
	}
	if len(stderr) != 1 || stderr[0] != "warn line" {
		t.Fatalf("stderr lines = %v", stderr)
	}
}

func TestRunCapturesStdout(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "tool", `echo '{"id":"abc"}'`)
	called := false
	res, err := procexec.OSExecutor{}.Run(context.Background(), procexec.Command{
		Binary:        bin,
		CaptureStdout: true,
		OnLine:        func(procexec.Line) { called = true },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if strings.TrimSpace(string(res.Stdout)) != `{"id":"abc"}` {
		t.Fatalf("stdout = %q", res.Stdout)
	}
	if called {
		t.Fatal("captured stdout should not be forwarded line by line")
	}
}

func TestRunKeepsBoundedStderrTail(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "tool", `i=0
while [ $i -lt 400 ]; do echo "line $i with some padding to grow the output" 1>&2; i=$((i+1)); done
echo "final" 1>&2
exit 1`)
	res, err := procexec.OSExecutor{}.Run(context.Background(), procexec.Command{Binary: bin})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.StderrTail) > procexec.StderrTailBytes {
		t.Fatalf("tail length %d exceeds bound", len(res.StderrTail))
	}
	if !strings.HasSuffix(res.StderrTail, "final\n") {
		t.Fatalf("tail should end with last line, got %q", res.StderrTail[len(res.StderrTail)-40:])
	}
}

func TestRunMissingBinaryIsNotFound(t *testing.T) {
	_, err := procexec.OSExecutor{}.Run(context.Background(), procexec.Command{Binary: "mediapull-definitely-missing"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if services.IsRetryable(err) {
		t.Fatal("missing binary should not be retryable")
	}
}

func TestRunTimeoutKillsProcessGroup(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "tool", `sleep 30 &
wait`)
	start := time.Now()
	_, err := procexec.OSExecutor{}.Run(context.Background(), procexec.Command{
		Binary:  bin,
		Timeout: 200 * time.Millisecond,
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("timeout took too long: %s", elapsed)
	}
}

func TestRunCancelledContext(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "tool", `sleep 30`)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	_, err := procexec.OSExecutor{}.Run(ctx, procexec.Command{Binary: bin})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
