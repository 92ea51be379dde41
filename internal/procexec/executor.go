package procexec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"mediapull/internal/services"
)

// StderrTailBytes bounds the stderr text retained for classification.
const StderrTailBytes = 8192

const (
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 4 * 1024 * 1024
	waitDelay         = 5 * time.Second
)

// Stream identifies the pipe a line was read from.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
)

func (s Stream) String() string {
	if s == StreamStderr {
		return "stderr"
	}
	return "stdout"
}

// Line is one line of tool output.
type Line struct {
	Stream Stream
	Text   string
}

// Command describes one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	// Env entries are appended to the current environment.
	Env     []string
	Timeout time.Duration
	// OnLine receives every output line. Calls are serialized.
	OnLine func(Line)
	// CaptureStdout buffers stdout whole instead of splitting it into lines.
	// Used for JSON dumps that arrive as one very long line.
	CaptureStdout bool
}

// Result reports how a command finished.
type Result struct {
	ExitCode   int
	Stdout     []byte
	StderrTail string
	Elapsed    time.Duration
}

// Success reports whether the tool exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// OSExecutor runs commands as real child processes.
type OSExecutor struct{}

// Run starts the command and blocks until it exits. Errors are returned only
// when the process could not run to completion: the binary is missing, the
// timeout elapsed, or ctx was cancelled.
func (OSExecutor) Run(ctx context.Context, command Command) (Result, error) {
	if command.Binary == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "", "exec", "binary required", nil)
	}

	runCtx := ctx
	if command.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return Result{}, services.Wrap(services.ErrNotFound, "", command.Binary, "executable not found", err)
		}
		return Result{}, fmt.Errorf("start %s: %w", command.Binary, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		tail     tailBuffer
		captured bytes.Buffer
	)
	emit := func(stream Stream, text string) {
		mu.Lock()
		defer mu.Unlock()
		if stream == StreamStderr {
			tail.WriteLine(text)
		}
		if command.OnLine != nil {
			command.OnLine(Line{Stream: stream, Text: text})
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if command.CaptureStdout {
			_, _ = io.Copy(&captured, stdout)
			return
		}
		scanLines(stdout, func(text string) { emit(StreamStdout, text) })
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(text string) { emit(StreamStderr, text) })
	}()
	wg.Wait()

	waitErr := cmd.Wait()
	result := Result{
		ExitCode:   exitCode(cmd, waitErr),
		StderrTail: tail.String(),
		Elapsed:    time.Since(started),
	}
	if command.CaptureStdout {
		result.Stdout = captured.Bytes()
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, ctxErr
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		msg := fmt.Sprintf("timed out after %s", command.Timeout)
		return result, services.Wrap(services.ErrTimeout, "", command.Binary, msg, nil)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return result, fmt.Errorf("wait %s: %w", command.Binary, waitErr)
		}
	}
	return result, nil
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if waitErr != nil {
		return -1
	}
	return 0
}

// scanLines reads r until EOF, splitting on LF or CR. Oversized lines end the
// scan; the remainder is drained so the child never blocks on a full pipe.
func scanLines(r io.Reader, forward func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanBufferInitial), scanBufferMax)
	scanner.Split(SplitLines)
	for scanner.Scan() {
		forward(scanner.Text())
	}
	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

// SplitLines is a bufio.SplitFunc that treats both '\n' and '\r' as line
// terminators and skips the empty tokens between "\r\n" pairs.
func SplitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// tailBuffer keeps the most recent StderrTailBytes of line-oriented output.
type tailBuffer struct {
	buf []byte
}

func (t *tailBuffer) WriteLine(line string) {
	t.buf = append(t.buf, line...)
	t.buf = append(t.buf, '\n')
	if over := len(t.buf) - StderrTailBytes; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
