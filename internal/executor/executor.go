package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/breeze-rmm/amd-driver-manager/internal/logging"
)

var log = logging.L("executor")

// MaxOutputSize is the maximum size of stdout/stderr to capture.
const MaxOutputSize = 1024 * 1024 // 1MB

// Result is the outcome of a process that ran to completion. A non-zero
// ExitCode is data, not an error.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs external commands. With a zero Timeout, Run waits for the
// process to exit however long that takes.
type Executor struct {
	Timeout time.Duration
}

// New creates an Executor. timeoutSeconds <= 0 disables the timeout.
func New(timeoutSeconds int) *Executor {
	e := &Executor{}
	if timeoutSeconds > 0 {
		e.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return e
}

// Run starts name with args and blocks until it exits, capturing stdout and
// stderr. The returned error is only set when the process could not be
// started, was killed by the timeout, or ctx was cancelled.
func (e *Executor) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	result := &Result{Command: commandLine(name, args), ExitCode: -1}
	startTime := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{buf: &stdout, limit: MaxOutputSize}
	cmd.Stderr = &limitedWriter{buf: &stderr, limit: MaxOutputSize}
	hideWindow(cmd)

	log.Debug("running command", "command", result.Command)
	err := cmd.Run()

	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return result, fmt.Errorf("%s timed out after %s", name, e.Timeout)
			}
			return result, fmt.Errorf("%s: %w", name, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			log.Debug("command exited", "command", result.Command, "exitCode", result.ExitCode, logging.KeyDurationMs, result.Duration.Milliseconds())
			return result, nil
		}
		return result, fmt.Errorf("start %s: %w", name, err)
	}

	result.ExitCode = 0
	log.Debug("command exited", "command", result.Command, "exitCode", 0, logging.KeyDurationMs, result.Duration.Milliseconds())
	return result, nil
}

// Start launches name with args and returns as soon as the process has been
// created. The process is not waited on and its outcome is never observed.
func (e *Executor) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	hideWindow(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	log.Info("started detached command", "command", commandLine(name, args), "pid", cmd.Process.Pid)

	// Reap in the background so the child does not linger as a zombie on unix.
	go cmd.Wait()
	return nil
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// limitedWriter wraps a buffer with a size limit
type limitedWriter struct {
	buf     *bytes.Buffer
	limit   int
	written int
}

func (w *limitedWriter) Write(p []byte) (n int, err error) {
	if w.written >= w.limit {
		return len(p), nil
	}

	remaining := w.limit - w.written
	chunk := p
	if len(chunk) > remaining {
		chunk = chunk[:remaining]
	}

	n, err = w.buf.Write(chunk)
	w.written += n
	return len(p), err // report full length to avoid short write errors
}
