// Package shell runs host commands through the platform shell and captures
// their output. Execution is policy-free: allow-listing and confirmation
// live in the session layer, this package only runs what it is handed.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"

	"quartermaster/internal/logging"
)

// ErrTimeout reports that a command was killed because it exceeded its
// deadline. Callers distinguish this from ordinary failures so the user sees
// a timeout message rather than truncated output presented as a result.
var ErrTimeout = errors.New("command timed out")

// Outcome is the captured output of a completed command. A non-zero exit
// code is not an execution error; it surfaces through Stderr and ExitCode.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command produced no error output. This is the
// winget convention: informational progress goes to stdout, real failures
// write to stderr even when the exit code is zero.
func (o Outcome) Success() bool {
	return o.Stderr == ""
}

// RunnerConfig bounds a runner's executions.
type RunnerConfig struct {
	// DefaultTimeout applies when Run is called with a zero timeout.
	DefaultTimeout time.Duration

	// MaxOutputBytes caps each captured stream. Zero means 1 MiB.
	MaxOutputBytes int
}

// DefaultRunnerConfig returns the standard execution bounds.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		DefaultTimeout: 2 * time.Minute,
		MaxOutputBytes: 1 << 20,
	}
}

// Runner executes command strings through the platform shell.
type Runner struct {
	config RunnerConfig
}

// NewRunner creates a runner with the given config, filling unset fields
// from DefaultRunnerConfig.
func NewRunner(config RunnerConfig) *Runner {
	defaults := DefaultRunnerConfig()
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = defaults.DefaultTimeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = defaults.MaxOutputBytes
	}
	return &Runner{config: config}
}

// Run executes command through the platform shell, waiting at most timeout
// (the config default when zero). Command failure is reported inside the
// Outcome; the error return covers timeouts and context cancellation only.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) (Outcome, error) {
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}

	logging.Exec("running: %s (timeout=%s)", command, timeout)

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(execCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(execCtx, "sh", "-c", command)
	}
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, remaining: r.config.MaxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, remaining: r.config.MaxOutputBytes}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	outcome := Outcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
		Duration: elapsed,
	}
	if cmd.ProcessState != nil {
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	}

	if execCtx.Err() == context.DeadlineExceeded {
		logging.ExecWarn("timed out after %s: %s", elapsed.Round(time.Millisecond), command)
		return outcome, ErrTimeout
	}
	if ctx.Err() != nil {
		return outcome, ctx.Err()
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The shell itself could not be started. Surface it as error
			// output so callers handle it with the same stderr path as a
			// failed command.
			logging.ExecError("start failed: %s (%v)", command, err)
			outcome.Stderr = err.Error()
			return outcome, nil
		}
		logging.Exec("exited %d: %s", outcome.ExitCode, command)
		return outcome, nil
	}

	logging.ExecDebug("completed in %s: %d stdout bytes, %d stderr bytes",
		elapsed.Round(time.Millisecond), len(outcome.Stdout), len(outcome.Stderr))
	return outcome, nil
}

// limitedWriter discards writes past its byte budget while reporting full
// success, so a chatty command cannot balloon memory.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.remaining <= 0 {
		return len(p), nil
	}
	n := len(p)
	if n > l.remaining {
		n = l.remaining
	}
	if _, err := l.w.Write(p[:n]); err != nil {
		return 0, err
	}
	l.remaining -= n
	return len(p), nil
}
