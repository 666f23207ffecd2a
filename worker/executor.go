// Package worker runs claimed jobs: it executes each job's command under its
// timeout, records the log artifact, and routes the outcome back through the
// store's completion and retry/backoff operations.
package worker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/rishiakkala/queuectl/errors"
)

// waitDelay bounds how long Run waits for I/O pipes after the process is
// killed; grandchildren holding the pipes open must not stall the worker
const waitDelay = 5 * time.Second

// Result is the classified outcome of one command execution
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Elapsed   time.Duration
	TimedOut  bool
	LaunchErr error // process could not be started at all
}

// Succeeded reports whether the command ran to completion with exit code 0
func (r *Result) Succeeded() bool {
	return !r.TimedOut && r.LaunchErr == nil && r.ExitCode == 0
}

// FailureReason returns the human-readable reason persisted on the job row
func (r *Result) FailureReason(timeoutSeconds int) string {
	switch {
	case r.TimedOut:
		return fmt.Sprintf("timeout expired after %ds", timeoutSeconds)
	case r.LaunchErr != nil:
		return r.LaunchErr.Error()
	default:
		return fmt.Sprintf("exited with code %d", r.ExitCode)
	}
}

// Execute runs command through the system shell with a wall-clock timeout,
// capturing exit code, stdout, stderr and elapsed time. On timeout the
// process is forcibly terminated and the result marked TimedOut. Execution
// errors never propagate as Go errors; every outcome is a classified Result.
func Execute(ctx context.Context, command string, timeout time.Duration) *Result {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(runCtx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(runCtx, "sh", "-c", command)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.LaunchErr = err
			result.ExitCode = -1
		}
	}

	return result
}
