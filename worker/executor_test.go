package worker

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSuccess(t *testing.T) {
	result := Execute(context.Background(), "echo hello", 10*time.Second)

	assert.True(t, result.Succeeded())
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stdout, "hello")
	assert.False(t, result.TimedOut)
	assert.NoError(t, result.LaunchErr)
	assert.Positive(t, result.Elapsed)
}

func TestExecuteNonZeroExit(t *testing.T) {
	result := Execute(context.Background(), "exit 3", 10*time.Second)

	assert.False(t, result.Succeeded())
	assert.Equal(t, 3, result.ExitCode)
	assert.False(t, result.TimedOut)
	assert.Equal(t, "exited with code 3", result.FailureReason(10))
}

func TestExecuteCapturesStderr(t *testing.T) {
	result := Execute(context.Background(), "echo oops >&2; exit 1", 10*time.Second)

	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "oops")
	assert.Empty(t, result.Stdout)
}

func TestExecuteTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sleep")
	}

	start := time.Now()
	result := Execute(context.Background(), "sleep 5", 1*time.Second)
	elapsed := time.Since(start)

	assert.True(t, result.TimedOut)
	assert.False(t, result.Succeeded())
	assert.Equal(t, -1, result.ExitCode)
	assert.Less(t, elapsed, 4*time.Second, "timeout must cut execution short")
	assert.Contains(t, result.FailureReason(1), "timeout expired after 1s")
}

func TestExecuteCommandNotFound(t *testing.T) {
	// The shell launches fine and exits non-zero; this is a command failure,
	// not a launch failure
	result := Execute(context.Background(), "definitely-not-a-real-binary-xyz", 10*time.Second)

	assert.False(t, result.Succeeded())
	assert.NotEqual(t, 0, result.ExitCode)
	assert.False(t, result.TimedOut)
}

func TestFailureReasonLaunchError(t *testing.T) {
	result := &Result{LaunchErr: assert.AnError, ExitCode: -1}

	require.False(t, result.Succeeded())
	assert.Equal(t, assert.AnError.Error(), result.FailureReason(30))
}
