package joblog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rishiakkala/queuectl/errors"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(dir, "job1", 0, "hello\n", ""))

	content, err := Read(dir, "job1")
	require.NoError(t, err)
	assert.Equal(t, "=== EXIT CODE ===\n0\n\n=== STDOUT ===\nhello\n\n\n=== STDERR ===\n\n", content)
}

func TestWriteOverwritesPreviousAttempt(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(dir, "job1", 1, "", "first attempt failed"))
	require.NoError(t, Write(dir, "job1", 0, "second attempt ok", ""))

	content, err := Read(dir, "job1")
	require.NoError(t, err)
	assert.Contains(t, content, "second attempt ok")
	assert.NotContains(t, content, "first attempt failed")
	assert.Contains(t, content, "=== EXIT CODE ===\n0")
}

func TestWriteCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/logs"

	require.NoError(t, Write(dir, "job1", 0, "out", "err"))

	content, err := Read(dir, "job1")
	require.NoError(t, err)
	assert.Contains(t, content, "out")
	assert.Contains(t, content, "err")
}

func TestReadMissingLog(t *testing.T) {
	_, err := Read(t.TempDir(), "never-ran")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestPath(t *testing.T) {
	assert.Equal(t, "data/logs/job1.log", Path("data/logs", "job1"))
}
