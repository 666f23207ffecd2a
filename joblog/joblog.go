// Package joblog stores per-job log artifacts: one text file per job id,
// fully overwritten on every execution attempt so only the latest attempt's
// output is retained.
package joblog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rishiakkala/queuectl/errors"
)

// Path returns the log file path for a job id under dir
func Path(dir, jobID string) string {
	return filepath.Join(dir, jobID+".log")
}

// Write persists the execution outcome for jobID, replacing any prior log.
// The format is three labeled sections in fixed order: exit code, standard
// output, standard error.
func Write(dir, jobID string, exitCode int, stdout, stderr string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create log directory %s", dir)
	}

	content := fmt.Sprintf("=== EXIT CODE ===\n%d\n\n=== STDOUT ===\n%s\n\n=== STDERR ===\n%s\n",
		exitCode, stdout, stderr)

	if err := os.WriteFile(Path(dir, jobID), []byte(content), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write log for job %s", jobID)
	}
	return nil
}

// Read returns the latest log content for jobID, or ErrNotFound if no
// execution has been logged yet
func Read(dir, jobID string) (string, error) {
	data, err := os.ReadFile(Path(dir, jobID))
	if os.IsNotExist(err) {
		return "", errors.NewNotFoundError("no logs found for job %s", jobID)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read log for job %s", jobID)
	}
	return string(data), nil
}
