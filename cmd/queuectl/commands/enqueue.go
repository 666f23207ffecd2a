package commands

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/queue"
)

// EnqueueCmd submits a job described as a JSON payload
var EnqueueCmd = &cobra.Command{
	Use:   "enqueue <json>",
	Short: "Submit a job to the queue",
	Long: `Submit a job described as a JSON payload. Pass "-" to read the
payload from stdin.

Required fields:
  id       - Unique job identifier
  command  - Shell command to execute

Optional fields (store defaults apply when absent):
  priority    - Higher runs first (default 0)
  timeout     - Execution limit in seconds (default 300)
  max_retries - Failures before the dead letter queue (default 3)
  run_at      - Earliest start time, ISO 8601 or "now"

Examples:
  queuectl enqueue '{"id":"job1","command":"echo hello"}'
  queuectl enqueue '{"id":"job2","command":"make backup","priority":5,"timeout":600}'
  queuectl enqueue '{"id":"job3","command":"cleanup.sh","run_at":"2026-09-01T03:00:00"}'
  cat job.json | queuectl enqueue -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := []byte(args[0])
		if args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return errors.Wrap(err, "failed to read payload from stdin")
			}
			payload = data
		}

		spec, err := queue.ParseSpec(payload)
		if err != nil {
			return err
		}

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		job, err := store.Enqueue(spec)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Job enqueued: %s\n", job.ID)
		pterm.Printf("  Command: %s\n", job.Command)
		pterm.Printf("  Priority: %d, timeout: %ds, max retries: %d\n",
			job.Priority, job.Timeout, job.MaxRetries)
		if job.RunAt.After(job.CreatedAt) {
			pterm.Printf("  Scheduled for: %s\n", job.RunAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
