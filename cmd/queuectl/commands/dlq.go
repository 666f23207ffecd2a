package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// DlqCmd groups dead letter queue operations
var DlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect and retry dead letter queue jobs",
	Long: `Manage jobs that exhausted their retries.

Dead jobs are never claimed by workers. Retrying a dead job resets its
attempt count and makes it eligible again immediately.

Examples:
  queuectl dlq list
  queuectl dlq retry job1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// DlqListCmd lists dead jobs with their final error
var DlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs in the dead letter queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		jobs, err := store.ListDLQ()
		if err != nil {
			return err
		}

		if len(jobs) == 0 {
			pterm.Info.Println("Dead letter queue is empty")
			return nil
		}

		pterm.Printf("%d job(s) in the dead letter queue:\n\n", len(jobs))
		for _, job := range jobs {
			pterm.Printf("  %s\n", pterm.Bold.Sprint(job.ID))
			pterm.Printf("    Command:  %s\n", job.Command)
			pterm.Printf("    Attempts: %d\n", job.Attempts)
			if job.ErrorMessage != "" {
				pterm.Printf("    Error:    %s\n", pterm.Red(job.ErrorMessage))
			}
			pterm.Printf("    Died at:  %s\n", job.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// DlqRetryCmd re-queues a dead job
var DlqRetryCmd = &cobra.Command{
	Use:   "retry <job-id>",
	Short: "Re-queue a dead job",
	Long: `Move a dead job back to pending with its attempt count reset to
zero. Running this on a job that is not currently dead is a no-op.

Example:
  queuectl dlq retry job1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID := args[0]

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		retried, err := store.RetryFromDLQ(jobID)
		if err != nil {
			return err
		}
		if !retried {
			pterm.Warning.Printf("Job %s is not in the dead letter queue, nothing to retry\n", jobID)
			return nil
		}

		pterm.Success.Printf("Job %s re-queued, eligible immediately\n", jobID)
		return nil
	},
}

func init() {
	DlqCmd.AddCommand(DlqListCmd)
	DlqCmd.AddCommand(DlqRetryCmd)
}
