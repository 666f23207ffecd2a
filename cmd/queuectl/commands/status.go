package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/queue"
)

// StatusCmd shows the queue summary, or one job's details when an id is given
var StatusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show queue summary or job details",
	Long: `Without arguments, show the per-state job counts and the number of
active workers. With a job id, show that job's full details.

Examples:
  queuectl status         # Queue summary
  queuectl status job1    # Details for job1`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if len(args) == 1 {
			job, err := store.Get(args[0])
			if err != nil {
				return err
			}
			printJobDetails(job)
			return nil
		}

		summary, err := store.Summary()
		if err != nil {
			return err
		}

		pterm.Println(pterm.Bold.Sprint("Queue status"))
		pterm.Printf("  Pending:    %d\n", summary.Pending)
		pterm.Printf("  Processing: %d\n", summary.Processing)
		pterm.Printf("  Completed:  %d\n", summary.Completed)
		pterm.Printf("  Failed:     %d\n", summary.Failed)
		pterm.Printf("  Dead:       %d\n", summary.Dead)
		pterm.Println()
		pterm.Printf("  Active workers: %d\n", summary.ActiveWorkers)
		return nil
	},
}

func printJobDetails(job *queue.Job) {
	pterm.Printf("Job ID: %s\n", pterm.Bold.Sprint(job.ID))
	pterm.Printf("  Command:     %s\n", job.Command)
	pterm.Printf("  State:       %s\n", stateLabel(job.State))
	pterm.Printf("  Priority:    %d\n", job.Priority)
	pterm.Printf("  Attempts:    %d/%d\n", job.Attempts, job.MaxRetries)
	pterm.Printf("  Timeout:     %ds\n", job.Timeout)
	pterm.Printf("  Created:     %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	pterm.Printf("  Updated:     %s\n", job.UpdatedAt.Format("2006-01-02 15:04:05"))
	if job.RunAt.After(job.CreatedAt) {
		pterm.Printf("  Run at:      %s\n", job.RunAt.Format("2006-01-02 15:04:05"))
	}
	if job.State == queue.StateFailed {
		pterm.Printf("  Next retry:  %s\n", job.NextAttemptAt.Format("2006-01-02 15:04:05"))
	}
	if job.CompletedAt != nil {
		pterm.Printf("  Completed:   %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if job.ErrorMessage != "" {
		pterm.Printf("  Last error:  %s\n", pterm.Red(job.ErrorMessage))
	}
	if job.OutputPath != "" {
		pterm.Printf("  Log file:    %s\n", job.OutputPath)
	}
}
