package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/queue"
)

// ListCmd lists jobs in claim order
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Long: `List jobs ordered the way workers claim them: priority descending,
then creation time.

State filters:
  pending     - Waiting to run
  processing  - Currently executing
  completed   - Finished successfully
  failed      - Awaiting a retry after backoff
  dead        - Exhausted retries (see 'queuectl dlq')

Examples:
  queuectl list                    # All jobs
  queuectl list --state pending    # Only pending jobs
  queuectl list --limit 100        # Show up to 100 jobs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stateFilter, _ := cmd.Flags().GetString("state")
		limit, _ := cmd.Flags().GetInt("limit")

		var state *queue.JobState
		if stateFilter != "" {
			if !queue.IsValidState(stateFilter) {
				return errors.NewValidationError("invalid state %q, expected pending, processing, completed, failed or dead", stateFilter)
			}
			st := queue.JobState(stateFilter)
			state = &st
		}

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		jobs, err := store.List(state, limit)
		if err != nil {
			return err
		}

		if len(jobs) == 0 {
			pterm.Info.Println("No jobs found")
			return nil
		}

		printJobTable(jobs)
		return nil
	},
}

func printJobTable(jobs []*queue.Job) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tPRIORITY\tATTEMPTS\tUPDATED\tCOMMAND")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\t%s\n",
			job.ID,
			stateLabel(job.State),
			job.Priority,
			job.Attempts, job.MaxRetries,
			job.UpdatedAt.Format("2006-01-02 15:04:05"),
			truncate(job.Command, 60),
		)
	}
	w.Flush()
}

func stateLabel(state queue.JobState) string {
	switch state {
	case queue.StatePending:
		return pterm.Yellow(string(state))
	case queue.StateProcessing:
		return pterm.Cyan(string(state))
	case queue.StateCompleted:
		return pterm.Green(string(state))
	case queue.StateFailed:
		return pterm.Red(string(state))
	case queue.StateDead:
		return pterm.Gray(string(state))
	default:
		return string(state)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	ListCmd.Flags().String("state", "", "Filter by job state")
	ListCmd.Flags().Int("limit", 50, "Maximum number of jobs to show")
}
