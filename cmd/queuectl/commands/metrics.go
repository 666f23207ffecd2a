package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// MetricsCmd shows the aggregate metrics row
var MetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregate queue metrics",
	Long: `Show the aggregate counters maintained alongside job transitions.

failed_jobs counts failure events rather than distinct jobs: a job that was
retried twice before succeeding contributes two. The average runtime covers
completed jobs only.

Example:
  queuectl metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		metrics, err := store.GetMetrics()
		if err != nil {
			return err
		}

		pterm.Println(pterm.Bold.Sprint("Queue metrics"))
		pterm.Printf("  Total jobs:       %d\n", metrics.TotalJobs)
		pterm.Printf("  Completed:        %d\n", metrics.CompletedJobs)
		pterm.Printf("  Failure events:   %d\n", metrics.FailedJobs)
		pterm.Printf("  Dead:             %d\n", metrics.DeadJobs)
		pterm.Printf("  Avg runtime:      %.2fs\n", metrics.AvgRuntimeSeconds)
		pterm.Printf("  Active workers:   %d\n", metrics.ActiveWorkers)
		return nil
	},
}
