package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/cmd/queuectl/commands"
	"github.com/rishiakkala/queuectl/logger"
)

var rootCmd = &cobra.Command{
	Use:   "queuectl",
	Short: "queuectl - Durable CLI job queue with concurrent workers",
	Long: `queuectl - Durable CLI-based background job queue.

Jobs are shell commands persisted in a shared SQLite store. Worker processes
claim them atomically in priority order, execute them under per-job timeouts,
retry failures with exponential backoff, and park exhausted jobs in a dead
letter queue for inspection and manual retry.

Available commands:
  init      - Initialize the job store
  enqueue   - Submit a job
  list      - List jobs
  status    - Show queue summary or job details
  logs      - Show the log output of a job
  worker    - Run worker processes
  metrics   - Show aggregate queue metrics
  dlq       - Inspect and retry dead letter queue jobs
  config    - Show and set queue configuration
  dashboard - Start the read-only web dashboard

Examples:
  queuectl enqueue '{"id":"job1","command":"echo hello"}'
  queuectl worker start --count 3
  queuectl status
  queuectl dlq retry job1`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.EnqueueCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.LogsCmd)
	rootCmd.AddCommand(commands.WorkerCmd)
	rootCmd.AddCommand(commands.MetricsCmd)
	rootCmd.AddCommand(commands.DlqCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.DashboardCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
