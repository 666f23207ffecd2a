package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/config"
	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/logger"
	"github.com/rishiakkala/queuectl/worker"
)

// WorkerCmd groups worker process management
var WorkerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run worker processes",
	Long: `Run workers that claim and execute jobs from the shared store.

Multiple worker processes may run against the same database; the claim
protocol guarantees each job is executed by exactly one worker at a time.

Example:
  queuectl worker start --count 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// WorkerStartCmd runs a worker pool in the foreground
var WorkerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start workers in the foreground",
	Long: `Start a pool of concurrent workers and run until interrupted.

On Ctrl+C the pool stops claiming new jobs but lets jobs already executing
finish before exiting.

Examples:
  queuectl worker start                      # Single worker
  queuectl worker start --count 3            # Three concurrent workers
  queuectl worker start --recover-after 10m  # Also re-queue jobs stuck in
                                             # processing from a crashed worker`,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		recoverAfter, _ := cmd.Flags().GetDuration("recover-after")

		if count < 1 {
			return errors.NewValidationError("worker count must be at least 1")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		poolCfg := worker.DefaultPoolConfig()
		poolCfg.Workers = count
		poolCfg.PollInterval = time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second
		poolCfg.StalledAfter = recoverAfter

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool := worker.NewPool(ctx, store, poolCfg, logger.Logger)
		pool.Start()

		pterm.Success.Printf("Started %d worker(s)\n", count)
		pterm.Printf("  Database: %s\n", cfg.Database.Path)
		pterm.Printf("  Poll interval: %v\n", poolCfg.PollInterval)
		pterm.Info.Println("Press Ctrl+C for graceful shutdown")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		pterm.Info.Println("Shutting down, waiting for in-flight jobs...")
		pool.Stop()
		pterm.Success.Println("Workers stopped")
		return nil
	},
}

func init() {
	WorkerStartCmd.Flags().Int("count", 1, "Number of concurrent workers")
	WorkerStartCmd.Flags().Duration("recover-after", 0,
		"Re-queue jobs stuck in processing longer than this before starting (0 disables)")
	WorkerCmd.AddCommand(WorkerStartCmd)
}
