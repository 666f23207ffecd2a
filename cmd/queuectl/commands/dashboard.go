package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/config"
	"github.com/rishiakkala/queuectl/dashboard"
	"github.com/rishiakkala/queuectl/logger"
)

// DashboardCmd groups dashboard operations
var DashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the read-only web dashboard",
	Long: `Serve a read-only web view of the queue: status summary, job list
with logs, metrics and the dead letter queue.

The dashboard never mutates the store; enqueue and retry stay on the CLI.

Example:
  queuectl dashboard start --port 5000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// DashboardStartCmd runs the dashboard HTTP server in the foreground
var DashboardStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port == 0 {
			port = cfg.Dashboard.Port
		}

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		addr := fmt.Sprintf(":%d", port)
		pterm.Success.Printf("Dashboard available at http://localhost%s\n", addr)

		server := dashboard.NewServer(store, logger.Logger)
		return server.ListenAndServe(addr)
	},
}

func init() {
	DashboardStartCmd.Flags().Int("port", 0, "Port to listen on (defaults to dashboard.port from config)")
	DashboardCmd.AddCommand(DashboardStartCmd)
}
