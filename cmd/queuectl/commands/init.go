package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/config"
)

// InitCmd creates the database and log directory ahead of first use.
// Every other command migrates on open too, so this is a convenience for
// verifying the setup, not a prerequisite.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the job store",
	Long: `Create the SQLite database, run schema migrations and seed the
default queue configuration.

Example:
  queuectl init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		pterm.Success.Printf("Initialized job store at %s\n", cfg.Database.Path)
		pterm.Info.Printf("Job logs will be written to %s\n", cfg.Logs.Dir)
		return nil
	},
}
