package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/joblog"
)

// LogsCmd prints the log artifact of a job's most recent execution attempt
var LogsCmd = &cobra.Command{
	Use:   "logs <job-id>",
	Short: "Show the log output of a job",
	Long: `Print the captured exit code, stdout and stderr from the job's most
recent execution attempt. Earlier attempts are overwritten.

Example:
  queuectl logs job1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID := args[0]

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		// Resolve the job first so a bad id and a never-run job read differently
		if _, err := store.Get(jobID); err != nil {
			return err
		}

		content, err := joblog.Read(store.LogDir(), jobID)
		if err != nil {
			return err
		}

		fmt.Print(content)
		return nil
	},
}
