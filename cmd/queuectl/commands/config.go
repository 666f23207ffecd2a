package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/queue"
)

// ConfigCmd manages queue configuration stored in the database.
// These values are shared by every process using the store.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and set queue configuration",
	Long: `Show and set queue configuration stored in the database.

Recognized keys:
  max_retries       - Failures before a job moves to the dead letter queue
  backoff_base      - Base of the exponential retry delay (delay = base^attempts)
  default_timeout   - Timeout in seconds for jobs that don't specify one
  default_priority  - Priority for jobs that don't specify one

Changes apply to future decisions only; jobs already enqueued keep the
max_retries and timeout they were created with.

Examples:
  queuectl config show
  queuectl config set backoff_base 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// ConfigShowCmd prints every config entry
var ConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current queue configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		entries, err := store.AllConfig()
		if err != nil {
			return err
		}

		pterm.Println(pterm.Bold.Sprint("Queue configuration"))
		for _, e := range entries {
			pterm.Printf("  %-18s %s\n", e.Key, e.Value)
		}
		return nil
	},
}

// integer-valued keys validated before storing
var intConfigKeys = map[string]bool{
	queue.ConfigMaxRetries:      true,
	queue.ConfigBackoffBase:     true,
	queue.ConfigDefaultTimeout:  true,
	queue.ConfigDefaultPriority: true,
}

// ConfigSetCmd updates one config key
var ConfigSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a queue configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if intConfigKeys[key] {
			if _, err := strconv.Atoi(value); err != nil {
				return errors.NewValidationError("value for %s must be an integer, got %q", key, value)
			}
		}

		database, store, err := openStore()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := store.SetConfig(key, value); err != nil {
			return err
		}

		pterm.Success.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func init() {
	ConfigCmd.AddCommand(ConfigShowCmd)
	ConfigCmd.AddCommand(ConfigSetCmd)
}
