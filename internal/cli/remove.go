package cli

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <key>...",
	Short: "Remove overrides (keys revert to their defaults) and flush",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		for _, key := range args {
			if err := store.RemoveKey(key); err != nil {
				return err
			}
		}
		return flushAfterMutation(store)
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
