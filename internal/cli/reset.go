package cli

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Revert one key, or the whole store, to defaults and flush",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			if err := store.ResetKey(args[0]); err != nil {
				return err
			}
		} else {
			store.Reset()
		}
		return flushAfterMutation(store)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
