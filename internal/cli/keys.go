package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List keys with an explicit override",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		keys := store.GetAllKeys()

		if jsonOutput {
			return outputJSON(map[string]any{"keys": keys})
		}
		if len(keys) == 0 {
			fmt.Println(color.Dim("no overrides set"))
			return nil
		}
		for _, key := range keys {
			fmt.Println(color.Key(key))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
