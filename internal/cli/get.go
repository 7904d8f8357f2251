package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
)

var getDefaultOnly bool

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Resolve a key (override first, then default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		key := args[0]

		get := store.GetValue
		if getDefaultOnly {
			get = store.GetDefaultValue
		}
		v, err := get(key)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"key":      key,
				"type":     v.Kind().String(),
				"value":    v,
				"override": store.KeyExists(key),
			})
		}
		source := "default"
		if !getDefaultOnly && store.KeyExists(key) {
			source = "override"
		}
		fmt.Printf("%s = %s %s\n", color.Key(key), v, color.Dim("("+v.Kind().String()+", "+source+")"))
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getDefaultOnly, "default", false, "read the default mapping only, ignoring any override")
	rootCmd.AddCommand(getCmd)
}
