package cli

import (
	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/errclass"
)

var setType string

var setCmd = &cobra.Command{
	Use:   "set <key> <value> [<key> <value>...]",
	Short: "Set override values and flush",
	Long: `Set one or more override values, then flush so the change lands as a
new snapshot. All pairs share the --type flag; use --type json with the
tagged wire form ({"t":"arr","v":[...]}) for composite values.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args)%2 != 0 {
			return errclass.ErrInvalidConfig.WithMessagef("key %q has no value", args[len(args)-1])
		}
		// Parse everything before touching the store, so a bad literal
		// leaves no partial mutation behind.
		type pair struct {
			key string
			val string
		}
		pairs := make([]pair, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			pairs = append(pairs, pair{key: args[i], val: args[i+1]})
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		for _, p := range pairs {
			v, err := parseValue(setType, p.val)
			if err != nil {
				return err
			}
			store.SetValue(p.key, v)
		}
		return flushAfterMutation(store)
	},
}

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "str", "value type (str, i32, u32, i64, u64, f64, bool, null, json)")
	rootCmd.AddCommand(setCmd)
}
