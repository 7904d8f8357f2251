package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Compare two retained snapshots key by key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		a, err := store.ResolveSnapshot(args[0])
		if err != nil {
			return err
		}
		b, err := store.ResolveSnapshot(args[1])
		if err != nil {
			return err
		}
		d, err := store.SnapshotDiff(a, b)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(d)
		}
		if d.Empty() {
			fmt.Printf("snapshots %s and %s are identical\n",
				color.SnapshotID(a.String()), color.SnapshotID(b.String()))
			return nil
		}
		for _, key := range d.Added {
			fmt.Printf("%s %s\n", color.Success("+"), color.Key(key))
		}
		for _, key := range d.Removed {
			fmt.Printf("%s %s\n", color.Error("-"), color.Key(key))
		}
		for _, key := range d.Changed {
			fmt.Printf("%s %s\n", color.Warning("~"), color.Key(key))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
