package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <id|latest|oldest>",
	Short: "Replace the overrides with a snapshot's contents and flush",
	Long: `Replace the live override mapping with the contents of a retained
snapshot, then flush so the restored state survives this invocation as
the next snapshot in the sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		sid, err := store.ResolveSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := store.SnapshotRestore(sid); err != nil {
			return err
		}
		newID, err := store.Flush()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"restored_from": sid,
				"snapshot_id":   newID,
			})
		}
		fmt.Printf("restored snapshot %s, flushed as %s\n",
			color.SnapshotID(sid.String()), color.SnapshotID(newID.String()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
