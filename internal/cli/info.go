package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show instance information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		overrides := store.GetAllKeys()
		info := map[string]any{
			"dir":                store.Dir(),
			"instance_id":        store.InstanceID(),
			"override_count":     len(overrides),
			"snapshot_count":     store.SnapshotCount(),
			"snapshot_max_count": store.SnapshotMaxCount(),
		}

		if jsonOutput {
			return outputJSON(info)
		}
		fmt.Printf("Instance %s in %s\n", store.InstanceID(), store.Dir())
		fmt.Printf("  Overrides: %d\n", len(overrides))
		fmt.Printf("  Snapshots: %d of at most %d\n", store.SnapshotCount(), store.SnapshotMaxCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
