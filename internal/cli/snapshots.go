package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List retained snapshots, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		infos, err := store.Snapshots()
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"snapshots": infos,
				"count":     len(infos),
				"max_count": store.SnapshotMaxCount(),
			})
		}
		if len(infos) == 0 {
			fmt.Println(color.Dim("no snapshots retained"))
			return nil
		}
		for _, info := range infos {
			fmt.Printf("%s  %s  %d bytes\n",
				color.SnapshotID(info.ID.String()),
				info.ModTime.Format("2006-01-02 15:04:05"),
				info.Size,
			)
		}
		fmt.Printf("%d of at most %d retained\n", len(infos), store.SnapshotMaxCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}
