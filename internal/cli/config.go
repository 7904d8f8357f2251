package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/snapkv/snapkv/pkg/color"
	"github.com/snapkv/snapkv/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config <command>",
	Short: "Manage engine settings",
	Long: `Manage the engine settings file (` + config.DefaultFileName + `).

Settings cover snapshot retention and compression, payload sealing,
the audit trail, and logging. KVS_* environment variables override the
file (KVS_SNAPSHOT_MAX_COUNT, KVS_LOGGING_LEVEL, ...).`,
	DisableFlagsInUseLine: true,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagConfig
		if path == "" {
			path = filepath.Join(flagDir, config.DefaultFileName)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(map[string]any{"path": path})
		}
		fmt.Printf("%s %s\n", color.Success("wrote"), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings (file plus environment)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(settings)
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
