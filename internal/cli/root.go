// Package cli implements the snapkv command tree. The CLI is an external
// caller of pkg/kvs: each invocation opens the store, performs its
// operations, and exits. Mutating commands end with a flush so their
// effect durably lands as a new snapshot.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/pkg/color"
	"github.com/snapkv/snapkv/pkg/config"
	"github.com/snapkv/snapkv/pkg/kvs"
	"github.com/snapkv/snapkv/pkg/logging"
	"github.com/snapkv/snapkv/pkg/model"
)

// Version is overridable at build time via -ldflags.
var Version = "0.1.0"

var (
	flagDir             string
	flagInstance        uint64
	flagConfig          string
	flagRequireDefaults bool
	flagRequireExisting bool
	flagLogLevel        string
	flagNoColor         bool
	jsonOutput          bool

	rootCmd = &cobra.Command{
		Use:   "snapkv",
		Short: "snapkv - embedded, snapshot-versioned key-value store",
		Long: `snapkv is a file-backed key-value store with typed values, per-key
default fallbacks, and numbered on-disk snapshots with restore.

Every command operates on one store instance, selected by --dir and
--instance. Defaults and snapshots are integrity-checked with Adler-32
digests on every read.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Init(flagNoColor)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDir, "dir", "d", ".", "store directory")
	pf.Uint64VarP(&flagInstance, "instance", "i", 0, "instance id")
	pf.StringVarP(&flagConfig, "config", "c", "", "settings file (default <dir>/"+config.DefaultFileName+")")
	pf.BoolVar(&flagRequireDefaults, "require-defaults", false, "fail unless the defaults pair loads")
	pf.BoolVar(&flagRequireExisting, "require-existing", false, "fail unless a snapshot already exists")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (trace, debug, info, warn, error, off)")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	pf.BoolVar(&jsonOutput, "json", false, "output in JSON format")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.Error("error: ")+err.Error())
		os.Exit(1)
	}
}

// loadSettings reads the settings file named by --config, falling back
// to <dir>/kvs.yaml, then applies the --log-level override.
func loadSettings() (*config.Settings, error) {
	path := flagConfig
	if path == "" {
		path = filepath.Join(flagDir, config.DefaultFileName)
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		settings.Logging.Level = flagLogLevel
	}
	return settings, nil
}

// openStore opens the instance selected by the persistent flags.
func openStore() (*kvs.Kvs, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	logger := logging.Discard()
	if settings.Logging.Level != "off" {
		logger = logging.New("snapkv", logging.Options{
			Level:  settings.Logging.Level,
			Format: settings.Logging.Format,
		})
	}
	return kvs.Open(kvs.Config{
		InstanceID:      model.InstanceID(flagInstance),
		Dir:             flagDir,
		RequireDefaults: flagRequireDefaults,
		RequireExisting: flagRequireExisting,
		Settings:        settings,
		Logger:          logger,
	})
}

// outputJSON prints v as indented JSON when --json is set.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// flushAfterMutation flushes and reports the new snapshot id, shared by
// every mutating command.
func flushAfterMutation(store *kvs.Kvs) error {
	sid, err := store.Flush()
	if err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(map[string]any{"snapshot_id": sid})
	}
	fmt.Printf("flushed as snapshot %s\n", color.SnapshotID(sid.String()))
	return nil
}
