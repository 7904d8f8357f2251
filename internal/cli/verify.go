package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapkv/snapkv/internal/verify"
	"github.com/snapkv/snapkv/pkg/color"
	"github.com/snapkv/snapkv/pkg/errclass"
	"github.com/snapkv/snapkv/pkg/model"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recheck every stored digest for this instance",
	Long: `Recompute the Adler-32 digest of the defaults definition and of every
retained snapshot payload and compare each against its stored digest
file. Runs on raw bytes without opening the store, so it works even
when a payload is too damaged to load.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := verify.Run(flagDir, model.InstanceID(flagInstance))
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := outputJSON(report); err != nil {
				return err
			}
		} else {
			for _, res := range report.Results {
				if res.OK {
					fmt.Printf("%s %s\n", color.Success("ok "), res.Path)
				} else {
					fmt.Printf("%s %s: %s\n", color.Error("BAD"), res.Path, res.Error)
				}
			}
		}
		if !report.OK() {
			return errclass.ErrIntegrity.WithMessage("verification failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
