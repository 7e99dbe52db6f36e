package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"grupy/internal/app"
	"grupy/internal/logger"
)

var (
	sweepDriver     string
	sweepFailOnErrs bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a single sweep pass and print its report.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		defer logger.Sync()

		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := withDriver(cfg, sweepDriver); err != nil {
			return err
		}

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.SweepOnce(ctx, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if sweepFailOnErrs && len(rep.Failed()) > 0 {
			return fmt.Errorf("%d groups failed", len(rep.Failed()))
		}
		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	sweepCmd.Flags().StringVarP(&sweepDriver, "driver", "d", "", "store driver, overrides STORE_DRIVER")
	sweepCmd.Flags().BoolVar(&sweepFailOnErrs, "fail-on-errors", false, "exit non-zero when a group failed")
	rootCmd.AddCommand(sweepCmd)
}
