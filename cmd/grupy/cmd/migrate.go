package cmd

import (
	"github.com/spf13/cobra"

	"grupy/internal/infrastructure/storage"
	"grupy/internal/logger"
)

var migrateDriver string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer logger.Sync()

		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := withDriver(cfg, migrateDriver); err != nil {
			return err
		}
		return storage.Migrate(ctx, cfg)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	migrateCmd.Flags().StringVarP(&migrateDriver, "driver", "d", "", "store driver, overrides STORE_DRIVER")
	rootCmd.AddCommand(migrateCmd)
}
