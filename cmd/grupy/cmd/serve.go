package cmd

import (
	"github.com/spf13/cobra"

	"grupy/internal/app"
	"grupy/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the periodic sweep.",
	Long: `Starts the HTTP API (health, inbox, profile, manual sweep, metrics) and sweeps
every SWEEP_INTERVAL. With INLINE_SWEEP=true reads also trigger a sweep first.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		defer logger.Sync()

		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(ctx)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address, overrides HTTP_ADDR")
	rootCmd.AddCommand(serveCmd)
}
