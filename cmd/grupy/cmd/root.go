package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"grupy/internal/config"
	"grupy/internal/logger"
	"grupy/internal/version"
)

// rootCmd is the base command; subcommands do the work.
var rootCmd = &cobra.Command{
	Use:   "grupy",
	Short: "Group attendance and vote-request sweeper.",
	Long: `grupy settles groups whose scheduled time has passed.

Once a group expires its attendance is recorded exactly once, and after the
vote-request delay every participant is asked, at most once, to rate the others.
Configuration comes from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadConfig reads the configuration and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)
	return cfg, nil
}

// withDriver overrides STORE_DRIVER when the flag is set.
func withDriver(cfg *config.Config, driver string) error {
	switch driver {
	case "":
		return nil
	case config.DriverPostgres, config.DriverSQLite, config.DriverMemory:
		cfg.StoreDriver = driver
		return nil
	default:
		return fmt.Errorf("unknown --driver %q", driver)
	}
}
