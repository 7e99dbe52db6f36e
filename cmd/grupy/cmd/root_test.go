package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"grupy/internal/config"
)

func TestWithDriver(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{StoreDriver: config.DriverPostgres}

	require.NoError(t, withDriver(cfg, ""))
	require.Equal(t, config.DriverPostgres, cfg.StoreDriver)

	require.NoError(t, withDriver(cfg, config.DriverSQLite))
	require.Equal(t, config.DriverSQLite, cfg.StoreDriver)

	require.Error(t, withDriver(cfg, "redis"))
}

func TestSubcommandsRegistered(t *testing.T) {
	t.Parallel()
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "sweep", "migrate"} {
		require.True(t, names[want], want)
	}
}
