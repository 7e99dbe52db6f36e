package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverPostgres, cfg.StoreDriver)
	require.Equal(t, "postgres://localhost:5432/grupy?sslmode=disable", cfg.DatabaseURL)
	require.Equal(t, ":4000", cfg.HTTPAddr)
	require.Equal(t, 5*time.Minute, cfg.SweepInterval)
	require.Equal(t, 24*time.Hour, cfg.VoteRequestDelay)
	require.Equal(t, 1, cfg.SweepConcurrency)
	require.False(t, cfg.InlineSweep)
	require.Equal(t, "Europe/Rome", cfg.Location().String())
	require.Equal(t, "it", cfg.Locale)
	require.False(t, cfg.DiscordRelayEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/grupy.db")
	t.Setenv("SWEEP_INTERVAL", "30s")
	t.Setenv("VOTE_REQUEST_DELAY", "1h")
	t.Setenv("SWEEP_CONCURRENCY", "4")
	t.Setenv("INLINE_SWEEP", "true")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "123456")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, DriverSQLite, cfg.StoreDriver)
	require.Equal(t, "/tmp/grupy.db", cfg.SQLitePath)
	require.Equal(t, 30*time.Second, cfg.SweepInterval)
	require.Equal(t, time.Hour, cfg.VoteRequestDelay)
	require.Equal(t, 4, cfg.SweepConcurrency)
	require.True(t, cfg.InlineSweep)
	require.Equal(t, "UTC", cfg.Location().String())
	require.True(t, cfg.DiscordRelayEnabled())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, "STORE_DRIVER"},
		{"database url without host", map[string]string{"DATABASE_URL": "grupy"}, "DATABASE_URL"},
		{"empty sqlite path", map[string]string{"STORE_DRIVER": "sqlite", "SQLITE_PATH": " "}, "SQLITE_PATH"},
		{"zero interval", map[string]string{"SWEEP_INTERVAL": "0s"}, "SWEEP_INTERVAL"},
		{"negative delay", map[string]string{"VOTE_REQUEST_DELAY": "-1h"}, "VOTE_REQUEST_DELAY"},
		{"zero concurrency", map[string]string{"SWEEP_CONCURRENCY": "0"}, "SWEEP_CONCURRENCY"},
		{"bad timezone", map[string]string{"TIMEZONE": "Nowhere/Land"}, "TIMEZONE"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"token without channel", map[string]string{"DISCORD_TOKEN": "token"}, "DISCORD_TOKEN"},
		{"non numeric channel", map[string]string{"DISCORD_TOKEN": "token", "DISCORD_CHANNEL_ID": "general"}, "DISCORD_CHANNEL_ID"},
		{"unparsable duration", map[string]string{"SWEEP_INTERVAL": "often"}, "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
