package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"grupy/internal/logger"
	"grupy/pkg/tz"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	StoreDriver      string        `env:"STORE_DRIVER"       envDefault:"postgres"`
	DatabaseURL      string        `env:"DATABASE_URL"       envDefault:"postgres://localhost:5432/grupy?sslmode=disable"`
	SQLitePath       string        `env:"SQLITE_PATH"        envDefault:"data/grupy.db"`
	HTTPAddr         string        `env:"HTTP_ADDR"          envDefault:":4000"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL"     envDefault:"5m"`
	VoteRequestDelay time.Duration `env:"VOTE_REQUEST_DELAY" envDefault:"24h"`
	SweepConcurrency int           `env:"SWEEP_CONCURRENCY"  envDefault:"1"`
	InlineSweep      bool          `env:"INLINE_SWEEP"       envDefault:"false"`
	Timezone         string        `env:"TIMEZONE"           envDefault:"Europe/Rome"`
	Locale           string        `env:"LOCALE"             envDefault:"it"`
	LogLevel         string        `env:"LOG_LEVEL"          envDefault:"info"`
	DiscordToken     string        `env:"DISCORD_TOKEN"`
	DiscordChannelID string        `env:"DISCORD_CHANNEL_ID"`

	location *time.Location
}

// Load reads an optional .env file, parses the environment and validates the result.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location is the zone group schedules are interpreted in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return tz.Rome
	}
	return c.location
}

// DiscordRelayEnabled reports whether both Discord settings are present.
func (c *Config) DiscordRelayEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverPostgres:
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): missing scheme or host", c.DatabaseURL)
		}
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("config: SQLITE_PATH is required with STORE_DRIVER=sqlite")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be one of postgres, sqlite, memory (got %q)", c.StoreDriver)
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: SWEEP_INTERVAL must be positive (got %s)", c.SweepInterval)
	}
	if c.VoteRequestDelay <= 0 {
		return fmt.Errorf("config: VOTE_REQUEST_DELAY must be positive (got %s)", c.VoteRequestDelay)
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("config: SWEEP_CONCURRENCY must be at least 1 (got %d)", c.SweepConcurrency)
	}

	loc, err := tz.Load(c.Timezone)
	if err != nil {
		return fmt.Errorf("config: TIMEZONE invalid: %w", err)
	}
	c.location = loc

	if _, ok := logger.ParseLogLevel(c.LogLevel); !ok {
		return fmt.Errorf("config: LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}

	c.DiscordToken = strings.TrimSpace(c.DiscordToken)
	c.DiscordChannelID = strings.TrimSpace(c.DiscordChannelID)
	if (c.DiscordToken == "") != (c.DiscordChannelID == "") {
		return fmt.Errorf("config: DISCORD_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	for _, r := range c.DiscordChannelID {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: DISCORD_CHANNEL_ID must be a Discord channel ID (digits only)")
		}
	}

	return nil
}
