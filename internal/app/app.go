// Package app wires configuration, storage, the sweep engine and its triggers.
package app

import (
	"context"
	"errors"
	"fmt"

	"grupy/internal/adapters/discord"
	"grupy/internal/application"
	"grupy/internal/config"
	"grupy/internal/domain/rules"
	"grupy/internal/infrastructure/i18n"
	"grupy/internal/infrastructure/metrics"
	"grupy/internal/infrastructure/storage"
	"grupy/internal/logger"
	"grupy/internal/ports/output"
)

// App holds the wired components of one process.
type App struct {
	cfg        *config.Config
	store      output.Store
	engine     *application.SweepEngine
	inbox      *application.InboxService
	metrics    *metrics.SweepMetrics
	translator *i18n.Translator
}

// New opens the configured store and builds the engine around it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a, err := newWithStore(ctx, cfg, store)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}
	return a, nil
}

func newWithStore(ctx context.Context, cfg *config.Config, store output.Store) (*App, error) {
	var sink output.NotificationSink = store
	if cfg.DiscordRelayEnabled() {
		session, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			return nil, fmt.Errorf("discord relay: %w", err)
		}
		sink = discord.NewRelaySink(store, session, cfg.DiscordChannelID)
		logger.InfoKV(ctx, "Discord relay enabled", "channel_id", cfg.DiscordChannelID)
	}

	translator := i18n.NewTranslator(cfg.Locale)
	m := metrics.NewSweepMetrics()
	engine := application.NewSweepEngine(
		store,
		sink,
		rules.New(cfg.VoteRequestDelay, cfg.Location()),
		application.WithTranslator(translator, cfg.Locale),
		application.WithObserver(m),
		application.WithConcurrency(cfg.SweepConcurrency),
	)

	return &App{
		cfg:        cfg,
		store:      store,
		engine:     engine,
		inbox:      application.NewInboxService(store, store),
		metrics:    m,
		translator: translator,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}
