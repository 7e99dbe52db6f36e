// Package trigger decides when sweeps run. Both triggers may be active at
// once against the same store.
package trigger

import (
	"context"
	"time"

	"grupy/internal/logger"
	"grupy/internal/ports/input"
)

// Ticker runs a sweep at start and then every interval.
type Ticker struct {
	sweeper  input.Sweeper
	interval time.Duration
}

func NewTicker(sweeper input.Sweeper, interval time.Duration) *Ticker {
	return &Ticker{sweeper: sweeper, interval: interval}
}

// Run blocks until ctx is done. Sweep errors are logged, never fatal.
func (t *Ticker) Run(ctx context.Context) {
	ctx = logger.WithKV(logger.WithName(ctx, "ticker"), "interval", t.interval)
	logger.InfoKV(ctx, "Periodic sweep started")

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		t.sweepOnce(ctx)
		select {
		case <-ctx.Done():
			logger.InfoKV(ctx, "Periodic sweep stopped")
			return
		case <-ticker.C:
		}
	}
}

func (t *Ticker) sweepOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := t.sweeper.Sweep(ctx); err != nil {
		logger.ErrorKV(ctx, "Periodic sweep failed", "error", err)
	}
}
