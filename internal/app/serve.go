package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"grupy/internal/adapters/httpapi"
	"grupy/internal/adapters/trigger"
	"grupy/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the HTTP API and the periodic sweep until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	ctx = logger.WithName(ctx, "serve")

	handler := httpapi.NewHandler(a.inbox, a.engine, a.store, httpapi.Options{
		InlineSweep: a.cfg.InlineSweep,
		Metrics:     a.metrics.Handler(),
	})

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", a.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.HTTPAddr, err)
	}
	return a.serve(ctx, lis, handler)
}

func (a *App) serve(ctx context.Context, lis net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		trigger.NewTicker(a.engine, a.cfg.SweepInterval).Run(ctx)
		return nil
	})
	eg.Go(func() error {
		logger.InfoKV(ctx, "HTTP server listening",
			"addr", lis.Addr().String(), "driver", a.cfg.StoreDriver, "inline_sweep", a.cfg.InlineSweep)
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	logger.Info(ctx, "HTTP server stopped")
	return err
}
