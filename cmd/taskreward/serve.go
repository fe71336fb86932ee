package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskreward/internal/cloudsync"
	"taskreward/internal/logx"
	"taskreward/internal/serverapp"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	var noSync bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local app API",
		Long: `Serve the local app API over HTTP.

When sync is configured and a token is saved, the cloud copy is pulled once at
startup and dirty state is pushed on sync.interval.

Examples:
  taskreward serve
  taskreward serve --addr :9000 --no-sync`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return a.serve(cmd.Context(), !noSync)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "skip the startup pull and periodic push")
	return cmd
}

func (a *app) serve(parent context.Context, withSync bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := a.openLocal()
	if err != nil {
		return err
	}

	if withSync && l.client != nil {
		switch err := l.syncer.LoadInitial(ctx); {
		case err == nil:
		case errors.Is(err, cloudsync.ErrNotLoggedIn):
			logx.Info(a.logger, "sync_skipped", logx.Fields{"reason": "not logged in"})
		default:
			// Keep serving local data; the notice is already in the feed.
			logx.Warn(a.logger, "initial_pull_failed", logx.Fields{"error": err.Error()})
		}
		if err := l.syncer.Start(); err != nil {
			return err
		}
		defer l.syncer.Stop()
	}

	handler, err := serverapp.NewHandler(serverapp.Options{
		Store:       l.store,
		Syncer:      l.syncer,
		Feed:        l.feed,
		Logger:      a.logger,
		SyncTimeout: a.cfg.Sync.Timeout,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a.listen(ctx, srv, "taskreward")
}

// listen runs srv until ctx is cancelled, then drains in-flight requests.
func (a *app) listen(ctx context.Context, srv *http.Server, service string) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Info(a.logger, "listening", logx.Fields{"service": service, "addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	logx.Info(a.logger, "shutting_down", logx.Fields{"service": service})
	return srv.Shutdown(shutdownCtx)
}
