package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/internal/metrics"
	"github.com/hyperjump/termground/internal/server"
	"github.com/hyperjump/termground/internal/watcher"
)

func newServerCmd(a *app) *cobra.Command {
	var (
		host  string
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve the grounding HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("watch") {
				a.cfg.Resources.Watch = watch
			}
			return runServer(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload resources when they change on disk")
	return cmd
}

func runServer(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	svc, err := engine.NewService(ctx, a.cfg, engine.WithLogger(a.logger), engine.WithMetrics(m))
	if err != nil {
		return err
	}
	defer svc.Close()

	if a.cfg.Resources.Watch {
		res := a.cfg.Resources
		w := watcher.New(
			[]string{res.TermsPath, res.TablesPath},
			[]string{res.ModelsDir},
			svc.Reload,
			watcher.WithDebounce(res.WatchDebounce),
			watcher.WithLogger(a.logger),
		)
		if err := w.Start(ctx); err != nil {
			a.logger.Warn("resource watcher not started", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	srv := server.NewServer(svc, m.Handler(), &a.cfg.Server, a.logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	return nil
}
