package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		ps, err := pubsub.New(ctx, e.cfg.PubSub)
		if err != nil {
			return err
		}
		defer closePubSub(ps)

		srv, err := server.New(ctx, e.db, ps, e.cfg, e.logger)
		if err != nil {
			return err
		}
		srv.Start(ctx)
		defer srv.Shutdown()

		httpServer := &http.Server{
			Addr:              e.cfg.Server.Addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			e.logger.Info("moveready running", "addr", e.cfg.Server.Addr, "base_url", e.cfg.Server.BaseURL, "version", version)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		e.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
