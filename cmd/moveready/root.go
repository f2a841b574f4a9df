package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/moveready/internal/config"
	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/logging"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/remote"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:          "moveready",
	Short:        "moveready keeps a moving checklist in sync across devices",
	Long:         "moveready serves the moving checklist API, runs the agent tools over MCP, and manages exports.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("MOVEREADY_CONFIG"), "Path to YAML config file")
	rootCmd.Version = version
}

// env is what every command needs: config, logger and a migrated database.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	db, err := database.OpenConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func (e *env) Close() {
	e.db.Close()
}

// openStore starts a synchronized store for one user outside the server.
func (e *env) openStore(ctx context.Context, userID string) (*syncstore.Store, func(), error) {
	ps, err := pubsub.New(ctx, e.cfg.PubSub)
	if err != nil {
		return nil, nil, fmt.Errorf("connect pubsub: %w", err)
	}
	r := remote.New(store.NewDocumentStore(e.db), ps, e.logger)
	s := syncstore.New(userID, r, syncstore.WithLogger(e.logger))
	if err := s.Start(ctx); err != nil {
		closePubSub(ps)
		return nil, nil, fmt.Errorf("start store: %w", err)
	}
	return s, func() {
		s.Stop()
		// queued writes still need the database
		<-s.Done()
		closePubSub(ps)
	}, nil
}

func closePubSub(ps pubsub.PubSub) {
	if c, ok := ps.(interface{ Close() error }); ok {
		c.Close()
	}
}
