package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/thebtf/focusforge/internal/config"
	gormstore "github.com/thebtf/focusforge/internal/db/gorm"
	"github.com/thebtf/focusforge/internal/summary"
	"github.com/thebtf/focusforge/internal/taxonomy"
	"github.com/thebtf/focusforge/internal/timeline"
	"github.com/thebtf/focusforge/internal/watcher"
	"github.com/thebtf/focusforge/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

func runServe(ctx context.Context) error {
	if err := config.EnsureAll(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}

	store, err := gormstore.NewStore(gormstore.Config{
		DSN:      cfg.DSN(),
		MaxConns: cfg.MaxConns,
		LogLevel: logger.Silent,
	})
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info().Str("dialect", store.Dialect()).Msg("Database ready")

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	svc := worker.NewService(Version, cfg, gormstore.NewSessionStore(store), engine)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Start(gctx) })

	if cfg.TaxonomyPath != "" {
		w, err := watcher.New(cfg.TaxonomyPath, func() {
			next, err := buildEngine(cfg)
			if err != nil {
				log.Error().Err(err).Str("path", cfg.TaxonomyPath).Msg("Taxonomy reload failed, keeping previous tables")
				return
			}
			svc.SetEngine(next)
		})
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}

// buildEngine loads the taxonomy named by cfg and wraps it in an engine.
func buildEngine(cfg *config.Config) (*summary.Engine, error) {
	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		return nil, err
	}
	return summary.NewEngine(tax.WithInternalDomains(cfg.InternalDomains...), engineOptions(cfg)), nil
}

func engineOptions(cfg *config.Config) summary.Options {
	return summary.Options{
		Timeline: timeline.Options{
			OpenTailSec: cfg.TailOpenSec,
			MinTailSec:  cfg.TailMinSec,
			MaxTailSec:  cfg.TailMaxSec,
		},
		TopPages: cfg.TopPages,
	}
}
