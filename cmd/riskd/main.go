package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"credit-risk/internal/assess"
	"credit-risk/internal/cfg"
	"credit-risk/internal/common"
	"credit-risk/internal/dashboard"
	"credit-risk/internal/metrics"
)

func main() {
	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	if err := cfg.SetupLogging(c, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("logging setup failed")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	p, err := assess.Bootstrap(ctx, c, mw, mw)
	if p != nil && p.Registry != nil {
		m.SetRegistryState(p.Registry.Len(), len(p.Registry.Failures()), len(p.Registry.Rejections()))
		for _, f := range p.Registry.Failures() {
			log.Error().Err(f.Err).Str("model", f.Name).Str("location", f.Location).Msg("Model failed to load")
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrNoUsableModels) {
			log.Fatal().Err(err).Msg("no model could be loaded, refusing to start")
		}
		log.Fatal().Err(err).Msg("startup failed")
	}

	thresholds := p.Assessor.Thresholds()
	srv := dashboard.New(p.Assessor, dashboard.Options{
		Port:         c.HTTPPort,
		Currency:     c.CurrencySymbol,
		Registry:     p.Registry,
		FeatureOrder: c.FeatureOrder,
		Thresholds:   thresholds,
	})
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server")
	}

	log.Info().
		Int("port", c.HTTPPort).
		Strs("models", p.Registry.Names()).
		Float64("low_moderate", thresholds.LowModerate).
		Float64("moderate_high", thresholds.ModerateHigh).
		Msg("Credit risk service ready")

	waitForShutdown(ctx, cancel, srv)
}

func waitForShutdown(ctx context.Context, cancel context.CancelFunc, srv *dashboard.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown timeout, forcing exit")
	}
}
