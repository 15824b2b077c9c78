package commands

import (
	"context"
	"fmt"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/cache"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/performance"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shield"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/metrics"
)

// runtime bundles what every command needs
type runtime struct {
	cfg       *config.Config
	shieldCfg *shieldconfig.Config
	log       *logger.Logger
	repo      performance.Repository
	engine    *shield.Engine
}

// engineSetup customizes the engine built by bootstrap
type engineSetup struct {
	l2      cache.SecondTier
	metrics *metrics.Recorder
	clock   contracts.Clock
}

// loadConfig reads env config and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if shieldConfig != "" {
		cfg.Shield.ConfigPath = shieldConfig
	}
	return cfg, nil
}

// bootstrap wires config, logger, store and engine
func bootstrap(ctx context.Context, setup engineSetup) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	shieldCfg, _, err := shieldconfig.Load(cfg.Shield.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load shield config: %w", err)
	}

	repo, err := performance.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	clock := setup.clock
	if clock == nil {
		clock = contracts.SystemClock
	}

	engine, err := shield.New(shieldCfg, shield.DefaultAnalyzers(shieldCfg, log, clock), repo, shield.Options{
		Version:    cfg.Shield.Version,
		LogTimeout: cfg.Shield.LogTimeout,
		Cache:      cache.New(cfg.Shield.CacheSize, cfg.Shield.CacheTTL, setup.l2, log, clock),
		Metrics:    setup.metrics,
		Clock:      clock,

		PersonalizeTimeout: cfg.Shield.PersonalizeTimeout,
	}, log)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &runtime{
		cfg:       cfg,
		shieldCfg: shieldCfg,
		log:       log,
		repo:      repo,
		engine:    engine,
	}, nil
}

// Close drains pending writes, then releases the store
func (rt *runtime) Close(ctx context.Context) {
	if err := rt.engine.Close(ctx); err != nil {
		rt.log.WithError(err).Warn("Pending shield writes abandoned")
	}
	if err := rt.repo.Close(); err != nil {
		rt.log.WithError(err).Warn("Failed to close store")
	}
}
