// Package app wires configuration into stores, collaborators and the orchestrator.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"subsidy-lab/internal/config"
	"subsidy-lab/internal/dataset"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
	"subsidy-lab/internal/insights"
	"subsidy-lab/internal/observability"
	"subsidy-lab/internal/orchestrator"
	"subsidy-lab/internal/reporting"
	"subsidy-lab/internal/storage"
	chstore "subsidy-lab/internal/storage/clickhouse"
	"subsidy-lab/internal/storage/memory"
	"subsidy-lab/internal/storage/migrations"
	pgstore "subsidy-lab/internal/storage/postgres"
	"subsidy-lab/internal/weather"
)

// App holds the wired components of one process.
type App struct {
	Rules        storage.RuleStore
	Indicators   storage.IndicatorStore
	Runs         storage.SimulationRunStore
	Metrics      *observability.Metrics
	Orchestrator *orchestrator.Orchestrator
	Reports      *reporting.Generator

	closers []func()
}

// New builds every component described by cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{}

	// 1. Stores
	if err := a.openStores(ctx, cfg.Storage, logger); err != nil {
		a.Close()
		return nil, err
	}

	// 2. Reference dataset
	if !cfg.Storage.SkipReferenceData {
		if err := dataset.LoadReference(ctx, a.Indicators); err != nil {
			a.Close()
			return nil, fmt.Errorf("load reference dataset: %w", err)
		}
	}

	// 3. Collaborators
	provider, err := newWeatherProvider(cfg.Weather, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	advisor, err := newAdvisor(cfg.Insights, cfg.Simulation.Seed, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	// 4. Orchestrator and reports
	a.Metrics = observability.NewMetrics(cfg.Telemetry.MetricsNamespace)
	a.Orchestrator = orchestrator.New(orchestrator.Options{
		RuleStore:       a.Rules,
		IndicatorStore:  a.Indicators,
		RunStore:        a.Runs,
		Weather:         provider,
		Advisor:         advisor,
		Metrics:         a.Metrics,
		NewRand:         newRandFunc(cfg.Simulation.Seed),
		ReferenceRegion: cfg.Simulation.ReferenceRegion,
		DefaultLocation: cfg.Simulation.DefaultLocation,
		WeatherTimeout:  cfg.Weather.Timeout,
		Logger:          logger,
	})
	a.Reports = reporting.NewGenerator(a.Runs, a.Indicators)

	return a, nil
}

// Close releases database connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStores(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) error {
	if cfg.Backend == config.BackendMemory {
		a.Rules = memory.NewRuleStore()
		a.Indicators = memory.NewIndicatorStore()
		a.Runs = memory.NewSimulationRunStore()
		logger.Info("using in-memory storage")
		return nil
	}

	// PostgreSQL: rules and indicators
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if cfg.Migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	a.Rules = pgstore.NewRuleStore(pool)
	a.Indicators = pgstore.NewIndicatorStore(pool)

	// ClickHouse: run ledger, memory when not configured
	if cfg.ClickhouseDSN == "" {
		a.Runs = memory.NewSimulationRunStore()
		logger.Info("using postgres storage with in-memory run ledger")
		return nil
	}

	var conn *chstore.Conn
	if cfg.Migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	} else {
		conn, err = chstore.NewConn(ctx, cfg.ClickhouseDSN)
	}
	if err != nil {
		return fmt.Errorf("connect to clickhouse: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := conn.Close(); err != nil {
			logger.Warn("close clickhouse", "error", err)
		}
	})
	a.Runs = chstore.NewSimulationRunStore(conn)
	logger.Info("using postgres storage with clickhouse run ledger")
	return nil
}

func newWeatherProvider(cfg config.WeatherConfig, logger *slog.Logger) (weather.Provider, error) {
	if cfg.Provider == config.WeatherStatic {
		return weather.DefaultStaticProvider(), nil
	}
	client, err := weather.NewClient(weather.ClientOptions{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.Timeout,
		CacheSize:    cfg.CacheSize,
		CacheTTL:     cfg.CacheTTL,
		BreakerFails: cfg.BreakerFailures,
		BreakerOpen:  cfg.BreakerOpen,
		MaxRetries:   cfg.MaxRetries,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create weather client: %w", err)
	}
	return client, nil
}

// newAdvisor always returns an advisor; without a generator it serves fallbacks.
func newAdvisor(cfg config.InsightsConfig, seed uint64, logger *slog.Logger) (*insights.Advisor, error) {
	opts := insights.Options{Timeout: cfg.Timeout, Logger: logger}
	if seed != 0 {
		opts.Rand = eligibility.NewRand(seed)
	}

	if cfg.Provider == config.InsightsGemini {
		gen, err := insights.NewGeminiClient(insights.GeminiOptions{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create insight generator: %w", err)
		}
		opts.Generator = gen
	}
	return insights.NewAdvisor(opts), nil
}

// newRandFunc returns nil for seed 0 so every run seeds from the clock.
func newRandFunc(seed uint64) func() eligibility.Rand {
	if seed == 0 {
		return nil
	}
	return func() eligibility.Rand { return eligibility.NewRand(seed) }
}

// ParseMode converts a configured mode name.
func ParseMode(name string) (domain.SimulationMode, error) {
	switch domain.SimulationMode(name) {
	case domain.ModeBasic, domain.ModeRealistic:
		return domain.SimulationMode(name), nil
	default:
		return "", fmt.Errorf("unknown simulation mode %q", name)
	}
}
