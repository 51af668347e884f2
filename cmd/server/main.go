// Package main runs the HTTP API server:
// - Rules, simulations, analytics and insights over HTTP
// - Scheduled simulation runs (cron)
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"subsidy-lab/internal/api"
	"subsidy-lab/internal/app"
	"subsidy-lab/internal/config"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	configPath := flag.String("config", os.Getenv("SUBSIDY_CONFIG"), "Path to YAML configuration (defaults and SUBSIDY_* env when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Telemetry.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	// Scheduled runs
	if cfg.Simulation.Schedule != "" {
		mode, err := app.ParseMode(cfg.Simulation.ScheduleMode)
		if err != nil {
			return err
		}
		sched, err := app.NewScheduler(ctx, a.Orchestrator, cfg.Simulation.Schedule, mode, logger)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			<-sched.Stop().Done()
		}()
	}

	handler := api.New(api.Options{
		Orchestrator: a.Orchestrator,
		Rules:        a.Rules,
		Indicators:   a.Indicators,
		Reports:      a.Reports,
		Metrics:      a.Metrics,
		Logger:       logger,
	}).Handler()

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			"addr", cfg.Server.ListenAddress,
			"storage", cfg.Storage.Backend,
			"weather", cfg.Weather.Provider,
			"insights", cfg.Insights.Provider,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal, draining connections", "timeout", cfg.Server.ShutdownTimeout.String())
	}

	// Second signal forces exit
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
