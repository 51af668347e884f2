// Package main runs one simulation from the command line and writes its report:
// - REPORT.md with conditions, rule health, subsidies and districts
// - SUBSIDIES.csv with the triggered subsidy lines
// - DISTRICTS.csv with the district indicators
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"subsidy-lab/internal/app"
	"subsidy-lab/internal/config"
	"subsidy-lab/internal/dataset"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/reporting"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	// Parse flags
	configPath := flag.String("config", os.Getenv("SUBSIDY_CONFIG"), "Path to YAML configuration")
	modeName := flag.String("mode", "realistic", "Simulation mode: basic, realistic or enhanced")
	location := flag.String("location", "", "Location for enhanced runs (default from configuration)")
	rulesPath := flag.String("rules", "", "YAML file of rules to seed before the run")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	// Reports go to files; logs stay on stderr
	logger := cfg.Telemetry.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx := context.Background()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if *rulesPath != "" {
		rules, err := dataset.ReadRules(*rulesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading rules: %v\n", err)
			os.Exit(1)
		}
		if err := dataset.SeedRules(ctx, a.Rules, rules); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding rules: %v\n", err)
			os.Exit(1)
		}
	}

	run, err := simulate(ctx, a, *modeName, *location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		os.Exit(1)
	}

	report, err := a.Reports.FromRun(ctx, run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	files := []struct {
		name    string
		content string
	}{
		{"REPORT.md", reporting.RenderMarkdown(report)},
		{"SUBSIDIES.csv", reporting.RenderCSV(report.Subsidies)},
		{"DISTRICTS.csv", reporting.RenderDistrictCSV(report.Districts)},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(*outputDir, f.name), []byte(f.content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", f.name, err)
			os.Exit(1)
		}
	}

	s := run.Result.Summary
	fmt.Printf("Simulation %s (%s) complete: %d rules triggered, %d farmers, payout %d\n",
		run.Result.RunID, run.Result.Mode, s.RulesTriggered, s.TotalFarmersImpacted, s.TotalPayout)
	if run.Weather != nil {
		fmt.Printf("Weather-adjusted payout: %d (%s severity)\n", run.AdjustedPayout, run.Weather.Severity)
	}
	for _, f := range files {
		fmt.Printf("  - %s\n", filepath.Join(*outputDir, f.name))
	}
}

// simulate runs the requested mode; enhanced runs go through the weather and
// insight collaborators.
func simulate(ctx context.Context, a *app.App, modeName, location string) (*domain.SimulationRun, error) {
	if modeName == "enhanced" {
		out, err := a.Orchestrator.SimulateEnhanced(ctx, location, domain.TriggerCLI)
		if err != nil {
			return nil, err
		}
		return out.Run, nil
	}

	mode, err := app.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	return a.Orchestrator.Simulate(ctx, mode, domain.TriggerCLI)
}
