package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"subsidy-lab/internal/dataset"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
	"subsidy-lab/internal/insights"
	"subsidy-lab/internal/observability"
	"subsidy-lab/internal/storage"
	"subsidy-lab/internal/storage/memory"
	"subsidy-lab/internal/weather"
)

var fixedTime = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

type failingProvider struct{}

func (failingProvider) Current(context.Context, string) (*domain.WeatherSnapshot, error) {
	return nil, weather.ErrProviderUnavailable
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("quota exceeded")
}

type testEnv struct {
	rules   *memory.RuleStore
	runs    *memory.SimulationRunStore
	metrics *observability.Metrics
}

func newTestEnv(t *testing.T, rules ...domain.Rule) (*testEnv, Options) {
	t.Helper()
	ctx := context.Background()

	env := &testEnv{
		rules:   memory.NewRuleStoreWithClock(func() time.Time { return fixedTime }),
		runs:    memory.NewSimulationRunStore(),
		metrics: observability.NewMetrics("test"),
	}
	indicators := memory.NewIndicatorStore()
	if err := dataset.LoadReference(ctx, indicators); err != nil {
		t.Fatalf("load reference: %v", err)
	}
	for i := range rules {
		if _, err := env.rules.Create(ctx, &rules[i]); err != nil {
			t.Fatalf("create rule: %v", err)
		}
	}

	hot := domain.WeatherSnapshot{Temperature: 38, Humidity: 20, Precipitation: 0, WindSpeed: 10, Condition: "Sunny", UVIndex: 6, Pressure: 1004}

	return env, Options{
		RuleStore:      env.rules,
		IndicatorStore: indicators,
		RunStore:       env.runs,
		Weather:        weather.NewStaticProvider(hot, nil),
		Metrics:        env.metrics,
		Clock:          func() time.Time { return fixedTime },
		Logger:         testLogger(),
	}
}

func droughtRule() domain.Rule {
	return domain.Rule{SchemeName: "Drought Relief", Condition: "rainfall < 70", Amount: 8000, Region: "Ahmedabad"}
}

func TestOrchestrator_Simulate_Realistic(t *testing.T) {
	env, opts := newTestEnv(t,
		droughtRule(),
		domain.Rule{SchemeName: "Ghost", Condition: "rainfall < 100", Amount: 1000, Region: "Ahmedabd"},
	)
	orch := New(opts)

	run, err := orch.Simulate(context.Background(), domain.ModeRealistic, domain.TriggerAPI)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if run.Trigger != domain.TriggerAPI {
		t.Errorf("unexpected trigger %q", run.Trigger)
	}
	res := run.Result
	if len(res.TriggeredSubsidies) != 1 || res.TriggeredSubsidies[0].TotalPayout != 2427534 {
		t.Fatalf("unexpected subsidies %+v", res.TriggeredSubsidies)
	}
	if res.Summary.SkippedUnknownRegion != 1 {
		t.Errorf("expected 1 skipped rule, got %d", res.Summary.SkippedUnknownRegion)
	}
	// System efficiency averages the whole dataset, not only the rule regions
	if res.Summary.SystemEfficiency == nil || res.Summary.SystemEfficiency.AvgIdentityCompletion == 0.353 {
		t.Errorf("expected dataset-wide system efficiency, got %+v", res.Summary.SystemEfficiency)
	}

	stored, err := orch.Run(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("run not recorded: %v", err)
	}
	if stored.Result.Summary.TotalPayout != res.Summary.TotalPayout {
		t.Errorf("recorded payout %d != %d", stored.Result.Summary.TotalPayout, res.Summary.TotalPayout)
	}

	if got := testutil.ToFloat64(env.metrics.SimulationRuns.WithLabelValues("realistic", "api", "success")); got != 1 {
		t.Errorf("expected 1 recorded run metric, got %v", got)
	}
}

func TestOrchestrator_Simulate_BasicWithInjectedRand(t *testing.T) {
	_, opts := newTestEnv(t, droughtRule())
	opts.NewRand = func() eligibility.Rand { return fixedRand(0.5) }

	run, err := New(opts).Simulate(context.Background(), domain.ModeBasic, domain.TriggerCLI)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if got := run.Result.TriggeredSubsidies[0].EligibleFarmers; got != 3125 {
		t.Errorf("expected 3125 eligible, got %d", got)
	}
}

func TestOrchestrator_Simulate_NoRules(t *testing.T) {
	_, opts := newTestEnv(t)

	run, err := New(opts).Simulate(context.Background(), domain.ModeRealistic, domain.TriggerScheduled)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if len(run.Result.TriggeredSubsidies) != 0 || run.Result.Summary.TotalPayout != 0 {
		t.Errorf("expected empty run, got %+v", run.Result)
	}
}

func TestOrchestrator_Simulate_WithoutLedger(t *testing.T) {
	_, opts := newTestEnv(t, droughtRule())
	opts.RunStore = nil
	orch := New(opts)

	run, err := orch.Simulate(context.Background(), domain.ModeRealistic, domain.TriggerAPI)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if _, err := orch.Run(context.Background(), run.Result.RunID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound without ledger, got %v", err)
	}
}

func TestOrchestrator_SimulateEnhanced(t *testing.T) {
	env, opts := newTestEnv(t, droughtRule())
	opts.Advisor = insights.NewAdvisor(insights.Options{
		Generator: failingGenerator{},
		Clock:     func() time.Time { return fixedTime },
		Logger:    testLogger(),
	})

	out, err := New(opts).SimulateEnhanced(context.Background(), "", domain.TriggerAPI)
	if err != nil {
		t.Fatalf("SimulateEnhanced failed: %v", err)
	}

	if out.Location != DefaultLocation {
		t.Errorf("expected default location, got %q", out.Location)
	}
	if out.Weather == nil || out.Weather.Location != "Ludhiana, Punjab" {
		t.Fatalf("unexpected weather %+v", out.Weather)
	}

	run := out.Run
	if run.WeatherError != "" {
		t.Fatalf("unexpected weather error %q", run.WeatherError)
	}
	// 38°C and no rain: impact 0.2 + 0.3, factor 1.5, emergency line added
	if run.Weather == nil || run.Weather.Severity != "High" || !run.Weather.EmergencyAdded {
		t.Fatalf("unexpected impact %+v", run.Weather)
	}
	if len(run.AdjustedSubsidies) != 2 {
		t.Fatalf("expected adjusted line plus emergency line, got %d", len(run.AdjustedSubsidies))
	}
	if got := run.AdjustedSubsidies[0].TotalPayout; got != 3641301 {
		t.Errorf("adjusted payout = %d, want 3641301", got)
	}
	if run.AdjustedPayout != 3641301+5000*663 {
		t.Errorf("total adjusted payout = %d", run.AdjustedPayout)
	}
	// Engine numbers are untouched
	if run.Result.Summary.TotalPayout != 2427534 {
		t.Errorf("base payout changed: %d", run.Result.Summary.TotalPayout)
	}

	if out.Insights == nil || !out.Insights.Fallback || run.InsightCount != 1 || !run.InsightsFallback {
		t.Errorf("expected fallback insights, got %+v", out.Insights)
	}
	if got := testutil.ToFloat64(env.metrics.InsightFallbacks); got != 1 {
		t.Errorf("expected 1 fallback metric, got %v", got)
	}

	stored, err := env.runs.GetByID(context.Background(), run.Result.RunID)
	if err != nil {
		t.Fatalf("enhanced run not recorded: %v", err)
	}
	if stored.Weather == nil || stored.AdjustedPayout != run.AdjustedPayout {
		t.Errorf("recorded run lost weather enrichment: %+v", stored)
	}
}

func TestOrchestrator_SimulateEnhanced_WeatherFailureDegrades(t *testing.T) {
	env, opts := newTestEnv(t, droughtRule())
	opts.Weather = failingProvider{}

	out, err := New(opts).SimulateEnhanced(context.Background(), "Sangrur", domain.TriggerAPI)
	if err != nil {
		t.Fatalf("SimulateEnhanced failed: %v", err)
	}

	if out.Run.WeatherError == "" {
		t.Error("expected weather error to be recorded")
	}
	if out.Weather != nil || out.Impact != nil || out.Run.AdjustedSubsidies != nil {
		t.Error("expected no weather adjustment")
	}
	if out.Insights != nil {
		t.Error("expected no insights without advisor")
	}
	if out.Run.Result.Summary.TotalPayout != 2427534 {
		t.Errorf("unexpected payout %d", out.Run.Result.Summary.TotalPayout)
	}
	if got := testutil.ToFloat64(env.metrics.WeatherFetches.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed fetch metric, got %v", got)
	}
}

func TestOrchestrator_CurrentWeather_NoProvider(t *testing.T) {
	_, opts := newTestEnv(t)
	opts.Weather = nil

	_, err := New(opts).CurrentWeather(context.Background(), "Pune")
	if !errors.Is(err, weather.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOrchestrator_Insights(t *testing.T) {
	_, opts := newTestEnv(t)

	if _, err := New(opts).Insights(context.Background(), nil); !errors.Is(err, insights.ErrGeneratorUnavailable) {
		t.Errorf("expected ErrGeneratorUnavailable without advisor, got %v", err)
	}

	opts.Advisor = insights.NewAdvisor(insights.Options{Logger: testLogger()})
	report, err := New(opts).Insights(context.Background(), &domain.SimulationResult{})
	if err != nil {
		t.Fatalf("Insights failed: %v", err)
	}
	if !report.Fallback || report.Insights[0].Category != "System Analysis" {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestOrchestrator_RecentRuns(t *testing.T) {
	_, opts := newTestEnv(t, droughtRule())
	orch := New(opts)

	for i := 0; i < 3; i++ {
		if _, err := orch.Simulate(context.Background(), domain.ModeRealistic, domain.TriggerScheduled); err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
	}

	runs, err := orch.RecentRuns(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}
