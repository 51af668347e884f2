// Package orchestrator runs simulations end to end.
// It coordinates: rule + indicator loading → simulation → weather adjustment →
// insights → run ledger.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"subsidy-lab/internal/dataset"
	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
	"subsidy-lab/internal/insights"
	"subsidy-lab/internal/observability"
	"subsidy-lab/internal/simulation"
	"subsidy-lab/internal/storage"
	"subsidy-lab/internal/weather"
)

// Defaults for Options.
const (
	DefaultLocation       = "Ludhiana"
	defaultWeatherTimeout = 10 * time.Second
)

// Orchestrator coordinates simulation runs against the stores and collaborators.
type Orchestrator struct {
	// Stores
	ruleStore      storage.RuleStore
	indicatorStore storage.IndicatorStore
	runStore       storage.SimulationRunStore

	// Collaborators
	weather weather.Provider
	advisor *insights.Advisor
	metrics *observability.Metrics

	// Options
	newRand         func() eligibility.Rand
	clock           func() time.Time
	referenceRegion string
	defaultLocation string
	weatherTimeout  time.Duration
	logger          *slog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RuleStore      storage.RuleStore
	IndicatorStore storage.IndicatorStore

	// Optional: runs are not recorded when nil
	RunStore storage.SimulationRunStore

	// Optional collaborators. Without a weather provider enhanced runs carry a
	// WeatherError; without an advisor they carry no insights.
	Weather weather.Provider
	Advisor *insights.Advisor
	Metrics *observability.Metrics

	// NewRand supplies the RNG of each basic-mode run. Nil seeds from the clock.
	NewRand         func() eligibility.Rand
	Clock           func() time.Time
	ReferenceRegion string
	DefaultLocation string
	WeatherTimeout  time.Duration
	Logger          *slog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.ReferenceRegion == "" {
		opts.ReferenceRegion = simulation.DefaultReferenceRegion
	}
	if opts.DefaultLocation == "" {
		opts.DefaultLocation = DefaultLocation
	}
	if opts.WeatherTimeout <= 0 {
		opts.WeatherTimeout = defaultWeatherTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		ruleStore:       opts.RuleStore,
		indicatorStore:  opts.IndicatorStore,
		runStore:        opts.RunStore,
		weather:         opts.Weather,
		advisor:         opts.Advisor,
		metrics:         opts.Metrics,
		newRand:         opts.NewRand,
		clock:           opts.Clock,
		referenceRegion: opts.ReferenceRegion,
		defaultLocation: opts.DefaultLocation,
		weatherTimeout:  opts.WeatherTimeout,
		logger:          opts.Logger.With("component", "orchestrator"),
	}
}

// EnhancedResult is the outcome of a weather- and insight-enriched run.
type EnhancedResult struct {
	Run      *domain.SimulationRun
	Location string
	Weather  *domain.WeatherSnapshot // nil when the provider failed
	Impact   *weather.ImpactSummary  // nil when no adjustment was applied
	Insights *insights.Report        // nil without an advisor
}

// Simulate executes one plain run.
// Phases:
//  1. Load rules and indicator snapshots
//  2. Run the simulation
//  3. Record the run
func (o *Orchestrator) Simulate(ctx context.Context, mode domain.SimulationMode, trigger domain.Trigger) (*domain.SimulationRun, error) {
	start := o.clock()

	result, err := o.simulate(ctx, mode)
	o.recordMetrics(mode, trigger, result, err, start)
	if err != nil {
		return nil, err
	}

	run := &domain.SimulationRun{Result: *result, Trigger: trigger}
	o.persist(ctx, run)
	return run, nil
}

// SimulateEnhanced executes a realistic run enriched with the current weather
// of location and location-specific insights. An empty location uses the default.
// Collaborator failures degrade the result and never fail the run.
// Phases:
//  1. Realistic simulation
//  2. Weather lookup and adjustment
//  3. Location insights
//  4. Record the run
func (o *Orchestrator) SimulateEnhanced(ctx context.Context, location string, trigger domain.Trigger) (*EnhancedResult, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = o.defaultLocation
	}
	start := o.clock()

	// Phase 1
	result, err := o.simulate(ctx, domain.ModeRealistic)
	o.recordMetrics(domain.ModeRealistic, trigger, result, err, start)
	if err != nil {
		return nil, err
	}

	out := &EnhancedResult{
		Run:      &domain.SimulationRun{Result: *result, Trigger: trigger},
		Location: location,
	}
	run := out.Run

	// Phase 2
	w, err := o.CurrentWeather(ctx, location)
	if err != nil {
		run.WeatherError = err.Error()
		o.logger.Warn("enhanced run without weather adjustment", "location", location, "error", err)
	} else {
		adjusted, impact, err := weather.Adjust(result.TriggeredSubsidies, *w)
		var adjustedPayout int64
		if err == nil {
			adjustedPayout, err = sumPayout(adjusted)
		}
		if err != nil {
			run.WeatherError = err.Error()
			o.logger.Warn("weather adjustment rejected", "location", location, "error", err)
		} else {
			out.Weather = w
			out.Impact = &impact
			run.AdjustedSubsidies = adjusted
			run.AdjustedPayout = adjustedPayout
			run.Weather = impactRecord(impact)
		}
	}

	// Phase 3
	if o.advisor != nil {
		report := o.advisor.ForLocation(ctx, location, out.Weather, result)
		out.Insights = &report
		run.InsightCount = report.TotalInsights()
		run.InsightsFallback = report.Fallback
		if report.Fallback {
			o.metrics.RecordInsightFallback()
		}
	}

	// Phase 4
	o.persist(ctx, run)
	return out, nil
}

// Insights produces the system-wide insight report for a simulation result.
func (o *Orchestrator) Insights(ctx context.Context, result *domain.SimulationResult) (*insights.Report, error) {
	if o.advisor == nil {
		return nil, fmt.Errorf("%w: no advisor configured", insights.ErrGeneratorUnavailable)
	}
	report := o.advisor.System(ctx, result)
	if report.Fallback {
		o.metrics.RecordInsightFallback()
	}
	return &report, nil
}

// CurrentWeather fetches the current weather for a district with the
// orchestrator's timeout applied.
func (o *Orchestrator) CurrentWeather(ctx context.Context, region string) (*domain.WeatherSnapshot, error) {
	if o.weather == nil {
		return nil, fmt.Errorf("%w: no provider configured", weather.ErrProviderUnavailable)
	}
	ctx, cancel := context.WithTimeout(ctx, o.weatherTimeout)
	defer cancel()

	w, err := o.weather.Current(ctx, region)
	o.metrics.RecordWeatherFetch(err)
	return w, err
}

// Run returns a recorded run. Returns storage.ErrNotFound without a ledger.
func (o *Orchestrator) Run(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	if o.runStore == nil {
		return nil, storage.ErrNotFound
	}
	return o.runStore.GetByID(ctx, runID)
}

// RecentRuns lists recorded runs, newest first.
func (o *Orchestrator) RecentRuns(ctx context.Context, limit int) ([]*domain.SimulationRun, error) {
	if o.runStore == nil {
		return []*domain.SimulationRun{}, nil
	}
	return o.runStore.ListRecent(ctx, limit)
}

func (o *Orchestrator) simulate(ctx context.Context, mode domain.SimulationMode) (*domain.SimulationResult, error) {
	rules, err := o.loadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	snapshots, err := o.loadSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("load indicators: %w", err)
	}

	lookup := simulation.MapLookup(snapshots)
	o.suggestRegions(rules, lookup, snapshots)

	opts := simulation.Options{
		Mode:            mode,
		Clock:           o.clock,
		ReferenceRegion: o.referenceRegion,
		Logger:          o.logger,
		Dataset:         snapshots,
	}
	if o.newRand != nil {
		opts.Rand = o.newRand()
	}

	result, err := simulation.NewRunner(opts).Run(rules, lookup)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) loadRules(ctx context.Context) ([]domain.Rule, error) {
	stored, err := o.ruleStore.List(ctx)
	if err != nil {
		return nil, err
	}
	rules := make([]domain.Rule, len(stored))
	for i, r := range stored {
		rules[i] = *r
	}
	return rules, nil
}

func (o *Orchestrator) loadSnapshots(ctx context.Context) ([]domain.IndicatorSnapshot, error) {
	stored, err := o.indicatorStore.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]domain.IndicatorSnapshot, len(stored))
	for i, s := range stored {
		snapshots[i] = *s
	}
	return snapshots, nil
}

// suggestRegions logs the closest known region for every rule whose region is unknown.
func (o *Orchestrator) suggestRegions(rules []domain.Rule, lookup simulation.SnapshotLookup, snapshots []domain.IndicatorSnapshot) {
	var known []string
	for _, r := range rules {
		if _, ok := lookup(r.Region); ok {
			continue
		}
		if known == nil {
			known = make([]string, len(snapshots))
			for i, s := range snapshots {
				known[i] = s.Region
			}
		}
		if suggestion, ok := dataset.SuggestRegion(r.Region, known); ok {
			o.logger.Warn("rule targets unknown region", "rule_id", r.ID, "region", r.Region, "did_you_mean", suggestion)
		}
	}
}

// persist records a run in the ledger. Ledger failures are logged, not returned:
// the computed run is still valid for the caller.
func (o *Orchestrator) persist(ctx context.Context, run *domain.SimulationRun) {
	if o.runStore == nil {
		return
	}
	if err := o.runStore.Insert(ctx, run); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			o.logger.Warn("run already recorded", "run_id", run.Result.RunID)
			return
		}
		o.logger.Error("record run failed", "run_id", run.Result.RunID, "error", err)
	}
}

func (o *Orchestrator) recordMetrics(mode domain.SimulationMode, trigger domain.Trigger, result *domain.SimulationResult, err error, start time.Time) {
	outcome := observability.RunOutcome{
		Mode:     string(mode),
		Trigger:  string(trigger),
		Err:      err,
		Duration: o.clock().Sub(start),
	}
	if result != nil {
		s := result.Summary
		outcome.Evaluated = s.RulesEvaluated
		outcome.Triggered = s.RulesTriggered
		outcome.UnknownRegion = s.SkippedUnknownRegion
		outcome.Inert = s.InertRules
		outcome.FarmersImpacted = s.TotalFarmersImpacted
		outcome.Payout = s.TotalPayout
	}
	o.metrics.RecordRun(outcome)
}

func impactRecord(s weather.ImpactSummary) *domain.WeatherImpact {
	return &domain.WeatherImpact{
		Location:          s.Weather.Location,
		Condition:         s.Weather.Condition,
		Temperature:       s.Weather.Temperature,
		Precipitation:     s.Weather.Precipitation,
		TotalImpact:       s.TotalImpact,
		Factor:            s.Factor,
		Severity:          string(s.Severity),
		EmergencyAdded:    s.EmergencyAdded,
		EmergencyEligible: s.EmergencyEligible,
	}
}

func sumPayout(subsidies []domain.TriggeredSubsidy) (int64, error) {
	var total int64
	for _, s := range subsidies {
		var err error
		if total, err = domain.AddPayout(total, s.TotalPayout); err != nil {
			return 0, err
		}
	}
	return total, nil
}
