package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/scoring"
	"subsidy-lab/internal/storage"
)

// Generator produces reports from recorded runs and the indicator dataset.
type Generator struct {
	runStore       storage.SimulationRunStore
	indicatorStore storage.IndicatorStore // optional; no district section when nil
	now            func() time.Time       // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(runStore storage.SimulationRunStore, indicatorStore storage.IndicatorStore) *Generator {
	return &Generator{
		runStore:       runStore,
		indicatorStore: indicatorStore,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report of a recorded run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return g.FromRun(ctx, run)
}

// Latest produces the report of the most recent recorded run.
// Returns storage.ErrNotFound when the ledger is empty.
func (g *Generator) Latest(ctx context.Context) (*Report, error) {
	runs, err := g.runStore.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, storage.ErrNotFound
	}
	return g.FromRun(ctx, runs[0])
}

// FromRun produces the report of a run that is not necessarily recorded.
func (g *Generator) FromRun(ctx context.Context, run *domain.SimulationRun) (*Report, error) {
	res := run.Result

	r := &Report{
		GeneratedAt: g.now(),
		RunID:       res.RunID,
		Mode:        string(res.Mode),
		Trigger:     string(run.Trigger),
		RunAt:       res.Timestamp,
		RuleHealth:  ruleHealth(res),
		Subsidies:   subsidyRows(res.TriggeredSubsidies),
		Totals: TotalsRow{
			RulesEvaluated:  res.Summary.RulesEvaluated,
			RulesTriggered:  res.Summary.RulesTriggered,
			FarmersImpacted: res.Summary.TotalFarmersImpacted,
			TotalPayout:     res.Summary.TotalPayout,
		},
		Challenges: res.Summary.Challenges,
	}

	if c := res.Conditions; c != nil {
		r.Conditions = &ConditionsSection{
			Region:      c.Region,
			Rainfall:    c.Rainfall,
			Temperature: c.Temperature,
			SoilPH:      c.SoilPH,
			CropHealth:  c.CropHealth,
			DataSources: c.DataSources,
		}
	}

	if se := res.Summary.SystemEfficiency; se != nil {
		r.SystemEfficiency = &SystemEfficiencySection{
			IdentityCompletion: percent(se.AvgIdentityCompletion),
			PaymentDelay:       percent(se.AvgPaymentDelay),
			AmountAdequacy:     percent(se.AvgAmountAdequacy),
			OverallScore:       percent(se.OverallScore),
		}
	}

	r.Weather = weatherSection(run)

	if g.indicatorStore != nil {
		districts, err := g.districtRows(ctx)
		if err != nil {
			return nil, err
		}
		r.Districts = districts
	}

	return r, nil
}

// ruleHealth turns the warning counts into checks.
func ruleHealth(res domain.SimulationResult) RuleHealthSection {
	s := res.Summary
	checks := []CheckRow{
		{
			Name:      "Rules with known region",
			Threshold: "skipped = 0",
			Actual:    fmt.Sprintf("skipped = %d", s.SkippedUnknownRegion),
			Pass:      s.SkippedUnknownRegion == 0,
		},
		{
			Name:      "Rules with parseable condition",
			Threshold: "inert = 0",
			Actual:    fmt.Sprintf("inert = %d", s.InertRules),
			Pass:      s.InertRules == 0,
		},
		{
			Name:      "Reference region available",
			Threshold: "present",
			Actual:    presence(res.Conditions != nil),
			Pass:      res.Conditions != nil,
		},
	}

	all := true
	for _, c := range checks {
		all = all && c.Pass
	}
	return RuleHealthSection{Checks: checks, AllChecksPassed: all}
}

func weatherSection(run *domain.SimulationRun) *WeatherSection {
	if run.Weather == nil {
		if run.WeatherError == "" {
			return nil
		}
		return &WeatherSection{Error: run.WeatherError}
	}
	w := run.Weather
	return &WeatherSection{
		Location:          w.Location,
		Condition:         w.Condition,
		Temperature:       w.Temperature,
		Precipitation:     w.Precipitation,
		TotalImpact:       w.TotalImpact,
		Factor:            w.Factor,
		Severity:          w.Severity,
		EmergencyAdded:    w.EmergencyAdded,
		EmergencyEligible: w.EmergencyEligible,
		Adjusted:          subsidyRows(run.AdjustedSubsidies),
		AdjustedPayout:    run.AdjustedPayout,
	}
}

// districtRows scores every stored district, sorted by region.
func (g *Generator) districtRows(ctx context.Context) ([]DistrictRow, error) {
	snapshots, err := g.indicatorStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load indicators: %w", err)
	}

	rows := make([]DistrictRow, 0, len(snapshots))
	for _, s := range snapshots {
		eff, err := scoring.ScoreEfficiency(*s)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", s.Region, err)
		}
		risk, err := scoring.ScoreRisk(*s)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", s.Region, err)
		}
		rows = append(rows, DistrictRow{
			Region:            s.Region,
			Farmers:           s.Farmers,
			EfficiencyPercent: percent(eff.Index),
			Status:            string(eff.Status),
			PrimaryChallenge:  eff.PrimaryChallenge,
			RiskScore:         risk.Score,
			RiskLevel:         string(risk.Level),
			RiskFactors:       risk.Factors,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Region < rows[j].Region })
	return rows, nil
}

func subsidyRows(subsidies []domain.TriggeredSubsidy) []SubsidyRow {
	rows := make([]SubsidyRow, len(subsidies))
	for i, s := range subsidies {
		rows[i] = SubsidyRow{
			SchemeName:      s.SchemeName,
			Condition:       s.Condition,
			Region:          s.Region,
			Amount:          s.Amount,
			EligibleFarmers: s.EligibleFarmers,
			TotalPayout:     s.TotalPayout,
		}
	}
	return rows
}

func percent(rate float64) float64 {
	return math.Round(rate*1000) / 10
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
