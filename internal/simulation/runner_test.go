package simulation

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"testing"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/eligibility"
)

var fixedTime = time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ahmedabad() domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{
		Region: "Ahmedabad", Rainfall: 60, Temperature: 35, CropHealth: 0.65, SoilPH: 7.2, Farmers: 12500,
		IdentityCompletionRate: 0.353, PaymentDelayRate: 0.567, AmountAdequacyRate: 0.407,
		DigitalLiteracyRate: 0.45, BiometricFailureRate: 0.12, ExclusionErrorRate: 0.18, InclusionErrorRate: 0.08,
	}
}

func delhi() domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{
		Region: "Delhi", Rainfall: 40, Temperature: 42, CropHealth: 0.48, SoilPH: 8.2, Farmers: 5500,
		IdentityCompletionRate: 0.51, PaymentDelayRate: 0.38, AmountAdequacyRate: 0.48,
		DigitalLiteracyRate: 0.72, BiometricFailureRate: 0.07, ExclusionErrorRate: 0.10, InclusionErrorRate: 0.04,
	}
}

func testRules() []domain.Rule {
	return []domain.Rule{
		{ID: 1, SchemeName: "Drought Relief", Condition: "rainfall < 70", Amount: 8000, Region: "Ahmedabad"},
		{ID: 2, SchemeName: "Heat Stress Aid", Condition: "temperature > 40", Amount: 4000, Region: "Delhi"},
		{ID: 3, SchemeName: "Flood Relief", Condition: "rainfall > 100", Amount: 6000, Region: "Ahmedabad"},
		{ID: 4, SchemeName: "Ghost Scheme", Condition: "rainfall < 100", Amount: 1000, Region: "Atlantis"},
		{ID: 5, SchemeName: "Typo Scheme", Condition: "humidity > 10", Amount: 1000, Region: "Delhi"},
	}
}

// fixedRand returns the same draw every call.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func newRunner(mode domain.SimulationMode, rng eligibility.Rand) *Runner {
	return NewRunner(Options{
		Mode:   mode,
		Rand:   rng,
		Clock:  func() time.Time { return fixedTime },
		Logger: testLogger(),
	})
}

func TestRunner_Run_Realistic(t *testing.T) {
	lookup := MapLookup([]domain.IndicatorSnapshot{ahmedabad(), delhi()})

	result, err := newRunner(domain.ModeRealistic, nil).Run(testRules(), lookup)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Mode != domain.ModeRealistic || !result.Timestamp.Equal(fixedTime) || result.RunID == "" {
		t.Errorf("unexpected result header: %s %s %q", result.Mode, result.Timestamp, result.RunID)
	}

	// Rule order is kept
	if len(result.TriggeredSubsidies) != 2 {
		t.Fatalf("expected 2 triggered subsidies, got %d", len(result.TriggeredSubsidies))
	}
	first, second := result.TriggeredSubsidies[0], result.TriggeredSubsidies[1]
	if first.SchemeName != "Drought Relief" || second.SchemeName != "Heat Stress Aid" {
		t.Errorf("unexpected order: %s, %s", first.SchemeName, second.SchemeName)
	}
	if first.EligibleFarmers != 663 || first.TotalPayout != 2427534 {
		t.Errorf("unexpected Ahmedabad subsidy: %+v", first)
	}

	s := result.Summary
	if s.RulesEvaluated != 5 || s.RulesTriggered != 2 {
		t.Errorf("evaluated/triggered = %d/%d, want 5/2", s.RulesEvaluated, s.RulesTriggered)
	}
	if s.SkippedUnknownRegion != 1 || s.InertRules != 1 {
		t.Errorf("skipped/inert = %d/%d, want 1/1", s.SkippedUnknownRegion, s.InertRules)
	}
	if s.TotalFarmersImpacted != first.EligibleFarmers+second.EligibleFarmers {
		t.Errorf("farmers impacted %d does not match subsidies", s.TotalFarmersImpacted)
	}
	if s.TotalPayout != first.TotalPayout+second.TotalPayout {
		t.Errorf("payout %d does not match subsidies", s.TotalPayout)
	}
	if len(s.Challenges) != 8 || s.UniqueChallenges != 8 {
		t.Errorf("challenges = %d unique = %d, want 8/8", len(s.Challenges), s.UniqueChallenges)
	}
	if s.Challenges[0] != "e-KYC barrier: 2021 farmers" {
		t.Errorf("unexpected first challenge %q", s.Challenges[0])
	}
	if s.SystemEfficiency == nil {
		t.Fatal("expected system efficiency block")
	}

	if result.Conditions == nil || result.Conditions.Region != "Ahmedabad" || result.Conditions.Rainfall != 60 {
		t.Errorf("unexpected conditions %+v", result.Conditions)
	}
}

func TestRunner_Run_BasicSeededIdempotent(t *testing.T) {
	lookup := MapLookup([]domain.IndicatorSnapshot{ahmedabad(), delhi()})

	a, err := newRunner(domain.ModeBasic, eligibility.NewRand(99)).Run(testRules(), lookup)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := newRunner(domain.ModeBasic, eligibility.NewRand(99)).Run(testRules(), lookup)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(a.TriggeredSubsidies, b.TriggeredSubsidies) {
		t.Errorf("seeded runs differ:\n%+v\n%+v", a.TriggeredSubsidies, b.TriggeredSubsidies)
	}
	if a.Summary.TotalPayout != b.Summary.TotalPayout {
		t.Errorf("payout differs: %d vs %d", a.Summary.TotalPayout, b.Summary.TotalPayout)
	}

	// Basic mode carries no realistic-only fields
	if a.Summary.Challenges != nil || a.Summary.SystemEfficiency != nil {
		t.Errorf("unexpected realistic fields in basic run: %+v", a.Summary)
	}
}

func TestRunner_Run_BasicFixedDraw(t *testing.T) {
	lookup := MapLookup([]domain.IndicatorSnapshot{ahmedabad(), delhi()})

	result, err := newRunner(domain.ModeBasic, fixedRand(0.5)).Run(testRules(), lookup)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Ahmedabad: 12500 * 0.25; Delhi NDVI 0.48: 5500 * 0.375
	want := []int64{3125, 2062}
	for i, sub := range result.TriggeredSubsidies {
		if sub.EligibleFarmers != want[i] {
			t.Errorf("subsidy %d: eligible = %d, want %d", i, sub.EligibleFarmers, want[i])
		}
		if sub.TotalPayout != sub.EligibleFarmers*sub.Amount {
			t.Errorf("subsidy %d: payout %d != eligible*amount", i, sub.TotalPayout)
		}
	}
}

func TestRunner_Run_Empty(t *testing.T) {
	result, err := newRunner(domain.ModeRealistic, nil).Run(nil, MapLookup(nil))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.TriggeredSubsidies) != 0 || result.Summary.TotalPayout != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.Conditions != nil {
		t.Error("expected nil conditions without reference region data")
	}
	if result.Summary.SystemEfficiency != nil {
		t.Error("expected nil system efficiency without data")
	}
}

func TestRunner_Run_InvalidSnapshotFails(t *testing.T) {
	bad := ahmedabad()
	bad.PaymentDelayRate = math.NaN()

	_, err := newRunner(domain.ModeRealistic, nil).Run(testRules(), MapLookup([]domain.IndicatorSnapshot{bad}))
	if !errors.Is(err, domain.ErrInvalidIndicatorData) {
		t.Fatalf("expected ErrInvalidIndicatorData, got %v", err)
	}
}

func TestRunner_Run_UnknownMode(t *testing.T) {
	_, err := newRunner("fancy", nil).Run(testRules(), MapLookup(nil))
	if err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestRunner_Run_DatasetDrivesSystemEfficiency(t *testing.T) {
	runner := NewRunner(Options{
		Mode:    domain.ModeRealistic,
		Clock:   func() time.Time { return fixedTime },
		Logger:  testLogger(),
		Dataset: []domain.IndicatorSnapshot{delhi()},
	})

	result, err := runner.Run(testRules()[:1], MapLookup([]domain.IndicatorSnapshot{ahmedabad()}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := result.Summary.SystemEfficiency.AvgIdentityCompletion; got != 0.51 {
		t.Errorf("expected dataset average 0.51, got %v", got)
	}
}

func TestMapLookup_CaseInsensitive(t *testing.T) {
	lookup := MapLookup([]domain.IndicatorSnapshot{delhi()})
	if _, ok := lookup(" delhi "); !ok {
		t.Error("expected case-insensitive match")
	}
	if _, ok := lookup("Pune"); ok {
		t.Error("expected unknown region")
	}
}

func TestRunner_Run_TotalPayoutOverflow(t *testing.T) {
	// Each line fits in int64 (3125 x 1.6e15 = 5e18); the total does not
	rules := []domain.Rule{
		{ID: 1, SchemeName: "A", Condition: "rainfall < 70", Amount: 1.6e15, Region: "Ahmedabad"},
		{ID: 2, SchemeName: "B", Condition: "rainfall < 70", Amount: 1.6e15, Region: "Ahmedabad"},
	}
	_, err := newRunner(domain.ModeBasic, fixedRand(0.5)).Run(rules, MapLookup([]domain.IndicatorSnapshot{ahmedabad()}))
	if !errors.Is(err, domain.ErrPayoutOverflow) {
		t.Fatalf("expected ErrPayoutOverflow, got %v", err)
	}
}
