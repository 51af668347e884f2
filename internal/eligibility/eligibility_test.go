package eligibility

import (
	"errors"
	"math"
	"testing"

	"subsidy-lab/internal/domain"
)

func ahmedabad() domain.IndicatorSnapshot {
	return domain.IndicatorSnapshot{
		Region:                 "Ahmedabad",
		Rainfall:               60,
		Temperature:            35,
		CropHealth:             0.65,
		SoilPH:                 7.2,
		Farmers:                12500,
		IdentityCompletionRate: 0.353,
		PaymentDelayRate:       0.567,
		AmountAdequacyRate:     0.407,
		DigitalLiteracyRate:    0.45,
		BiometricFailureRate:   0.12,
		ExclusionErrorRate:     0.18,
		InclusionErrorRate:     0.08,
	}
}

func droughtRule() domain.Rule {
	return domain.Rule{
		ID:         1,
		SchemeName: "Drought Relief",
		Condition:  "rainfall < 70",
		Amount:     8000,
		Region:     "Ahmedabad",
	}
}

// fixedRand returns the same draw every call.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestEstimateBasic_FixedDraw(t *testing.T) {
	sub, err := EstimateBasic(droughtRule(), ahmedabad(), fixedRand(0.5))
	if err != nil {
		t.Fatalf("EstimateBasic failed: %v", err)
	}

	// fraction = 0.15 + 0.20*0.5 = 0.25, NDVI 0.65 leaves it unchanged
	if sub.EligibleFarmers != 3125 {
		t.Errorf("expected 3125 eligible, got %d", sub.EligibleFarmers)
	}
	if sub.TotalPayout != 3125*8000 {
		t.Errorf("expected payout %d, got %d", 3125*8000, sub.TotalPayout)
	}
	if sub.Amount != 8000 || sub.Region != "Ahmedabad" || sub.Condition != "rainfall < 70" {
		t.Errorf("unexpected subsidy fields: %+v", sub)
	}
}

func TestEstimateBasic_NotTriggered(t *testing.T) {
	rule := droughtRule()
	rule.Condition = "rainfall < 40"

	_, err := EstimateBasic(rule, ahmedabad(), fixedRand(0.5))
	if !errors.Is(err, ErrNotTriggered) {
		t.Fatalf("expected ErrNotTriggered, got %v", err)
	}

	// Inert conditions never fire
	rule.Condition = "humidity > 10"
	_, err = EstimateBasic(rule, ahmedabad(), fixedRand(0.5))
	if !errors.Is(err, ErrNotTriggered) {
		t.Fatalf("expected ErrNotTriggered for inert rule, got %v", err)
	}
}

func TestBasicAdoption(t *testing.T) {
	tests := []struct {
		name       string
		cropHealth float64
		u          float64
		want       float64
	}{
		{"min draw", 0.65, 0, 0.15},
		{"max draw", 0.65, 1, 0.35},
		{"poor health", 0.4, 0.5, 0.375},
		{"strong health", 0.9, 0.5, 0.175},
		{"boundary 0.5 unadjusted", 0.5, 0.5, 0.25},
		{"boundary 0.8 unadjusted", 0.8, 0.5, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BasicAdoption(tt.cropHealth, tt.u)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BasicAdoption(%v, %v) = %v, want %v", tt.cropHealth, tt.u, got, tt.want)
			}
		})
	}
}

func TestEstimateBasic_Bounds(t *testing.T) {
	rng := NewRand(7)
	snap := ahmedabad()

	for _, ndvi := range []float64{0, 0.3, 0.65, 0.9, 1} {
		snap.CropHealth = ndvi
		for i := 0; i < 200; i++ {
			sub, err := EstimateBasic(droughtRule(), snap, rng)
			if err != nil {
				t.Fatalf("EstimateBasic failed: %v", err)
			}
			if sub.EligibleFarmers < 0 || sub.EligibleFarmers > snap.Farmers {
				t.Fatalf("eligible %d out of [0, %d]", sub.EligibleFarmers, snap.Farmers)
			}
			if sub.TotalPayout != sub.EligibleFarmers*sub.Amount {
				t.Fatalf("payout %d != eligible*amount", sub.TotalPayout)
			}
		}
	}
}

func TestEstimateBasic_SeededIdempotent(t *testing.T) {
	a, b := NewRand(42), NewRand(42)
	for i := 0; i < 50; i++ {
		x, err := EstimateBasic(droughtRule(), ahmedabad(), a)
		if err != nil {
			t.Fatalf("EstimateBasic failed: %v", err)
		}
		y, err := EstimateBasic(droughtRule(), ahmedabad(), b)
		if err != nil {
			t.Fatalf("EstimateBasic failed: %v", err)
		}
		if *x != *y {
			t.Fatalf("draw %d: seeded runs differ: %+v vs %+v", i, x, y)
		}
	}
}

func TestEstimateRealistic_Ahmedabad(t *testing.T) {
	sub, report, err := EstimateRealistic(droughtRule(), ahmedabad())
	if err != nil {
		t.Fatalf("EstimateRealistic failed: %v", err)
	}

	if sub.EligibleFarmers != 663 {
		t.Errorf("expected 663 eligible, got %d", sub.EligibleFarmers)
	}
	if sub.TotalPayout != 2427534 {
		t.Errorf("expected payout 2427534, got %d", sub.TotalPayout)
	}
	if sub.Amount != 8000 {
		t.Errorf("expected nominal amount 8000, got %d", sub.Amount)
	}

	stages := []struct {
		name      string
		got, want int64
	}{
		{"after identity", report.AfterIdentity, 1103},
		{"after biometric", report.AfterBiometric, 970},
		{"after exclusion", report.AfterExclusion, 795},
		{"final", report.FinalEligible, 663},
		{"identity gap", report.IdentityGap, 2021},
		{"biometric losses", report.BiometricLosses, 132},
		{"exclusion losses", report.ExclusionLosses, 174},
		{"literacy losses", report.LiteracyLosses, 132},
		{"delay affected", report.DelayAffected, 375},
	}
	for _, s := range stages {
		if s.got != s.want {
			t.Errorf("%s: expected %d, got %d", s.name, s.want, s.got)
		}
	}

	lines := report.Lines()
	want := []string{
		"e-KYC barrier: 2021 farmers",
		"Biometric failures: 132 farmers",
		"Exclusion errors: 174 farmers",
		"Payment delays affecting 375 farmers",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestEstimateRealistic_ReliablePaymentTiming(t *testing.T) {
	snap := ahmedabad()
	snap.PaymentDelayRate = 0.2 // reliability 0.8 > 0.6

	sub, _, err := EstimateRealistic(droughtRule(), snap)
	if err != nil {
		t.Fatalf("EstimateRealistic failed: %v", err)
	}

	// 663 * 8000 * 0.7628 * 0.8
	if sub.TotalPayout != 3236712 {
		t.Errorf("expected payout 3236712, got %d", sub.TotalPayout)
	}
}

func TestEstimateRealistic_StagesNonIncreasing(t *testing.T) {
	rates := []float64{0, 0.01, 0.25, 0.5, 0.75, 0.99, 1}

	for _, id := range rates {
		for _, bio := range rates {
			for _, lit := range rates {
				snap := ahmedabad()
				snap.IdentityCompletionRate = id
				snap.BiometricFailureRate = bio
				snap.ExclusionErrorRate = 1 - bio
				snap.DigitalLiteracyRate = lit

				sub, r, err := EstimateRealistic(droughtRule(), snap)
				if err != nil {
					t.Fatalf("EstimateRealistic failed: %v", err)
				}

				base := int64(float64(snap.Farmers) * realisticBaseAdoption)
				if !(base >= r.AfterIdentity && r.AfterIdentity >= r.AfterBiometric &&
					r.AfterBiometric >= r.AfterExclusion && r.AfterExclusion >= r.FinalEligible &&
					r.FinalEligible >= 0) {
					t.Fatalf("stages increase for %+v: %+v", snap, r)
				}
				if sub.EligibleFarmers > snap.Farmers {
					t.Fatalf("eligible %d exceeds farmers", sub.EligibleFarmers)
				}
			}
		}
	}
}

func TestEstimateRealistic_NotTriggered(t *testing.T) {
	rule := droughtRule()
	rule.Condition = "temperature > 40"

	sub, report, err := EstimateRealistic(rule, ahmedabad())
	if !errors.Is(err, ErrNotTriggered) {
		t.Fatalf("expected ErrNotTriggered, got %v", err)
	}
	if sub != nil || report != nil {
		t.Error("expected nil results for a rule that does not fire")
	}
}

func TestEstimate_InvalidSnapshot(t *testing.T) {
	snap := ahmedabad()
	snap.IdentityCompletionRate = math.NaN()

	if _, _, err := EstimateRealistic(droughtRule(), snap); !errors.Is(err, domain.ErrInvalidIndicatorData) {
		t.Errorf("realistic: expected ErrInvalidIndicatorData, got %v", err)
	}

	snap = ahmedabad()
	snap.Farmers = 0
	if _, err := EstimateBasic(droughtRule(), snap, fixedRand(0.5)); !errors.Is(err, domain.ErrInvalidIndicatorData) {
		t.Errorf("basic: expected ErrInvalidIndicatorData, got %v", err)
	}
}

func TestEstimate_PayoutOverflow(t *testing.T) {
	// Bypasses Rule.Validate, which caps the amount
	rule := droughtRule()
	rule.Amount = 5e15

	if _, err := EstimateBasic(rule, ahmedabad(), fixedRand(0.5)); !errors.Is(err, domain.ErrPayoutOverflow) {
		t.Errorf("basic: expected ErrPayoutOverflow, got %v", err)
	}

	rule.Amount = math.MaxInt64
	if _, _, err := EstimateRealistic(rule, ahmedabad()); !errors.Is(err, domain.ErrPayoutOverflow) {
		t.Errorf("realistic: expected ErrPayoutOverflow, got %v", err)
	}
}
