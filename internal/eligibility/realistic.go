package eligibility

import (
	"fmt"

	"subsidy-lab/internal/domain"
)

// Realistic estimator constants.
const (
	realisticBaseAdoption = 0.25

	// At least 70% of eligible farmers navigate the system with assistance.
	literacyFloor  = 0.7
	literacyWeight = 0.3

	// Inadequate amounts are partially utilized.
	adequacyFloor  = 0.6
	adequacyWeight = 0.4

	reliablePaymentThreshold = 0.6
	reliableTiming           = 0.8
	delayedTiming            = 0.6
)

// ChallengeReport records farmers lost at each delivery barrier.
// Diagnostic only: the payout is computed from the stage counts.
type ChallengeReport struct {
	Region string

	// Stage counts, non-increasing
	AfterIdentity  int64
	AfterBiometric int64
	AfterExclusion int64
	FinalEligible  int64

	// Losses
	IdentityGap     int64 // base eligible farmers without e-KYC
	BiometricLosses int64
	ExclusionLosses int64
	LiteracyLosses  int64
	DelayAffected   int64 // final eligible farmers facing payment delays
}

// Lines renders the report as human-readable challenge lines.
func (c *ChallengeReport) Lines() []string {
	return []string{
		fmt.Sprintf("e-KYC barrier: %d farmers", c.IdentityGap),
		fmt.Sprintf("Biometric failures: %d farmers", c.BiometricLosses),
		fmt.Sprintf("Exclusion errors: %d farmers", c.ExclusionLosses),
		fmt.Sprintf("Payment delays affecting %d farmers", c.DelayAffected),
	}
}

// EstimateRealistic computes the friction-adjusted reach and payout of a rule.
//
// Farmer counts pass through four barriers in order, each truncated before the next:
//  1. e-KYC completion:  floor(F * 0.25 * identity)
//  2. biometric failure: floor(n * (1 - biometric))
//  3. exclusion errors:  floor(n * (1 - exclusion))
//  4. digital literacy:  floor(n * (0.7 + 0.3 * literacy))
//
// Payout is floor(final * amount * (0.6 + 0.4 * adequacy) * timing), where timing is
// 0.8 when payment reliability (1 - delay) exceeds 0.6 and 0.6 otherwise.
// Returns ErrNotTriggered when the rule does not fire.
func EstimateRealistic(rule domain.Rule, snap domain.IndicatorSnapshot) (*domain.TriggeredSubsidy, *ChallengeReport, error) {
	if err := fires(rule, snap); err != nil {
		return nil, nil, err
	}

	report, err := barrierChain(snap)
	if err != nil {
		return nil, nil, err
	}

	effectiveAmount := float64(rule.Amount) * (adequacyFloor + adequacyWeight*snap.AmountAdequacyRate)

	timing := delayedTiming
	if 1-snap.PaymentDelayRate > reliablePaymentThreshold {
		timing = reliableTiming
	}

	payout, err := domain.FloorPayout(float64(report.FinalEligible) * effectiveAmount * timing)
	if err != nil {
		return nil, nil, err
	}

	return &domain.TriggeredSubsidy{
		SchemeName:      rule.SchemeName,
		Condition:       rule.Condition,
		Amount:          rule.Amount,
		Region:          snap.Region,
		EligibleFarmers: report.FinalEligible,
		TotalPayout:     payout,
	}, report, nil
}

// barrierChain applies the sequential barriers and derives the losses.
func barrierChain(snap domain.IndicatorSnapshot) (*ChallengeReport, error) {
	farmers := float64(snap.Farmers)
	r := &ChallengeReport{Region: snap.Region}

	stages := []struct {
		dst *int64
		val func() float64
	}{
		{&r.AfterIdentity, func() float64 { return farmers * realisticBaseAdoption * snap.IdentityCompletionRate }},
		{&r.AfterBiometric, func() float64 { return float64(r.AfterIdentity) * (1 - snap.BiometricFailureRate) }},
		{&r.AfterExclusion, func() float64 { return float64(r.AfterBiometric) * (1 - snap.ExclusionErrorRate) }},
		{&r.FinalEligible, func() float64 {
			return float64(r.AfterExclusion) * (literacyFloor + literacyWeight*snap.DigitalLiteracyRate)
		}},
		{&r.IdentityGap, func() float64 { return farmers * realisticBaseAdoption * (1 - snap.IdentityCompletionRate) }},
		{&r.BiometricLosses, func() float64 { return float64(r.AfterIdentity) * snap.BiometricFailureRate }},
		{&r.ExclusionLosses, func() float64 { return float64(r.AfterBiometric) * snap.ExclusionErrorRate }},
		{&r.DelayAffected, func() float64 { return float64(r.FinalEligible) * snap.PaymentDelayRate }},
	}

	for _, st := range stages {
		n, err := truncate(st.val())
		if err != nil {
			return nil, err
		}
		*st.dst = n
	}
	r.LiteracyLosses = r.AfterExclusion - r.FinalEligible

	return r, nil
}
