package eligibility

import (
	"subsidy-lab/internal/domain"
)

// Basic estimator constants.
const (
	basicMinAdoption = 0.15
	basicMaxAdoption = 0.35

	poorCropHealth      = 0.5 // below: broader need
	strongCropHealth    = 0.8 // above: narrower need
	poorHealthFactor    = 1.5
	strongHealthFactor  = 0.7
	maxAdoptionFraction = 1.0
)

// EstimateBasic computes the optimistic reach of a rule.
// The adoption fraction is drawn uniformly from [0.15, 0.35], scaled by crop health
// and clamped to 1. Payout uses the nominal amount.
// Returns ErrNotTriggered when the rule does not fire.
func EstimateBasic(rule domain.Rule, snap domain.IndicatorSnapshot, rng Rand) (*domain.TriggeredSubsidy, error) {
	if err := fires(rule, snap); err != nil {
		return nil, err
	}

	fraction := BasicAdoption(snap.CropHealth, rng.Float64())

	eligible, err := truncate(float64(snap.Farmers) * fraction)
	if err != nil {
		return nil, err
	}

	payout, err := domain.MulPayout(eligible, rule.Amount)
	if err != nil {
		return nil, err
	}

	return &domain.TriggeredSubsidy{
		SchemeName:      rule.SchemeName,
		Condition:       rule.Condition,
		Amount:          rule.Amount,
		Region:          snap.Region,
		EligibleFarmers: eligible,
		TotalPayout:     payout,
	}, nil
}

// BasicAdoption maps a uniform draw u in [0,1) to the crop-health adjusted adoption fraction.
func BasicAdoption(cropHealth, u float64) float64 {
	fraction := basicMinAdoption + (basicMaxAdoption-basicMinAdoption)*u

	switch {
	case cropHealth < poorCropHealth:
		fraction *= poorHealthFactor
	case cropHealth > strongCropHealth:
		fraction *= strongHealthFactor
	}

	if fraction > maxAdoptionFraction {
		fraction = maxAdoptionFraction
	}
	return fraction
}
