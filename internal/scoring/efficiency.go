// Package scoring derives district efficiency indices, risk scores and the
// system-wide efficiency dashboard from indicator snapshots.
package scoring

import (
	"math"

	"subsidy-lab/internal/domain"
)

// Efficiency weights, summing to 1.
const (
	weightIdentity  = 0.30
	weightPayment   = 0.25
	weightAdequacy  = 0.20
	weightLiteracy  = 0.15
	weightBiometric = 0.10

	criticalBelow = 0.4
	moderateBelow = 0.6
)

// Status bands an efficiency index.
type Status string

const (
	StatusCritical Status = "critical"
	StatusModerate Status = "moderate"
	StatusGood     Status = "good"
)

// Primary challenge labels, in tie-break order.
const (
	ChallengeIdentity  = "e-KYC barriers"
	ChallengePayment   = "payment delays"
	ChallengeLiteracy  = "digital literacy"
	ChallengeBiometric = "biometric failures"
)

// EfficiencyScore is the delivery efficiency of one region.
type EfficiencyScore struct {
	Region           string
	Index            float64 // in [0,1]
	Status           Status
	PrimaryChallenge string
}

// StatusOf bands an efficiency index.
func StatusOf(index float64) Status {
	switch {
	case index < criticalBelow:
		return StatusCritical
	case index < moderateBelow:
		return StatusModerate
	default:
		return StatusGood
	}
}

// ScoreEfficiency computes the weighted efficiency index of a snapshot.
func ScoreEfficiency(s domain.IndicatorSnapshot) (EfficiencyScore, error) {
	if err := s.Validate(); err != nil {
		return EfficiencyScore{}, err
	}

	index := efficiencyIndex(s)
	return EfficiencyScore{
		Region:           s.Region,
		Index:            index,
		Status:           StatusOf(index),
		PrimaryChallenge: PrimaryChallenge(s),
	}, nil
}

func efficiencyIndex(s domain.IndicatorSnapshot) float64 {
	return s.IdentityCompletionRate*weightIdentity +
		(1-s.PaymentDelayRate)*weightPayment +
		s.AmountAdequacyRate*weightAdequacy +
		s.DigitalLiteracyRate*weightLiteracy +
		(1-s.BiometricFailureRate)*weightBiometric
}

// PrimaryChallenge returns the barrier with the largest deficiency.
// Ties go to the earlier barrier.
func PrimaryChallenge(s domain.IndicatorSnapshot) string {
	barriers := []struct {
		label string
		value float64
	}{
		{ChallengeIdentity, 1 - s.IdentityCompletionRate},
		{ChallengePayment, s.PaymentDelayRate},
		{ChallengeLiteracy, 1 - s.DigitalLiteracyRate},
		{ChallengeBiometric, s.BiometricFailureRate},
	}

	best := barriers[0]
	for _, b := range barriers[1:] {
		if b.value > best.value {
			best = b
		}
	}
	return best.label
}

// SystemEfficiency averages delivery indicators across snapshots.
// Returns nil for an empty dataset.
func SystemEfficiency(snapshots []domain.IndicatorSnapshot) *domain.SystemEfficiency {
	if len(snapshots) == 0 {
		return nil
	}

	var ekyc, delay, adequacy float64
	for _, s := range snapshots {
		ekyc += s.IdentityCompletionRate
		delay += s.PaymentDelayRate
		adequacy += s.AmountAdequacyRate
	}
	n := float64(len(snapshots))
	ekyc, delay, adequacy = ekyc/n, delay/n, adequacy/n

	return &domain.SystemEfficiency{
		AvgIdentityCompletion: ekyc,
		AvgPaymentDelay:       delay,
		AvgAmountAdequacy:     adequacy,
		OverallScore:          (1 - delay) * ekyc * adequacy,
	}
}

// percent converts a rate to a percentage rounded to one decimal.
func percent(rate float64) float64 {
	return math.Round(rate*1000) / 10
}
