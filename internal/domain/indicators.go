package domain

import (
	"fmt"
	"math"
	"strings"
)

// RegionKey is the case- and whitespace-insensitive identity of a region name.
// Stores, lookups and providers key regions by it.
func RegionKey(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// IndicatorSnapshot holds the environmental and socio-digital indicators of one region.
// Supplied by the indicator dataset; read-only for the engine.
type IndicatorSnapshot struct {
	Region string

	// Environmental
	Rainfall    float64 // mm
	Temperature float64 // °C
	CropHealth  float64 // NDVI in [0,1]
	SoilPH      float64

	// Population
	Farmers int64 // total farmer population, positive

	// Socio-digital delivery indicators, all in [0,1]
	IdentityCompletionRate float64 // e-KYC completion
	PaymentDelayRate       float64 // share facing irregular payments
	AmountAdequacyRate     float64 // share finding the amount adequate
	DigitalLiteracyRate    float64
	BiometricFailureRate   float64
	ExclusionErrorRate     float64 // deserving farmers excluded
	InclusionErrorRate     float64 // ineligible individuals included

	// Descriptive soil and market context
	Nitrogen         string // "low" | "medium" | "high"
	Phosphorus       string // "low" | "medium" | "high"
	MarketPriceTrend string // "declining" | "stable" | "rising" | "volatile"
}

// Validate rejects snapshots the engine cannot compute with.
// All failures wrap ErrInvalidIndicatorData.
func (s *IndicatorSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidIndicatorData)
	}

	finite := []struct {
		name  string
		value float64
	}{
		{"rainfall", s.Rainfall},
		{"temperature", s.Temperature},
		{"soil_ph", s.SoilPH},
	}
	for _, f := range finite {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s %s is not finite", ErrInvalidIndicatorData, s.Region, f.name)
		}
	}

	if s.Farmers <= 0 || s.Farmers > MaxFarmers {
		return fmt.Errorf("%w: %s farmers must be in [1, %d], got %d", ErrInvalidIndicatorData, s.Region, MaxFarmers, s.Farmers)
	}

	unit := []struct {
		name  string
		value float64
	}{
		{"crop_ndvi", s.CropHealth},
		{"ekyc_completion_rate", s.IdentityCompletionRate},
		{"payment_delays", s.PaymentDelayRate},
		{"amount_adequacy", s.AmountAdequacyRate},
		{"digital_literacy", s.DigitalLiteracyRate},
		{"biometric_failure_rate", s.BiometricFailureRate},
		{"beneficiary_exclusion_errors", s.ExclusionErrorRate},
		{"inclusion_errors", s.InclusionErrorRate},
	}
	for _, f := range unit {
		// NaN fails both comparisons, so check it explicitly
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s %s must be in [0,1], got %v", ErrInvalidIndicatorData, s.Region, f.name, f.value)
		}
	}

	return nil
}
