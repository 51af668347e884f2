// Package weather adjusts triggered subsidies for current weather stress and
// supplies weather snapshots from offline or HTTP providers.
package weather

import (
	"errors"
	"fmt"
	"math"

	"subsidy-lab/internal/domain"
)

// ErrInvalidWeatherData is returned when a weather snapshot carries non-finite readings.
var ErrInvalidWeatherData = errors.New("invalid weather data")

// Impact thresholds and contributions.
const (
	heatThreshold  = 35.0 // °C, strictly above
	coldThreshold  = 10.0 // °C, strictly below
	floodThreshold = 50.0 // mm precipitation, strictly above
	galeThreshold  = 25.0 // km/h, strictly above
	uvThreshold    = 8.0

	temperatureImpact = 0.20
	droughtImpact     = 0.30
	floodImpact       = 0.25
	windImpact        = 0.15
	uvImpact          = 0.10

	emergencyThreshold = 0.3 // total above this adds the relief line
	mediumThreshold    = 0.1
)

// Emergency relief line.
const (
	EmergencySchemeName = "Emergency Weather Relief"
	EmergencyAmount     = 5000
	EmergencyRegion     = "All Districts"
	adjustedSuffix      = " (Weather-Adjusted)"
)

// Severity classifies the total weather impact.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ImpactFactors holds the per-hazard contributions. Zero means the hazard is absent.
type ImpactFactors struct {
	Temperature   float64
	Precipitation float64
	Wind          float64
	UV            float64
}

// Total sums the contributions in a fixed order.
func (f ImpactFactors) Total() float64 {
	return f.Temperature + f.Precipitation + f.Wind + f.UV
}

// ImpactSummary describes how weather changed a subsidy list.
type ImpactSummary struct {
	Weather           domain.WeatherSnapshot
	Factors           ImpactFactors
	TotalImpact       float64
	Factor            float64 // 1 + TotalImpact, always >= 1
	Severity          Severity
	EmergencyAdded    bool
	EmergencyEligible int64
}

// DisplayFactor returns the enhancement factor rounded to two decimals.
func (s ImpactSummary) DisplayFactor() float64 {
	return math.Round(s.Factor*100) / 100
}

// Factors computes the hazard contributions for a snapshot.
func Factors(w domain.WeatherSnapshot) ImpactFactors {
	var f ImpactFactors

	if w.Temperature > heatThreshold || w.Temperature < coldThreshold {
		f.Temperature = temperatureImpact
	}

	switch {
	case w.Precipitation == 0:
		f.Precipitation = droughtImpact
	case w.Precipitation > floodThreshold:
		f.Precipitation = floodImpact
	}

	if w.WindSpeed > galeThreshold {
		f.Wind = windImpact
	}
	if w.UVIndex > uvThreshold {
		f.UV = uvImpact
	}

	return f
}

// SeverityOf classifies a total impact.
func SeverityOf(total float64) Severity {
	switch {
	case total > emergencyThreshold:
		return SeverityHigh
	case total > mediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Adjust scales every subsidy by 1 + total impact and, when the impact is severe,
// appends an emergency relief line covering all farmers in the input list.
// The input slice is not modified.
func Adjust(subsidies []domain.TriggeredSubsidy, w domain.WeatherSnapshot) ([]domain.TriggeredSubsidy, ImpactSummary, error) {
	if err := w.Validate(); err != nil {
		return nil, ImpactSummary{}, fmt.Errorf("%w: %v", ErrInvalidWeatherData, err)
	}

	factors := Factors(w)
	total := factors.Total()
	factor := 1 + total

	summary := ImpactSummary{
		Weather:     w,
		Factors:     factors,
		TotalImpact: total,
		Factor:      factor,
		Severity:    SeverityOf(total),
	}

	adjusted := make([]domain.TriggeredSubsidy, 0, len(subsidies)+1)
	var eligible int64
	for _, s := range subsidies {
		eligible += s.EligibleFarmers

		amount, err := domain.FloorPayout(float64(s.Amount) * factor)
		if err != nil {
			return nil, ImpactSummary{}, fmt.Errorf("adjust %s: %w", s.SchemeName, err)
		}
		payout, err := domain.FloorPayout(float64(s.TotalPayout) * factor)
		if err != nil {
			return nil, ImpactSummary{}, fmt.Errorf("adjust %s: %w", s.SchemeName, err)
		}
		s.SchemeName += adjustedSuffix
		s.Amount = amount
		s.TotalPayout = payout
		adjusted = append(adjusted, s)
	}

	if total > emergencyThreshold {
		payout, err := domain.MulPayout(EmergencyAmount, eligible)
		if err != nil {
			return nil, ImpactSummary{}, fmt.Errorf("emergency relief: %w", err)
		}
		adjusted = append(adjusted, domain.TriggeredSubsidy{
			SchemeName:      EmergencySchemeName,
			Condition:       "Severe weather conditions: " + w.Condition,
			Amount:          EmergencyAmount,
			Region:          EmergencyRegion,
			EligibleFarmers: eligible,
			TotalPayout:     payout,
		})
		summary.EmergencyAdded = true
		summary.EmergencyEligible = eligible
	}

	return adjusted, summary, nil
}
