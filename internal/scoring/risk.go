package scoring

import (
	"fmt"

	"subsidy-lab/internal/domain"
)

// Risk factor names.
const (
	FactorDrought    = "drought_risk"
	FactorFlood      = "flood_risk"
	FactorHeat       = "heat_stress"
	FactorCropHealth = "poor_crop_health"
	FactorSoilPH     = "soil_ph_imbalance"
)

// Risk thresholds.
const (
	droughtRainfall = 50.0
	floodRainfall   = 150.0
	heatTemperature = 40.0
	poorNDVI        = 0.6
	minSoilPH       = 6.0
	maxSoilPH       = 8.5

	pointsPerFactor = 20
	highRiskFactors = 3
)

// RiskLevel bands a risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskCheck is one evaluated risk criterion.
type RiskCheck struct {
	Name      string
	Threshold string
	Actual    string
	Present   bool
}

// RiskScore is the agronomic risk of one region.
type RiskScore struct {
	Region  string
	Score   int      // 20 points per present factor
	Factors []string // present factors, in check order
	Level   RiskLevel
	Checks  []RiskCheck
}

// LevelOf bands a factor count.
func LevelOf(factors int) RiskLevel {
	switch {
	case factors >= highRiskFactors:
		return RiskHigh
	case factors >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ScoreRisk evaluates the risk checklist for a snapshot.
// Drought and flood are mutually exclusive by threshold.
func ScoreRisk(s domain.IndicatorSnapshot) (RiskScore, error) {
	if err := s.Validate(); err != nil {
		return RiskScore{}, err
	}

	checks := []RiskCheck{
		{
			Name:      FactorDrought,
			Threshold: fmt.Sprintf("rainfall < %g", droughtRainfall),
			Actual:    fmt.Sprintf("%g", s.Rainfall),
			Present:   s.Rainfall < droughtRainfall,
		},
		{
			Name:      FactorFlood,
			Threshold: fmt.Sprintf("rainfall > %g", floodRainfall),
			Actual:    fmt.Sprintf("%g", s.Rainfall),
			Present:   s.Rainfall > floodRainfall,
		},
		{
			Name:      FactorHeat,
			Threshold: fmt.Sprintf("temperature > %g", heatTemperature),
			Actual:    fmt.Sprintf("%g", s.Temperature),
			Present:   s.Temperature > heatTemperature,
		},
		{
			Name:      FactorCropHealth,
			Threshold: fmt.Sprintf("crop_ndvi < %g", poorNDVI),
			Actual:    fmt.Sprintf("%g", s.CropHealth),
			Present:   s.CropHealth < poorNDVI,
		},
		{
			Name:      FactorSoilPH,
			Threshold: fmt.Sprintf("soil_ph outside [%g, %g]", minSoilPH, maxSoilPH),
			Actual:    fmt.Sprintf("%g", s.SoilPH),
			Present:   s.SoilPH < minSoilPH || s.SoilPH > maxSoilPH,
		},
	}

	factors := make([]string, 0, len(checks))
	for _, c := range checks {
		if c.Present {
			factors = append(factors, c.Name)
		}
	}

	return RiskScore{
		Region:  s.Region,
		Score:   len(factors) * pointsPerFactor,
		Factors: factors,
		Level:   LevelOf(len(factors)),
		Checks:  checks,
	}, nil
}
