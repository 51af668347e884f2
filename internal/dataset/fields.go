package dataset

import (
	"fmt"
	"math"
	"strings"

	"subsidy-lab/internal/domain"
)

// FieldsPerRegion is the number of field segments surveyed per region.
const FieldsPerRegion = 12

// Per-segment survey profile. NDVI offsets spread segments around the
// regional crop health.
var (
	fieldNDVIOffsets = [FieldsPerRegion]float64{-0.22, -0.16, -0.11, -0.07, -0.03, 0, 0.02, 0.05, 0.09, 0.13, 0.18, 0.24}
	fieldHectares    = [FieldsPerRegion]float64{2.4, 5.1, 1.8, 6.7, 3.3, 0.9, 4.6, 7.2, 2.0, 3.9, 5.5, 1.2}
	fieldCrops       = []string{"Rice", "Wheat", "Cotton", "Sugarcane", "Maize"}
)

// FieldSurvey returns the surveyed field segments of a region, derived from its
// regional crop health. The survey is deterministic.
//
// Stress flags follow NDVI: water stress needs NDVI below 0.6, nutrient
// deficiency below 0.5 and pest damage below 0.4; within a band only some
// segments show the stress.
func FieldSurvey(s domain.IndicatorSnapshot) []domain.FieldObservation {
	prefix := strings.ToUpper(strings.TrimSpace(s.Region))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	out := make([]domain.FieldObservation, FieldsPerRegion)
	for i := range out {
		ndvi := math.Round(clampUnit(s.CropHealth+fieldNDVIOffsets[i])*1000) / 1000
		out[i] = domain.FieldObservation{
			ID:                 fmt.Sprintf("FIELD_%s_%03d", prefix, i+1),
			Region:             s.Region,
			NDVI:               ndvi,
			AreaHectares:       fieldHectares[i],
			CropType:           fieldCrops[i%len(fieldCrops)],
			WaterStress:        ndvi < 0.6 && i%2 == 0,
			NutrientDeficiency: ndvi < 0.5 && i%3 != 2,
			PestDamage:         ndvi < 0.4 && i%2 == 1,
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
