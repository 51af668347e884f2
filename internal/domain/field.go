package domain

import (
	"fmt"
	"math"
)

// MaxFieldHectares bounds a single surveyed field.
const MaxFieldHectares = 10_000.0

// FieldObservation is one satellite-surveyed field segment of a region.
type FieldObservation struct {
	ID           string
	Region       string
	NDVI         float64 // in [0,1]
	AreaHectares float64 // positive
	CropType     string

	// Stress indicators detected from imagery
	WaterStress        bool
	NutrientDeficiency bool
	PestDamage         bool
}

// Validate rejects fields the analysis cannot allocate against.
// All failures wrap ErrInvalidIndicatorData.
func (f *FieldObservation) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil field", ErrInvalidIndicatorData)
	}
	if math.IsNaN(f.NDVI) || f.NDVI < 0 || f.NDVI > 1 {
		return fmt.Errorf("%w: field %s ndvi must be in [0,1], got %v", ErrInvalidIndicatorData, f.ID, f.NDVI)
	}
	if math.IsNaN(f.AreaHectares) || f.AreaHectares <= 0 || f.AreaHectares > MaxFieldHectares {
		return fmt.Errorf("%w: field %s area must be in (0, %g] ha, got %v", ErrInvalidIndicatorData, f.ID, MaxFieldHectares, f.AreaHectares)
	}
	return nil
}
