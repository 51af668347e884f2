package scoring

import (
	"fmt"
	"math"

	"subsidy-lab/internal/domain"
)

// NDVI bands of a surveyed field.
const (
	criticalNDVI = 0.5 // below: critical crop stress
	healthyNDVI  = 0.6 // at or above: healthy
)

// FieldBand classifies a field by NDVI.
type FieldBand string

const (
	BandCritical FieldBand = "critical"
	BandModerate FieldBand = "moderate"
	BandHealthy  FieldBand = "healthy"
)

// BandOf classifies an NDVI reading.
func BandOf(ndvi float64) FieldBand {
	switch {
	case ndvi < criticalNDVI:
		return BandCritical
	case ndvi < healthyNDVI:
		return BandModerate
	default:
		return BandHealthy
	}
}

// Satellite-targeted schemes, in allocation order.
const (
	SchemeDroughtRelief = "Emergency Drought Relief (Satellite-Targeted)"
	SchemeFertilizer    = "Precision Fertilizer Subsidy (Satellite-Guided)"
	SchemeIrrigation    = "Irrigation Support Scheme (Satellite-Detected)"
)

// Per-hectare allocations in rupees.
const (
	DroughtReliefPerHectare int64 = 8000
	FertilizerPerHectare    int64 = 3500
	IrrigationPerHectare    int64 = 5000
)

// Issued whenever any scheme allocates funds.
var priorityInterventions = []string{
	"Deploy mobile subsidy units to critical NDVI zones",
	"Fast-track approvals for satellite-verified stress conditions",
	"Coordinate with input suppliers for immediate delivery",
	"Set up field monitoring stations in high-stress areas",
}

// FieldAllocation is the subsidy one field receives under a scheme.
type FieldAllocation struct {
	FieldID      string
	NDVI         float64
	AreaHectares float64
	Amount       int64 // rupees, area times rate rounded to the rupee
}

// TargetedScheme is a scheme allocated to the fields that meet its criterion.
// One farmer is assumed per field.
type TargetedScheme struct {
	Name           string
	Criteria       string
	Urgency        string
	Intervention   string
	RatePerHectare int64
	AreaHectares   float64
	Farmers        int64
	Allocation     int64
	Fields         []FieldAllocation // survey order
}

// FieldAnalysis is the satellite subsidy analysis of one region.
type FieldAnalysis struct {
	Region      string
	TotalFields int
	Critical    int
	Moderate    int
	Healthy     int
	PestDamaged int
	TotalArea   float64

	Schemes               []TargetedScheme // only schemes with at least one field
	TotalCost             int64
	FarmersToBenefit      int64
	PriorityInterventions []string

	// StressedShare is the share of critical and moderate fields, in [0,1].
	StressedShare float64
	// CostPerHectare spreads TotalCost over the surveyed area, two decimals.
	CostPerHectare float64
}

type schemeSpec struct {
	name, criteria, urgency, intervention string
	rate                                  int64
	applies                               func(*domain.FieldObservation) bool
}

var satelliteSchemes = []schemeSpec{
	{
		name:     SchemeDroughtRelief,
		criteria: fmt.Sprintf("NDVI < %g (Critical crop stress)", criticalNDVI),
		urgency:  "High",
		rate:     DroughtReliefPerHectare,
		applies:  func(f *domain.FieldObservation) bool { return BandOf(f.NDVI) == BandCritical },
	},
	{
		name:         SchemeFertilizer,
		criteria:     "Satellite-detected nutrient deficiency",
		urgency:      "Medium",
		intervention: "NPK 10:26:26",
		rate:         FertilizerPerHectare,
		applies:      func(f *domain.FieldObservation) bool { return f.NutrientDeficiency },
	},
	{
		name:         SchemeIrrigation,
		criteria:     "Satellite-detected water stress indicators",
		urgency:      "High",
		intervention: "Drip/Sprinkler irrigation support",
		rate:         IrrigationPerHectare,
		applies:      func(f *domain.FieldObservation) bool { return f.WaterStress },
	},
}

// AnalyzeFields bands the surveyed fields of a region and allocates the
// satellite-targeted schemes against them. A field may qualify for several
// schemes. An empty survey yields a zero analysis.
//
// Returns an error wrapping domain.ErrInvalidIndicatorData for an invalid field,
// or domain.ErrPayoutOverflow when allocations do not fit in int64.
func AnalyzeFields(region string, fields []domain.FieldObservation) (*FieldAnalysis, error) {
	a := &FieldAnalysis{Region: region, TotalFields: len(fields)}

	// 1. Band fields
	for i := range fields {
		f := &fields[i]
		if err := f.Validate(); err != nil {
			return nil, err
		}
		switch BandOf(f.NDVI) {
		case BandCritical:
			a.Critical++
		case BandModerate:
			a.Moderate++
		default:
			a.Healthy++
		}
		if f.PestDamage {
			a.PestDamaged++
		}
		a.TotalArea += f.AreaHectares
	}

	// 2. Allocate schemes
	for _, spec := range satelliteSchemes {
		scheme, err := allocate(spec, fields)
		if err != nil {
			return nil, err
		}
		if scheme == nil {
			continue
		}
		if a.TotalCost, err = domain.AddPayout(a.TotalCost, scheme.Allocation); err != nil {
			return nil, fmt.Errorf("%s total: %w", region, err)
		}
		a.FarmersToBenefit += scheme.Farmers
		a.Schemes = append(a.Schemes, *scheme)
	}

	// 3. Projection
	if a.TotalCost > 0 {
		a.PriorityInterventions = append([]string(nil), priorityInterventions...)
	}
	if a.TotalFields > 0 {
		a.StressedShare = float64(a.Critical+a.Moderate) / float64(a.TotalFields)
	}
	if a.TotalArea > 0 {
		a.CostPerHectare = math.Round(float64(a.TotalCost)/a.TotalArea*100) / 100
	}
	return a, nil
}

// allocate returns nil when no field meets the scheme criterion.
func allocate(spec schemeSpec, fields []domain.FieldObservation) (*TargetedScheme, error) {
	var s *TargetedScheme
	for i := range fields {
		f := &fields[i]
		if !spec.applies(f) {
			continue
		}
		if s == nil {
			s = &TargetedScheme{
				Name:           spec.name,
				Criteria:       spec.criteria,
				Urgency:        spec.urgency,
				Intervention:   spec.intervention,
				RatePerHectare: spec.rate,
			}
		}

		amount, err := domain.FloorPayout(math.Round(f.AreaHectares * float64(spec.rate)))
		if err != nil {
			return nil, fmt.Errorf("%s field %s: %w", spec.name, f.ID, err)
		}
		if s.Allocation, err = domain.AddPayout(s.Allocation, amount); err != nil {
			return nil, fmt.Errorf("%s: %w", spec.name, err)
		}
		s.AreaHectares += f.AreaHectares
		s.Farmers++
		s.Fields = append(s.Fields, FieldAllocation{
			FieldID:      f.ID,
			NDVI:         f.NDVI,
			AreaHectares: f.AreaHectares,
			Amount:       amount,
		})
	}
	return s, nil
}
