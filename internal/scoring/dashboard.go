package scoring

import (
	"subsidy-lab/internal/domain"
)

const (
	urgentAvgPercent   = 50.0 // below: urgent outreach recommendations
	manyCriticalRegion = 2    // above: critical-district recommendations
)

// Standing recommendations appended to every dashboard.
var standingRecommendations = []string{
	"Integrate facial recognition backup for biometric failures",
	"Implement predictive payment scheduling",
	"Deploy multilingual support systems",
}

// RegionMetrics is the dashboard row of one region. Percentages have one decimal.
type RegionMetrics struct {
	Region             string
	EfficiencyPercent  float64
	IdentityPercent    float64
	ReliabilityPercent float64
	AdequacyPercent    float64
	LiteracyPercent    float64
	Status             Status
	PrimaryChallenge   string
	Farmers            int64
}

// ChallengeTotals counts affected farmers per barrier across regions.
type ChallengeTotals struct {
	IdentityBarriers  int64
	PaymentDelays     int64
	BiometricFailures int64
	DigitalExclusion  int64
}

// Dashboard is the system-wide efficiency overview.
type Dashboard struct {
	TotalRegions    int
	AvgEfficiency   float64 // percent, one decimal
	CriticalRegions int
	Regions         []RegionMetrics // input order
	Challenges      ChallengeTotals
	Recommendations []string
}

// BuildDashboard scores every snapshot and derives recommendations.
// Returns an error wrapping domain.ErrInvalidIndicatorData for any invalid snapshot.
func BuildDashboard(snapshots []domain.IndicatorSnapshot) (*Dashboard, error) {
	d := &Dashboard{
		TotalRegions: len(snapshots),
		Regions:      make([]RegionMetrics, 0, len(snapshots)),
	}

	var total float64
	for _, s := range snapshots {
		score, err := ScoreEfficiency(s)
		if err != nil {
			return nil, err
		}
		total += score.Index
		if score.Status == StatusCritical {
			d.CriticalRegions++
		}

		d.Regions = append(d.Regions, RegionMetrics{
			Region:             s.Region,
			EfficiencyPercent:  percent(score.Index),
			IdentityPercent:    percent(s.IdentityCompletionRate),
			ReliabilityPercent: percent(1 - s.PaymentDelayRate),
			AdequacyPercent:    percent(s.AmountAdequacyRate),
			LiteracyPercent:    percent(s.DigitalLiteracyRate),
			Status:             score.Status,
			PrimaryChallenge:   score.PrimaryChallenge,
			Farmers:            s.Farmers,
		})

		farmers := float64(s.Farmers)
		d.Challenges.IdentityBarriers += int64(farmers * (1 - s.IdentityCompletionRate))
		d.Challenges.PaymentDelays += int64(farmers * s.PaymentDelayRate)
		d.Challenges.BiometricFailures += int64(farmers * s.BiometricFailureRate)
		d.Challenges.DigitalExclusion += int64(farmers * (1 - s.DigitalLiteracyRate))
	}

	if len(snapshots) > 0 {
		d.AvgEfficiency = percent(total / float64(len(snapshots)))
	}

	if d.AvgEfficiency < urgentAvgPercent {
		d.Recommendations = append(d.Recommendations,
			"Urgent: Implement e-KYC awareness campaigns",
			"Deploy mobile assistance units for digital literacy",
		)
	}
	if d.CriticalRegions > manyCriticalRegion {
		d.Recommendations = append(d.Recommendations,
			"Focus resources on critical districts first",
			"Establish dedicated support centers",
		)
	}
	d.Recommendations = append(d.Recommendations, standingRecommendations...)

	return d, nil
}
