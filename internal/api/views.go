package api

import (
	"fmt"
	"math"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/insights"
	"subsidy-lab/internal/orchestrator"
	"subsidy-lab/internal/scoring"
	"subsidy-lab/internal/weather"
)

// JSON field names match the web dashboard that consumes this API.

type ruleRequest struct {
	SchemeName string `json:"schemeName"`
	Condition  string `json:"condition"`
	Amount     int64  `json:"amount"`
	District   string `json:"district"`
}

func (r ruleRequest) toDomain() *domain.Rule {
	return &domain.Rule{
		SchemeName: r.SchemeName,
		Condition:  r.Condition,
		Amount:     r.Amount,
		Region:     r.District,
	}
}

type ruleView struct {
	ID         int64     `json:"id"`
	SchemeName string    `json:"schemeName"`
	Condition  string    `json:"condition"`
	Amount     int64     `json:"amount"`
	District   string    `json:"district"`
	CreatedAt  time.Time `json:"created_at"`
}

func newRuleView(r *domain.Rule) ruleView {
	return ruleView{
		ID:         r.ID,
		SchemeName: r.SchemeName,
		Condition:  r.Condition,
		Amount:     r.Amount,
		District:   r.Region,
		CreatedAt:  r.CreatedAt,
	}
}

type subsidyView struct {
	SchemeName      string `json:"schemeName"`
	Condition       string `json:"condition"`
	Amount          int64  `json:"amount"`
	District        string `json:"district"`
	EligibleFarmers int64  `json:"eligibleFarmers"`
	TotalPayout     int64  `json:"totalPayout"`
}

func newSubsidyViews(subsidies []domain.TriggeredSubsidy) []subsidyView {
	out := make([]subsidyView, len(subsidies))
	for i, s := range subsidies {
		out[i] = subsidyView{
			SchemeName:      s.SchemeName,
			Condition:       s.Condition,
			Amount:          s.Amount,
			District:        s.Region,
			EligibleFarmers: s.EligibleFarmers,
			TotalPayout:     s.TotalPayout,
		}
	}
	return out
}

// subsidiesFromViews is the inverse of newSubsidyViews, used for caller-supplied results.
func subsidiesFromViews(views []subsidyView) []domain.TriggeredSubsidy {
	out := make([]domain.TriggeredSubsidy, len(views))
	for i, v := range views {
		out[i] = domain.TriggeredSubsidy{
			SchemeName:      v.SchemeName,
			Condition:       v.Condition,
			Amount:          v.Amount,
			Region:          v.District,
			EligibleFarmers: v.EligibleFarmers,
			TotalPayout:     v.TotalPayout,
		}
	}
	return out
}

var realisticChallenges = []string{"e-KYC barriers", "biometric failures", "payment delays", "digital exclusion"}

type conditionsView struct {
	Rainfall           float64  `json:"rainfall"`
	Temperature        float64  `json:"temperature"`
	District           string   `json:"district"`
	SoilPH             float64  `json:"soil_ph"`
	CropNDVI           float64  `json:"crop_ndvi"`
	DataSources        string   `json:"data_sources"`
	SimulationType     string   `json:"simulation_type,omitempty"`
	ChallengesIncluded []string `json:"challenges_included,omitempty"`
}

func newConditionsView(c *domain.ConditionsSummary, mode domain.SimulationMode) *conditionsView {
	if c == nil {
		return nil
	}
	v := &conditionsView{
		Rainfall:    c.Rainfall,
		Temperature: c.Temperature,
		District:    c.Region,
		SoilPH:      c.SoilPH,
		CropNDVI:    c.CropHealth,
		DataSources: c.DataSources,
	}
	if mode == domain.ModeRealistic {
		v.SimulationType = "Realistic (Research-Based)"
		v.ChallengesIncluded = realisticChallenges
	}
	return v
}

type efficiencyView struct {
	AvgEkycCompletion      string `json:"avgEkycCompletion"`
	AvgPaymentDelays       string `json:"avgPaymentDelays"`
	AvgAmountAdequacy      string `json:"avgAmountAdequacy"`
	OverallEfficiencyScore string `json:"overallEfficiencyScore"`
}

type summaryView struct {
	TotalRulesTriggered  int             `json:"totalRulesTriggered"`
	TotalFarmersImpacted int64           `json:"totalFarmersImpacted"`
	TotalPayoutAmount    int64           `json:"totalPayoutAmount"`
	RulesEvaluated       int             `json:"rulesEvaluated"`
	SkippedUnknownRegion int             `json:"skippedUnknownRegion"`
	InertRules           int             `json:"inertRules"`
	SystemEfficiency     *efficiencyView `json:"systemEfficiency,omitempty"`
	RealWorldChallenges  *int            `json:"realWorldChallenges,omitempty"`
	Challenges           []string        `json:"challenges,omitempty"`

	// Enhanced runs only
	WeatherImpact       *weatherImpactView `json:"weather_impact,omitempty"`
	AIRecommendations   *int               `json:"ai_recommendations,omitempty"`
	EnhancementFactor   *float64           `json:"enhancement_factor,omitempty"`
	AdjustedPayout      *int64             `json:"weather_adjusted_payout,omitempty"`
	WeatherUnavailable  string             `json:"weather_error,omitempty"`
	InsightsUnavailable bool               `json:"ai_fallback,omitempty"`
}

func newSummaryView(s domain.SimulationSummary, mode domain.SimulationMode) summaryView {
	v := summaryView{
		TotalRulesTriggered:  s.RulesTriggered,
		TotalFarmersImpacted: s.TotalFarmersImpacted,
		TotalPayoutAmount:    s.TotalPayout,
		RulesEvaluated:       s.RulesEvaluated,
		SkippedUnknownRegion: s.SkippedUnknownRegion,
		InertRules:           s.InertRules,
	}
	if mode == domain.ModeRealistic {
		unique := s.UniqueChallenges
		v.RealWorldChallenges = &unique
		v.Challenges = s.Challenges
	}
	if e := s.SystemEfficiency; e != nil {
		v.SystemEfficiency = &efficiencyView{
			AvgEkycCompletion:      percent(e.AvgIdentityCompletion),
			AvgPaymentDelays:       percent(e.AvgPaymentDelay),
			AvgAmountAdequacy:      percent(e.AvgAmountAdequacy),
			OverallEfficiencyScore: percent(e.OverallScore),
		}
	}
	return v
}

type simulationView struct {
	RunID              string          `json:"runId"`
	Mode               string          `json:"mode"`
	Trigger            string          `json:"trigger,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
	Conditions         *conditionsView `json:"conditions"`
	TriggeredSubsidies []subsidyView   `json:"triggeredSubsidies"`
	Summary            summaryView     `json:"summary"`
}

func newSimulationView(run *domain.SimulationRun) simulationView {
	res := run.Result
	return simulationView{
		RunID:              res.RunID,
		Mode:               string(res.Mode),
		Trigger:            string(run.Trigger),
		Timestamp:          res.Timestamp,
		Conditions:         newConditionsView(res.Conditions, res.Mode),
		TriggeredSubsidies: newSubsidyViews(res.TriggeredSubsidies),
		Summary:            newSummaryView(res.Summary, res.Mode),
	}
}

type weatherView struct {
	Location      string  `json:"location"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	WindSpeed     float64 `json:"wind_speed"`
	Condition     string  `json:"condition"`
	UVIndex       float64 `json:"uv_index"`
	Pressure      float64 `json:"pressure"`
}

func newWeatherView(w *domain.WeatherSnapshot) *weatherView {
	if w == nil {
		return nil
	}
	return &weatherView{
		Location:      w.Location,
		Temperature:   w.Temperature,
		Humidity:      w.Humidity,
		Precipitation: w.Precipitation,
		WindSpeed:     w.WindSpeed,
		Condition:     w.Condition,
		UVIndex:       w.UVIndex,
		Pressure:      w.Pressure,
	}
}

type weatherImpactView struct {
	WeatherCondition  string             `json:"weather_condition"`
	RiskLevel         string             `json:"risk_level"`
	ImpactFactors     map[string]float64 `json:"impact_factors"`
	EmergencyTriggers bool               `json:"emergency_triggers"`
}

func newWeatherImpactView(s *weather.ImpactSummary) *weatherImpactView {
	return &weatherImpactView{
		WeatherCondition: s.Weather.Condition,
		RiskLevel:        string(s.Severity),
		ImpactFactors: map[string]float64{
			"temperature_stress":   s.Factors.Temperature,
			"precipitation_impact": s.Factors.Precipitation,
			"wind_damage_risk":     s.Factors.Wind,
			"uv_stress":            s.Factors.UV,
		},
		EmergencyTriggers: s.EmergencyAdded,
	}
}

type insightView struct {
	Category        string   `json:"category"`
	Insight         string   `json:"insight"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	RiskFactors     []string `json:"risk_factors"`
}

func newInsightViews(r *insights.Report) []insightView {
	if r == nil {
		return []insightView{}
	}
	out := make([]insightView, len(r.Insights))
	for i, in := range r.Insights {
		out[i] = insightView{
			Category:        in.Category,
			Insight:         in.Text,
			Confidence:      in.Confidence,
			Recommendations: in.Recommendations,
			RiskFactors:     in.RiskFactors,
		}
	}
	return out
}

type insightSummaryView struct {
	TotalInsights     int     `json:"total_insights"`
	AvgConfidence     float64 `json:"avg_confidence"`
	KeyRecommendation string  `json:"key_recommendation"`
	WeatherContext    string  `json:"weather_context,omitempty"`
	Note              string  `json:"note,omitempty"`
}

type insightReportView struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Location    string             `json:"location,omitempty"`
	Insights    []insightView      `json:"insights"`
	Summary     insightSummaryView `json:"summary"`
}

func newInsightReportView(r *insights.Report) insightReportView {
	return insightReportView{
		GeneratedAt: r.GeneratedAt,
		Location:    r.Location,
		Insights:    newInsightViews(r),
		Summary: insightSummaryView{
			TotalInsights:     r.TotalInsights(),
			AvgConfidence:     r.AvgConfidence,
			KeyRecommendation: r.KeyRecommendation,
			WeatherContext:    r.WeatherContext,
			Note:              r.Note,
		},
	}
}

type enhancedView struct {
	simulationView
	Location    string        `json:"location"`
	WeatherData *weatherView  `json:"weather_data"`
	AIInsights  []insightView `json:"ai_insights"`
	Severity    string        `json:"severity"`
	Description string        `json:"description"`
}

// newEnhancedView reports the weather-adjusted lines when an adjustment was applied
// and the engine lines otherwise.
func newEnhancedView(out *orchestrator.EnhancedResult) enhancedView {
	run := out.Run
	v := enhancedView{
		simulationView: newSimulationView(run),
		Location:       out.Location,
		WeatherData:    newWeatherView(out.Weather),
		AIInsights:     newInsightViews(out.Insights),
		Severity:       "Unknown",
		Description:    fmt.Sprintf("Weather data unavailable for %s; showing unadjusted subsidies", out.Location),
	}

	if out.Impact != nil {
		v.TriggeredSubsidies = newSubsidyViews(run.AdjustedSubsidies)
		v.Summary.WeatherImpact = newWeatherImpactView(out.Impact)
		factor := out.Impact.DisplayFactor()
		v.Summary.EnhancementFactor = &factor
		adjusted := run.AdjustedPayout
		v.Summary.AdjustedPayout = &adjusted
		v.Severity = string(out.Impact.Severity)
		v.Description = fmt.Sprintf("%s weather impact in %s: %s, enhancement factor %.2f",
			out.Impact.Severity, out.Location, out.Impact.Weather.Condition, factor)
	}
	v.Summary.WeatherUnavailable = run.WeatherError

	if out.Insights != nil {
		n := out.Insights.TotalInsights()
		v.Summary.AIRecommendations = &n
		v.Summary.InsightsUnavailable = out.Insights.Fallback
	}
	return v
}

type riskView struct {
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
	Level   string   `json:"level"`
}

type districtView struct {
	Rainfall               float64           `json:"rainfall"`
	Temperature            float64           `json:"temperature"`
	Farmers                int64             `json:"farmers"`
	SoilHealth             map[string]any    `json:"soil_health"`
	CropNDVI               float64           `json:"crop_ndvi"`
	MarketPriceTrend       string            `json:"market_price_trend"`
	EkycCompletionRate     float64           `json:"ekyc_completion_rate"`
	PaymentDelays          float64           `json:"payment_delays"`
	AmountAdequacy         float64           `json:"amount_adequacy"`
	DigitalLiteracy        float64           `json:"digital_literacy"`
	BiometricFailureRate   float64           `json:"biometric_failure_rate"`
	ExclusionErrors        float64           `json:"beneficiary_exclusion_errors"`
	InclusionErrors        float64           `json:"inclusion_errors"`
	DataSources            map[string]string `json:"data_sources"`
	LastUpdated            time.Time         `json:"last_updated"`
	Risk                   riskView          `json:"risk_score"`
	EfficiencyIndexPercent float64           `json:"efficiency_score"`
	EfficiencyStatus       string            `json:"efficiency_status"`
}

var districtSources = map[string]string{
	"weather":   "Weatherbit.io API",
	"soil":      "Krishi-DSS Portal",
	"satellite": "EOSDA NDVI",
	"market":    "AGMARKNET",
}

func newDistrictView(s *domain.IndicatorSnapshot, risk scoring.RiskScore, eff scoring.EfficiencyScore, now time.Time) districtView {
	factors := risk.Factors
	if factors == nil {
		factors = []string{}
	}
	return districtView{
		Rainfall:    s.Rainfall,
		Temperature: s.Temperature,
		Farmers:     s.Farmers,
		SoilHealth: map[string]any{
			"ph":         s.SoilPH,
			"nitrogen":   s.Nitrogen,
			"phosphorus": s.Phosphorus,
		},
		CropNDVI:               s.CropHealth,
		MarketPriceTrend:       s.MarketPriceTrend,
		EkycCompletionRate:     s.IdentityCompletionRate,
		PaymentDelays:          s.PaymentDelayRate,
		AmountAdequacy:         s.AmountAdequacyRate,
		DigitalLiteracy:        s.DigitalLiteracyRate,
		BiometricFailureRate:   s.BiometricFailureRate,
		ExclusionErrors:        s.ExclusionErrorRate,
		InclusionErrors:        s.InclusionErrorRate,
		DataSources:            districtSources,
		LastUpdated:            now,
		Risk:                   riskView{Score: risk.Score, Factors: factors, Level: string(risk.Level)},
		EfficiencyIndexPercent: roundPercent(eff.Index),
		EfficiencyStatus:       string(eff.Status),
	}
}

type districtMetricsView struct {
	EfficiencyScore    float64 `json:"efficiency_score"`
	EkycCompletion     float64 `json:"ekyc_completion"`
	PaymentReliability float64 `json:"payment_reliability"`
	AmountAdequacy     float64 `json:"amount_adequacy"`
	DigitalLiteracy    float64 `json:"digital_literacy"`
	Status             string  `json:"status"`
	PrimaryChallenge   string  `json:"primary_challenge"`
	FarmersAffected    int64   `json:"farmers_affected"`
}

type dashboardView struct {
	Overview struct {
		TotalDistricts    int       `json:"total_districts"`
		AvgEfficiency     float64   `json:"avg_efficiency"`
		CriticalDistricts int       `json:"critical_districts"`
		LastUpdated       time.Time `json:"last_updated"`
	} `json:"overview"`
	DistrictMetrics   map[string]districtMetricsView `json:"district_metrics"`
	ChallengesSummary map[string]int64               `json:"challenges_summary"`
	Recommendations   []string                       `json:"recommendations"`
}

func newDashboardView(d *scoring.Dashboard, now time.Time) dashboardView {
	var v dashboardView
	v.Overview.TotalDistricts = d.TotalRegions
	v.Overview.AvgEfficiency = d.AvgEfficiency
	v.Overview.CriticalDistricts = d.CriticalRegions
	v.Overview.LastUpdated = now

	v.DistrictMetrics = make(map[string]districtMetricsView, len(d.Regions))
	for _, m := range d.Regions {
		v.DistrictMetrics[m.Region] = districtMetricsView{
			EfficiencyScore:    m.EfficiencyPercent,
			EkycCompletion:     m.IdentityPercent,
			PaymentReliability: m.ReliabilityPercent,
			AmountAdequacy:     m.AdequacyPercent,
			DigitalLiteracy:    m.LiteracyPercent,
			Status:             string(m.Status),
			PrimaryChallenge:   m.PrimaryChallenge,
			FarmersAffected:    m.Farmers,
		}
	}
	v.ChallengesSummary = map[string]int64{
		"ekyc_barriers":      d.Challenges.IdentityBarriers,
		"payment_delays":     d.Challenges.PaymentDelays,
		"biometric_failures": d.Challenges.BiometricFailures,
		"digital_exclusion":  d.Challenges.DigitalExclusion,
	}
	v.Recommendations = d.Recommendations
	return v
}

type fieldAllocationView struct {
	FieldID       string  `json:"field_id"`
	NDVI          float64 `json:"ndvi"`
	Area          float64 `json:"area"`
	SubsidyAmount int64   `json:"subsidy_amount"`
	Intervention  string  `json:"intervention,omitempty"`
}

type targetedSchemeView struct {
	SchemeName          string                `json:"scheme_name"`
	TargetFields        int                   `json:"target_fields"`
	EligibilityCriteria string                `json:"eligibility_criteria"`
	AmountPerHectare    int64                 `json:"amount_per_hectare"`
	TotalArea           float64               `json:"total_area"`
	EstimatedFarmers    int64                 `json:"estimated_farmers"`
	TotalAllocation     int64                 `json:"total_allocation"`
	Urgency             string                `json:"urgency"`
	FieldDetails        []fieldAllocationView `json:"field_details"`
}

type satelliteAnalysisView struct {
	District          string    `json:"district"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	SatelliteInsights struct {
		TotalFieldsAnalyzed  int `json:"total_fields_analyzed"`
		CriticalFields       int `json:"critical_fields"`
		ModerateStressFields int `json:"moderate_stress_fields"`
		HealthyFields        int `json:"healthy_fields"`
		PestDamagedFields    int `json:"pest_damaged_fields"`
	} `json:"satellite_insights"`
	TargetedSubsidies   []targetedSchemeView `json:"targeted_subsidies"`
	FinancialProjection struct {
		TotalEstimatedCost    int64    `json:"total_estimated_cost"`
		FarmersToBenefit      int64    `json:"farmers_to_benefit"`
		PriorityInterventions []string `json:"priority_interventions"`
	} `json:"financial_projection"`
	EfficiencyMetrics struct {
		PrecisionTargeting string  `json:"precision_targeting"`
		CostPerHectare     float64 `json:"cost_per_hectare"`
	} `json:"efficiency_metrics"`
}

func newSatelliteAnalysisView(a *scoring.FieldAnalysis, now time.Time) satelliteAnalysisView {
	v := satelliteAnalysisView{District: a.Region, AnalysisTimestamp: now}
	v.SatelliteInsights.TotalFieldsAnalyzed = a.TotalFields
	v.SatelliteInsights.CriticalFields = a.Critical
	v.SatelliteInsights.ModerateStressFields = a.Moderate
	v.SatelliteInsights.HealthyFields = a.Healthy
	v.SatelliteInsights.PestDamagedFields = a.PestDamaged

	v.TargetedSubsidies = make([]targetedSchemeView, len(a.Schemes))
	for i, sc := range a.Schemes {
		details := make([]fieldAllocationView, len(sc.Fields))
		for j, f := range sc.Fields {
			details[j] = fieldAllocationView{
				FieldID:       f.FieldID,
				NDVI:          f.NDVI,
				Area:          f.AreaHectares,
				SubsidyAmount: f.Amount,
				Intervention:  sc.Intervention,
			}
		}
		v.TargetedSubsidies[i] = targetedSchemeView{
			SchemeName:          sc.Name,
			TargetFields:        len(sc.Fields),
			EligibilityCriteria: sc.Criteria,
			AmountPerHectare:    sc.RatePerHectare,
			TotalArea:           math.Round(sc.AreaHectares*100) / 100,
			EstimatedFarmers:    sc.Farmers,
			TotalAllocation:     sc.Allocation,
			Urgency:             sc.Urgency,
			FieldDetails:        details,
		}
	}

	v.FinancialProjection.TotalEstimatedCost = a.TotalCost
	v.FinancialProjection.FarmersToBenefit = a.FarmersToBenefit
	v.FinancialProjection.PriorityInterventions = a.PriorityInterventions
	if v.FinancialProjection.PriorityInterventions == nil {
		v.FinancialProjection.PriorityInterventions = []string{}
	}
	v.EfficiencyMetrics.PrecisionTargeting = percent(a.StressedShare)
	v.EfficiencyMetrics.CostPerHectare = a.CostPerHectare
	return v
}

type runListItem struct {
	RunID          string    `json:"runId"`
	Mode           string    `json:"mode"`
	Trigger        string    `json:"trigger"`
	Timestamp      time.Time `json:"timestamp"`
	RulesTriggered int       `json:"totalRulesTriggered"`
	TotalPayout    int64     `json:"totalPayoutAmount"`
	AdjustedPayout int64     `json:"weather_adjusted_payout,omitempty"`
	Severity       string    `json:"severity,omitempty"`
}

func newRunListItem(run *domain.SimulationRun) runListItem {
	item := runListItem{
		RunID:          run.Result.RunID,
		Mode:           string(run.Result.Mode),
		Trigger:        string(run.Trigger),
		Timestamp:      run.Result.Timestamp,
		RulesTriggered: run.Result.Summary.RulesTriggered,
		TotalPayout:    run.Result.Summary.TotalPayout,
		AdjustedPayout: run.AdjustedPayout,
	}
	if run.Weather != nil {
		item.Severity = run.Weather.Severity
	}
	return item
}

// percent formats a rate as a one-decimal percentage, e.g. 0.353 -> "35.3%".
func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

func roundPercent(rate float64) float64 {
	return math.Round(rate*1000) / 10
}
