package reporting

import "time"

// Report is the printable account of one recorded simulation run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Mode        string
	Trigger     string
	RunAt       time.Time

	// Reference conditions; nil when the reference region was unknown
	Conditions *ConditionsSection

	// Rule health (warning counts as pass/fail checks)
	RuleHealth RuleHealthSection

	// Triggered subsidies in rule order
	Subsidies []SubsidyRow
	Totals    TotalsRow

	// Realistic mode only
	Challenges       []string
	SystemEfficiency *SystemEfficiencySection

	// Set when the run was weather-adjusted
	Weather *WeatherSection

	// Per-district scores of the current indicator dataset, sorted by region
	Districts []DistrictRow
}

// ConditionsSection describes the reference region.
type ConditionsSection struct {
	Region      string
	Rainfall    float64
	Temperature float64
	SoilPH      float64
	CropHealth  float64
	DataSources string
}

// RuleHealthSection lists rule-level checks.
type RuleHealthSection struct {
	Checks          []CheckRow
	AllChecksPassed bool
}

// CheckRow represents one rule health criterion.
type CheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SubsidyRow represents one triggered subsidy.
type SubsidyRow struct {
	SchemeName      string
	Condition       string
	Region          string
	Amount          int64
	EligibleFarmers int64
	TotalPayout     int64
}

// TotalsRow sums the run.
type TotalsRow struct {
	RulesEvaluated  int
	RulesTriggered  int
	FarmersImpacted int64
	TotalPayout     int64
}

// SystemEfficiencySection holds dataset-wide delivery averages in percent.
type SystemEfficiencySection struct {
	IdentityCompletion float64
	PaymentDelay       float64
	AmountAdequacy     float64
	OverallScore       float64
}

// WeatherSection describes the weather adjustment of a run.
type WeatherSection struct {
	Location          string
	Condition         string
	Temperature       float64
	Precipitation     float64
	TotalImpact       float64
	Factor            float64
	Severity          string
	EmergencyAdded    bool
	EmergencyEligible int64
	Adjusted          []SubsidyRow
	AdjustedPayout    int64
	Error             string // set when the adjustment could not be applied
}

// DistrictRow combines efficiency and risk scores of one district.
type DistrictRow struct {
	Region            string
	Farmers           int64
	EfficiencyPercent float64
	Status            string
	PrimaryChallenge  string
	RiskScore         int
	RiskLevel         string
	RiskFactors       []string
}
