package domain

import "time"

// SimulationMode selects the eligibility estimator used by a run.
type SimulationMode string

const (
	ModeBasic     SimulationMode = "basic"     // optimistic, randomized adoption
	ModeRealistic SimulationMode = "realistic" // barrier-chain adjusted
)

// ConditionsSummary describes the reference region snapshot reported with a run.
type ConditionsSummary struct {
	Region      string
	Rainfall    float64
	Temperature float64
	SoilPH      float64
	CropHealth  float64
	DataSources string
}

// SystemEfficiency averages delivery indicators across the dataset.
type SystemEfficiency struct {
	AvgIdentityCompletion float64
	AvgPaymentDelay       float64
	AvgAmountAdequacy     float64
	OverallScore          float64 // (1 - avg delay) * avg e-KYC * avg adequacy
}

// SimulationSummary aggregates a run.
type SimulationSummary struct {
	RulesEvaluated       int
	RulesTriggered       int
	TotalFarmersImpacted int64
	TotalPayout          int64

	// Warning counts: rules that could not contribute
	SkippedUnknownRegion int
	InertRules           int

	// Realistic mode only
	Challenges       []string
	UniqueChallenges int
	SystemEfficiency *SystemEfficiency
}

// SimulationResult is produced fresh per run and never mutated after construction.
type SimulationResult struct {
	RunID              string
	Mode               SimulationMode
	Timestamp          time.Time
	Conditions         *ConditionsSummary // nil when the reference region is unknown
	TriggeredSubsidies []TriggeredSubsidy
	Summary            SimulationSummary
}
