package domain

// Trigger records what started a simulation run.
type Trigger string

const (
	TriggerAPI       Trigger = "api"
	TriggerScheduled Trigger = "scheduled"
	TriggerCLI       Trigger = "cli"
)

// WeatherImpact is the persisted outcome of a weather adjustment.
type WeatherImpact struct {
	Location          string
	Condition         string
	Temperature       float64
	Precipitation     float64
	TotalImpact       float64
	Factor            float64
	Severity          string
	EmergencyAdded    bool
	EmergencyEligible int64
}

// SimulationRun is a simulation result as recorded in the run ledger,
// with the enrichment applied by the service.
type SimulationRun struct {
	Result  SimulationResult
	Trigger Trigger

	// Set when a weather adjustment was applied
	Weather           *WeatherImpact
	AdjustedSubsidies []TriggeredSubsidy
	AdjustedPayout    int64
	WeatherError      string
	InsightsFallback  bool
	InsightCount      int
}
