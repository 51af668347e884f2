package domain

// TriggeredSubsidy is one fired rule with its estimated reach and cost.
// Invariants: 0 <= EligibleFarmers <= snapshot Farmers;
// TotalPayout is EligibleFarmers times the estimator's effective amount.
type TriggeredSubsidy struct {
	SchemeName      string
	Condition       string // original trigger text
	Amount          int64  // nominal per-farmer amount
	Region          string
	EligibleFarmers int64
	TotalPayout     int64
}
