package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rule is a user-defined "if condition, then subsidy" design.
// Rules are owned by a storage.RuleStore and read-only during a simulation run.
type Rule struct {
	ID         int64     // assigned by the rule store
	SchemeName string    // display name
	Condition  string    // raw trigger text, e.g. "rainfall < 50"
	Amount     int64     // flat subsidy per farmer (currency units)
	Region     string    // target region (district)
	CreatedAt  time.Time // set by the rule store
}

// Validate checks rule fields. Malformed conditions are not rejected here:
// they are inert at simulation time.
func (r *Rule) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", ErrInvalidRule)
	}
	if strings.TrimSpace(r.SchemeName) == "" {
		return fmt.Errorf("%w: scheme name is required", ErrInvalidRule)
	}
	if r.Amount < 0 || r.Amount > MaxRuleAmount {
		return fmt.Errorf("%w: amount must be in [0, %d], got %d", ErrInvalidRule, MaxRuleAmount, r.Amount)
	}
	if strings.TrimSpace(r.Region) == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidRule)
	}
	return nil
}
