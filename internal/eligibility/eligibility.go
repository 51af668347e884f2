// Package eligibility estimates how many farmers a fired rule reaches and what it pays.
//
// Two estimators are provided:
//   - EstimateBasic: optimistic, randomized baseline adoption adjusted by crop health
//   - EstimateRealistic: fixed baseline reduced by a sequential chain of delivery barriers
package eligibility

import (
	"errors"
	"fmt"
	"math"

	"subsidy-lab/internal/condition"
	"subsidy-lab/internal/domain"
)

// ErrNotTriggered is returned when the rule's condition does not fire for the snapshot.
// Callers skip the rule.
var ErrNotTriggered = errors.New("rule not triggered")

// fires validates the snapshot and evaluates the rule's condition against it.
func fires(rule domain.Rule, snap domain.IndicatorSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	cond, _ := condition.Parse(rule.Condition)
	if !condition.Evaluate(cond, snap) {
		return ErrNotTriggered
	}
	return nil
}

// truncate converts a non-negative product to a whole count, rounding down.
func truncate(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite intermediate value", domain.ErrInvalidIndicatorData)
	}
	if v >= math.Exp2(63) {
		return 0, fmt.Errorf("%w: count %v out of range", domain.ErrInvalidIndicatorData, v)
	}
	return int64(math.Floor(v)), nil
}
