package domain

import (
	"fmt"
	"math"
)

// Input bounds. A bounded amount times a bounded population stays far inside
// int64, even after the largest weather enhancement and summed over many rules.
const (
	MaxRuleAmount int64 = 10_000_000  // per farmer, currency units
	MaxFarmers    int64 = 100_000_000 // per region
)

// MulPayout returns eligible * amount, or ErrPayoutOverflow.
func MulPayout(eligible, amount int64) (int64, error) {
	if eligible == 0 || amount == 0 {
		return 0, nil
	}
	p := eligible * amount
	if p/amount != eligible || (eligible == -1 && amount == math.MinInt64) || (amount == -1 && eligible == math.MinInt64) {
		return 0, fmt.Errorf("%w: %d x %d", ErrPayoutOverflow, eligible, amount)
	}
	return p, nil
}

// AddPayout returns a + b, or ErrPayoutOverflow.
func AddPayout(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrPayoutOverflow, a, b)
	}
	return s, nil
}

// FloorPayout converts a non-negative product to int64, rounding down.
// Values outside int64 fail with ErrPayoutOverflow.
func FloorPayout(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite value", ErrPayoutOverflow)
	}
	v = math.Floor(v)
	// 2^63 is the first float64 above MaxInt64
	if v >= math.Exp2(63) || v < -math.Exp2(63) {
		return 0, fmt.Errorf("%w: %v", ErrPayoutOverflow, v)
	}
	return int64(v), nil
}
