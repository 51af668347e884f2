package domain

import "errors"

// Domain validation errors.
var (
	// ErrInvalidRule is returned when a rule fails field validation at creation time.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrInvalidIndicatorData is returned when a snapshot carries values the engine
	// cannot compute with (non-finite numbers, out-of-range rates, empty population).
	ErrInvalidIndicatorData = errors.New("invalid indicator data")
)

// ErrPayoutOverflow is returned when a payout or a payout total does not fit in int64.
var ErrPayoutOverflow = errors.New("payout overflow")
