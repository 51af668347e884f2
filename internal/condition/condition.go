// Package condition parses rule trigger text and evaluates it against indicator snapshots.
package condition

import (
	"fmt"

	"subsidy-lab/internal/domain"
)

// Metric identifies the snapshot field a condition compares.
type Metric int

const (
	MetricNone Metric = iota // no recognizable metric: the condition never fires
	MetricRainfall
	MetricTemperature
	MetricCropHealth
	MetricSoilPH
)

// String returns the metric tag.
func (m Metric) String() string {
	switch m {
	case MetricRainfall:
		return "rainfall"
	case MetricTemperature:
		return "temperature"
	case MetricCropHealth:
		return "crop_health"
	case MetricSoilPH:
		return "soil_ph"
	default:
		return "none"
	}
}

// Operator is a comparison operator.
type Operator int

const (
	OpLess Operator = iota + 1
	OpGreater
)

// String returns the operator symbol.
func (o Operator) String() string {
	switch o {
	case OpLess:
		return "<"
	case OpGreater:
		return ">"
	default:
		return "?"
	}
}

// Condition is a parsed trigger. The zero value is the "never fires" condition.
type Condition struct {
	Metric    Metric
	Op        Operator
	Threshold float64
}

// Valid reports whether the condition can ever fire.
func (c Condition) Valid() bool {
	return c.Metric != MetricNone && (c.Op == OpLess || c.Op == OpGreater)
}

// String renders the condition in canonical form.
func (c Condition) String() string {
	if !c.Valid() {
		return "never"
	}
	return fmt.Sprintf("%s %s %g", c.Metric, c.Op, c.Threshold)
}

// Evaluate applies the condition to a snapshot. Invalid conditions never fire.
func Evaluate(c Condition, s domain.IndicatorSnapshot) bool {
	if !c.Valid() {
		return false
	}

	var value float64
	switch c.Metric {
	case MetricRainfall:
		value = s.Rainfall
	case MetricTemperature:
		value = s.Temperature
	case MetricCropHealth:
		value = s.CropHealth
	case MetricSoilPH:
		value = s.SoilPH
	}

	if c.Op == OpLess {
		return value < c.Threshold
	}
	return value > c.Threshold
}
