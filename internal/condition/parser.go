package condition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse diagnostics. Parse returns the zero Condition alongside any of these;
// callers treat the rule as inert and must not fail a run on them.
var (
	ErrUnknownMetric    = errors.New("no known metric keyword")
	ErrMissingOperator  = errors.New("no comparison operator")
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// metricKeywords in match priority order.
var metricKeywords = []struct {
	metric   Metric
	keywords []string
	integer  bool // rainfall and temperature thresholds are whole numbers
}{
	{MetricRainfall, []string{"rainfall"}, true},
	{MetricTemperature, []string{"temperature"}, true},
	{MetricCropHealth, []string{"crop_health", "ndvi"}, false},
	{MetricSoilPH, []string{"soil_ph"}, false},
}

// Parse turns trigger text such as "rainfall < 50" or "crop_ndvi > 0.6" into a Condition.
//
// Keywords are matched case-insensitively by substring in fixed priority order.
// If "<" appears anywhere it is the operator, otherwise ">". The threshold is the
// text after the first operator, up to the next occurrence of the same operator.
func Parse(text string) (Condition, error) {
	lower := strings.ToLower(text)

	metric := MetricNone
	integer := false
	for _, mk := range metricKeywords {
		if containsAny(lower, mk.keywords) {
			metric = mk.metric
			integer = mk.integer
			break
		}
	}
	if metric == MetricNone {
		return Condition{}, fmt.Errorf("%w: %q", ErrUnknownMetric, text)
	}

	var op Operator
	var sep string
	switch {
	case strings.Contains(lower, "<"):
		op, sep = OpLess, "<"
	case strings.Contains(lower, ">"):
		op, sep = OpGreater, ">"
	default:
		return Condition{}, fmt.Errorf("%w: %q", ErrMissingOperator, text)
	}

	raw := strings.TrimSpace(strings.Split(lower, sep)[1])
	threshold, err := parseThreshold(raw, integer)
	if err != nil {
		return Condition{}, fmt.Errorf("%w: %q: %v", ErrInvalidThreshold, text, err)
	}

	return Condition{Metric: metric, Op: op, Threshold: threshold}, nil
}

// MustParse is Parse for known-good literals. It panics on a diagnostic.
func MustParse(text string) Condition {
	c, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return c
}

func parseThreshold(raw string, integer bool) (float64, error) {
	if integer {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("threshold %q is not finite", raw)
	}
	return f, nil
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
