// Package insights turns simulation outcomes into structured advisory text.
// A Generator supplies free-form narrative; the Advisor wraps it in fixed
// categories and falls back to a static advisory when generation fails.
package insights

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrGeneratorUnavailable is returned when narrative generation fails.
	ErrGeneratorUnavailable = errors.New("insight generator unavailable")
	// ErrEmptyResponse is returned when the generator answered with no text.
	ErrEmptyResponse = errors.New("insight generator returned empty text")
)

// Generator produces narrative text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Insight is one structured advisory entry.
type Insight struct {
	Category        string
	Text            string
	Confidence      float64
	Recommendations []string
	RiskFactors     []string
}

// Report is the output of one advisory request.
type Report struct {
	GeneratedAt       time.Time
	Location          string // empty for system-wide reports
	Insights          []Insight
	AvgConfidence     float64
	KeyRecommendation string
	WeatherContext    string

	// Fallback is set when the generator failed and static insights were used.
	Fallback bool
	Note     string
}

// TotalInsights returns the number of insights in the report.
func (r Report) TotalInsights() int {
	return len(r.Insights)
}

func avgConfidence(insights []Insight) float64 {
	if len(insights) == 0 {
		return 0
	}
	var sum float64
	for _, in := range insights {
		sum += in.Confidence
	}
	return sum / float64(len(insights))
}
