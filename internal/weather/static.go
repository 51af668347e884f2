package weather

import (
	"context"

	"subsidy-lab/internal/domain"
)

// StaticProvider serves fixed readings. It is the offline default.
type StaticProvider struct {
	readings map[string]domain.WeatherSnapshot
	fallback domain.WeatherSnapshot
}

// NewStaticProvider creates a provider returning per-region readings, or the
// fallback reading for regions without one.
func NewStaticProvider(fallback domain.WeatherSnapshot, readings map[string]domain.WeatherSnapshot) *StaticProvider {
	m := make(map[string]domain.WeatherSnapshot, len(readings))
	for region, w := range readings {
		m[domain.RegionKey(region)] = w
	}
	return &StaticProvider{readings: m, fallback: fallback}
}

// DefaultStaticProvider returns mild, dry-season readings for every region.
func DefaultStaticProvider() *StaticProvider {
	return NewStaticProvider(domain.WeatherSnapshot{
		Temperature:   32,
		Humidity:      45,
		Precipitation: 0,
		WindSpeed:     12,
		Condition:     "Sunny",
		UVIndex:       7,
		Pressure:      1008,
	}, nil)
}

// Current implements Provider.
func (p *StaticProvider) Current(ctx context.Context, region string) (*domain.WeatherSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w, ok := p.readings[domain.RegionKey(region)]
	if !ok {
		w = p.fallback
	}
	if w.Location == "" {
		w.Location = Location(region)
	}
	return &w, nil
}

var _ Provider = (*StaticProvider)(nil)
