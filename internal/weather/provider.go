package weather

import (
	"context"
	"errors"
	"strings"

	"subsidy-lab/internal/domain"
)

// ErrProviderUnavailable is returned when current weather cannot be obtained.
var ErrProviderUnavailable = errors.New("weather provider unavailable")

// Provider supplies current weather for a region.
type Provider interface {
	Current(ctx context.Context, region string) (*domain.WeatherSnapshot, error)
}

// punjabDistricts are queried with a state qualifier.
var punjabDistricts = map[string]bool{
	"sangrur":         true,
	"fatehgarh sahib": true,
	"patiala":         true,
	"ludhiana":        true,
	"amritsar":        true,
	"jalandhar":       true,
}

// Location maps a district name to a provider query location.
func Location(region string) string {
	region = strings.TrimSpace(region)
	if punjabDistricts[strings.ToLower(region)] {
		return region + ", Punjab"
	}
	return region + ", India"
}
