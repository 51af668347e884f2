// Package dataset provides the reference district indicators and seeds
// indicator stores with them.
package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// Sources lists the data sources the reference indicators are compiled from.
const Sources = "AgriStack, Krishi-DSS, PM-KISAN Database"

// Reference returns the six reference districts in a fixed order.
// Each call returns fresh values.
func Reference() []domain.IndicatorSnapshot {
	return []domain.IndicatorSnapshot{
		{
			Region: "Ahmedabad", Rainfall: 60, Temperature: 35, CropHealth: 0.65, SoilPH: 7.2, Farmers: 12500,
			IdentityCompletionRate: 0.353, PaymentDelayRate: 0.567, AmountAdequacyRate: 0.407,
			DigitalLiteracyRate: 0.45, BiometricFailureRate: 0.12, ExclusionErrorRate: 0.18, InclusionErrorRate: 0.08,
			Nitrogen: "medium", Phosphorus: "low", MarketPriceTrend: "declining",
		},
		{
			Region: "Pune", Rainfall: 85, Temperature: 32, CropHealth: 0.78, SoilPH: 6.8, Farmers: 8500,
			IdentityCompletionRate: 0.42, PaymentDelayRate: 0.48, AmountAdequacyRate: 0.52,
			DigitalLiteracyRate: 0.58, BiometricFailureRate: 0.09, ExclusionErrorRate: 0.15, InclusionErrorRate: 0.06,
			Nitrogen: "high", Phosphorus: "medium", MarketPriceTrend: "stable",
		},
		{
			Region: "Bengaluru", Rainfall: 45, Temperature: 28, CropHealth: 0.52, SoilPH: 6.5, Farmers: 6500,
			IdentityCompletionRate: 0.38, PaymentDelayRate: 0.62, AmountAdequacyRate: 0.35,
			DigitalLiteracyRate: 0.52, BiometricFailureRate: 0.14, ExclusionErrorRate: 0.22, InclusionErrorRate: 0.09,
			Nitrogen: "low", Phosphorus: "high", MarketPriceTrend: "rising",
		},
		{
			Region: "Chennai", Rainfall: 120, Temperature: 38, CropHealth: 0.82, SoilPH: 7.8, Farmers: 9500,
			IdentityCompletionRate: 0.39, PaymentDelayRate: 0.54, AmountAdequacyRate: 0.44,
			DigitalLiteracyRate: 0.48, BiometricFailureRate: 0.11, ExclusionErrorRate: 0.17, InclusionErrorRate: 0.07,
			Nitrogen: "medium", Phosphorus: "medium", MarketPriceTrend: "volatile",
		},
		{
			Region: "Mumbai", Rainfall: 95, Temperature: 34, CropHealth: 0.75, SoilPH: 7.0, Farmers: 7500,
			IdentityCompletionRate: 0.47, PaymentDelayRate: 0.42, AmountAdequacyRate: 0.58,
			DigitalLiteracyRate: 0.65, BiometricFailureRate: 0.08, ExclusionErrorRate: 0.12, InclusionErrorRate: 0.05,
			Nitrogen: "high", Phosphorus: "high", MarketPriceTrend: "stable",
		},
		{
			Region: "Delhi", Rainfall: 40, Temperature: 42, CropHealth: 0.48, SoilPH: 8.2, Farmers: 5500,
			IdentityCompletionRate: 0.51, PaymentDelayRate: 0.38, AmountAdequacyRate: 0.48,
			DigitalLiteracyRate: 0.72, BiometricFailureRate: 0.07, ExclusionErrorRate: 0.10, InclusionErrorRate: 0.04,
			Nitrogen: "low", Phosphorus: "low", MarketPriceTrend: "rising",
		},
	}
}

// Load upserts snapshots into the store, stopping at the first failure.
func Load(ctx context.Context, store storage.IndicatorStore, snapshots []domain.IndicatorSnapshot) error {
	for i := range snapshots {
		if err := store.Upsert(ctx, &snapshots[i]); err != nil {
			return fmt.Errorf("load %s: %w", snapshots[i].Region, err)
		}
	}
	return nil
}

// LoadReference seeds the store with the reference districts.
func LoadReference(ctx context.Context, store storage.IndicatorStore) error {
	return Load(ctx, store, Reference())
}

// SuggestRegion returns the closest known region for a misspelled name.
// Returns false when nothing matches.
func SuggestRegion(name string, known []string) (string, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" || len(known) == 0 {
		return "", false
	}

	lowered := make([]string, len(known))
	for i, k := range known {
		lowered[i] = strings.ToLower(k)
	}

	matches := fuzzy.Find(query, lowered)
	if len(matches) == 0 {
		return "", false
	}
	return known[matches[0].Index], true
}

// Regions returns the region names of the snapshots.
func Regions(snapshots []*domain.IndicatorSnapshot) []string {
	out := make([]string, len(snapshots))
	for i, s := range snapshots {
		out[i] = s.Region
	}
	return out
}
