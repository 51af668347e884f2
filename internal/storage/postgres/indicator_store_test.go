package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

func chennai() *domain.IndicatorSnapshot {
	return &domain.IndicatorSnapshot{
		Region:                 "Chennai",
		Rainfall:               120,
		Temperature:            38,
		CropHealth:             0.82,
		SoilPH:                 7.8,
		Farmers:                9500,
		IdentityCompletionRate: 0.39,
		PaymentDelayRate:       0.54,
		AmountAdequacyRate:     0.44,
		DigitalLiteracyRate:    0.48,
		BiometricFailureRate:   0.11,
		ExclusionErrorRate:     0.17,
		InclusionErrorRate:     0.07,
		Nitrogen:               "medium",
		Phosphorus:             "medium",
		MarketPriceTrend:       "volatile",
	}
}

func TestIndicatorStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIndicatorStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, chennai()))

	got, err := store.GetByRegion(ctx, "CHENNAI")
	require.NoError(t, err)
	assert.Equal(t, *chennai(), *got)

	// Replace
	updated := chennai()
	updated.Farmers = 10000
	require.NoError(t, store.Upsert(ctx, updated))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(10000), all[0].Farmers)
}

func TestIndicatorStore_NotFoundAndInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIndicatorStore(pool)
	ctx := context.Background()

	_, err := store.GetByRegion(ctx, "Atlantis")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bad := chennai()
	bad.PaymentDelayRate = 1.5
	assert.ErrorIs(t, store.Upsert(ctx, bad), domain.ErrInvalidIndicatorData)
}
