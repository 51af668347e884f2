package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

func TestRuleStore_CRUD(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRuleStore(pool)
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.Rule{
		SchemeName: "Drought Relief",
		Condition:  "rainfall < 70",
		Amount:     8000,
		Region:     "Ahmedabad",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drought Relief", got.SchemeName)
	assert.Equal(t, "rainfall < 70", got.Condition)
	assert.Equal(t, int64(8000), got.Amount)
	assert.Equal(t, "Ahmedabad", got.Region)

	got.Amount = 9000
	updated, err := store.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), updated.Amount)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), storage.ErrNotFound)
}

func TestRuleStore_ListOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRuleStore(pool)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := store.Create(ctx, &domain.Rule{SchemeName: name, Condition: "temperature > 40", Amount: 100, Region: "Delhi"})
		require.NoError(t, err)
	}

	rules, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "First", rules[0].SchemeName)
	assert.Equal(t, "Third", rules[2].SchemeName)
	assert.Less(t, rules[0].ID, rules[1].ID)
}

func TestRuleStore_Invalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRuleStore(pool)
	ctx := context.Background()

	_, err := store.Create(ctx, &domain.Rule{SchemeName: "Bad", Amount: -5, Region: "Delhi"})
	assert.ErrorIs(t, err, domain.ErrInvalidRule)

	_, err = store.Update(ctx, &domain.Rule{ID: 404, SchemeName: "Missing", Region: "Delhi"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
