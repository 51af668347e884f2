package memory

import (
	"context"
	"errors"
	"testing"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

func snapshot(region string, farmers int64) *domain.IndicatorSnapshot {
	return &domain.IndicatorSnapshot{
		Region:                 region,
		Rainfall:               60,
		Temperature:            35,
		CropHealth:             0.65,
		SoilPH:                 7.2,
		Farmers:                farmers,
		IdentityCompletionRate: 0.4,
		PaymentDelayRate:       0.5,
		AmountAdequacyRate:     0.4,
		DigitalLiteracyRate:    0.5,
	}
}

func TestIndicatorStore_UpsertAndGet(t *testing.T) {
	store := NewIndicatorStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, snapshot("Pune", 8500)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByRegion(ctx, "pune")
	if err != nil {
		t.Fatalf("GetByRegion failed: %v", err)
	}
	if got.Farmers != 8500 || got.Region != "Pune" {
		t.Errorf("unexpected snapshot %+v", got)
	}

	// Replace
	if err := store.Upsert(ctx, snapshot("PUNE", 9000)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, _ = store.GetByRegion(ctx, "Pune")
	if got.Farmers != 9000 {
		t.Errorf("expected replaced snapshot, got farmers %d", got.Farmers)
	}

	all, _ := store.List(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(all))
	}
}

func TestIndicatorStore_Invalid(t *testing.T) {
	store := NewIndicatorStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := store.Upsert(ctx, snapshot("Pune", 0)); !errors.Is(err, domain.ErrInvalidIndicatorData) {
		t.Errorf("expected ErrInvalidIndicatorData, got %v", err)
	}
	if _, err := store.GetByRegion(ctx, "Atlantis"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIndicatorStore_ListSorted(t *testing.T) {
	store := NewIndicatorStore()
	ctx := context.Background()

	for _, r := range []string{"Pune", "Delhi", "Mumbai"} {
		if err := store.Upsert(ctx, snapshot(r, 100)); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"Delhi", "Mumbai", "Pune"}
	for i, s := range all {
		if s.Region != want[i] {
			t.Errorf("position %d: got %s, want %s", i, s.Region, want[i])
		}
	}
}
