package memory

import (
	"context"
	"sort"
	"sync"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// IndicatorStore is an in-memory implementation of storage.IndicatorStore.
type IndicatorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.IndicatorSnapshot // keyed by lower-cased region
}

// NewIndicatorStore creates a new in-memory indicator store.
func NewIndicatorStore() *IndicatorStore {
	return &IndicatorStore{
		data: make(map[string]*domain.IndicatorSnapshot),
	}
}

// Upsert validates and stores the snapshot.
func (s *IndicatorStore) Upsert(_ context.Context, snap *domain.IndicatorSnapshot) error {
	if snap == nil || domain.RegionKey(snap.Region) == "" {
		return storage.ErrInvalidInput
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapCopy := *snap
	s.data[domain.RegionKey(snap.Region)] = &snapCopy
	return nil
}

// GetByRegion retrieves a snapshot. Returns ErrNotFound for unknown regions.
func (s *IndicatorStore) GetByRegion(_ context.Context, region string) (*domain.IndicatorSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.data[domain.RegionKey(region)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	snapCopy := *snap
	return &snapCopy, nil
}

// List returns all snapshots ordered by region ASC.
func (s *IndicatorStore) List(_ context.Context) ([]*domain.IndicatorSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.IndicatorSnapshot, 0, len(s.data))
	for _, snap := range s.data {
		snapCopy := *snap
		result = append(result, &snapCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Region < result[j].Region
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.IndicatorStore = (*IndicatorStore)(nil)
