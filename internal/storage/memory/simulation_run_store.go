package memory

import (
	"context"
	"sort"
	"sync"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// SimulationRunStore is an in-memory implementation of storage.SimulationRunStore.
type SimulationRunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SimulationRun // keyed by run_id
}

// NewSimulationRunStore creates a new in-memory run ledger.
func NewSimulationRunStore() *SimulationRunStore {
	return &SimulationRunStore{
		data: make(map[string]*domain.SimulationRun),
	}
}

// Insert stores a run. Returns ErrDuplicateKey if the run ID exists.
func (s *SimulationRunStore) Insert(_ context.Context, r *domain.SimulationRun) error {
	if r == nil || r.Result.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.Result.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := copyRun(r)
	s.data[r.Result.RunID] = runCopy
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *SimulationRunStore) GetByID(_ context.Context, runID string) (*domain.SimulationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRun(r), nil
}

// ListRecent returns up to limit runs ordered by timestamp DESC.
func (s *SimulationRunStore) ListRecent(_ context.Context, limit int) ([]*domain.SimulationRun, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SimulationRun, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, copyRun(r))
	}

	// Sort by timestamp DESC, run_id for ties
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Result.Timestamp, result[j].Result.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return result[i].Result.RunID < result[j].Result.RunID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// copyRun copies the slices a caller could mutate.
func copyRun(r *domain.SimulationRun) *domain.SimulationRun {
	out := *r
	out.Result.TriggeredSubsidies = append([]domain.TriggeredSubsidy(nil), r.Result.TriggeredSubsidies...)
	out.Result.Summary.Challenges = append([]string(nil), r.Result.Summary.Challenges...)
	out.AdjustedSubsidies = append([]domain.TriggeredSubsidy(nil), r.AdjustedSubsidies...)
	if r.Weather != nil {
		w := *r.Weather
		out.Weather = &w
	}
	return &out
}

// Verify interface compliance at compile time.
var _ storage.SimulationRunStore = (*SimulationRunStore)(nil)
