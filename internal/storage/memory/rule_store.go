package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// RuleStore is an in-memory implementation of storage.RuleStore.
// It owns its ID counter; IDs start at 1 and are never reused.
type RuleStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Rule
	nextID int64
	now    func() time.Time
}

// NewRuleStore creates a new in-memory rule store.
func NewRuleStore() *RuleStore {
	return NewRuleStoreWithClock(time.Now)
}

// NewRuleStoreWithClock creates a rule store stamping CreatedAt with now.
func NewRuleStoreWithClock(now func() time.Time) *RuleStore {
	return &RuleStore{
		data:   make(map[int64]*domain.Rule),
		nextID: 1,
		now:    now,
	}
}

// Create validates and stores the rule with a fresh ID.
func (s *RuleStore) Create(_ context.Context, r *domain.Rule) (*domain.Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	ruleCopy := *r
	ruleCopy.ID = s.nextID
	ruleCopy.CreatedAt = s.now().UTC()
	s.nextID++
	s.data[ruleCopy.ID] = &ruleCopy

	out := ruleCopy
	return &out, nil
}

// GetByID retrieves a rule. Returns ErrNotFound if not exists.
func (s *RuleStore) GetByID(_ context.Context, id int64) (*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	ruleCopy := *r
	return &ruleCopy, nil
}

// List returns all rules ordered by ID ASC.
func (s *RuleStore) List(_ context.Context) ([]*domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Rule, 0, len(s.data))
	for _, r := range s.data {
		ruleCopy := *r
		result = append(result, &ruleCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Update replaces the editable fields of an existing rule.
func (s *RuleStore) Update(_ context.Context, r *domain.Rule) (*domain.Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[r.ID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	ruleCopy := *r
	ruleCopy.CreatedAt = existing.CreatedAt
	s.data[r.ID] = &ruleCopy

	out := ruleCopy
	return &out, nil
}

// Delete removes a rule. Returns ErrNotFound if not exists.
func (s *RuleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[id]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// Count returns the number of stored rules.
func (s *RuleStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Verify interface compliance at compile time.
var _ storage.RuleStore = (*RuleStore)(nil)
