package storage

import (
	"context"

	"subsidy-lab/internal/domain"
)

// RuleStore is the rule repository.
type RuleStore interface {
	// Create validates the rule, assigns its ID and creation time, and stores it.
	// Returns an error wrapping domain.ErrInvalidRule for invalid fields.
	Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error)

	// GetByID retrieves a rule. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Rule, error)

	// List returns all rules ordered by ID ASC.
	List(ctx context.Context) ([]*domain.Rule, error)

	// Update replaces the editable fields of an existing rule.
	// ID and CreatedAt are preserved. Returns ErrNotFound if not exists.
	Update(ctx context.Context, r *domain.Rule) (*domain.Rule, error)

	// Delete removes a rule. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored rules.
	Count(ctx context.Context) (int, error)
}

// IndicatorStore is the regional indicator dataset.
type IndicatorStore interface {
	// Upsert validates and stores the snapshot, replacing any snapshot of the same region.
	// Regions are matched case-insensitively.
	Upsert(ctx context.Context, s *domain.IndicatorSnapshot) error

	// GetByRegion retrieves a snapshot. Returns ErrNotFound for unknown regions.
	GetByRegion(ctx context.Context, region string) (*domain.IndicatorSnapshot, error)

	// List returns all snapshots ordered by region ASC.
	List(ctx context.Context) ([]*domain.IndicatorSnapshot, error)
}

// SimulationRunStore is the append-only ledger of simulation runs.
type SimulationRunStore interface {
	// Insert stores a run. Returns ErrDuplicateKey if the run ID exists.
	Insert(ctx context.Context, r *domain.SimulationRun) error

	// GetByID retrieves a run. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error)

	// ListRecent returns up to limit runs ordered by timestamp DESC.
	ListRecent(ctx context.Context, limit int) ([]*domain.SimulationRun, error)
}
