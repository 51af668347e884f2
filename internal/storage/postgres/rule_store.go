package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// RuleStore implements storage.RuleStore using PostgreSQL.
type RuleStore struct {
	pool *Pool
}

// NewRuleStore creates a new RuleStore.
func NewRuleStore(pool *Pool) *RuleStore {
	return &RuleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RuleStore = (*RuleStore)(nil)

const ruleColumns = `id, scheme_name, condition, amount, region, created_at`

// Create validates and inserts a rule; the database assigns ID and created_at.
func (s *RuleStore) Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO subsidy_rules (scheme_name, condition, amount, region)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + ruleColumns

	row := s.pool.QueryRow(ctx, query, r.SchemeName, r.Condition, r.Amount, r.Region)
	created, err := scanRule(row)
	if err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)
		}
		return nil, fmt.Errorf("insert rule: %w", err)
	}
	return created, nil
}

// GetByID retrieves a rule. Returns ErrNotFound if not exists.
func (s *RuleStore) GetByID(ctx context.Context, id int64) (*domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM subsidy_rules WHERE id = $1`

	r, err := scanRule(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get rule by id: %w", err)
	}
	return r, nil
}

// List returns all rules ordered by ID ASC.
func (s *RuleStore) List(ctx context.Context) ([]*domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM subsidy_rules ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	result := []*domain.Rule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return result, nil
}

// Update replaces the editable fields of an existing rule.
func (s *RuleStore) Update(ctx context.Context, r *domain.Rule) (*domain.Rule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE subsidy_rules
		SET scheme_name = $2, condition = $3, amount = $4, region = $5
		WHERE id = $1
		RETURNING ` + ruleColumns

	updated, err := scanRule(s.pool.QueryRow(ctx, query, r.ID, r.SchemeName, r.Condition, r.Amount, r.Region))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRule, err)
		}
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return updated, nil
}

// Delete removes a rule. Returns ErrNotFound if not exists.
func (s *RuleStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subsidy_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Count returns the number of stored rules.
func (s *RuleStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM subsidy_rules`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return n, nil
}

// scanRule scans a row into Rule.
func scanRule(row pgx.Row) (*domain.Rule, error) {
	var r domain.Rule
	if err := row.Scan(&r.ID, &r.SchemeName, &r.Condition, &r.Amount, &r.Region, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}
