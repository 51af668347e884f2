package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// SimulationRunStore implements storage.SimulationRunStore using ClickHouse.
// Each run is one row: scalar summary columns plus the JSON-encoded run.
type SimulationRunStore struct {
	conn *Conn
}

// NewSimulationRunStore creates a new SimulationRunStore.
func NewSimulationRunStore(conn *Conn) *SimulationRunStore {
	return &SimulationRunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SimulationRunStore = (*SimulationRunStore)(nil)

// Insert adds a run. Returns ErrDuplicateKey if the run ID exists.
func (s *SimulationRunStore) Insert(ctx context.Context, r *domain.SimulationRun) error {
	if r == nil || r.Result.RunID == "" {
		return storage.ErrInvalidInput
	}

	// MergeTree does not enforce uniqueness
	exists, err := s.exists(ctx, r.Result.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	var reference, severity string
	if r.Result.Conditions != nil {
		reference = r.Result.Conditions.Region
	}
	if r.Weather != nil {
		severity = r.Weather.Severity
	}
	var fallback uint8
	if r.InsightsFallback {
		fallback = 1
	}

	sum := r.Result.Summary
	query := `
		INSERT INTO simulation_runs (
			run_id, run_at, mode, trigger, reference_region,
			rules_evaluated, rules_triggered, skipped_unknown_region, inert_rules,
			total_farmers_impacted, total_payout, adjusted_payout,
			weather_severity, insights_fallback, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		r.Result.RunID,
		r.Result.Timestamp.UTC(),
		string(r.Result.Mode),
		string(r.Trigger),
		reference,
		uint32(sum.RulesEvaluated),
		uint32(sum.RulesTriggered),
		uint32(sum.SkippedUnknownRegion),
		uint32(sum.InertRules),
		sum.TotalFarmersImpacted,
		sum.TotalPayout,
		r.AdjustedPayout,
		severity,
		fallback,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert simulation run: %w", err)
	}
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *SimulationRunStore) GetByID(ctx context.Context, runID string) (*domain.SimulationRun, error) {
	rows, err := s.conn.Query(ctx, `SELECT payload FROM simulation_runs WHERE run_id = ? LIMIT 1`, runID)
	if err != nil {
		return nil, fmt.Errorf("query simulation run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate simulation run: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	var payload string
	if err := rows.Scan(&payload); err != nil {
		return nil, fmt.Errorf("scan simulation run: %w", err)
	}
	return decodeRun(payload)
}

// ListRecent returns up to limit runs ordered by run_at DESC.
func (s *SimulationRunStore) ListRecent(ctx context.Context, limit int) ([]*domain.SimulationRun, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT payload
		FROM simulation_runs
		ORDER BY run_at DESC, run_id ASC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	result := []*domain.SimulationRun{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan simulation run: %w", err)
		}
		r, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent runs: %w", err)
	}
	return result, nil
}

// exists checks whether a run ID is already recorded.
func (s *SimulationRunStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM simulation_runs WHERE run_id = ?`, runID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func decodeRun(payload string) (*domain.SimulationRun, error) {
	var r domain.SimulationRun
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode simulation run: %w", err)
	}
	// DateTime64 round-trips through JSON as RFC 3339
	r.Result.Timestamp = r.Result.Timestamp.In(time.UTC)
	return &r, nil
}
