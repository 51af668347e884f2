package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// IndicatorStore implements storage.IndicatorStore using PostgreSQL.
type IndicatorStore struct {
	pool *Pool
}

// NewIndicatorStore creates a new IndicatorStore.
func NewIndicatorStore(pool *Pool) *IndicatorStore {
	return &IndicatorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IndicatorStore = (*IndicatorStore)(nil)

const snapshotColumns = `
	region, rainfall, temperature, crop_ndvi, soil_ph, farmers,
	ekyc_completion_rate, payment_delays, amount_adequacy, digital_literacy,
	biometric_failure_rate, exclusion_errors, inclusion_errors,
	nitrogen, phosphorus, market_price_trend`

// Upsert validates and stores the snapshot, replacing the region's previous row.
func (s *IndicatorStore) Upsert(ctx context.Context, snap *domain.IndicatorSnapshot) error {
	if snap == nil || domain.RegionKey(snap.Region) == "" {
		return storage.ErrInvalidInput
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO indicator_snapshots (region_key, ` + snapshotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (region_key) DO UPDATE SET
			region = EXCLUDED.region,
			rainfall = EXCLUDED.rainfall,
			temperature = EXCLUDED.temperature,
			crop_ndvi = EXCLUDED.crop_ndvi,
			soil_ph = EXCLUDED.soil_ph,
			farmers = EXCLUDED.farmers,
			ekyc_completion_rate = EXCLUDED.ekyc_completion_rate,
			payment_delays = EXCLUDED.payment_delays,
			amount_adequacy = EXCLUDED.amount_adequacy,
			digital_literacy = EXCLUDED.digital_literacy,
			biometric_failure_rate = EXCLUDED.biometric_failure_rate,
			exclusion_errors = EXCLUDED.exclusion_errors,
			inclusion_errors = EXCLUDED.inclusion_errors,
			nitrogen = EXCLUDED.nitrogen,
			phosphorus = EXCLUDED.phosphorus,
			market_price_trend = EXCLUDED.market_price_trend,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		domain.RegionKey(snap.Region),
		snap.Region,
		snap.Rainfall,
		snap.Temperature,
		snap.CropHealth,
		snap.SoilPH,
		snap.Farmers,
		snap.IdentityCompletionRate,
		snap.PaymentDelayRate,
		snap.AmountAdequacyRate,
		snap.DigitalLiteracyRate,
		snap.BiometricFailureRate,
		snap.ExclusionErrorRate,
		snap.InclusionErrorRate,
		snap.Nitrogen,
		snap.Phosphorus,
		snap.MarketPriceTrend,
	)
	if err != nil {
		return fmt.Errorf("upsert indicator snapshot: %w", err)
	}
	return nil
}

// GetByRegion retrieves a snapshot. Returns ErrNotFound for unknown regions.
func (s *IndicatorStore) GetByRegion(ctx context.Context, region string) (*domain.IndicatorSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM indicator_snapshots WHERE region_key = $1`

	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, domain.RegionKey(region)))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get indicator snapshot: %w", err)
	}
	return snap, nil
}

// List returns all snapshots ordered by region ASC.
func (s *IndicatorStore) List(ctx context.Context) ([]*domain.IndicatorSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM indicator_snapshots ORDER BY region ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list indicator snapshots: %w", err)
	}
	defer rows.Close()

	result := []*domain.IndicatorSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan indicator snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indicator snapshots: %w", err)
	}
	return result, nil
}

// scanSnapshot scans a row into IndicatorSnapshot.
func scanSnapshot(row pgx.Row) (*domain.IndicatorSnapshot, error) {
	var s domain.IndicatorSnapshot
	err := row.Scan(
		&s.Region,
		&s.Rainfall,
		&s.Temperature,
		&s.CropHealth,
		&s.SoilPH,
		&s.Farmers,
		&s.IdentityCompletionRate,
		&s.PaymentDelayRate,
		&s.AmountAdequacyRate,
		&s.DigitalLiteracyRate,
		&s.BiometricFailureRate,
		&s.ExclusionErrorRate,
		&s.InclusionErrorRate,
		&s.Nitrogen,
		&s.Phosphorus,
		&s.MarketPriceTrend,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
