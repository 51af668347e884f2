package simulation

import "subsidy-lab/internal/domain"

// SnapshotLookup resolves the indicator snapshot of a region.
// The second result is false for unknown regions.
type SnapshotLookup func(region string) (domain.IndicatorSnapshot, bool)

// MapLookup builds a case-insensitive lookup over prefetched snapshots.
func MapLookup(snapshots []domain.IndicatorSnapshot) SnapshotLookup {
	byRegion := make(map[string]domain.IndicatorSnapshot, len(snapshots))
	for _, s := range snapshots {
		byRegion[domain.RegionKey(s.Region)] = s
	}
	return func(region string) (domain.IndicatorSnapshot, bool) {
		s, ok := byRegion[domain.RegionKey(region)]
		return s, ok
	}
}
