package usecase

import (
	"context"
	"log"

	"github.com/liquidationblitz/backend/internal/domain"
)

// SyncService sequences load -> merge -> save against the shared remote
// catalog for one batch at a time.
//
// The read-modify-write cycle is not protected by a remote lock or conditional
// write: if two Synchronize calls for different batches race, the second save
// overwrites the first (last-writer-wins). That is an accepted trade-off here;
// callers needing strict safety must serialize Synchronize calls for the same
// catalog themselves.
type SyncService struct {
	store      domain.CatalogStore
	aggregator *Aggregator
}

// NewSyncService creates a new synchronization service with dependencies
func NewSyncService(store domain.CatalogStore, aggregator *Aggregator) *SyncService {
	return &SyncService{
		store:      store,
		aggregator: aggregator,
	}
}

// Synchronize derives the catalog record for a batch and merges it into the
// remote catalog. Returns the persisted snapshot and the catalog's public URL.
// Flow: aggregate -> attach report link -> load -> merge -> save.
//
// Load strictly precedes merge and merge strictly precedes save; merge needs
// the freshest snapshot so other batches' rows are never discarded. A load or
// save failure aborts the call with a phase-tagged SyncError - a failed save
// is never reported as success. Aggregation errors pass through unwrapped.
func (s *SyncService) Synchronize(
	ctx context.Context,
	batch *domain.Batch,
	markupPct float64,
	reportLink string,
) (domain.CatalogSnapshot, string, error) {
	record, err := s.aggregator.Aggregate(batch, markupPct)
	if err != nil {
		return domain.CatalogSnapshot{}, "", err
	}
	record.Link = reportLink

	current, err := s.store.Load(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, "", &domain.SyncError{Phase: domain.SyncPhaseLoad, Err: err}
	}

	next := Merge(current, record)

	url, err := s.store.Save(ctx, next)
	if err != nil {
		return domain.CatalogSnapshot{}, "", &domain.SyncError{Phase: domain.SyncPhaseSave, Err: err}
	}

	log.Printf("[SYNC] Batch %s merged, catalog now has %d records", record.ID, len(next.Records))
	return next, url, nil
}

// DeleteBatches removes the given batch ids from the remote catalog under the
// same load -> modify -> save protocol and error taxonomy as Synchronize
func (s *SyncService) DeleteBatches(ctx context.Context, ids []string) (domain.CatalogSnapshot, string, error) {
	current, err := s.store.Load(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, "", &domain.SyncError{Phase: domain.SyncPhaseLoad, Err: err}
	}

	next := Remove(current, ids)

	url, err := s.store.Save(ctx, next)
	if err != nil {
		return domain.CatalogSnapshot{}, "", &domain.SyncError{Phase: domain.SyncPhaseSave, Err: err}
	}

	log.Printf("[SYNC] Deleted %d of %d requested batches from catalog", len(current.Records)-len(next.Records), len(ids))
	return next, url, nil
}

// LoadCatalog fetches the current remote snapshot
func (s *SyncService) LoadCatalog(ctx context.Context) (domain.CatalogSnapshot, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return domain.CatalogSnapshot{}, &domain.SyncError{Phase: domain.SyncPhaseLoad, Err: err}
	}
	return snapshot, nil
}

// CatalogStats summarizes the catalog for dashboards
type CatalogStats struct {
	TotalBatches int      `json:"totalBatches"`
	TotalValue   float64  `json:"totalValue"`
	BatchIDs     []string `json:"batchIds"`
}

// SnapshotStats computes catalog statistics from a snapshot. Unparseable
// price cells are skipped rather than failing the whole report.
func SnapshotStats(snapshot domain.CatalogSnapshot) CatalogStats {
	stats := CatalogStats{
		BatchIDs: make([]string, 0, len(snapshot.Records)),
	}

	for _, record := range snapshot.Records {
		stats.TotalBatches++
		stats.BatchIDs = append(stats.BatchIDs, record.ID)

		amount, err := domain.ParsePrice(record.Price)
		if err != nil {
			log.Printf("[SYNC] Skipping unparseable price %q for batch %s", record.Price, record.ID)
			continue
		}
		stats.TotalValue += amount
	}

	return stats
}
