package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/liquidationblitz/backend/internal/domain"
)

// fakeStore is an in-memory CatalogStore with injectable failures
type fakeStore struct {
	remote    domain.CatalogSnapshot
	loadErr   error
	saveErr   error
	loadCalls int
	saveCalls int
}

func (f *fakeStore) Load(ctx context.Context) (domain.CatalogSnapshot, error) {
	f.loadCalls++
	if f.loadErr != nil {
		return domain.CatalogSnapshot{}, f.loadErr
	}
	return f.remote.Clone(), nil
}

func (f *fakeStore) Save(ctx context.Context, snapshot domain.CatalogSnapshot) (string, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.remote = snapshot.Clone()
	return "https://bucket.s3.us-east-1.amazonaws.com/catalog.csv", nil
}

func newTestSync(store *fakeStore) *SyncService {
	return NewSyncService(store, testAggregator())
}

func TestSynchronize(t *testing.T) {
	ctx := context.Background()

	t.Run("first run starts from empty snapshot", func(t *testing.T) {
		store := &fakeStore{remote: domain.NewCatalogSnapshot()}
		svc := newTestSync(store)

		batch := testBatch(item(100, "Nike", ""), item(200, "Nike", ""), item(50, "Adidas", ""))
		snapshot, url, err := svc.Synchronize(ctx, batch, 10, "https://pdfs.example.com/batch-16601678.pdf")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(snapshot.Records) != 1 {
			t.Fatalf("records = %d, want 1", len(snapshot.Records))
		}
		rec := snapshot.Records[0]
		if rec.Price != "385.00 USD" {
			t.Errorf("Price = %q, want \"385.00 USD\"", rec.Price)
		}
		if rec.Brand != "Nike" {
			t.Errorf("Brand = %q, want Nike", rec.Brand)
		}
		if rec.Link != "https://pdfs.example.com/batch-16601678.pdf" {
			t.Errorf("Link = %q, want the report link", rec.Link)
		}
		if url == "" {
			t.Error("catalog URL is empty")
		}
	})

	t.Run("re-sync of same lot replaces without growing catalog", func(t *testing.T) {
		store := &fakeStore{remote: domain.NewCatalogSnapshot()}
		svc := newTestSync(store)
		batch := testBatch(item(100, "Nike", ""))

		if _, _, err := svc.Synchronize(ctx, batch, 0, "link"); err != nil {
			t.Fatalf("first sync: %v", err)
		}
		snapshot, _, err := svc.Synchronize(ctx, batch, 50, "link")
		if err != nil {
			t.Fatalf("second sync: %v", err)
		}

		if len(snapshot.Records) != 1 {
			t.Fatalf("records = %d, want 1", len(snapshot.Records))
		}
		if snapshot.Records[0].Price != "150.00 USD" {
			t.Errorf("Price = %q, want newest \"150.00 USD\"", snapshot.Records[0].Price)
		}
	})

	t.Run("preserves unrelated records", func(t *testing.T) {
		other := record("999", "42.00 USD")
		store := &fakeStore{remote: snapshot(other)}
		svc := newTestSync(store)

		result, _, err := svc.Synchronize(ctx, testBatch(item(10, "Nike", "")), 0, "link")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Records) != 2 {
			t.Fatalf("records = %d, want 2", len(result.Records))
		}
		if result.Records[0].ID != "999" || result.Records[0].Price != "42.00 USD" {
			t.Errorf("unrelated record changed: %+v", result.Records[0])
		}
	})

	t.Run("aggregation error passes through unwrapped", func(t *testing.T) {
		store := &fakeStore{remote: domain.NewCatalogSnapshot()}
		svc := newTestSync(store)

		_, _, err := svc.Synchronize(ctx, testBatch(), 0, "link")
		if !errors.Is(err, domain.ErrEmptyBatch) {
			t.Errorf("error = %v, want ErrEmptyBatch", err)
		}
		var syncErr *domain.SyncError
		if errors.As(err, &syncErr) {
			t.Error("aggregation error must not be wrapped in SyncError")
		}
		if store.loadCalls != 0 || store.saveCalls != 0 {
			t.Error("store must not be touched when aggregation fails")
		}
	})

	t.Run("load failure is tagged with load phase", func(t *testing.T) {
		store := &fakeStore{loadErr: domain.ErrStorageFailure}
		svc := newTestSync(store)

		_, _, err := svc.Synchronize(ctx, testBatch(item(1, "Nike", "")), 0, "link")

		var syncErr *domain.SyncError
		if !errors.As(err, &syncErr) {
			t.Fatalf("error = %v, want SyncError", err)
		}
		if syncErr.Phase != domain.SyncPhaseLoad {
			t.Errorf("phase = %q, want load", syncErr.Phase)
		}
		if store.saveCalls != 0 {
			t.Error("save must not run after a failed load")
		}
	})

	t.Run("save failure is tagged with save phase and never reported as success", func(t *testing.T) {
		store := &fakeStore{remote: domain.NewCatalogSnapshot(), saveErr: domain.ErrStorageFailure}
		svc := newTestSync(store)

		_, _, err := svc.Synchronize(ctx, testBatch(item(1, "Nike", "")), 0, "link")

		var syncErr *domain.SyncError
		if !errors.As(err, &syncErr) {
			t.Fatalf("error = %v, want SyncError", err)
		}
		if syncErr.Phase != domain.SyncPhaseSave {
			t.Errorf("phase = %q, want save", syncErr.Phase)
		}
		if !errors.Is(err, domain.ErrStorageFailure) {
			t.Errorf("cause not preserved: %v", err)
		}
		if len(store.remote.Records) != 0 {
			t.Error("remote catalog must be untouched after failed save")
		}
	})
}

// TestSynchronize_LostUpdateRace documents the accepted last-writer-wins
// behavior: two synchronize cycles that load the same snapshot before either
// saves will lose the first writer's row. Callers needing stronger guarantees
// must serialize calls per catalog.
func TestSynchronize_LostUpdateRace(t *testing.T) {
	agg := testAggregator()

	remote := domain.NewCatalogSnapshot()

	// Both writers load the same (empty) snapshot
	loadA := remote.Clone()
	loadB := remote.Clone()

	recordA, err := agg.Aggregate(testBatch(item(10, "Nike", "")), 0)
	if err != nil {
		t.Fatal(err)
	}
	batchB := testBatch(item(20, "Adidas", ""))
	batchB.Summary.LotNumber = "27702789"
	recordB, err := agg.Aggregate(batchB, 0)
	if err != nil {
		t.Fatal(err)
	}

	// Writer A saves first, writer B overwrites with its stale merge
	remote = Merge(loadA, recordA)
	remote = Merge(loadB, recordB)

	if remote.IndexOf("16601678") != -1 {
		t.Fatal("expected writer A's row to be lost under the race; the documented trade-off no longer holds")
	}
	if remote.IndexOf("27702789") == -1 {
		t.Fatal("writer B's row missing")
	}
}

func TestDeleteBatches(t *testing.T) {
	ctx := context.Background()

	t.Run("removes ids and persists", func(t *testing.T) {
		store := &fakeStore{remote: snapshot(record("100", "10.00 USD"), record("200", "20.00 USD"))}
		svc := newTestSync(store)

		result, url, err := svc.DeleteBatches(ctx, []string{"100"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Records) != 1 || result.Records[0].ID != "200" {
			t.Errorf("records = %+v, want only 200", result.Records)
		}
		if url == "" {
			t.Error("catalog URL is empty")
		}
		if len(store.remote.Records) != 1 {
			t.Error("remote catalog not updated")
		}
	})

	t.Run("save failure keeps remote untouched", func(t *testing.T) {
		store := &fakeStore{remote: snapshot(record("100", "10.00 USD")), saveErr: domain.ErrStorageFailure}
		svc := newTestSync(store)

		_, _, err := svc.DeleteBatches(ctx, []string{"100"})
		var syncErr *domain.SyncError
		if !errors.As(err, &syncErr) || syncErr.Phase != domain.SyncPhaseSave {
			t.Fatalf("error = %v, want SyncError{save}", err)
		}
		if len(store.remote.Records) != 1 {
			t.Error("remote catalog changed despite failed save")
		}
	})
}

func TestSnapshotStats(t *testing.T) {
	t.Run("sums parsed prices", func(t *testing.T) {
		s := snapshot(record("100", "10.50 USD"), record("200", "20.00 USD"))
		stats := SnapshotStats(s)

		if stats.TotalBatches != 2 {
			t.Errorf("TotalBatches = %d, want 2", stats.TotalBatches)
		}
		if stats.TotalValue != 30.50 {
			t.Errorf("TotalValue = %v, want 30.50", stats.TotalValue)
		}
		if len(stats.BatchIDs) != 2 || stats.BatchIDs[0] != "100" {
			t.Errorf("BatchIDs = %v", stats.BatchIDs)
		}
	})

	t.Run("skips unparseable prices", func(t *testing.T) {
		s := snapshot(record("100", "oops"), record("200", "5.00 USD"))
		stats := SnapshotStats(s)

		if stats.TotalBatches != 2 {
			t.Errorf("TotalBatches = %d, want 2", stats.TotalBatches)
		}
		if stats.TotalValue != 5.00 {
			t.Errorf("TotalValue = %v, want 5.00", stats.TotalValue)
		}
	})

	t.Run("empty snapshot", func(t *testing.T) {
		stats := SnapshotStats(domain.NewCatalogSnapshot())
		if stats.TotalBatches != 0 || stats.TotalValue != 0 {
			t.Errorf("stats = %+v, want zeros", stats)
		}
	})
}
