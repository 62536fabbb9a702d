package sqlite

import (
	"context"
	"path/filepath"
	"resourcecatalog/pkg/domain"
	"testing"
)

func sampleSnapshot() domain.Snapshot {
	s := domain.EmptySnapshot()
	s.Resources[2] = domain.Resource{ID: 2, Title: "Eczema Tips", Description: "oatmeal", Category: domain.CategoryTreatment, CreatedAt: 5, UpdatedAt: 6, CreatedBy: "alice"}
	s.CategoryIndex[domain.CategoryTreatment] = []uint64{2}
	s.NextID = 3
	s.Admins = []domain.Identity{"root"}
	return s
}

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	store := openStore(t, path)
	if _, ok, err := store.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("fresh database should have no snapshot: ok=%v err=%v", ok, err)
	}
	if err := store.SaveSnapshot(ctx, domain.EmptySnapshot()); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if err := store.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %s", store.Path())
	}
	_ = store.Close()

	reopened := openStore(t, path)
	loaded, ok, err := reopened.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.NextID != 3 || loaded.Resources[2].Title != "Eczema Tips" || len(loaded.Admins) != 1 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
	var rows int
	if err := reopened.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM state`).Scan(&rows); err != nil {
		t.Fatalf("count: %v", err)
	}
	if rows != len(domain.SnapshotBuckets) {
		t.Fatalf("expected one row per bucket, got %d", rows)
	}
}

func TestSQLiteRejectsForeignBuckets(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "catalog.db"))
	if err := store.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES('audit', '[]')`); err != nil {
		t.Fatalf("insert foreign bucket: %v", err)
	}
	if _, _, err := store.LoadSnapshot(ctx); err == nil {
		t.Fatalf("expected unknown bucket to be rejected")
	}
}

func TestSQLiteRejectsMissingBucket(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "catalog.db"))
	if err := store.SaveSnapshot(ctx, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.DB().ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, domain.BucketNextID); err != nil {
		t.Fatalf("delete bucket: %v", err)
	}
	if _, _, err := store.LoadSnapshot(ctx); err == nil {
		t.Fatalf("expected missing bucket to be rejected")
	}
}
