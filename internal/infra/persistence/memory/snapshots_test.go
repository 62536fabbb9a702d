package memory

import (
	"context"
	"resourcecatalog/pkg/domain"
	"testing"
)

func TestSnapshotStoreKeepsEncodedCopy(t *testing.T) {
	ctx := context.Background()
	snaps := NewSnapshotStore()
	if _, ok, err := snaps.LoadSnapshot(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}
	store := NewStore()
	store.GrantAdmin("root")
	create(t, store, "a", domain.CategoryTreatment)
	if err := snaps.SaveSnapshot(ctx, store.ExportState()); err != nil {
		t.Fatalf("save: %v", err)
	}
	create(t, store, "b", domain.CategoryTreatment)
	loaded, ok, err := snaps.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("load: %v %v", ok, err)
	}
	if len(loaded.Resources) != 1 || loaded.NextID != 2 {
		t.Fatalf("snapshot should not observe later writes: %+v", loaded)
	}
	if err := snaps.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
