package memory

import (
	"context"
	"resourcecatalog/pkg/domain"
	"sync"
)

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the last saved snapshot in process memory. It survives
// store rebuilds within one process only; intended for tests and ephemeral runs.
type SnapshotStore struct {
	mu   sync.Mutex
	data []byte
}

// NewSnapshotStore returns an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore { return &SnapshotStore{} }

// SaveSnapshot encodes and retains the snapshot, replacing any previous one.
func (s *SnapshotStore) SaveSnapshot(_ context.Context, snapshot Snapshot) error {
	data, err := domain.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// LoadSnapshot decodes the retained snapshot.
func (s *SnapshotStore) LoadSnapshot(_ context.Context) (Snapshot, bool, error) {
	s.mu.Lock()
	data := s.data
	s.mu.Unlock()
	if data == nil {
		return Snapshot{}, false, nil
	}
	snapshot, err := domain.UnmarshalSnapshot(data)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Close is a no-op.
func (s *SnapshotStore) Close() error { return nil }
