// Package blobsnap stores catalog snapshots as a single JSON object in a blob
// store (filesystem, S3 or memory).
package blobsnap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"resourcecatalog/internal/blob"
	"resourcecatalog/pkg/domain"
	"strconv"
)

var _ domain.SnapshotStore = (*Store)(nil)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "catalog/snapshot.json"

const contentType = "application/json"

// Store saves snapshots under one key, overwriting the previous snapshot.
type Store struct {
	blobs blob.Store
	key   string
}

// New wraps a blob store. An empty key selects DefaultKey.
func New(blobs blob.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{blobs: blobs, key: key}
}

// SaveSnapshot writes the encoded snapshot, replacing any previous object.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	data, err := domain.MarshalSnapshot(snapshot)
	if err != nil {
		return err
	}
	_, err = s.blobs.Put(ctx, s.key, bytes.NewReader(data), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"next-id":   strconv.FormatUint(snapshot.NextID, 10),
			"resources": strconv.Itoa(len(snapshot.Resources)),
		},
		Overwrite: true,
	})
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", s.key, err)
	}
	return nil
}

// LoadSnapshot reads and strictly decodes the snapshot object.
func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	_, body, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("get snapshot %s: %w", s.key, err)
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	snapshot, err := domain.UnmarshalSnapshot(data)
	if err != nil {
		return domain.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Close is a no-op; blob stores hold no long-lived handles.
func (s *Store) Close() error { return nil }

// Key returns the object key snapshots are written to.
func (s *Store) Key() string { return s.key }
