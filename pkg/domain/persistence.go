package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// TransactionView provides read-only access to catalog state.
type TransactionView interface {
	FindResource(id uint64) (Resource, bool)
	// ScanResources visits records in ascending id order until fn returns false.
	ScanResources(fn func(Resource) bool)
	// CategoryIDs returns the ids registered under c, in insertion order.
	CategoryIDs(c Category) []uint64
	IsAdmin(id Identity) bool
	Count() int
}

// Transaction exposes the mutations a catalog store must apply atomically.
// Store and category index change together or not at all.
type Transaction interface {
	TransactionView
	CreateResource(payload ResourcePayload, creator Identity, now uint64) (Resource, error)
	UpdateResource(id uint64, now uint64, mutator func(*Resource) error) (Resource, error)
	DeleteResource(id uint64) error
	GrantAdmin(id Identity) bool
}

// PersistentStore is the in-process catalog state with explicit snapshot
// lifecycle.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(Snapshot) error
}

// SnapshotStore durably saves and reloads catalog snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot Snapshot) error
	// LoadSnapshot reports ok=false when nothing has been saved yet.
	LoadSnapshot(ctx context.Context) (snapshot Snapshot, ok bool, err error)
	Close() error
}

// Snapshot is the full reconstructable catalog state.
type Snapshot struct {
	Resources     map[uint64]Resource   `json:"resources"`
	CategoryIndex map[Category][]uint64 `json:"category_index"`
	NextID        uint64                `json:"next_id"`
	Admins        []Identity            `json:"admins"`
}

// Snapshot bucket names. A persisted snapshot consists of exactly these.
const (
	BucketResources     = "resources"
	BucketCategoryIndex = "category_index"
	BucketNextID        = "next_id"
	BucketAdmins        = "admins"
)

// SnapshotBuckets lists the bucket names in persistence order.
var SnapshotBuckets = []string{BucketResources, BucketCategoryIndex, BucketNextID, BucketAdmins}

// EmptySnapshot returns the state of a freshly constructed catalog.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Resources:     map[uint64]Resource{},
		CategoryIndex: map[Category][]uint64{},
		NextID:        1,
		Admins:        []Identity{},
	}
}

// Validate checks the cross-structure invariants: every record is indexed
// exactly once under its own category, every indexed id resolves, and the id
// counter is ahead of every issued id.
func (s Snapshot) Validate() error {
	if s.NextID == 0 {
		return fmt.Errorf("next_id must be at least 1")
	}
	for key, r := range s.Resources {
		if key != r.ID {
			return fmt.Errorf("resource keyed %d carries id %d", key, r.ID)
		}
		if r.ID == 0 || r.ID >= s.NextID {
			return fmt.Errorf("resource id %d outside issued range [1,%d)", r.ID, s.NextID)
		}
		if !r.Category.Valid() {
			return fmt.Errorf("resource %d has unknown category %q", r.ID, r.Category)
		}
		if r.UpdatedAt < r.CreatedAt {
			return fmt.Errorf("resource %d updated_at precedes created_at", r.ID)
		}
	}
	seen := make(map[uint64]Category, len(s.Resources))
	for category, ids := range s.CategoryIndex {
		if !category.Valid() {
			return fmt.Errorf("category index has unknown category %q", category)
		}
		for _, id := range ids {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("resource %d indexed under both %s and %s", id, prev, category)
			}
			seen[id] = category
			r, ok := s.Resources[id]
			if !ok {
				return fmt.Errorf("category %s references missing resource %d", category, id)
			}
			if r.Category != category {
				return fmt.Errorf("resource %d indexed under %s but has category %s", id, category, r.Category)
			}
		}
	}
	if len(seen) != len(s.Resources) {
		return fmt.Errorf("%d resources are missing from the category index", len(s.Resources)-len(seen))
	}
	return nil
}

// EncodeBuckets serializes each snapshot bucket to JSON.
func (s Snapshot) EncodeBuckets() (map[string][]byte, error) {
	values := map[string]any{
		BucketResources:     nonNilResources(s.Resources),
		BucketCategoryIndex: nonNilIndex(s.CategoryIndex),
		BucketNextID:        s.NextID,
		BucketAdmins:        nonNilAdmins(s.Admins),
	}
	out := make(map[string][]byte, len(values))
	for _, bucket := range SnapshotBuckets {
		data, err := json.Marshal(values[bucket])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeSnapshotBuckets rebuilds a snapshot from its encoded buckets. Any
// missing or unexpected bucket, unknown field or failed invariant is an error.
func DecodeSnapshotBuckets(buckets map[string][]byte) (Snapshot, error) {
	for name := range buckets {
		if !isSnapshotBucket(name) {
			return Snapshot{}, fmt.Errorf("unexpected snapshot bucket %q", name)
		}
	}
	var snapshot Snapshot
	targets := map[string]any{
		BucketResources:     &snapshot.Resources,
		BucketCategoryIndex: &snapshot.CategoryIndex,
		BucketNextID:        &snapshot.NextID,
		BucketAdmins:        &snapshot.Admins,
	}
	for _, bucket := range SnapshotBuckets {
		payload, ok := buckets[bucket]
		if !ok || len(payload) == 0 {
			return Snapshot{}, fmt.Errorf("snapshot bucket %q missing", bucket)
		}
		if err := strictUnmarshal(payload, targets[bucket]); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	snapshot.Resources = nonNilResources(snapshot.Resources)
	snapshot.CategoryIndex = nonNilIndex(snapshot.CategoryIndex)
	snapshot.Admins = nonNilAdmins(snapshot.Admins)
	if err := snapshot.Validate(); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}

// MarshalSnapshot encodes the snapshot as a single JSON document keyed by bucket.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	buckets, err := s.EncodeBuckets()
	if err != nil {
		return nil, err
	}
	doc := make(map[string]json.RawMessage, len(buckets))
	for name, payload := range buckets {
		doc[name] = payload
	}
	return json.Marshal(doc)
}

// UnmarshalSnapshot is the inverse of MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot document: %w", err)
	}
	buckets := make(map[string][]byte, len(doc))
	for name, payload := range doc {
		buckets[name] = payload
	}
	return DecodeSnapshotBuckets(buckets)
}

// SortedAdmins returns a sorted copy of the admin list.
func (s Snapshot) SortedAdmins() []Identity {
	out := append([]Identity(nil), s.Admins...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func isSnapshotBucket(name string) bool {
	for _, bucket := range SnapshotBuckets {
		if bucket == name {
			return true
		}
	}
	return false
}

func nonNilResources(in map[uint64]Resource) map[uint64]Resource {
	if in == nil {
		return map[uint64]Resource{}
	}
	return in
}

func nonNilIndex(in map[Category][]uint64) map[Category][]uint64 {
	if in == nil {
		return map[Category][]uint64{}
	}
	return in
}

func nonNilAdmins(in []Identity) []Identity {
	if in == nil {
		return []Identity{}
	}
	return in
}
