// Package memory provides the in-process catalog store: the resource records,
// the per-category index, the id counter and the admin set, held together
// behind a single lock.
package memory

import (
	"context"
	"resourcecatalog/pkg/domain"
	"sort"
	"sync"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Resource aliases domain.Resource for in-memory persistence operations.
	Resource = domain.Resource
	// Category aliases domain.Category.
	Category = domain.Category
	// Identity aliases domain.Identity.
	Identity = domain.Identity
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	resources map[uint64]Resource
	// order holds every stored id in ascending order; it defines the natural
	// enumeration order used by listing and search.
	order  []uint64
	index  [domain.CategoryCount][]uint64
	nextID uint64
	admins []Identity
}

func newMemoryState() memoryState {
	return memoryState{
		resources: make(map[uint64]Resource),
		nextID:    1,
	}
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		resources: make(map[uint64]Resource, len(s.resources)),
		order:     append([]uint64(nil), s.order...),
		nextID:    s.nextID,
		admins:    append([]Identity(nil), s.admins...),
	}
	for k, v := range s.resources {
		cloned.resources[k] = v
	}
	for i, ids := range s.index {
		cloned.index[i] = append([]uint64(nil), ids...)
	}
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Resources:     make(map[uint64]Resource, len(state.resources)),
		CategoryIndex: make(map[Category][]uint64, domain.CategoryCount),
		NextID:        state.nextID,
		Admins:        append([]Identity{}, state.admins...),
	}
	for k, v := range state.resources {
		s.Resources[k] = v
	}
	for i, ids := range state.index {
		if len(ids) == 0 {
			continue
		}
		s.CategoryIndex[domain.Categories[i]] = append([]uint64(nil), ids...)
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	state.nextID = s.NextID
	state.admins = append([]Identity(nil), s.Admins...)
	for k, v := range s.Resources {
		state.resources[k] = v
		state.order = append(state.order, k)
	}
	sort.Slice(state.order, func(i, j int) bool { return state.order[i] < state.order[j] })
	for category, ids := range s.CategoryIndex {
		if len(ids) == 0 {
			continue
		}
		state.index[category.Ordinal()] = append([]uint64(nil), ids...)
	}
	return state
}

// Store provides an in-memory transactional catalog.
type Store struct {
	mu    sync.RWMutex
	state memoryState
}

// NewStore constructs an empty store whose first issued id is 1.
func NewStore() *Store {
	return &Store{state: newMemoryState()}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the whole store state with the provided snapshot. The
// snapshot is validated first; on error the current state is left untouched.
func (s *Store) ImportState(snapshot Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return domain.Internal("restore snapshot", err)
	}
	state := memoryStateFromSnapshot(snapshot)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return nil
}

// RunInTransaction executes fn against a copy of the store state and commits
// the copy only when fn succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against the current state under a read lock.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(transactionView{state: &s.state})
}

// GrantAdmin adds id to the admin set, returning false when already present.
// It is the administrative collaborator's capability and is not exposed by
// the service or transport.
func (s *Store) GrantAdmin(id Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if containsIdentity(s.state.admins, id) {
		return false
	}
	s.state.admins = append(append([]Identity(nil), s.state.admins...), id)
	return true
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.resources)
}

type transactionView struct {
	state *memoryState
}

func (v transactionView) FindResource(id uint64) (Resource, bool) {
	r, ok := v.state.resources[id]
	return r, ok
}

func (v transactionView) ScanResources(fn func(Resource) bool) {
	for _, id := range v.state.order {
		if !fn(v.state.resources[id]) {
			return
		}
	}
}

func (v transactionView) CategoryIDs(c Category) []uint64 {
	ord := c.Ordinal()
	if ord < 0 {
		return nil
	}
	return append([]uint64(nil), v.state.index[ord]...)
}

func (v transactionView) IsAdmin(id Identity) bool {
	return containsIdentity(v.state.admins, id)
}

func (v transactionView) Count() int { return len(v.state.resources) }

// transaction represents a mutation set applied to a private copy of the state.
type transaction struct {
	state memoryState
}

func (tx *transaction) view() transactionView { return transactionView{state: &tx.state} }

func (tx *transaction) FindResource(id uint64) (Resource, bool) { return tx.view().FindResource(id) }
func (tx *transaction) ScanResources(fn func(Resource) bool)     { tx.view().ScanResources(fn) }
func (tx *transaction) CategoryIDs(c Category) []uint64          { return tx.view().CategoryIDs(c) }
func (tx *transaction) IsAdmin(id Identity) bool                 { return tx.view().IsAdmin(id) }
func (tx *transaction) Count() int                               { return tx.view().Count() }

// CreateResource allocates the next id and registers the record in the index.
func (tx *transaction) CreateResource(payload domain.ResourcePayload, creator Identity, now uint64) (Resource, error) {
	ord := payload.Category.Ordinal()
	if ord < 0 {
		return Resource{}, domain.InvalidInput("unknown category " + string(payload.Category))
	}
	id := tx.state.nextID
	r := Resource{
		ID:          id,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
		Verified:    false,
		CreatedBy:   creator,
	}
	tx.state.resources[id] = r
	tx.state.order = append(tx.state.order, id)
	tx.state.index[ord] = append(tx.state.index[ord], id)
	tx.state.nextID++
	return r, nil
}

// UpdateResource applies mutator to the record and moves the id between
// category lists when the category changes.
func (tx *transaction) UpdateResource(id uint64, now uint64, mutator func(*Resource) error) (Resource, error) {
	current, ok := tx.state.resources[id]
	if !ok {
		return Resource{}, domain.NotFound(id)
	}
	before := current.Category
	if err := mutator(&current); err != nil {
		return Resource{}, err
	}
	if !current.Category.Valid() {
		return Resource{}, domain.InvalidInput("unknown category " + string(current.Category))
	}
	current.ID = id
	if now > current.UpdatedAt {
		current.UpdatedAt = now
	}
	if current.Category != before {
		from, to := before.Ordinal(), current.Category.Ordinal()
		tx.state.index[from] = removeID(tx.state.index[from], id)
		tx.state.index[to] = append(tx.state.index[to], id)
	}
	tx.state.resources[id] = current
	return current, nil
}

// DeleteResource erases the record from the store and its category list.
func (tx *transaction) DeleteResource(id uint64) error {
	current, ok := tx.state.resources[id]
	if !ok {
		return domain.NotFound(id)
	}
	delete(tx.state.resources, id)
	ord := current.Category.Ordinal()
	tx.state.index[ord] = removeID(tx.state.index[ord], id)
	pos := sort.Search(len(tx.state.order), func(i int) bool { return tx.state.order[i] >= id })
	if pos < len(tx.state.order) && tx.state.order[pos] == id {
		tx.state.order = append(tx.state.order[:pos], tx.state.order[pos+1:]...)
	}
	return nil
}

// GrantAdmin adds id to the admin set.
func (tx *transaction) GrantAdmin(id Identity) bool {
	if containsIdentity(tx.state.admins, id) {
		return false
	}
	tx.state.admins = append(tx.state.admins, id)
	return true
}

func removeID(ids []uint64, id uint64) []uint64 {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func containsIdentity(values []Identity, id Identity) bool {
	for _, existing := range values {
		if existing == id {
			return true
		}
	}
	return false
}
