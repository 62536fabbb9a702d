package core

import (
	"context"
	"errors"
	"resourcecatalog/pkg/domain"
	"time"
)

// Service dispatches catalog operations against a single store instance.
// Mutations run inside one store transaction so the record map and the
// category index never diverge.
type Service struct {
	store     domain.PersistentStore
	snapshots domain.SnapshotStore
	clock     *secondsClock
	logger    Logger
	metrics   MetricsRecorder
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the wall clock used for timestamps.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = newSecondsClock(clock)
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches an operation metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithSnapshotStore configures where Save and Restore persist state.
func WithSnapshotStore(snapshots domain.SnapshotStore) Option {
	return func(s *Service) {
		s.snapshots = snapshots
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		clock:   newSecondsClock(nil),
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore { return s.store }

func (s *Service) observe(ctx context.Context, operation string, started time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = string(domain.KindOf(err))
	}
	s.metrics.Observe(ctx, operation, status, time.Since(started))
	switch {
	case err == nil:
		s.logger.Debug("catalog operation", "operation", operation)
	case domain.KindOf(err) == domain.KindInternal:
		s.logger.Error("catalog operation failed", "operation", operation, "error", err)
	default:
		s.logger.Warn("catalog operation rejected", "operation", operation, "error", err)
	}
}

// CreateResource validates the payload and stores a new unverified record
// owned by caller.
func (s *Service) CreateResource(ctx context.Context, caller domain.Identity, payload domain.ResourcePayload) (created domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "create_resource", started, err) }(time.Now())
	if err = ValidatePayload(payload); err != nil {
		return domain.Resource{}, err
	}
	now := s.clock.Now()
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateResource(payload, caller, now)
		return txErr
	})
	return created, err
}

// GetResource returns the record with id or a NotFound error.
func (s *Service) GetResource(ctx context.Context, id uint64) (found domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "get_resource", started, err) }(time.Now())
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		r, ok := view.FindResource(id)
		if !ok {
			return domain.NotFound(id)
		}
		found = r
		return nil
	})
	return found, err
}

// ListResources returns page of the catalog in ascending id order. Pages past
// the end are empty.
func (s *Service) ListResources(ctx context.Context, page int) (items []domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "list_resources", started, err) }(time.Now())
	items = []domain.Resource{}
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		items = listPage(view, page)
		return nil
	})
	return items, err
}

// ListResourcesByCategory returns page of category's records in insertion order.
func (s *Service) ListResourcesByCategory(ctx context.Context, category domain.Category, page int) (items []domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "list_resources_by_category", started, err) }(time.Now())
	items = []domain.Resource{}
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		items = categoryPage(view, category, page)
		return nil
	})
	return items, err
}

// SearchResources returns page of the records whose title or description
// contains query, ignoring case.
func (s *Service) SearchResources(ctx context.Context, query string, page int) (items []domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "search_resources", started, err) }(time.Now())
	items = []domain.Resource{}
	err = s.store.View(ctx, func(view domain.TransactionView) error {
		items = searchPage(view, query, page)
		return nil
	})
	return items, err
}

// UpdateResource overwrites title, description and category. Only the
// creator or an admin may update.
func (s *Service) UpdateResource(ctx context.Context, caller domain.Identity, id uint64, payload domain.ResourcePayload) (updated domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "update_resource", started, err) }(time.Now())
	if err = ValidatePayload(payload); err != nil {
		return domain.Resource{}, err
	}
	now := s.clock.Now()
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		current, ok := tx.FindResource(id)
		if !ok {
			return domain.NotFound(id)
		}
		if !IsOwnerOrAdmin(tx, caller, current) {
			return domain.Unauthorized("only the creator or an admin may update a resource")
		}
		var txErr error
		updated, txErr = tx.UpdateResource(id, now, func(r *domain.Resource) error {
			r.Title = payload.Title
			r.Description = payload.Description
			r.Category = payload.Category
			return nil
		})
		return txErr
	})
	return updated, err
}

// DeleteResource erases a record. Admin only, regardless of ownership.
func (s *Service) DeleteResource(ctx context.Context, caller domain.Identity, id uint64) (err error) {
	defer func(started time.Time) { s.observe(ctx, "delete_resource", started, err) }(time.Now())
	return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !IsAdmin(tx, caller) {
			return domain.Unauthorized("only admins may delete resources")
		}
		return tx.DeleteResource(id)
	})
}

// VerifyResource marks a record verified. Admin only.
func (s *Service) VerifyResource(ctx context.Context, caller domain.Identity, id uint64) (verified domain.Resource, err error) {
	defer func(started time.Time) { s.observe(ctx, "verify_resource", started, err) }(time.Now())
	now := s.clock.Now()
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if !IsAdmin(tx, caller) {
			return domain.Unauthorized("only admins may verify resources")
		}
		var txErr error
		verified, txErr = tx.UpdateResource(id, now, func(r *domain.Resource) error {
			r.Verified = true
			return nil
		})
		return txErr
	})
	return verified, err
}

// Initialize performs first-time setup: setup becomes the initial admin.
func (s *Service) Initialize(ctx context.Context, setup domain.Identity) (err error) {
	defer func(started time.Time) { s.observe(ctx, "initialize", started, err) }(time.Now())
	if setup == "" {
		return domain.InvalidInput("setup identity required")
	}
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		tx.GrantAdmin(setup)
		return nil
	})
	if err == nil {
		s.logger.Info("catalog initialized", "admin", setup.String())
	}
	return err
}

// Restore replaces the in-memory state with the last saved snapshot. It
// reports false when no snapshot store is configured or nothing has been
// saved. Any load or decode failure is an InternalError and leaves the
// current state untouched.
func (s *Service) Restore(ctx context.Context) (restored bool, err error) {
	defer func(started time.Time) { s.observe(ctx, "restore", started, err) }(time.Now())
	if s.snapshots == nil {
		return false, nil
	}
	snapshot, ok, err := s.snapshots.LoadSnapshot(ctx)
	if err != nil {
		return false, asInternal("load snapshot", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.store.ImportState(snapshot); err != nil {
		return false, asInternal("restore snapshot", err)
	}
	s.logger.Info("catalog restored", "resources", len(snapshot.Resources), "next_id", snapshot.NextID)
	return true, nil
}

// Save persists the full current state through the snapshot store.
func (s *Service) Save(ctx context.Context) (err error) {
	defer func(started time.Time) { s.observe(ctx, "save", started, err) }(time.Now())
	if s.snapshots == nil {
		return nil
	}
	snapshot := s.store.ExportState()
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return asInternal("save snapshot", err)
	}
	s.logger.Info("catalog saved", "resources", len(snapshot.Resources), "next_id", snapshot.NextID)
	return nil
}

// Bootstrap restores the last snapshot, or performs first-time setup with
// setup when none exists.
func (s *Service) Bootstrap(ctx context.Context, setup domain.Identity) error {
	restored, err := s.Restore(ctx)
	if err != nil {
		return err
	}
	if restored {
		return nil
	}
	return s.Initialize(ctx, setup)
}

// RunSnapshotLoop saves a snapshot every interval until ctx is cancelled.
// Failures are logged and the loop continues.
func (s *Service) RunSnapshotLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Save(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("periodic snapshot failed", "error", err)
			}
		}
	}
}

func asInternal(reason string, err error) error {
	if errors.Is(err, domain.ErrInternal) {
		return err
	}
	return domain.Internal(reason, err)
}
