package core

import (
	"context"
	"fmt"
	"resourcecatalog/internal/blob"
	"resourcecatalog/internal/infra/persistence/blobsnap"
	"resourcecatalog/internal/infra/persistence/memory"
	"resourcecatalog/internal/infra/persistence/postgres"
	"resourcecatalog/internal/infra/persistence/sqlite"
	"resourcecatalog/pkg/domain"
)

// StorageDriver identifies where snapshots are persisted.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-process only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageBlob     StorageDriver = "blob"     // single object in a blob store (fs, s3, memory)
)

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
	Blob        blob.Config
	BlobKey     string
}

// OpenSnapshotStore constructs the configured snapshot store. Defaults to
// sqlite when no driver is set.
func OpenSnapshotStore(ctx context.Context, cfg StorageConfig) (domain.SnapshotStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewSnapshotStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageBlob:
		blobs, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		return blobsnap.New(blobs, cfg.BlobKey), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
