package blob

import (
	"context"
	"fmt"

	"resourcecatalog/internal/infra/blob/fs"
	memorystore "resourcecatalog/internal/infra/blob/memory"
	infraS3 "resourcecatalog/internal/infra/blob/s3"
)

// Config selects and configures a blob driver.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open constructs the configured blob.Store. The filesystem driver is the default.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		store, err := fs.New(cfg.FSRoot)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := infraS3.New(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		return memorystore.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

// S3Config configures the S3 driver.
type S3Config = infraS3.Config

// NewS3MockForTests returns an S3-driver store backed by an in-process fake
// endpoint.
func NewS3MockForTests() Store { return infraS3.NewMockForTests() }
