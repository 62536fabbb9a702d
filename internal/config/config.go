// Package config loads catalogd settings from an optional YAML file and
// CATALOG_* environment variables. Environment values override the file.
package config

import (
	"fmt"
	"os"
	"resourcecatalog/internal/blob"
	"resourcecatalog/internal/core"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete daemon configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Setup   SetupConfig   `yaml:"setup"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// SetupConfig names the identity granted admin on first-time setup.
type SetupConfig struct {
	Identity string `yaml:"identity"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	Driver           string        `yaml:"driver"`
	SQLitePath       string        `yaml:"sqlite_path"`
	PostgresDSN      string        `yaml:"postgres_dsn"`
	Blob             BlobConfig    `yaml:"blob"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// BlobConfig configures the blob snapshot backend.
type BlobConfig struct {
	Driver string   `yaml:"driver"`
	FSRoot string   `yaml:"fs_root"`
	Key    string   `yaml:"key"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures the S3 blob driver. Credentials fall back to the
// default AWS chain when unset.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LogConfig toggles zap's development preset.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: ":8080"},
		Storage: StorageConfig{Driver: string(core.StorageSQLite), SQLitePath: "catalog.db"},
	}
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CATALOG_HTTP_ADDR":          &c.HTTP.Addr,
		"CATALOG_SETUP_IDENTITY":     &c.Setup.Identity,
		"CATALOG_STORAGE_DRIVER":     &c.Storage.Driver,
		"CATALOG_SQLITE_PATH":        &c.Storage.SQLitePath,
		"CATALOG_POSTGRES_DSN":       &c.Storage.PostgresDSN,
		"CATALOG_BLOB_DRIVER":        &c.Storage.Blob.Driver,
		"CATALOG_BLOB_FS_ROOT":       &c.Storage.Blob.FSRoot,
		"CATALOG_BLOB_KEY":           &c.Storage.Blob.Key,
		"CATALOG_BLOB_S3_BUCKET":     &c.Storage.Blob.S3.Bucket,
		"CATALOG_BLOB_S3_REGION":     &c.Storage.Blob.S3.Region,
		"CATALOG_BLOB_S3_ENDPOINT":   &c.Storage.Blob.S3.Endpoint,
		"CATALOG_BLOB_S3_ACCESS_KEY": &c.Storage.Blob.S3.AccessKeyID,
		"CATALOG_BLOB_S3_SECRET_KEY": &c.Storage.Blob.S3.SecretAccessKey,
	}
	for name, target := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*target = v
		}
	}
	bools := map[string]*bool{
		"CATALOG_BLOB_S3_PATH_STYLE": &c.Storage.Blob.S3.PathStyle,
		"CATALOG_LOG_DEVELOPMENT":    &c.Log.Development,
	}
	for name, target := range bools {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = parsed
	}
	if v, ok := lookup("CATALOG_SNAPSHOT_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CATALOG_SNAPSHOT_INTERVAL: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("CATALOG_SNAPSHOT_INTERVAL must not be negative")
		}
		c.Storage.SnapshotInterval = d
	}
	return nil
}

// StorageConfig maps the file/env settings onto core.StorageConfig.
func (c Config) StorageConfig() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
		BlobKey:     c.Storage.Blob.Key,
		Blob: blob.Config{
			Driver: blob.Driver(c.Storage.Blob.Driver),
			FSRoot: c.Storage.Blob.FSRoot,
			S3: blob.S3Config{
				Region:          c.Storage.Blob.S3.Region,
				Bucket:          c.Storage.Blob.S3.Bucket,
				Endpoint:        c.Storage.Blob.S3.Endpoint,
				AccessKeyID:     c.Storage.Blob.S3.AccessKeyID,
				SecretAccessKey: c.Storage.Blob.S3.SecretAccessKey,
				PathStyle:       c.Storage.Blob.S3.PathStyle,
			},
		},
	}
}
