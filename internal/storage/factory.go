package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/config"
)

// RetryConfig holds retry configuration for storage operations.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
}

// RetryableStorage wraps a Storage implementation with retry logic.
type RetryableStorage struct {
	storage Storage
	config  RetryConfig
}

// NewRetryableStorage creates a new storage wrapper with retry logic.
func NewRetryableStorage(storage Storage, config RetryConfig) *RetryableStorage {
	return &RetryableStorage{
		storage: storage,
		config:  config,
	}
}

// Upload implements Storage.Upload. Upload is NOT retried here: the reader
// may be partially consumed after a failure, so retries happen one level up
// where the source file can be reopened.
func (r *RetryableStorage) Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error {
	return r.storage.Upload(ctx, key, reader, metadata)
}

// Delete implements Storage.Delete with retry logic.
func (r *RetryableStorage) Delete(ctx context.Context, key string) error {
	return r.retry(ctx, func() error {
		return r.storage.Delete(ctx, key)
	})
}

// List implements Storage.List with retry logic.
func (r *RetryableStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var result []ObjectInfo
	err := r.retry(ctx, func() error {
		var err error
		result, err = r.storage.List(ctx, prefix)
		return err
	})
	return result, err
}

// GetLastBackupTime implements Storage.GetLastBackupTime with retry logic.
func (r *RetryableStorage) GetLastBackupTime(ctx context.Context) (time.Time, error) {
	var result time.Time
	err := r.retry(ctx, func() error {
		var err error
		result, err = r.storage.GetLastBackupTime(ctx)
		return err
	})
	return result, err
}

// retry executes a function with exponential backoff.
func (r *RetryableStorage) retry(ctx context.Context, fn func() error) error {
	delay := r.config.InitialDelay

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if attempt == r.config.MaxAttempts {
			return fmt.Errorf("operation failed after %d attempts: %w", r.config.MaxAttempts, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * r.config.Multiplier)
		if delay > r.config.MaxDelay {
			delay = r.config.MaxDelay
		}
	}

	return nil
}

// NewStorage creates a storage provider based on configuration.
func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	var store Storage
	var err error

	switch cfg.StorageProvider {
	case "s3":
		store, err = NewS3Storage(ctx, S3Config{
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3Endpoint != "", // Path style for custom endpoints
		})

	case "gcs":
		if err := ValidateServiceAccountJSON(cfg.GoogleServiceAccountJSON); err != nil {
			return nil, fmt.Errorf("invalid GCS service account: %w", err)
		}
		store, err = NewGCSStorage(ctx, GCSConfig{
			Bucket:             cfg.GCSBucket,
			ProjectID:          cfg.GoogleProjectID,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})

	case "azure":
		store, err = NewAzureStorage(AzureConfig{
			StorageAccount: cfg.AzureStorageAccount,
			AccountKey:     cfg.AzureAccountKey,
			Container:      cfg.AzureContainer,
		})

	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.StorageProvider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.StorageProvider, err)
	}

	return NewRetryableStorage(store, DefaultRetryConfig()), nil
}
