package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/metrics"
	"github.com/imedwei/mysql-pitr-backup/internal/utils"
)

// ErrUploadFailed indicates an artifact could not be stored remotely after
// all attempts. The local artifact is unaffected.
var ErrUploadFailed = errors.New("upload failed")

// Uploader pushes catalog artifacts to remote storage under date-partitioned
// keys. Each attempt reopens the source file, so a transfer broken mid-stream
// restarts cleanly.
type Uploader struct {
	store    Storage
	provider string
	retry    RetryConfig
	logger   *slog.Logger
}

// NewUploader creates an uploader for the given provider name (used in logs
// and metrics labels).
func NewUploader(store Storage, provider string, logger *slog.Logger) *Uploader {
	return &Uploader{
		store:    store,
		provider: provider,
		retry:    DefaultRetryConfig(),
		logger:   logger,
	}
}

// UploadArtifact stores one artifact remotely. The key is derived from the
// artifact's creation date and filename, e.g.
// 2025/06/01/full_backup_20250601_120000.sql.gz.
func (u *Uploader) UploadArtifact(ctx context.Context, artifact catalog.Artifact) (err error) {
	key := DateKey(artifact.CreatedAt, filepath.Base(artifact.Path))

	defer func() {
		metrics.RecordStorageOperation("upload", u.provider, err == nil)
	}()

	metadata := map[string]string{
		"backup-timestamp": artifact.CreatedAt.UTC().Format(time.RFC3339),
		"lineage":          string(artifact.Lineage),
	}

	delay := u.retry.InitialDelay
	for attempt := 1; ; attempt++ {
		err = u.uploadOnce(ctx, key, artifact.Path, metadata)
		if err == nil {
			u.logger.Info("Uploaded artifact",
				"provider", u.provider,
				"key", key,
				"size", utils.FormatBytes(artifact.SizeBytes),
			)
			return nil
		}

		if attempt == u.retry.MaxAttempts {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrUploadFailed, key, attempt, err)
		}

		u.logger.Warn("Upload attempt failed, retrying",
			"provider", u.provider,
			"key", key,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrUploadFailed, key, ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * u.retry.Multiplier)
		if delay > u.retry.MaxDelay {
			delay = u.retry.MaxDelay
		}
	}
}

func (u *Uploader) uploadOnce(ctx context.Context, key, path string, metadata map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := utils.NewProgressReader(f, func(bytesRead int64, elapsed time.Duration) {
		u.logger.Info("Upload progress",
			"key", key,
			"transferred", utils.FormatBytes(bytesRead),
			"rate", utils.FormatRate(float64(bytesRead)/elapsed.Seconds()),
		)
	})

	return u.store.Upload(ctx, key, reader, metadata)
}
