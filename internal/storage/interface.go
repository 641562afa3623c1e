// Package storage defines the interface for backup storage providers.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Storage defines the interface for remote backup storage operations.
type Storage interface {
	// Upload stores a backup file under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error

	// Delete removes a backup file with the given key.
	Delete(ctx context.Context, key string) error

	// List returns all stored backups matching the given prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GetLastBackupTime retrieves the timestamp of the most recent upload.
	GetLastBackupTime(ctx context.Context) (time.Time, error)
}

// ObjectInfo describes a stored backup object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	Metadata     map[string]string
}

// DateKey builds the remote key for a backup file. Objects are partitioned
// by the artifact's creation date so a bucket listing groups each day's
// backups together: 2025/06/01/full_backup_20250601_120000.sql.gz.
func DateKey(created time.Time, filename string) string {
	return fmt.Sprintf("%04d/%02d/%02d/%s", created.Year(), created.Month(), created.Day(), filename)
}
