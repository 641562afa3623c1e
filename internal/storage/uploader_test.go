package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
)

// flakyStorage fails the first failCount uploads, then succeeds.
type flakyStorage struct {
	mockStorage
	failCount int
}

func (f *flakyStorage) Upload(ctx context.Context, key string, reader io.Reader, metadata map[string]string) error {
	if f.uploadCalls < f.failCount {
		f.uploadErr = errors.New("connection reset by peer")
	} else {
		f.uploadErr = nil
	}
	return f.mockStorage.Upload(ctx, key, reader, metadata)
}

func uploaderLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArtifact(t *testing.T, content string) catalog.Artifact {
	t.Helper()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "full_backup_20250601_120000.sql.gz")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write artifact: %v", err)
	}
	return catalog.Artifact{
		Path:       path,
		Lineage:    catalog.LineageFull,
		CreatedAt:  created,
		Compressed: true,
		SizeBytes:  int64(len(content)),
	}
}

func newTestUploader(store Storage) *Uploader {
	u := NewUploader(store, "s3", uploaderLogger())
	u.retry = shortRetryConfig()
	return u
}

func TestUploader_DatePartitionedKey(t *testing.T) {
	mock := &mockStorage{}
	uploader := newTestUploader(mock)

	err := uploader.UploadArtifact(context.Background(), testArtifact(t, "dump data"))
	if err != nil {
		t.Fatalf("UploadArtifact() failed: %v", err)
	}

	want := "2025/06/01/full_backup_20250601_120000.sql.gz"
	if len(mock.uploadedKeys) != 1 || mock.uploadedKeys[0] != want {
		t.Errorf("uploaded keys = %v, want [%s]", mock.uploadedKeys, want)
	}
	if mock.uploadedData[0] != "dump data" {
		t.Errorf("uploaded content = %q", mock.uploadedData[0])
	}

	meta := mock.uploadedMeta[0]
	if meta["lineage"] != "full" {
		t.Errorf("lineage metadata = %q", meta["lineage"])
	}
	if _, err := time.Parse(time.RFC3339, meta["backup-timestamp"]); err != nil {
		t.Errorf("backup-timestamp metadata not RFC3339: %q", meta["backup-timestamp"])
	}
}

func TestUploader_RetriesWithFreshReader(t *testing.T) {
	flaky := &flakyStorage{failCount: 2}
	uploader := newTestUploader(flaky)

	err := uploader.UploadArtifact(context.Background(), testArtifact(t, "dump data"))
	if err != nil {
		t.Fatalf("UploadArtifact() failed after transient errors: %v", err)
	}

	if flaky.uploadCalls != 3 {
		t.Errorf("upload attempts = %d, want 3", flaky.uploadCalls)
	}
	// Every attempt must see the file from the beginning
	for i, data := range flaky.uploadedData {
		if data != "dump data" {
			t.Errorf("attempt %d streamed %q, want full content", i+1, data)
		}
	}
}

func TestUploader_FailsAfterMaxAttempts(t *testing.T) {
	mock := &mockStorage{uploadErr: errors.New("access denied")}
	uploader := newTestUploader(mock)

	err := uploader.UploadArtifact(context.Background(), testArtifact(t, "dump data"))
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("error = %v, want ErrUploadFailed", err)
	}
	if mock.uploadCalls != 3 {
		t.Errorf("upload attempts = %d, want 3", mock.uploadCalls)
	}
}

func TestUploader_MissingArtifact(t *testing.T) {
	mock := &mockStorage{}
	uploader := newTestUploader(mock)

	artifact := catalog.Artifact{
		Path:      filepath.Join(t.TempDir(), "full_backup_20250601_120000.sql"),
		Lineage:   catalog.LineageFull,
		CreatedAt: time.Now(),
	}

	err := uploader.UploadArtifact(context.Background(), artifact)
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("error = %v, want ErrUploadFailed", err)
	}
}

func TestDateKey(t *testing.T) {
	created := time.Date(2025, 1, 5, 23, 59, 59, 0, time.UTC)
	got := DateKey(created, "incremental_backup_20250105_235959.sql")
	want := "2025/01/05/incremental_backup_20250105_235959.sql"
	if got != want {
		t.Errorf("DateKey() = %s, want %s", got, want)
	}
}
