package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/compress"
	"github.com/imedwei/mysql-pitr-backup/internal/metrics"
)

// Producer materializes backup artifacts into the catalog's storage layout.
type Producer struct {
	catalog  *catalog.Catalog
	dumper   Dumper
	compress bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewProducer creates a backup producer.
func NewProducer(cat *catalog.Catalog, dumper Dumper, compressArtifacts bool, logger *slog.Logger) *Producer {
	return &Producer{
		catalog:  cat,
		dumper:   dumper,
		compress: compressArtifacts,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateFull dumps a consistent snapshot of the whole database into a new
// full artifact.
func (p *Producer) CreateFull(ctx context.Context) (catalog.Artifact, error) {
	start := p.now()
	path := filepath.Join(p.catalog.FullDir(), catalog.BackupFilename(catalog.LineageFull, start))

	p.logger.Info("Creating full backup", "path", path)

	artifact, err := p.produce(ctx, catalog.LineageFull, path, func(f *os.File) error {
		return p.dumper.DumpFull(ctx, f)
	})
	if err != nil {
		metrics.RecordBackupAttempt(string(catalog.LineageFull), false)
		return catalog.Artifact{}, err
	}

	metrics.RecordBackupAttempt(string(catalog.LineageFull), true)
	metrics.BackupDuration.WithLabelValues(string(catalog.LineageFull)).Observe(time.Since(start).Seconds())
	metrics.BackupSize.Set(float64(artifact.SizeBytes))
	metrics.LastBackupTimestamp.WithLabelValues(string(catalog.LineageFull)).Set(float64(artifact.CreatedAt.Unix()))

	p.logger.Info("Full backup created",
		"path", artifact.Path,
		"size_bytes", artifact.SizeBytes,
		"compressed", artifact.Compressed,
	)
	return artifact, nil
}

// CreateIncremental dumps rows changed since the most recent full backup.
// It fails with catalog.ErrNoBaseline when no full backup exists.
func (p *Producer) CreateIncremental(ctx context.Context) (catalog.Artifact, error) {
	baseline, err := p.catalog.LatestFull()
	if err != nil {
		return catalog.Artifact{}, err
	}

	start := p.now()
	path := filepath.Join(p.catalog.IncrementalDir(), catalog.BackupFilename(catalog.LineageIncremental, start))

	p.logger.Info("Creating incremental backup",
		"path", path,
		"since", baseline.CreatedAt,
	)

	artifact, err := p.produce(ctx, catalog.LineageIncremental, path, func(f *os.File) error {
		return p.dumper.DumpIncremental(ctx, baseline.CreatedAt, f)
	})
	if err != nil {
		metrics.RecordBackupAttempt(string(catalog.LineageIncremental), false)
		return catalog.Artifact{}, err
	}

	metrics.RecordBackupAttempt(string(catalog.LineageIncremental), true)
	metrics.BackupDuration.WithLabelValues(string(catalog.LineageIncremental)).Observe(time.Since(start).Seconds())
	metrics.LastBackupTimestamp.WithLabelValues(string(catalog.LineageIncremental)).Set(float64(artifact.CreatedAt.Unix()))

	p.logger.Info("Incremental backup created",
		"path", artifact.Path,
		"size_bytes", artifact.SizeBytes,
		"compressed", artifact.Compressed,
	)
	return artifact, nil
}

// produce runs the dump into path and optionally compresses the result. On
// any failure the partial file is removed so the catalog never references a
// truncated artifact.
func (p *Producer) produce(ctx context.Context, lineage catalog.Lineage, path string, dump func(*os.File) error) (catalog.Artifact, error) {
	if err := p.catalog.EnsureLayout(); err != nil {
		return catalog.Artifact{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return catalog.Artifact{}, fmt.Errorf("failed to create backup file: %w", err)
	}

	if err := dump(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return catalog.Artifact{}, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return catalog.Artifact{}, fmt.Errorf("failed to close backup file: %w", err)
	}

	if p.compress {
		compressedPath, err := compress.Compress(path)
		if err != nil {
			// The uncompressed dump is complete and valid; keep it.
			p.logger.Warn("Failed to compress backup, keeping uncompressed artifact",
				"path", path, "error", err)
		} else {
			path = compressedPath
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return catalog.Artifact{}, fmt.Errorf("failed to stat backup file: %w", err)
	}

	return catalog.Artifact{
		Path:       path,
		Lineage:    lineage,
		CreatedAt:  info.ModTime(),
		Compressed: catalog.IsCompressedName(path),
		SizeBytes:  info.Size(),
	}, nil
}
