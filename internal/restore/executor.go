package restore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/compress"
)

// Restorer defines the interface to the external restore tool.
type Restorer interface {
	// Restore streams SQL statements from r into the database.
	Restore(ctx context.Context, r io.Reader) error
}

// ToolError reports a non-zero exit from the external restore tool, carrying
// its diagnostic output.
type ToolError struct {
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Stderr != "" {
		return "mysql restore failed: " + e.Stderr
	}
	return "mysql restore failed: " + e.Err.Error()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Executor applies single artifacts to the database. Transient decompressed
// copies live inside tempDir and never outlive one Apply call.
type Executor struct {
	restorer Restorer
	tempDir  string
	logger   *slog.Logger
}

// NewExecutor creates an executor whose transient files go into tempDir.
func NewExecutor(restorer Restorer, tempDir string, logger *slog.Logger) *Executor {
	return &Executor{
		restorer: restorer,
		tempDir:  tempDir,
		logger:   logger,
	}
}

// Apply replays one artifact: decompress into the temp dir if needed, stream
// the contents into the restore tool, and remove the transient copy on both
// the success and failure paths.
func (e *Executor) Apply(ctx context.Context, artifact catalog.Artifact) error {
	path := artifact.Path

	if artifact.Compressed {
		transient := filepath.Join(e.tempDir,
			fmt.Sprintf("restore_%s_%d.sql", strings.TrimSuffix(filepath.Base(artifact.Path), ".sql.gz"), time.Now().UnixNano()))
		defer func() {
			_ = os.Remove(transient)
		}()

		e.logger.Info("Decompressing artifact", "artifact", artifact.Path)
		if err := compress.Decompress(artifact.Path, transient); err != nil {
			return err
		}
		path = transient
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	e.logger.Info("Applying artifact", "artifact", artifact.Path, "lineage", artifact.Lineage)
	return e.restorer.Restore(ctx, f)
}
