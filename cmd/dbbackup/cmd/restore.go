package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/restore"
)

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore a single backup file into the database",
	Long: `Apply one backup file to the database. FILE may be a path or the
name of an artifact in the local catalog. Compressed backups are
decompressed to a temporary file which is removed afterwards.

Restoring an incremental backup only replays its rows; use "point" to
reconstruct consistent state at a moment in time.

Examples:
  dbbackup restore full_backup_20250601_120000.sql.gz
  dbbackup restore /backups/incremental/incremental_backup_20250601_130000.sql`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	artifact, err := resolveArtifact(cat, args[0])
	if err != nil {
		return err
	}

	tempDir, err := os.MkdirTemp("", "dbbackup-restore-")
	if err != nil {
		return fmt.Errorf("failed to create restore working directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tempDir)
	}()

	executor := restore.NewExecutor(restore.NewMySQLRestorer(cfg), tempDir, logger)
	if err := executor.Apply(context.Background(), artifact); err != nil {
		return err
	}

	fmt.Printf("Restored %s into %s\n", filepath.Base(artifact.Path), cfg.DBName)
	return nil
}

// resolveArtifact locates the named backup, accepting either a bare
// filename from the catalog or an explicit path.
func resolveArtifact(cat *catalog.Catalog, name string) (catalog.Artifact, error) {
	candidates := []string{
		name,
		filepath.Join(cat.FullDir(), name),
		filepath.Join(cat.IncrementalDir(), name),
	}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		base := filepath.Base(path)
		lineage, _, err := catalog.ParseBackupFilename(base)
		if err != nil {
			return catalog.Artifact{}, fmt.Errorf("%s is not a backup file: %w", base, err)
		}

		return catalog.Artifact{
			Path:       path,
			Lineage:    lineage,
			CreatedAt:  info.ModTime(),
			Compressed: catalog.IsCompressedName(base),
			SizeBytes:  info.Size(),
		}, nil
	}

	return catalog.Artifact{}, fmt.Errorf("backup file not found: %s", name)
}
