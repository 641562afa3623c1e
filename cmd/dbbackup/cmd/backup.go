package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/utils"
)

var backupCmd = &cobra.Command{
	Use:   "backup {full|incremental}",
	Short: "Create a backup of the database",
	Long: `Create a backup artifact in the local catalog.

A full backup is a transactionally-consistent snapshot of the whole
database. An incremental backup contains rows whose change-tracking
timestamp is newer than the most recent full backup; it requires that a
full backup exists.

Examples:
  dbbackup backup full
  dbbackup backup incremental`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"full", "incremental"},
	RunE:      runBackup,
}

var (
	backupNoCompress bool
	backupUpload     bool
)

func init() {
	backupCmd.Flags().BoolVar(&backupNoCompress, "no-compress", false, "Keep the backup uncompressed")
	backupCmd.Flags().BoolVar(&backupUpload, "upload", false, "Upload the backup to the configured storage provider afterwards")
}

func runBackup(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if backupNoCompress {
		cfg.Compress = false
	}
	if backupUpload && cfg.StorageProvider == "" {
		return fmt.Errorf("--upload requires a storage provider, set STORAGE_PROVIDER")
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	producer := newProducer(cfg, cat, logger)
	notifier := newNotifier(cfg, logger)
	ctx := context.Background()

	var artifact catalog.Artifact
	var title string
	switch args[0] {
	case "full":
		title = "Full backup"
		artifact, err = producer.CreateFull(ctx)
	case "incremental":
		title = "Incremental backup"
		artifact, err = producer.CreateIncremental(ctx)
	default:
		return fmt.Errorf("unknown backup type: %s", args[0])
	}

	if err != nil {
		notifier.NotifyFailure(ctx, title+" failed", err)
		return err
	}

	notifier.NotifySuccess(ctx, title+" completed",
		fmt.Sprintf("%s (%s)", filepath.Base(artifact.Path), utils.FormatBytes(artifact.SizeBytes)))

	fmt.Printf("Created %s (%s)\n", artifact.Path, utils.FormatBytes(artifact.SizeBytes))

	if backupUpload {
		uploader, err := newUploader(ctx, cfg, logger)
		if err != nil {
			return err
		}
		if err := uploader.UploadArtifact(ctx, artifact); err != nil {
			notifier.NotifyFailure(ctx, "Backup upload failed", err)
			return err
		}
		notifier.NotifySuccess(ctx, "Backup uploaded",
			fmt.Sprintf("%s to %s", filepath.Base(artifact.Path), cfg.StorageProvider))
		fmt.Printf("Uploaded to %s\n", cfg.StorageProvider)
	}
	return nil
}
