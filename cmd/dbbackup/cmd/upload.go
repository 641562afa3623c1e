package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// uploadConcurrency bounds parallel transfers in `upload all`.
const uploadConcurrency = 4

var (
	uploadProvider string
	uploadBucket   string
)

var uploadCmd = &cobra.Command{
	Use:   "upload {latest|all}",
	Short: "Upload backups to the configured storage provider",
	Long: `Upload local backups to the configured cloud storage provider.
Objects are keyed by the backup's creation date:
2025/06/01/full_backup_20250601_120000.sql.gz.

"latest" uploads the most recent artifact, "all" uploads every artifact in
the catalog.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"latest", "all"},
	RunE:      runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadProvider, "provider", "", "Storage provider to use (s3, gcs or azure), overriding STORAGE_PROVIDER")
	uploadCmd.Flags().StringVar(&uploadBucket, "bucket", "", "Bucket or container to upload to, overriding the configured one")
}

func runUpload(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if uploadProvider != "" {
		cfg.StorageProvider = uploadProvider
	}
	if uploadBucket != "" {
		switch cfg.StorageProvider {
		case "s3":
			cfg.S3Bucket = uploadBucket
		case "gcs":
			cfg.GCSBucket = uploadBucket
		case "azure":
			cfg.AzureContainer = uploadBucket
		}
	}
	if cfg.StorageProvider == "" {
		return fmt.Errorf("no storage provider configured, set STORAGE_PROVIDER or pass --provider")
	}
	if uploadProvider != "" || uploadBucket != "" {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	notifier := newNotifier(cfg, logger)

	artifacts, err := cat.ListAll()
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("no backups to upload")
	}

	switch args[0] {
	case "latest":
		latest := artifacts[0]
		for _, a := range artifacts[1:] {
			if a.CreatedAt.After(latest.CreatedAt) {
				latest = a
			}
		}
		if err := uploader.UploadArtifact(ctx, latest); err != nil {
			notifier.NotifyFailure(ctx, "Backup upload failed", err)
			return err
		}
		notifier.NotifySuccess(ctx, "Backup uploaded",
			fmt.Sprintf("%s to %s", filepath.Base(latest.Path), cfg.StorageProvider))
		fmt.Printf("Uploaded 1 backup to %s\n", cfg.StorageProvider)
		return nil

	case "all":
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(uploadConcurrency)
		for _, a := range artifacts {
			artifact := a
			g.Go(func() error {
				return uploader.UploadArtifact(gctx, artifact)
			})
		}
		if err := g.Wait(); err != nil {
			notifier.NotifyFailure(ctx, "Backup upload failed", err)
			return err
		}
		notifier.NotifySuccess(ctx, "Backups uploaded",
			fmt.Sprintf("%d backups to %s", len(artifacts), cfg.StorageProvider))
		fmt.Printf("Uploaded %d backups to %s\n", len(artifacts), cfg.StorageProvider)
		return nil

	default:
		return fmt.Errorf("unknown upload target: %s", args[0])
	}
}
