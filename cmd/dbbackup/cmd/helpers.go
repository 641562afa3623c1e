package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/imedwei/mysql-pitr-backup/internal/backup"
	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/config"
	"github.com/imedwei/mysql-pitr-backup/internal/notify"
	"github.com/imedwei/mysql-pitr-backup/internal/storage"
)

// credentials is the schema of the --credentials JSON file. Fields present
// in the file override the corresponding environment variables.
type credentials struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`

	AWSAccessKeyID           string `json:"aws_access_key_id"`
	AWSSecretAccessKey       string `json:"aws_secret_access_key"`
	GoogleServiceAccountJSON string `json:"google_service_account_json"`
	AzureAccountKey          string `json:"azure_account_key"`
}

// loadConfig builds the effective configuration from the environment plus
// the optional credentials file.
func loadConfig() (*config.Config, error) {
	cfg := config.FromEnv()

	if credentialsFile != "" {
		if err := applyCredentialsFile(cfg, credentialsFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

func applyCredentialsFile(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read credentials file: %w", err)
	}

	var creds credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("invalid credentials file %s: %w", path, err)
	}

	if creds.Host != "" {
		cfg.DBHost = creds.Host
	}
	if creds.Port != 0 {
		cfg.DBPort = creds.Port
	}
	if creds.User != "" {
		cfg.DBUser = creds.User
	}
	if creds.Password != "" {
		cfg.DBPassword = creds.Password
	}
	if creds.Database != "" {
		cfg.DBName = creds.Database
	}
	if creds.AWSAccessKeyID != "" {
		cfg.AWSAccessKeyID = creds.AWSAccessKeyID
	}
	if creds.AWSSecretAccessKey != "" {
		cfg.AWSSecretAccessKey = creds.AWSSecretAccessKey
	}
	if creds.GoogleServiceAccountJSON != "" {
		cfg.GoogleServiceAccountJSON = creds.GoogleServiceAccountJSON
	}
	if creds.AzureAccountKey != "" {
		cfg.AzureAccountKey = creds.AzureAccountKey
	}
	return nil
}

// newCatalog opens the local artifact catalog, creating its layout.
func newCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	cat := catalog.New(cfg.BackupDir)
	if err := cat.EnsureLayout(); err != nil {
		return nil, err
	}
	return cat, nil
}

// newProducer wires a backup producer against the configured database.
func newProducer(cfg *config.Config, cat *catalog.Catalog, logger *slog.Logger) *backup.Producer {
	return backup.NewProducer(cat, backup.NewMySQLDumper(cfg), cfg.Compress, logger)
}

// newNotifier returns a Slack notifier when a webhook is configured, a
// no-op notifier otherwise.
func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if cfg.SlackWebhookURL == "" {
		return notify.NopNotifier{}
	}
	return notify.NewSlackNotifier(cfg.SlackWebhookURL, logger)
}

// newUploader builds an uploader for the configured storage provider, or
// nil when uploads are disabled.
func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage.Uploader, error) {
	if cfg.StorageProvider == "" {
		return nil, nil
	}

	store, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return storage.NewUploader(store, cfg.StorageProvider, logger), nil
}
