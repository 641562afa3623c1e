// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is built once by Load and
// passed explicitly to every component constructor; nothing reads process-wide
// state after startup.
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Catalog layout
	BackupDir string

	// Backup options
	Compress         bool
	TrackingColumn   string // change-tracking timestamp column for incremental dumps
	MySQLDumpOptions string // extra mysqldump flags, space separated
	RetentionDays    int
	MinIntervalHours int
	ForceBackup      bool

	// Storage provider configuration
	StorageProvider string // "s3", "gcs" or "azure"; empty disables uploads

	// S3 configuration
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string // Optional custom endpoint

	// GCS configuration
	GCSBucket                string
	GoogleProjectID          string
	GoogleServiceAccountJSON string

	// Azure configuration
	AzureStorageAccount string
	AzureAccountKey     string
	AzureContainer      string

	// Notification
	SlackWebhookURL string

	// Scheduler (serve mode)
	FullSchedule        string // cron expression
	IncrementalSchedule string // cron expression
	MetricsPort         int
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without
// validating. Callers that merge in further sources (a credentials file)
// validate after merging.
func FromEnv() *Config {
	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		BackupDir: os.Getenv("BACKUP_DIR"),

		TrackingColumn:   os.Getenv("INCREMENTAL_TRACKING_COLUMN"),
		MySQLDumpOptions: os.Getenv("MYSQLDUMP_OPTIONS"),

		StorageProvider: os.Getenv("STORAGE_PROVIDER"),

		// S3
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           os.Getenv("S3_REGION"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),

		// GCS
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GoogleProjectID:          os.Getenv("GOOGLE_PROJECT_ID"),
		GoogleServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),

		// Azure
		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:     os.Getenv("AZURE_ACCOUNT_KEY"),
		AzureContainer:      os.Getenv("AZURE_CONTAINER"),

		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),

		FullSchedule:        os.Getenv("FULL_BACKUP_SCHEDULE"),
		IncrementalSchedule: os.Getenv("INCREMENTAL_BACKUP_SCHEDULE"),
	}

	// Parse numeric values with defaults
	cfg.DBPort = getEnvInt("DB_PORT", 3306)
	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 0) // 0 means no retention policy
	cfg.MinIntervalHours = getEnvInt("MIN_BACKUP_INTERVAL_HOURS", 0)
	cfg.MetricsPort = getEnvInt("METRICS_PORT", 8080)
	cfg.Compress = getEnvBool("COMPRESS_BACKUPS", true)
	cfg.ForceBackup = getEnvBool("FORCE_BACKUP", false)

	// Defaults
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if cfg.TrackingColumn == "" {
		cfg.TrackingColumn = "created_at"
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		return fmt.Errorf("DB_PORT must be a valid port number, got %d", c.DBPort)
	}

	switch c.StorageProvider {
	case "":
		// Uploads disabled; nothing to validate.
	case "s3":
		if err := c.validateS3(); err != nil {
			return err
		}
	case "gcs":
		if err := c.validateGCS(); err != nil {
			return err
		}
	case "azure":
		if err := c.validateAzure(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid STORAGE_PROVIDER: %s (must be 's3', 'gcs' or 'azure')", c.StorageProvider)
	}

	if c.RetentionDays < 0 {
		return fmt.Errorf("RETENTION_DAYS must be non-negative")
	}
	if c.MinIntervalHours < 0 {
		return fmt.Errorf("MIN_BACKUP_INTERVAL_HOURS must be non-negative")
	}

	return nil
}

func (c *Config) validateS3() error {
	if c.AWSAccessKeyID == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID is required for S3 storage")
	}
	if c.AWSSecretAccessKey == "" {
		return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for S3 storage")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for S3 storage")
	}
	if c.S3Region == "" && c.S3Endpoint == "" {
		return fmt.Errorf("S3_REGION is required for S3 storage (unless S3_ENDPOINT is set)")
	}
	return nil
}

func (c *Config) validateGCS() error {
	if c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required for GCS storage")
	}
	if c.GoogleProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is required for GCS storage")
	}
	if c.GoogleServiceAccountJSON == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is required for GCS storage")
	}
	return nil
}

func (c *Config) validateAzure() error {
	if c.AzureStorageAccount == "" {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT is required for Azure storage")
	}
	if c.AzureAccountKey == "" {
		return fmt.Errorf("AZURE_ACCOUNT_KEY is required for Azure storage")
	}
	if c.AzureContainer == "" {
		return fmt.Errorf("AZURE_CONTAINER is required for Azure storage")
	}
	return nil
}

// GetMinInterval returns the minimum interval between scheduled backups.
func (c *Config) GetMinInterval() time.Duration {
	return time.Duration(c.MinIntervalHours) * time.Hour
}

// getEnvInt gets an integer from environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean from environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
