package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Save original env
	originalEnv := map[string]string{
		"DB_HOST":                   os.Getenv("DB_HOST"),
		"DB_PORT":                   os.Getenv("DB_PORT"),
		"DB_USER":                   os.Getenv("DB_USER"),
		"DB_PASSWORD":               os.Getenv("DB_PASSWORD"),
		"DB_NAME":                   os.Getenv("DB_NAME"),
		"BACKUP_DIR":                os.Getenv("BACKUP_DIR"),
		"STORAGE_PROVIDER":          os.Getenv("STORAGE_PROVIDER"),
		"AWS_ACCESS_KEY_ID":         os.Getenv("AWS_ACCESS_KEY_ID"),
		"AWS_SECRET_ACCESS_KEY":     os.Getenv("AWS_SECRET_ACCESS_KEY"),
		"S3_BUCKET":                 os.Getenv("S3_BUCKET"),
		"S3_REGION":                 os.Getenv("S3_REGION"),
		"S3_ENDPOINT":               os.Getenv("S3_ENDPOINT"),
		"AZURE_STORAGE_ACCOUNT":     os.Getenv("AZURE_STORAGE_ACCOUNT"),
		"AZURE_ACCOUNT_KEY":         os.Getenv("AZURE_ACCOUNT_KEY"),
		"AZURE_CONTAINER":           os.Getenv("AZURE_CONTAINER"),
		"MIN_BACKUP_INTERVAL_HOURS": os.Getenv("MIN_BACKUP_INTERVAL_HOURS"),
	}
	defer func() {
		for k, v := range originalEnv {
			os.Setenv(k, v)
		}
	}()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "minimal config without storage",
			env: map[string]string{
				"DB_HOST": "localhost",
				"DB_USER": "root",
				"DB_NAME": "appdb",
			},
			wantErr: false,
		},
		{
			name: "valid S3 config",
			env: map[string]string{
				"DB_HOST":               "localhost",
				"DB_USER":               "root",
				"DB_NAME":               "appdb",
				"STORAGE_PROVIDER":      "s3",
				"AWS_ACCESS_KEY_ID":     "test-key",
				"AWS_SECRET_ACCESS_KEY": "test-secret",
				"S3_BUCKET":             "test-bucket",
				"S3_REGION":             "us-east-1",
			},
			wantErr: false,
		},
		{
			name: "valid Azure config",
			env: map[string]string{
				"DB_HOST":               "localhost",
				"DB_USER":               "root",
				"DB_NAME":               "appdb",
				"STORAGE_PROVIDER":      "azure",
				"AZURE_STORAGE_ACCOUNT": "backupsacct",
				"AZURE_ACCOUNT_KEY":     "test-key",
				"AZURE_CONTAINER":       "backups",
			},
			wantErr: false,
		},
		{
			name: "missing DB_HOST",
			env: map[string]string{
				"DB_USER": "root",
				"DB_NAME": "appdb",
			},
			wantErr: true,
		},
		{
			name: "invalid STORAGE_PROVIDER",
			env: map[string]string{
				"DB_HOST":          "localhost",
				"DB_USER":          "root",
				"DB_NAME":          "appdb",
				"STORAGE_PROVIDER": "invalid",
			},
			wantErr: true,
		},
		{
			name: "S3 with custom endpoint and no region",
			env: map[string]string{
				"DB_HOST":               "localhost",
				"DB_USER":               "root",
				"DB_NAME":               "appdb",
				"STORAGE_PROVIDER":      "s3",
				"AWS_ACCESS_KEY_ID":     "test-key",
				"AWS_SECRET_ACCESS_KEY": "test-secret",
				"S3_BUCKET":             "test-bucket",
				"S3_ENDPOINT":           "https://s3.custom.com",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear env
			for k := range originalEnv {
				os.Unsetenv(k)
			}

			// Set test env
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				return
			}
			if cfg == nil {
				t.Fatal("Load() returned nil config without error")
			}
			if cfg.DBPort != 3306 {
				t.Errorf("DBPort = %d, want default 3306", cfg.DBPort)
			}
			if cfg.BackupDir != "backups" {
				t.Errorf("BackupDir = %q, want default %q", cfg.BackupDir, "backups")
			}
			if cfg.TrackingColumn != "created_at" {
				t.Errorf("TrackingColumn = %q, want default %q", cfg.TrackingColumn, "created_at")
			}
			if !cfg.Compress {
				t.Error("Compress should default to true")
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid without storage",
			config: Config{
				DBHost: "localhost",
				DBPort: 3306,
				DBUser: "root",
				DBName: "appdb",
			},
			wantErr: false,
		},
		{
			name: "missing S3 credentials",
			config: Config{
				DBHost:          "localhost",
				DBPort:          3306,
				DBUser:          "root",
				DBName:          "appdb",
				StorageProvider: "s3",
				S3Bucket:        "bucket",
				S3Region:        "us-east-1",
			},
			wantErr: true,
		},
		{
			name: "missing GCS project",
			config: Config{
				DBHost:                   "localhost",
				DBPort:                   3306,
				DBUser:                   "root",
				DBName:                   "appdb",
				StorageProvider:          "gcs",
				GCSBucket:                "bucket",
				GoogleServiceAccountJSON: `{"type": "service_account"}`,
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			config: Config{
				DBHost: "localhost",
				DBPort: 0,
				DBUser: "root",
				DBName: "appdb",
			},
			wantErr: true,
		},
		{
			name: "negative retention",
			config: Config{
				DBHost:        "localhost",
				DBPort:        3306,
				DBUser:        "root",
				DBName:        "appdb",
				RetentionDays: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetMinInterval(t *testing.T) {
	cfg := &Config{
		MinIntervalHours: 8,
	}

	want := 8 * time.Hour
	if got := cfg.GetMinInterval(); got != want {
		t.Errorf("GetMinInterval() = %v, want %v", got, want)
	}
}

func TestGetEnvInt(t *testing.T) {
	os.Setenv("TEST_INT", "42")
	defer os.Unsetenv("TEST_INT")

	if got := getEnvInt("TEST_INT", 10); got != 42 {
		t.Errorf("getEnvInt() = %v, want %v", got, 42)
	}

	if got := getEnvInt("TEST_INT_MISSING", 10); got != 10 {
		t.Errorf("getEnvInt() with missing key = %v, want %v", got, 10)
	}
}

func TestGetEnvBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "false")
	defer os.Unsetenv("TEST_BOOL")

	if got := getEnvBool("TEST_BOOL", true); got != false {
		t.Errorf("getEnvBool() = %v, want %v", got, false)
	}

	if got := getEnvBool("TEST_BOOL_MISSING", true); got != true {
		t.Errorf("getEnvBool() with missing key = %v, want %v", got, true)
	}
}
