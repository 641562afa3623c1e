// Package cmd implements the dbbackup command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose         bool
	credentialsFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbbackup",
	Short: "MySQL backup and point-in-time recovery tool",
	Long: `dbbackup takes full and incremental MySQL backups, uploads them to
cloud storage, and restores the database to an arbitrary point in time by
replaying a chain of backups.

Environment Variables:
  DB_HOST                  Database host [required]
  DB_PORT                  Database port (default 3306)
  DB_USER                  Database username [required]
  DB_PASSWORD              Database password [required]
  DB_NAME                  Database name [required]
  BACKUP_DIR               Local backup directory (default "backups")
  COMPRESS_BACKUPS         Gzip new backups (default true)
  STORAGE_PROVIDER         s3, gcs or azure; empty disables uploads
  SLACK_WEBHOOK_URL        Webhook for backup notifications

Examples:
  dbbackup backup full
  dbbackup backup incremental
  dbbackup list
  dbbackup upload latest
  dbbackup restore full_backup_20250601_120000.sql.gz
  dbbackup point "2025-06-01 15:30:00"
  dbbackup serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are printed here so main only has
// to pick the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials", "", "Path to a JSON file with database and cloud credentials")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(pointCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}
