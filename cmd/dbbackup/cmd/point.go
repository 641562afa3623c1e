package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/imedwei/mysql-pitr-backup/internal/restore"
)

// pointTimeLayout is the accepted target timestamp format, interpreted in
// the local timezone like the backup filenames.
const pointTimeLayout = "2006-01-02 15:04:05"

var pointCmd = &cobra.Command{
	Use:   "point TIMESTAMP",
	Short: "Restore the database to a point in time",
	Long: `Reconstruct database state at the given moment by replaying the
latest full backup taken at or before it, followed by every incremental
backup up to and including the target time, oldest first.

The timestamp is interpreted in the local timezone.

Example:
  dbbackup point "2025-06-01 15:30:00"`,
	Args: cobra.ExactArgs(1),
	RunE: runPoint,
}

func runPoint(cmd *cobra.Command, args []string) error {
	target, err := time.ParseInLocation(pointTimeLayout, args[0], time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q, expected YYYY-MM-DD HH:MM:SS: %w", args[0], err)
	}

	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	pitr := restore.NewPointInTimeRestorer(cat, restore.NewMySQLRestorer(cfg), logger)
	if err := pitr.RestoreToPointInTime(context.Background(), target); err != nil {
		return err
	}

	fmt.Printf("Restored %s to %s\n", cfg.DBName, target.Format(pointTimeLayout))
	return nil
}
