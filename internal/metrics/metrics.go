// Package metrics provides Prometheus metrics for the backup manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BackupAttempts tracks the total number of backup attempts by lineage.
	BackupAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mysql_backup_attempts_total",
		Help: "Total number of backup attempts",
	}, []string{"type", "status"})

	// BackupDuration tracks the duration of backup creation by lineage.
	BackupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mysql_backup_duration_seconds",
		Help:    "Duration of backup creation in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~17min
	}, []string{"type"})

	// BackupSize tracks the size of the last full backup artifact.
	BackupSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mysql_backup_size_bytes",
		Help: "Size of the last backup artifact in bytes",
	})

	// DatabaseSize tracks the size of the database.
	DatabaseSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mysql_database_size_bytes",
		Help: "Size of the database in bytes",
	})

	// LastBackupTimestamp tracks when the last successful backup occurred
	// per lineage.
	LastBackupTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mysql_backup_last_success_timestamp",
		Help: "Unix timestamp of the last successful backup",
	}, []string{"type"})

	// StorageOperations tracks cloud storage operations.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mysql_backup_storage_operations_total",
		Help: "Total number of storage operations",
	}, []string{"operation", "provider", "status"})

	// ScheduleSkips tracks scheduled backups skipped by the minimum
	// interval guard.
	ScheduleSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mysql_backup_schedule_skipped_total",
		Help: "Total number of scheduled backups skipped by the interval guard",
	})

	// BackupsDeleted tracks the number of artifacts removed by retention.
	BackupsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mysql_backup_deleted_total",
		Help: "Total number of backup artifacts deleted by retention",
	})

	// RestoreAttempts tracks restore operations.
	RestoreAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mysql_restore_attempts_total",
		Help: "Total number of restore attempts",
	}, []string{"status"})

	// RestoreDuration tracks the duration of whole restore operations.
	RestoreDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mysql_restore_duration_seconds",
		Help:    "Duration of restore operations in seconds",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// RestoreChainLength tracks how many artifacts a point-in-time restore
	// replayed.
	RestoreChainLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mysql_restore_chain_length",
		Help:    "Number of artifacts in a replayed restore chain",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})

	// Info provides static information about the service.
	Info = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mysql_backup_info",
		Help: "Information about the backup manager",
	}, []string{"version", "storage_provider"})
)

// RecordBackupAttempt records a backup attempt with its status.
func RecordBackupAttempt(backupType string, success bool) {
	BackupAttempts.WithLabelValues(backupType, statusLabel(success)).Inc()
}

// RecordStorageOperation records a cloud storage operation.
func RecordStorageOperation(operation, provider string, success bool) {
	StorageOperations.WithLabelValues(operation, provider, statusLabel(success)).Inc()
}

// RecordRestoreAttempt records a restore attempt with its status.
func RecordRestoreAttempt(success bool) {
	RestoreAttempts.WithLabelValues(statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
