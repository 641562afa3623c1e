// Package scheduler runs backups on cron schedules and applies the
// retention policy.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/imedwei/mysql-pitr-backup/internal/backup"
	"github.com/imedwei/mysql-pitr-backup/internal/catalog"
	"github.com/imedwei/mysql-pitr-backup/internal/metrics"
	"github.com/imedwei/mysql-pitr-backup/internal/notify"
	"github.com/imedwei/mysql-pitr-backup/internal/ratelimit"
	"github.com/imedwei/mysql-pitr-backup/internal/storage"
	"github.com/imedwei/mysql-pitr-backup/internal/utils"
)

// Scheduler drives periodic full and incremental backups. Uploads and
// notifications are optional; retention runs after each successful full
// backup.
type Scheduler struct {
	producer      *backup.Producer
	catalog       *catalog.Catalog
	uploader      *storage.Uploader // nil disables uploads
	notifier      notify.Notifier
	limiter       ratelimit.Limiter
	retentionDays int
	logger        *slog.Logger
	cron          *cron.Cron
}

// Options configures a Scheduler.
type Options struct {
	Producer      *backup.Producer
	Catalog       *catalog.Catalog
	Uploader      *storage.Uploader
	Notifier      notify.Notifier
	Limiter       ratelimit.Limiter
	RetentionDays int
	Logger        *slog.Logger
}

// New creates a scheduler from options. A nil notifier is replaced with a
// no-op one.
func New(opts Options) *Scheduler {
	if opts.Notifier == nil {
		opts.Notifier = notify.NopNotifier{}
	}
	return &Scheduler{
		producer:      opts.Producer,
		catalog:       opts.Catalog,
		uploader:      opts.Uploader,
		notifier:      opts.Notifier,
		limiter:       opts.Limiter,
		retentionDays: opts.RetentionDays,
		logger:        opts.Logger,
		cron:          cron.New(),
	}
}

// Run registers the schedules and blocks until ctx is cancelled. At least
// one schedule expression must be non-empty.
func (s *Scheduler) Run(ctx context.Context, fullSchedule, incrementalSchedule string) error {
	if fullSchedule == "" && incrementalSchedule == "" {
		return fmt.Errorf("no backup schedule configured")
	}

	if fullSchedule != "" {
		if _, err := s.cron.AddFunc(fullSchedule, func() { s.RunFull(ctx) }); err != nil {
			return fmt.Errorf("invalid full backup schedule %q: %w", fullSchedule, err)
		}
		s.logger.Info("Registered full backup schedule", "cron", fullSchedule)
	}
	if incrementalSchedule != "" {
		if _, err := s.cron.AddFunc(incrementalSchedule, func() { s.RunIncremental(ctx) }); err != nil {
			return fmt.Errorf("invalid incremental backup schedule %q: %w", incrementalSchedule, err)
		}
		s.logger.Info("Registered incremental backup schedule", "cron", incrementalSchedule)
	}

	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn("Timed out waiting for running jobs to finish")
	}
	return ctx.Err()
}

// RunFull executes one scheduled full backup cycle.
func (s *Scheduler) RunFull(ctx context.Context) {
	if !s.allowed() {
		return
	}

	artifact, err := s.producer.CreateFull(ctx)
	if err != nil {
		s.logger.Error("Scheduled full backup failed", "error", err)
		s.notifier.NotifyFailure(ctx, "Full backup failed", err)
		return
	}

	s.finish(ctx, "Full backup completed", artifact)
	s.pruneExpired()
}

// RunIncremental executes one scheduled incremental backup cycle.
func (s *Scheduler) RunIncremental(ctx context.Context) {
	if !s.allowed() {
		return
	}

	artifact, err := s.producer.CreateIncremental(ctx)
	if err != nil {
		s.logger.Error("Scheduled incremental backup failed", "error", err)
		s.notifier.NotifyFailure(ctx, "Incremental backup failed", err)
		return
	}

	s.finish(ctx, "Incremental backup completed", artifact)
}

func (s *Scheduler) allowed() bool {
	last, err := s.lastBackupTime()
	if err != nil {
		s.logger.Warn("Could not determine last backup time", "error", err)
		last = time.Time{}
	}

	ok, reason := s.limiter.ShouldBackup(last)
	if !ok {
		s.logger.Info("Skipping scheduled backup", "reason", reason)
		metrics.ScheduleSkips.Inc()
		return false
	}

	s.logger.Info("Proceeding with scheduled backup", "reason", reason)
	return true
}

func (s *Scheduler) lastBackupTime() (time.Time, error) {
	artifacts, err := s.catalog.ListAll()
	if err != nil {
		return time.Time{}, err
	}

	var last time.Time
	for _, a := range artifacts {
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
	}
	return last, nil
}

func (s *Scheduler) finish(ctx context.Context, title string, artifact catalog.Artifact) {
	if s.uploader != nil {
		if err := s.uploader.UploadArtifact(ctx, artifact); err != nil {
			s.logger.Error("Failed to upload artifact", "artifact", artifact.Path, "error", err)
			s.notifier.NotifyFailure(ctx, "Backup upload failed", err)
		}
	}

	s.notifier.NotifySuccess(ctx, title,
		fmt.Sprintf("%s (%s)", filepath.Base(artifact.Path), utils.FormatBytes(artifact.SizeBytes)))
}

// pruneExpired deletes local artifacts older than the retention window. The
// most recent full backup always survives, whatever its age, so a restore
// baseline is never lost.
func (s *Scheduler) pruneExpired() {
	if s.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	latestFull, err := s.catalog.LatestFull()
	if err != nil {
		s.logger.Warn("Skipping retention pass", "error", err)
		return
	}

	artifacts, err := s.catalog.ListAll()
	if err != nil {
		s.logger.Warn("Skipping retention pass", "error", err)
		return
	}

	deleted := 0
	for _, a := range artifacts {
		if !a.CreatedAt.Before(cutoff) {
			continue
		}
		if a.Path == latestFull.Path {
			continue
		}

		if err := os.Remove(a.Path); err != nil {
			s.logger.Warn("Failed to delete expired artifact", "artifact", a.Path, "error", err)
			continue
		}
		s.logger.Info("Deleted expired artifact", "artifact", a.Path, "created_at", a.CreatedAt)
		deleted++
	}

	if deleted > 0 {
		metrics.BackupsDeleted.Add(float64(deleted))
	}
}
