package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/imedwei/mysql-pitr-backup/internal/backup"
	"github.com/imedwei/mysql-pitr-backup/internal/health"
	"github.com/imedwei/mysql-pitr-backup/internal/metrics"
	"github.com/imedwei/mysql-pitr-backup/internal/ratelimit"
	"github.com/imedwei/mysql-pitr-backup/internal/scheduler"
	"github.com/imedwei/mysql-pitr-backup/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backup daemon",
	Long: `Run backups continuously on cron schedules and expose Prometheus
metrics and health endpoints.

Schedules come from FULL_BACKUP_SCHEDULE and INCREMENTAL_BACKUP_SCHEDULE
(standard 5-field cron expressions); at least one must be set. Backups
closer together than MIN_BACKUP_INTERVAL_HOURS are skipped, which protects
the database when the daemon is respawned in a crash loop.

Example:
  FULL_BACKUP_SCHEDULE="0 3 * * *" INCREMENTAL_BACKUP_SCHEDULE="0 * * * *" dbbackup serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("MySQL backup daemon starting",
		"database", cfg.DBName,
		"backup_dir", cfg.BackupDir,
		"storage_provider", cfg.StorageProvider,
		"retention_days", cfg.RetentionDays,
		"min_interval_hours", cfg.MinIntervalHours,
	)

	cat, err := newCatalog(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database connection for health checks and size metrics
	pool, err := backup.NewConnectionPool(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = pool.Close()
	}()

	if info, err := pool.GetDatabaseInfo(ctx); err != nil {
		logger.Warn("Could not read database info", "error", err)
	} else {
		logger.Info("Connected to database", "version", info.Version, "size", info.Size)
		metrics.DatabaseSize.Set(float64(info.Size))
	}
	metrics.Info.WithLabelValues(version, cfg.StorageProvider).Set(1)

	// Metrics and health server
	serverConfig := server.DefaultConfig()
	serverConfig.Port = cfg.MetricsPort
	httpServer := server.New(serverConfig, logger)
	httpServer.RegisterHealthCheck("database", health.DatabaseCheck(pool))
	httpServer.RegisterHealthCheck("catalog", health.CatalogCheck(func() (int, error) {
		artifacts, err := cat.ListAll()
		return len(artifacts), err
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpServer.Start(); err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Producer: newProducer(cfg, cat, logger),
		Catalog:  cat,
		Uploader: uploader,
		Notifier: newNotifier(cfg, logger),
		Limiter: ratelimit.NewIntervalLimiter(ratelimit.Config{
			MinInterval: cfg.GetMinInterval(),
			Force:       cfg.ForceBackup,
		}),
		RetentionDays: cfg.RetentionDays,
		Logger:        logger,
	})

	err = sched.Run(ctx, cfg.FullSchedule, cfg.IncrementalSchedule)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown failed", "error", shutdownErr)
	}
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		logger.Info("Backup daemon stopped")
		return nil
	}
	return err
}
