// Package ratelimit guards scheduled backups against respawn loops. A
// crashing daemon restarted by its supervisor must not hammer the database
// with a fresh dump on every restart.
package ratelimit

import (
	"fmt"
	"time"
)

// Limiter decides whether a scheduled backup may proceed.
type Limiter interface {
	// ShouldBackup reports whether a backup should run given the time of
	// the most recent backup. The string explains a skip.
	ShouldBackup(lastBackup time.Time) (bool, string)

	// MinInterval returns the minimum time between backups.
	MinInterval() time.Duration
}

// Config holds limiter configuration.
type Config struct {
	// MinInterval is the minimum time between backups.
	MinInterval time.Duration

	// Force overrides the interval check when true.
	Force bool
}

// IntervalLimiter implements Limiter using wall-clock spacing.
type IntervalLimiter struct {
	config Config
	now    func() time.Time
}

// NewIntervalLimiter creates an interval-based limiter.
func NewIntervalLimiter(config Config) *IntervalLimiter {
	return &IntervalLimiter{
		config: config,
		now:    time.Now,
	}
}

// ShouldBackup implements Limiter.
func (l *IntervalLimiter) ShouldBackup(lastBackup time.Time) (bool, string) {
	if l.config.Force {
		return true, "forced backup requested"
	}

	if lastBackup.IsZero() {
		return true, "no previous backup found"
	}

	elapsed := l.now().Sub(lastBackup)
	if elapsed < l.config.MinInterval {
		remaining := l.config.MinInterval - elapsed
		return false, fmt.Sprintf(
			"last backup was %s ago, next backup allowed in %s",
			formatDuration(elapsed),
			formatDuration(remaining),
		)
	}

	return true, fmt.Sprintf("last backup was %s ago", formatDuration(elapsed))
}

// MinInterval implements Limiter.
func (l *IntervalLimiter) MinInterval() time.Duration {
	return l.config.MinInterval
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0f seconds", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}
