package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"gorm.io/gorm"
)

// Cleanup deletes system_logs rows older than the retention window: once at
// start, then once per interval.
type Cleanup struct {
	retention time.Duration
	interval  time.Duration
	purge     func(ctx context.Context, cutoff time.Time) (int64, error)
	now       func() time.Time
}

func NewCleanup(db *gorm.DB, cfg *config.Config) *Cleanup {
	return &Cleanup{
		retention: time.Duration(cfg.LogRetentionDays) * 24 * time.Hour,
		interval:  24 * time.Hour,
		purge: func(ctx context.Context, cutoff time.Time) (int64, error) {
			res := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
			return res.RowsAffected, res.Error
		},
		now: time.Now,
	}
}

// Run sweeps until ctx is done.
func (c *Cleanup) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Cleanup) sweep(ctx context.Context) {
	cutoff := c.now().Add(-c.retention)
	deleted, err := c.purge(ctx, cutoff)
	switch {
	case err != nil && ctx.Err() == nil:
		slog.ErrorContext(ctx, "log cleanup failed", "error", err)
	case deleted > 0:
		slog.InfoContext(ctx, "log cleanup completed", "deleted", deleted, "retention_days", int(c.retention.Hours()/24))
	}
}
