package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"SecuroHub/pkg/logger"
	"SecuroHub/pkg/scheduler"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Schedule registers a periodic snapshot of db into dir on cr.
func Schedule(cr *scheduler.Cron, schedule string, db *gorm.DB, dir string) error {
	_, err := cr.AddWithCtx(schedule, func(ctx context.Context) {
		dst, err := Snapshot(ctx, db, dir, time.Now())
		if err != nil {
			logger.Warn("backup failed", zap.Error(err))
			return
		}
		logger.Info("backup completed", zap.String("file", dst))
	})
	return err
}

// Snapshot writes a consistent copy of the database into dir and returns the
// file written. Only sqlite databases are supported; the in-memory default is
// copied with VACUUM INTO.
func Snapshot(ctx context.Context, db *gorm.DB, dir string, now time.Time) (string, error) {
	if name := db.Dialector.Name(); name != "sqlite" {
		return "", fmt.Errorf("backup: unsupported driver %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	dst := filepath.Join(dir, fmt.Sprintf("securo_backup_%s.db", now.Format("20060102_150405")))
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("backup: %s already exists", dst)
	}
	quoted := "'" + strings.ReplaceAll(dst, "'", "''") + "'"
	if err := db.WithContext(ctx).Exec("VACUUM INTO " + quoted).Error; err != nil {
		return "", fmt.Errorf("failed to backup sqlite database: %w", err)
	}
	return dst, nil
}
