package backup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"SecuroHub/pkg/scheduler"
	"SecuroHub/pkg/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	ID   uint
	Text string
}

func TestSnapshot(t *testing.T) {
	db, err := util.InitDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}))
	require.NoError(t, db.Create(&note{Text: "shared robbery"}).Error)

	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	dst, err := Snapshot(context.Background(), db, dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "securo_backup_20240501_123000.db"), dst)

	copied, err := util.InitDatabase("sqlite", dst, false)
	require.NoError(t, err)
	var notes []note
	require.NoError(t, copied.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "shared robbery", notes[0].Text)

	_, err = Snapshot(context.Background(), db, dir, now)
	assert.Error(t, err)
}

func TestScheduleRejectsBadExpression(t *testing.T) {
	db, err := util.InitDatabase("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", false)
	require.NoError(t, err)
	assert.Error(t, Schedule(scheduler.NewCron(time.UTC), "sometimes", db, t.TempDir()))
	assert.NoError(t, Schedule(scheduler.NewCron(time.UTC), "@daily", db, t.TempDir()))
}
