package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "worker.sqlite")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func TestHandleProcessVideoMarksReady(t *testing.T) {
	db := newTestDB(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "treino.mp4")
	require.NoError(t, os.WriteFile(path, make([]byte, 3<<20), 0o644))

	video := &models.Video{
		Title:    "Treino",
		Theme:    "Fitness",
		Status:   models.VideoStatusProcessing,
		FilePath: path,
	}
	require.NoError(t, db.Create(video).Error)

	task, err := tasks.NewProcessVideoTask(video.ID)
	require.NoError(t, err)
	require.NoError(t, HandleProcessVideo(context.Background(), task, db, zerolog.Nop()))

	var updated models.Video
	require.NoError(t, models.FindByID(db, video.ID, &updated))
	assert.Equal(t, models.VideoStatusReady, updated.Status)
	assert.NotEmpty(t, updated.Duration)
	assert.Contains(t, updated.URL, updated.ID)
	assert.Contains(t, updated.Thumbnail, updated.ID)
}

func TestHandleProcessVideoMissingFileMarksFailed(t *testing.T) {
	db := newTestDB(t)

	video := &models.Video{
		Title:    "Treino",
		Theme:    "Fitness",
		Status:   models.VideoStatusProcessing,
		FilePath: filepath.Join(t.TempDir(), "missing.mp4"),
	}
	require.NoError(t, db.Create(video).Error)

	task, err := tasks.NewProcessVideoTask(video.ID)
	require.NoError(t, err)
	require.NoError(t, HandleProcessVideo(context.Background(), task, db, zerolog.Nop()))

	var updated models.Video
	require.NoError(t, models.FindByID(db, video.ID, &updated))
	assert.Equal(t, models.VideoStatusFailed, updated.Status)
}

func TestHandleProcessVideoSkipsAlreadyReady(t *testing.T) {
	db := newTestDB(t)

	video := &models.Video{
		Title:  "Treino",
		Theme:  "Fitness",
		Status: models.VideoStatusReady,
		URL:    "/media/x/index.m3u8",
	}
	require.NoError(t, db.Create(video).Error)

	task, err := tasks.NewProcessVideoTask(video.ID)
	require.NoError(t, err)
	require.NoError(t, HandleProcessVideo(context.Background(), task, db, zerolog.Nop()))

	var updated models.Video
	require.NoError(t, models.FindByID(db, video.ID, &updated))
	assert.Equal(t, "/media/x/index.m3u8", updated.URL)
}
