package workers

import (
	"context"
	"fmt"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/tasks"
)

// HandleProcessVideo runs the processing pipeline for a fresh upload and
// flips it to ready. Dev-grade: probes the stored file and fills in the
// playback metadata a real transcoder would produce.
func HandleProcessVideo(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	var video models.Video
	if err := models.FindByID(db, payload.VideoID, &video); err != nil {
		return fmt.Errorf("failed to find video %s: %w", payload.VideoID, err)
	}

	if video.Status != models.VideoStatusProcessing {
		logger.Info().
			Str("video_id", video.ID).
			Str("status", video.Status).
			Msg("Video already processed, skipping")
		return nil
	}

	duration, err := probeUpload(video.FilePath)
	if err != nil {
		logger.Error().Err(err).Str("video_id", video.ID).Msg("Processing failed")
		if dbErr := db.Model(&video).Update("status", models.VideoStatusFailed).Error; dbErr != nil {
			return fmt.Errorf("failed to mark video failed: %w", dbErr)
		}
		// The failure is recorded, no point retrying the task
		return nil
	}

	updates := map[string]interface{}{
		"status":    models.VideoStatusReady,
		"duration":  duration,
		"thumbnail": fmt.Sprintf("/media/%s/thumb.jpg", video.ID),
		"url":       fmt.Sprintf("/media/%s/index.m3u8", video.ID),
	}
	if err := db.Model(&video).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark video ready: %w", err)
	}

	logger.Info().
		Str("video_id", video.ID).
		Str("duration", duration).
		Msg("Video processed and ready")

	return nil
}

// probeUpload inspects the stored file and estimates the display duration.
// Stands in for ffprobe in dev; the estimate only needs to be plausible.
func probeUpload(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no upload file recorded")
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat upload: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("upload file is empty")
	}

	// Rough 1 MB/minute estimate, clamped to something watchable
	minutes := info.Size() / (1 << 20)
	if minutes < 1 {
		minutes = 1
	}
	if minutes > 180 {
		minutes = 180
	}
	seconds := info.Size() % 60

	return fmt.Sprintf("%d:%02d", minutes, seconds), nil
}
