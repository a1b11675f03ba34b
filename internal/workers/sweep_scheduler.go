package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/wakeupnow/wakeup/internal/billing"
	"github.com/wakeupnow/wakeup/internal/models"
	"github.com/wakeupnow/wakeup/internal/tasks"
)

// StartSweepScheduler runs a periodic check (every minute) for the
// subscription expiry sweep configured in the app config.
func StartSweepScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueSweep(client, db, logger)

	for range ticker.C {
		checkAndEnqueueSweep(client, db, logger)
	}
}

func checkAndEnqueueSweep(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton config
	var appConfig models.AppConfig
	err := db.First(&appConfig).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No app config found - skipping sweep check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query app config for sweep")
		return
	}

	if appConfig.SweepSchedule == "" {
		logger.Debug().Msg("No sweep schedule configured")
		return
	}

	if appConfig.NextSweepAt != nil && appConfig.NextSweepAt.After(time.Now()) {
		logger.Debug().
			Time("next_sweep_at", *appConfig.NextSweepAt).
			Msg("Sweep not due yet")
		return
	}

	task, err := tasks.NewExpireSubscriptionsTask()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create sweep task")
		return
	}

	if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue sweep task")
		return
	}

	// Update the schedule bookkeeping right after enqueueing so the
	// scheduler does not requeue the sweep every minute.
	now := time.Now()
	updates := map[string]interface{}{
		"last_sweep_at": now,
	}
	if next := calculateNextSweepTime(appConfig.SweepSchedule, now); next != nil {
		updates["next_sweep_at"] = next
	}
	if err := db.Model(&appConfig).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to update sweep schedule")
		return
	}

	logger.Info().
		Str("sweep_schedule", appConfig.SweepSchedule).
		Msg("Subscription sweep task enqueued")
}

// HandleExpireSubscriptions expires every active subscription past its end date
func HandleExpireSubscriptions(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	if _, err := tasks.ParseTaskPayload(t); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	billingService := billing.NewService(db, logger)
	expired, err := billingService.ExpireOverdue()
	if err != nil {
		return err
	}

	logger.Info().Int64("expired", expired).Msg("Subscription sweep complete")
	return nil
}

// calculateNextSweepTime calculates the next sweep time from a cron schedule
func calculateNextSweepTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	// Standard 5-field format: minute hour day-of-month month day-of-week
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
