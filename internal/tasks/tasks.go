package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Video processing tasks (transcode + thumbnail for a new upload)
	TypeProcessVideo = "video:process"

	// Subscription maintenance tasks
	TypeExpireSubscriptions = "subscription:expire"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	VideoID        string `json:"video_id,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

// NewProcessVideoTask creates a task to process a freshly uploaded video
func NewProcessVideoTask(videoID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		VideoID: videoID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeProcessVideo, payload), nil
}

// NewExpireSubscriptionsTask creates a task to sweep overdue subscriptions
func NewExpireSubscriptionsTask() (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeExpireSubscriptions, payload), nil
}

// ParseTaskPayload parses task payload from Asynq task
func ParseTaskPayload(task *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
