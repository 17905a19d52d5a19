package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeNotificationDispatch delivers a single outbox row.
	TaskTypeNotificationDispatch = "notify:dispatch"
	// TaskTypeOutboxSweep re-enqueues stale pending outbox rows.
	TaskTypeOutboxSweep = "notify:sweep"
	// TaskTypeGLIntegrity recomputes ledger balances and logs drift.
	TaskTypeGLIntegrity = "gl:integrity"
)

// NotificationPayload identifies the outbox row to deliver.
type NotificationPayload struct {
	NotificationID int64 `json:"notification_id"`
}

// NewNotificationDispatchTask constructs a dispatch task.
func NewNotificationDispatchTask(payload NotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeNotificationDispatch, data), nil
}

// NewOutboxSweepTask constructs the cron sweep task.
func NewOutboxSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOutboxSweep, nil)
}

// NewGLIntegrityTask constructs the nightly integrity scan task.
func NewGLIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskTypeGLIntegrity, nil)
}
