package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/timberline-erp/timberline/internal/notify"
)

const (
	sweepStaleAfter = 5 * time.Minute
	sweepBatchSize  = 100
)

// NewNotificationDispatchHandler returns the handler that delivers one
// outbox row per task.
func NewNotificationDispatchHandler(dispatcher *notify.Dispatcher, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload NotificationPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := dispatcher.Dispatch(ctx, payload.NotificationID); err != nil {
			logger.Warn("notification dispatch",
				slog.Int64("id", payload.NotificationID),
				slog.Any("error", err))
			return err
		}
		return nil
	}
}

// NewOutboxSweepHandler returns the cron handler that re-enqueues pending
// rows whose original enqueue was lost, completing the outbox guarantee.
func NewOutboxSweepHandler(repo notify.Repository, client *Client, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		cutoff := time.Now().Add(-sweepStaleAfter)
		stale, err := repo.ListStalePending(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return err
		}
		for _, n := range stale {
			if err := client.Enqueue(ctx, n.ID); err != nil {
				logger.Warn("outbox sweep enqueue", slog.Int64("id", n.ID), slog.Any("error", err))
			}
		}
		if len(stale) > 0 {
			logger.Info("outbox sweep", slog.Int("requeued", len(stale)))
		}
		return nil
	}
}
