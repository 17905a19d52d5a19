package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/timberline-erp/timberline/internal/shared"
)

// Dispatcher delivers a single outbox row. Delivery failures settle the
// row as failed and never propagate back to the originating request.
type Dispatcher struct {
	repo   Repository
	mailer Mailer
	logger *slog.Logger
}

// NewDispatcher constructs the dispatcher. mailer may be nil, in which
// case every email row settles as failed.
func NewDispatcher(repo Repository, mailer Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, mailer: mailer, logger: logger}
}

func subjectFor(kind string) string {
	switch kind {
	case KindVoucher:
		return "Voucher posted"
	case KindDispatch:
		return "Order dispatched"
	default:
		return "Notification"
	}
}

// Dispatch delivers the row if it is still pending. Rows already sent or
// failed are skipped, so redelivery of the same task is harmless.
func (d *Dispatcher) Dispatch(ctx context.Context, notificationID int64) error {
	n, err := d.repo.Get(ctx, notificationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if n.Status != StatusPending {
		return nil
	}

	if !strings.Contains(n.Recipient, "@") {
		// SMS delivery is a logged stub.
		d.logger.Info("sms notification",
			slog.Int64("id", n.ID),
			slog.String("phone", n.Recipient),
			slog.String("message", n.Message))
		return d.repo.MarkSent(ctx, n.ID)
	}

	if d.mailer == nil {
		d.logger.Warn("mailer not configured, failing notification", slog.Int64("id", n.ID))
		return d.repo.MarkFailed(ctx, n.ID)
	}
	if err := d.mailer.Send(n.Recipient, subjectFor(n.Kind), n.Message); err != nil {
		d.logger.Warn("notification send failed",
			slog.Int64("id", n.ID),
			slog.String("recipient", n.Recipient),
			slog.Any("error", err))
		return d.repo.MarkFailed(ctx, n.ID)
	}
	return d.repo.MarkSent(ctx, n.ID)
}
