package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/shared"
)

// Repository reads and settles outbox rows.
type Repository interface {
	Get(ctx context.Context, id int64) (Notification, error)
	// ListStalePending returns pending rows older than the cutoff, for the
	// sweep task to re-enqueue.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Notification, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs an outbox repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const notificationColumns = `id, kind, ref_id, recipient, message, status, attempts, created_at, sent_at`

func (r *repository) Get(ctx context.Context, id int64) (Notification, error) {
	var n Notification
	err := r.pool.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id=$1`, id).
		Scan(&n.ID, &n.Kind, &n.RefID, &n.Recipient, &n.Message, &n.Status, &n.Attempts, &n.CreatedAt, &n.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Notification{}, shared.ErrNotFound
	}
	return n, err
}

func (r *repository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+notificationColumns+` FROM notifications
WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Kind, &n.RefID, &n.Recipient, &n.Message, &n.Status, &n.Attempts, &n.CreatedAt, &n.SentAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repository) MarkSent(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status='sent', attempts=attempts+1, sent_at=$1 WHERE id=$2 AND status='pending'`,
		time.Now(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status='failed', attempts=attempts+1 WHERE id=$1 AND status='pending'`, id)
	return err
}
