package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/shared"
)

type memoryRepo struct {
	rows map[int64]*Notification
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[int64]*Notification)}
}

func (r *memoryRepo) add(n Notification) {
	row := n
	r.rows[n.ID] = &row
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Notification, error) {
	n, ok := r.rows[id]
	if !ok {
		return Notification{}, shared.ErrNotFound
	}
	return *n, nil
}

func (r *memoryRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]Notification, error) {
	var out []Notification
	for _, n := range r.rows {
		if n.Status == StatusPending && n.CreatedAt.Before(olderThan) && len(out) < limit {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (r *memoryRepo) MarkSent(ctx context.Context, id int64) error {
	n, ok := r.rows[id]
	if !ok || n.Status != StatusPending {
		return shared.ErrNotFound
	}
	now := time.Now()
	n.Status = StatusSent
	n.Attempts++
	n.SentAt = &now
	return nil
}

func (r *memoryRepo) MarkFailed(ctx context.Context, id int64) error {
	n, ok := r.rows[id]
	if !ok {
		return shared.ErrNotFound
	}
	if n.Status == StatusPending {
		n.Status = StatusFailed
		n.Attempts++
	}
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func TestDispatchEmailMarksSent(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(Notification{ID: 1, Kind: KindVoucher, Recipient: "a@mill.test", Message: "Voucher SAL-0001 posted", Status: StatusPending})
	mailer := &fakeMailer{}
	d := NewDispatcher(repo, mailer, slog.Default())

	require.NoError(t, d.Dispatch(context.Background(), 1))
	require.Equal(t, []string{"a@mill.test"}, mailer.sent)
	n, _ := repo.Get(context.Background(), 1)
	require.Equal(t, StatusSent, n.Status)
	require.Equal(t, 1, n.Attempts)
	require.NotNil(t, n.SentAt)
}

func TestDispatchFailureSettlesRowWithoutError(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(Notification{ID: 1, Kind: KindDispatch, Recipient: "a@mill.test", Status: StatusPending})
	mailer := &fakeMailer{err: errors.New("relay down")}
	d := NewDispatcher(repo, mailer, slog.Default())

	require.NoError(t, d.Dispatch(context.Background(), 1))
	n, _ := repo.Get(context.Background(), 1)
	require.Equal(t, StatusFailed, n.Status)
	require.Equal(t, 1, n.Attempts)
}

func TestDispatchIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(Notification{ID: 1, Kind: KindVoucher, Recipient: "a@mill.test", Status: StatusPending})
	mailer := &fakeMailer{}
	d := NewDispatcher(repo, mailer, slog.Default())

	require.NoError(t, d.Dispatch(context.Background(), 1))
	require.NoError(t, d.Dispatch(context.Background(), 1))
	require.Len(t, mailer.sent, 1)
	n, _ := repo.Get(context.Background(), 1)
	require.Equal(t, 1, n.Attempts)
}

func TestDispatchPhoneRecipientLogsAndSends(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(Notification{ID: 1, Kind: KindDispatch, Recipient: "+919812345678", Status: StatusPending})
	mailer := &fakeMailer{}
	d := NewDispatcher(repo, mailer, slog.Default())

	require.NoError(t, d.Dispatch(context.Background(), 1))
	require.Empty(t, mailer.sent)
	n, _ := repo.Get(context.Background(), 1)
	require.Equal(t, StatusSent, n.Status)
}

func TestDispatchMissingRowIsNoop(t *testing.T) {
	d := NewDispatcher(newMemoryRepo(), &fakeMailer{}, slog.Default())
	require.NoError(t, d.Dispatch(context.Background(), 99))
}
