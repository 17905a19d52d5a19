package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/accounting/shared"
)

type memoryLedger struct {
	companyID int64
	balance   float64
}

type memoryRepo struct {
	ledgers       map[int64]*memoryLedger
	vouchers      map[int64]Voucher
	sequences     map[string]int64
	notifications []int64
	nextID        int64
}

type memoryTx struct {
	repo *memoryRepo
	// staged changes commit only when the tx function returns nil
	ledgerDeltas  map[int64]float64
	vouchers      []Voucher
	deleted       []int64
	notifications int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		ledgers:   make(map[int64]*memoryLedger),
		vouchers:  make(map[int64]Voucher),
		sequences: make(map[string]int64),
	}
}

func (r *memoryRepo) addLedger(id, companyID int64, balance float64) {
	r.ledgers[id] = &memoryLedger{companyID: companyID, balance: balance}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Voucher, int, error) {
	out := make([]Voucher, 0, len(r.vouchers))
	for _, v := range r.vouchers {
		if v.CompanyID == filters.CompanyID {
			out = append(out, v)
		}
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	v, ok := r.vouchers[id]
	if !ok || v.CompanyID != companyID {
		return Voucher{}, shared.ErrVoucherNotFound
	}
	return v, nil
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, ledgerDeltas: make(map[int64]float64)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, delta := range tx.ledgerDeltas {
		r.ledgers[id].balance += delta
	}
	for _, v := range tx.vouchers {
		r.vouchers[v.ID] = v
	}
	for _, id := range tx.deleted {
		delete(r.vouchers, id)
	}
	return nil
}

func (tx *memoryTx) NextSequence(ctx context.Context, companyID int64, vtype VoucherType) (int64, error) {
	key := string(vtype)
	tx.repo.sequences[key]++
	return tx.repo.sequences[key], nil
}

func (tx *memoryTx) GetLedgerForUpdate(ctx context.Context, ledgerID int64) (LedgerRef, error) {
	l, ok := tx.repo.ledgers[ledgerID]
	if !ok {
		return LedgerRef{}, shared.ErrLedgerNotFound
	}
	return LedgerRef{ID: ledgerID, CompanyID: l.companyID}, nil
}

func (tx *memoryTx) InsertVoucher(ctx context.Context, voucher Voucher) (Voucher, error) {
	tx.repo.nextID++
	voucher.ID = tx.repo.nextID
	tx.vouchers = append(tx.vouchers, voucher)
	return voucher, nil
}

func (tx *memoryTx) InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error {
	for i := range tx.vouchers {
		if tx.vouchers[i].ID == voucherID {
			tx.vouchers[i].Entries = toEntries(voucherID, entries)
		}
	}
	return nil
}

func (tx *memoryTx) AdjustLedgerBalance(ctx context.Context, ledgerID int64, delta float64) error {
	tx.ledgerDeltas[ledgerID] += delta
	return nil
}

func (tx *memoryTx) GetVoucherWithEntries(ctx context.Context, companyID, id int64) (Voucher, error) {
	return tx.repo.Get(ctx, companyID, id)
}

func (tx *memoryTx) DeleteVoucher(ctx context.Context, id int64) error {
	tx.deleted = append(tx.deleted, id)
	return nil
}

func (tx *memoryTx) InsertNotification(ctx context.Context, kind string, refID int64, recipient, message string) (int64, error) {
	tx.repo.nextID++
	tx.repo.notifications = append(tx.repo.notifications, tx.repo.nextID)
	return tx.repo.nextID, nil
}

type recordingQueue struct {
	enqueued []int64
}

func (q *recordingQueue) Enqueue(ctx context.Context, notificationID int64) error {
	q.enqueued = append(q.enqueued, notificationID)
	return nil
}

func journalInput(entries []EntryInput) PostingInput {
	return PostingInput{
		CompanyID: 1,
		Type:      TypeJournal,
		Date:      time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		PostedBy:  7,
		Entries:   entries,
	}
}

func TestPostBalancedJournalAdjustsBalances(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 1000)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	voucher, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 500},
		{LedgerID: 2, Credit: 500},
	}))
	require.NoError(t, err)
	require.Equal(t, "JRN-0001", voucher.Number)
	require.InDelta(t, 500.0, voucher.TotalAmount, 0.001)
	require.Len(t, voucher.Entries, 2)
	require.InDelta(t, 1500.0, repo.ledgers[1].balance, 0.001)
	require.InDelta(t, -500.0, repo.ledgers[2].balance, 0.001)
}

func TestPostUnbalancedJournalRejected(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 500},
		{LedgerID: 2, Credit: 400},
	}))
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, repo.vouchers)
	require.InDelta(t, 0.0, repo.ledgers[1].balance, 0.001)
	require.InDelta(t, 0.0, repo.ledgers[2].balance, 0.001)
}

func TestPostWithinToleranceAccepted(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 100.005},
		{LedgerID: 2, Credit: 100.00},
	}))
	require.NoError(t, err)
}

func TestPostRejectsEntryWithBothSides(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 500, Credit: 500},
		{LedgerID: 2},
	}))
	require.Error(t, err)
	require.Empty(t, repo.vouchers)
}

func TestPostRejectsSingleEntry(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 0, Credit: 0},
	}))
	require.ErrorIs(t, err, shared.ErrTooFewEntries)
}

func TestPostRejectsForeignLedger(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 99, 0)
	svc := NewService(repo, nil, nil)

	_, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 500},
		{LedgerID: 2, Credit: 500},
	}))
	require.ErrorIs(t, err, shared.ErrCompanyMismatch)
	require.Empty(t, repo.vouchers)
	require.InDelta(t, 0.0, repo.ledgers[1].balance, 0.001)
}

func TestPostSequencePerType(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	entries := []EntryInput{{LedgerID: 1, Debit: 100}, {LedgerID: 2, Credit: 100}}

	first, err := svc.Post(context.Background(), journalInput(entries))
	require.NoError(t, err)
	second, err := svc.Post(context.Background(), journalInput(entries))
	require.NoError(t, err)

	sales := journalInput(entries)
	sales.Type = TypeSales
	third, err := svc.Post(context.Background(), sales)
	require.NoError(t, err)

	require.Equal(t, "JRN-0001", first.Number)
	require.Equal(t, "JRN-0002", second.Number)
	require.Equal(t, "SAL-0001", third.Number)
}

func TestPostWritesOutboxAndEnqueues(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 0)
	repo.addLedger(2, 1, 0)
	queue := &recordingQueue{}
	svc := NewService(repo, nil, queue)

	input := journalInput([]EntryInput{
		{LedgerID: 1, Debit: 250},
		{LedgerID: 2, Credit: 250},
	})
	input.NotifyEmail = "accounts@example.com"

	_, err := svc.Post(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, repo.notifications, 1)
	require.Equal(t, repo.notifications, queue.enqueued)
}

func TestDeleteReversesBalances(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 1000)
	repo.addLedger(2, 1, 200)
	svc := NewService(repo, nil, nil)

	voucher, err := svc.Post(context.Background(), journalInput([]EntryInput{
		{LedgerID: 1, Debit: 300},
		{LedgerID: 2, Credit: 300},
	}))
	require.NoError(t, err)
	require.InDelta(t, 1300.0, repo.ledgers[1].balance, 0.001)
	require.InDelta(t, -100.0, repo.ledgers[2].balance, 0.001)

	require.NoError(t, svc.Delete(context.Background(), 1, voucher.ID, 7))
	require.Empty(t, repo.vouchers)
	require.InDelta(t, 1000.0, repo.ledgers[1].balance, 0.001)
	require.InDelta(t, 200.0, repo.ledgers[2].balance, 0.001)
}

func TestRunningBalanceAfterSeries(t *testing.T) {
	repo := newMemoryRepo()
	repo.addLedger(1, 1, 100)
	repo.addLedger(2, 1, 0)
	svc := NewService(repo, nil, nil)

	postings := []struct{ debit, credit float64 }{
		{250, 0},
		{0, 75},
		{40, 0},
	}
	expected := 100.0
	for _, p := range postings {
		entries := []EntryInput{
			{LedgerID: 1, Debit: p.debit, Credit: p.credit},
			{LedgerID: 2, Debit: p.credit, Credit: p.debit},
		}
		_, err := svc.Post(context.Background(), journalInput(entries))
		require.NoError(t, err)
		expected += p.debit - p.credit
	}
	require.InDelta(t, expected, repo.ledgers[1].balance, 0.001)
}
