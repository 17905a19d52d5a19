package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	acctshared "github.com/timberline-erp/timberline/internal/accounting/shared"
	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
)

type fakeReportRepo struct {
	activities []LedgerActivity
	opening    map[int64]float64
	names      map[int64]string
	entries    map[int64][]StatementEntry

	activityCalls int
}

func (f *fakeReportRepo) LedgerActivities(ctx context.Context, companyID int64, from, to time.Time) ([]LedgerActivity, error) {
	f.activityCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.activities, nil
}

func (f *fakeReportRepo) StatementOpening(ctx context.Context, companyID, ledgerID int64, before time.Time) (string, float64, error) {
	name, ok := f.names[ledgerID]
	if !ok {
		return "", 0, acctshared.ErrLedgerNotFound
	}
	return name, f.opening[ledgerID], nil
}

func (f *fakeReportRepo) StatementEntries(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementEntry, error) {
	return f.entries[ledgerID], nil
}

func reportRange(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	from, err := time.Parse("2006-01-02", "2025-04-01")
	require.NoError(t, err)
	to, err := time.Parse("2006-01-02", "2026-03-31")
	require.NoError(t, err)
	return from, to
}

func TestStatementService(t *testing.T) {
	from, to := reportRange(t)
	repo := &fakeReportRepo{
		names:   map[int64]string{7: "HDFC Bank"},
		opening: map[int64]float64{7: 1500},
		entries: map[int64][]StatementEntry{
			7: {
				{VoucherID: 1, VoucherNumber: "RCT-0001", VoucherType: "receipt", Debit: 2000},
				{VoucherID: 2, VoucherNumber: "PAY-0001", VoucherType: "payment", Credit: 700},
			},
		},
	}
	svc := NewService(repo)

	st, err := svc.Statement(context.Background(), 1, 7, from, to)
	require.NoError(t, err)
	require.Equal(t, "HDFC Bank", st.LedgerName)
	require.Equal(t, 1500.0, st.Opening)
	require.Len(t, st.Lines, 2)
	require.Equal(t, 3500.0, st.Lines[0].Balance)
	require.Equal(t, 2800.0, st.Lines[1].Balance)
	require.Equal(t, 2800.0, st.Closing)
}

func TestStatementServiceUnknownLedger(t *testing.T) {
	from, to := reportRange(t)
	svc := NewService(&fakeReportRepo{names: map[int64]string{}})

	_, err := svc.Statement(context.Background(), 1, 404, from, to)
	require.ErrorIs(t, err, acctshared.ErrLedgerNotFound)
}

func TestProfitAndLossServiceOpeningStockFromStockLedgers(t *testing.T) {
	from, to := reportRange(t)
	repo := &fakeReportRepo{
		activities: []LedgerActivity{
			{LedgerID: 1, Name: "Timber Sales", Type: ledgers.TypeSalesAccounts, Credit: 10000},
			{LedgerID: 2, Name: "Log Purchases", Type: ledgers.TypePurchase, Debit: 4000},
			{LedgerID: 3, Name: "Teak Stock", Type: ledgers.TypeStock, Opening: 1200},
			{LedgerID: 4, Name: "Sal Stock", Type: ledgers.TypeStock, Opening: 300},
		},
	}
	svc := NewService(repo)

	pl, err := svc.ProfitAndLoss(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.Equal(t, 1500.0, pl.OpeningStock)
	require.Equal(t, 10000.0, pl.Sales.Total)
	require.Equal(t, 4500.0, pl.GrossProfit)
	require.Equal(t, 4500.0, pl.NetProfit)
}

func TestBalanceSheetServiceFoldsNetProfit(t *testing.T) {
	from, to := reportRange(t)
	repo := &fakeReportRepo{
		activities: []LedgerActivity{
			{LedgerID: 1, Name: "Cash in Hand", Type: ledgers.TypeCash, Opening: 500, Debit: 10000, Credit: 4000},
			{LedgerID: 2, Name: "Capital Account", Type: ledgers.TypeCapital, Opening: -500},
			{LedgerID: 3, Name: "Timber Sales", Type: ledgers.TypeSalesAccounts, Credit: 10000},
			{LedgerID: 4, Name: "Log Purchases", Type: ledgers.TypePurchase, Debit: 4000},
		},
	}
	svc := NewService(repo)

	bs, err := svc.BalanceSheet(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.Equal(t, 6000.0, bs.NetProfit)
	require.Equal(t, 1, repo.activityCalls)
}

func TestReportCancelledContext(t *testing.T) {
	from, to := reportRange(t)
	svc := NewService(&fakeReportRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.TrialBalance(ctx, 1, from, to)
	require.ErrorIs(t, err, context.Canceled)
}
