package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildStatementRunningBalance(t *testing.T) {
	entries := []StatementEntry{
		{Date: day(1), VoucherNumber: "SAL-0001", Debit: 1000},
		{Date: day(2), VoucherNumber: "RCT-0001", Credit: 400},
		{Date: day(5), VoucherNumber: "SAL-0002", Debit: 250},
	}

	st := BuildStatement(1, "Acme Traders", 500, entries)

	require.InDelta(t, 500.0, st.Opening, 0.001)
	require.Len(t, st.Lines, 3)
	require.InDelta(t, 1500.0, st.Lines[0].Balance, 0.001)
	require.InDelta(t, 1100.0, st.Lines[1].Balance, 0.001)
	require.InDelta(t, 1350.0, st.Lines[2].Balance, 0.001)
	require.InDelta(t, 1250.0, st.TotalDebit, 0.001)
	require.InDelta(t, 400.0, st.TotalCredit, 0.001)
	require.InDelta(t, 1350.0, st.Closing, 0.001)
}

func TestBuildStatementLeftAssociativeFold(t *testing.T) {
	// each line's balance depends only on the previous line, not on any
	// regrouping of the amounts
	entries := []StatementEntry{
		{Date: day(1), Debit: 0.1},
		{Date: day(1), Debit: 0.2},
		{Date: day(1), Credit: 0.3},
	}
	st := BuildStatement(1, "Rounding", 0, entries)
	require.InDelta(t, 0.1, st.Lines[0].Balance, 1e-9)
	require.InDelta(t, st.Lines[0].Balance+0.2, st.Lines[1].Balance, 1e-9)
	require.InDelta(t, st.Lines[1].Balance-0.3, st.Lines[2].Balance, 1e-9)
}

func TestBuildStatementEmptyRange(t *testing.T) {
	st := BuildStatement(1, "Quiet", 750, nil)
	require.Empty(t, st.Lines)
	require.InDelta(t, 750.0, st.Closing, 0.001)
}

func TestBuildTrialBalanceGroupsAndTotals(t *testing.T) {
	activities := []LedgerActivity{
		{LedgerID: 1, Name: "Cash in Hand", Type: ledgers.TypeCash, Opening: 1000, Debit: 500, Credit: 200},
		{LedgerID: 2, Name: "HDFC Current", Type: ledgers.TypeBank, Opening: 5000, Debit: 0, Credit: 1500},
		{LedgerID: 3, Name: "Petty Cash", Type: ledgers.TypeCash, Opening: 100, Debit: 50, Credit: 0},
	}

	tb := BuildTrialBalance(activities)

	require.Len(t, tb.Groups, 2)
	var cashGroup *TrialBalanceGroup
	for i := range tb.Groups {
		if tb.Groups[i].Type == ledgers.TypeCash {
			cashGroup = &tb.Groups[i]
		}
	}
	require.NotNil(t, cashGroup)
	require.Len(t, cashGroup.Rows, 2)
	require.InDelta(t, 1100.0, cashGroup.Opening, 0.001)
	require.InDelta(t, 550.0, cashGroup.Debit, 0.001)
	require.InDelta(t, 1450.0, cashGroup.Closing, 0.001)

	require.InDelta(t, 6100.0, tb.TotalOpening, 0.001)
	require.InDelta(t, 550.0, tb.TotalDebit, 0.001)
	require.InDelta(t, 1700.0, tb.TotalCredit, 0.001)
	require.InDelta(t, 4950.0, tb.TotalClosing, 0.001)
}

func TestBuildProfitAndLossScenario(t *testing.T) {
	activities := []LedgerActivity{
		{LedgerID: 1, Name: "Timber Sales", Type: ledgers.TypeSalesAccounts, Credit: 10000},
		{LedgerID: 2, Name: "Log Purchases", Type: ledgers.TypePurchase, Debit: 4000},
		{LedgerID: 3, Name: "Sawing Charges", Type: ledgers.TypeDirectExpenses, Debit: 1000},
		{LedgerID: 4, Name: "Office Rent", Type: ledgers.TypeIndirectExpense, Debit: 2000},
		{LedgerID: 5, Name: "Scrap Sales", Type: ledgers.TypeIndirectIncome, Credit: 500},
	}

	pl := BuildProfitAndLoss(activities, 0)

	require.InDelta(t, 10000.0, pl.Sales.Total, 0.001)
	require.InDelta(t, 4000.0, pl.Purchases.Total, 0.001)
	require.InDelta(t, 1000.0, pl.DirectExpenses.Total, 0.001)
	require.InDelta(t, 5000.0, pl.GrossProfit, 0.001)
	require.InDelta(t, 3500.0, pl.NetProfit, 0.001)
}

func TestBuildProfitAndLossWithOpeningStockAndLoss(t *testing.T) {
	activities := []LedgerActivity{
		{LedgerID: 1, Name: "Timber Sales", Type: ledgers.TypeSalesAccounts, Credit: 3000},
		{LedgerID: 2, Name: "Log Purchases", Type: ledgers.TypePurchase, Debit: 4000},
	}

	pl := BuildProfitAndLoss(activities, 500)

	require.InDelta(t, -1500.0, pl.GrossProfit, 0.001)
	require.InDelta(t, -1500.0, pl.NetProfit, 0.001)
}

func TestBuildProfitAndLossSignConvention(t *testing.T) {
	// an income ledger with debits (returns) nets credit minus debit;
	// an expense ledger with credits nets debit minus credit
	activities := []LedgerActivity{
		{LedgerID: 1, Name: "Sales", Type: ledgers.TypeSalesAccounts, Debit: 200, Credit: 1200},
		{LedgerID: 2, Name: "Freight", Type: ledgers.TypeDirectExpenses, Debit: 400, Credit: 100},
	}
	pl := BuildProfitAndLoss(activities, 0)
	require.InDelta(t, 1000.0, pl.Sales.Total, 0.001)
	require.InDelta(t, 300.0, pl.DirectExpenses.Total, 0.001)
}

func TestLayoutProfitAndLossProfitPlacement(t *testing.T) {
	pl := ProfitAndLoss{
		Sales:            ProfitAndLossSection{Label: "Sales Accounts", Total: 10000},
		Purchases:        ProfitAndLossSection{Label: "Purchase Accounts", Total: 4000},
		DirectExpenses:   ProfitAndLossSection{Label: "Direct Expenses", Total: 1000},
		IndirectIncome:   ProfitAndLossSection{Label: "Indirect Income", Total: 500},
		IndirectExpenses: ProfitAndLossSection{Label: "Indirect Expenses", Total: 2000},
		GrossProfit:      5000,
		NetProfit:        3500,
	}

	layout := LayoutProfitAndLoss(pl)

	debitLabels := make([]string, 0, len(layout.DebitRows))
	for _, row := range layout.DebitRows {
		debitLabels = append(debitLabels, row.Label)
	}
	creditLabels := make([]string, 0, len(layout.CreditRows))
	for _, row := range layout.CreditRows {
		creditLabels = append(creditLabels, row.Label)
	}

	require.Contains(t, debitLabels, "Gross Profit c/o")
	require.Contains(t, debitLabels, "Net Profit")
	require.Contains(t, creditLabels, "Gross Profit b/f")
	require.NotContains(t, creditLabels, "Gross Loss c/o")
	require.Equal(t, layout.DebitTotal, layout.CreditTotal)
}

func TestLayoutProfitAndLossLossPlacement(t *testing.T) {
	pl := ProfitAndLoss{
		Sales:          ProfitAndLossSection{Label: "Sales Accounts", Total: 3000},
		Purchases:      ProfitAndLossSection{Label: "Purchase Accounts", Total: 4000},
		DirectExpenses: ProfitAndLossSection{Label: "Direct Expenses"},
		IndirectIncome: ProfitAndLossSection{Label: "Indirect Income"},
		IndirectExpenses: ProfitAndLossSection{
			Label: "Indirect Expenses", Total: 200,
		},
		GrossProfit: -1000,
		NetProfit:   -1200,
	}

	layout := LayoutProfitAndLoss(pl)

	creditLabels := make([]string, 0, len(layout.CreditRows))
	for _, row := range layout.CreditRows {
		creditLabels = append(creditLabels, row.Label)
	}
	require.Contains(t, creditLabels, "Gross Loss c/o")
	require.Contains(t, creditLabels, "Net Loss")
}

func TestFormatAmountGrouping(t *testing.T) {
	require.Equal(t, "1,234,567.89", FormatAmount(1234567.89))
	require.Equal(t, "0.00", FormatAmount(0))
}

func TestBuildBalanceSheet(t *testing.T) {
	activities := []LedgerActivity{
		{LedgerID: 1, Name: "Plant & Machinery", Type: ledgers.TypeFixedAssets, Opening: 20000},
		{LedgerID: 2, Name: "Cash in Hand", Type: ledgers.TypeCash, Opening: 3000, Debit: 500},
		{LedgerID: 3, Name: "Capital Account", Type: ledgers.TypeCapital, Opening: -20000},
		{LedgerID: 4, Name: "Timber Supplier", Type: ledgers.TypeSundryCreditors, Opening: 0, Credit: 3500},
	}

	bs := BuildBalanceSheet(activities, 1200)

	require.Len(t, bs.Assets.Rows, 2)
	require.InDelta(t, 23500.0, bs.Assets.Total, 0.001)
	require.Len(t, bs.Liabilities.Rows, 2)
	// credit balances are stored negative and flipped for presentation,
	// then the period profit joins the liabilities side
	require.InDelta(t, 20000.0+3500.0+1200.0, bs.Liabilities.Total, 0.001)
	require.InDelta(t, 1200.0, bs.NetProfit, 0.001)
}
