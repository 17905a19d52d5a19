package reports

import (
	"sort"
)

// BalanceSheetRow summarises a ledger for one side of the balance sheet.
type BalanceSheetRow struct {
	LedgerID int64
	Name     string
	Balance  float64
}

// BalanceSheetSection contains the rows and total for a classification.
type BalanceSheetSection struct {
	Label string
	Rows  []BalanceSheetRow
	Total float64
}

// BalanceSheet is the structured response for the balance sheet report.
// Net profit for the period is carried onto the liabilities side.
type BalanceSheet struct {
	Assets      BalanceSheetSection
	Liabilities BalanceSheetSection
	NetProfit   float64
}

// BuildBalanceSheet aggregates closing balances into the two sides.
// Asset ledgers carry debit balances (positive closing); liability ledgers
// carry credit balances, so their closing is negated for presentation.
func BuildBalanceSheet(activities []LedgerActivity, netProfit float64) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}

	for _, act := range activities {
		closing := act.Closing()
		switch {
		case act.Type.IsAsset():
			row := BalanceSheetRow{LedgerID: act.LedgerID, Name: act.Name, Balance: closing}
			assets.Rows = append(assets.Rows, row)
			assets.Total += row.Balance
		case act.Type.IsLiability():
			row := BalanceSheetRow{LedgerID: act.LedgerID, Name: act.Name, Balance: -closing}
			liabilities.Rows = append(liabilities.Rows, row)
			liabilities.Total += row.Balance
		}
	}

	sort.Slice(assets.Rows, func(i, j int) bool { return assets.Rows[i].Name < assets.Rows[j].Name })
	sort.Slice(liabilities.Rows, func(i, j int) bool { return liabilities.Rows[i].Name < liabilities.Rows[j].Name })

	liabilities.Total += netProfit
	return BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		NetProfit:   netProfit,
	}
}
