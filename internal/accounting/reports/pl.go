package reports

import (
	"sort"

	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
)

// ProfitAndLossRow represents one ledger's contribution to the statement.
type ProfitAndLossRow struct {
	LedgerID int64
	Name     string
	Amount   float64
}

// ProfitAndLossSection groups ledgers by nature.
type ProfitAndLossSection struct {
	Label string
	Rows  []ProfitAndLossRow
	Total float64
}

// ProfitAndLoss contains the structured output for the report.
//
// Income ledgers accumulate credit minus debit; expense ledgers debit minus
// credit. GrossProfit and NetProfit may be negative (a loss): the sign drives
// which column the figure lands in, which is a formatting rule, not a
// financial invariant.
type ProfitAndLoss struct {
	Sales            ProfitAndLossSection
	DirectIncome     ProfitAndLossSection
	OpeningStock     float64
	Purchases        ProfitAndLossSection
	DirectExpenses   ProfitAndLossSection
	IndirectIncome   ProfitAndLossSection
	IndirectExpenses ProfitAndLossSection
	GrossProfit      float64
	NetProfit        float64
}

// BuildProfitAndLoss partitions ledger activity by account type and applies
// the trading and profit-and-loss formulas:
//
//	gross = sales - (openingStock + purchases + directExpenses)
//	net   = gross + indirectIncome - indirectExpenses
func BuildProfitAndLoss(activities []LedgerActivity, openingStock float64) ProfitAndLoss {
	pl := ProfitAndLoss{
		Sales:            ProfitAndLossSection{Label: "Sales Accounts"},
		DirectIncome:     ProfitAndLossSection{Label: "Direct Income"},
		OpeningStock:     openingStock,
		Purchases:        ProfitAndLossSection{Label: "Purchase Accounts"},
		DirectExpenses:   ProfitAndLossSection{Label: "Direct Expenses"},
		IndirectIncome:   ProfitAndLossSection{Label: "Indirect Income"},
		IndirectExpenses: ProfitAndLossSection{Label: "Indirect Expenses"},
	}

	for _, act := range activities {
		var section *ProfitAndLossSection
		var amount float64
		switch {
		case act.Type.IsIncome():
			amount = act.Credit - act.Debit
			switch act.Type {
			case ledgers.TypeSalesAccounts:
				section = &pl.Sales
			case ledgers.TypeDirectIncome:
				section = &pl.DirectIncome
			default:
				section = &pl.IndirectIncome
			}
		case act.Type.IsExpense():
			amount = act.Debit - act.Credit
			switch act.Type {
			case ledgers.TypePurchase:
				section = &pl.Purchases
			case ledgers.TypeDirectExpenses:
				section = &pl.DirectExpenses
			default:
				section = &pl.IndirectExpenses
			}
		default:
			continue
		}
		section.Rows = append(section.Rows, ProfitAndLossRow{LedgerID: act.LedgerID, Name: act.Name, Amount: amount})
		section.Total += amount
	}

	for _, section := range []*ProfitAndLossSection{&pl.Sales, &pl.DirectIncome, &pl.Purchases, &pl.DirectExpenses, &pl.IndirectIncome, &pl.IndirectExpenses} {
		rows := section.Rows
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}

	pl.GrossProfit = pl.Sales.Total + pl.DirectIncome.Total - (openingStock + pl.Purchases.Total + pl.DirectExpenses.Total)
	pl.NetProfit = pl.GrossProfit + pl.IndirectIncome.Total - pl.IndirectExpenses.Total
	return pl
}
