package reports

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with thousands grouping for report output.
func FormatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// ColumnRow is one line of a two-column ledger-style statement.
type ColumnRow struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// TwoColumnStatement holds the ledger-style rendering of the P&L: expenses
// and losses in the debit column, incomes and profits in the credit column.
type TwoColumnStatement struct {
	DebitRows   []ColumnRow `json:"debit_rows"`
	CreditRows  []ColumnRow `json:"credit_rows"`
	DebitTotal  string      `json:"debit_total"`
	CreditTotal string      `json:"credit_total"`
}

// LayoutProfitAndLoss arranges the P&L into the two-column statement.
// Positive gross/net profit lands in the debit column as the balancing
// figure; a loss lands in the credit column. This sign-based placement is a
// presentation rule reproduced for report parity.
func LayoutProfitAndLoss(pl ProfitAndLoss) TwoColumnStatement {
	out := TwoColumnStatement{}
	var debitTotal, creditTotal float64

	addDebit := func(label string, amount float64) {
		out.DebitRows = append(out.DebitRows, ColumnRow{Label: label, Amount: FormatAmount(amount)})
		debitTotal += amount
	}
	addCredit := func(label string, amount float64) {
		out.CreditRows = append(out.CreditRows, ColumnRow{Label: label, Amount: FormatAmount(amount)})
		creditTotal += amount
	}

	if pl.OpeningStock != 0 {
		addDebit("Opening Stock", pl.OpeningStock)
	}
	addDebit(pl.Purchases.Label, pl.Purchases.Total)
	addDebit(pl.DirectExpenses.Label, pl.DirectExpenses.Total)
	addCredit(pl.Sales.Label, pl.Sales.Total)
	if pl.DirectIncome.Total != 0 {
		addCredit(pl.DirectIncome.Label, pl.DirectIncome.Total)
	}
	if pl.GrossProfit >= 0 {
		addDebit("Gross Profit c/o", pl.GrossProfit)
	} else {
		addCredit("Gross Loss c/o", -pl.GrossProfit)
	}

	addDebit(pl.IndirectExpenses.Label, pl.IndirectExpenses.Total)
	addCredit(pl.IndirectIncome.Label, pl.IndirectIncome.Total)
	if pl.GrossProfit >= 0 {
		addCredit("Gross Profit b/f", pl.GrossProfit)
	} else {
		addDebit("Gross Loss b/f", -pl.GrossProfit)
	}
	if pl.NetProfit >= 0 {
		addDebit("Net Profit", pl.NetProfit)
	} else {
		addCredit("Net Loss", -pl.NetProfit)
	}

	out.DebitTotal = FormatAmount(debitTotal)
	out.CreditTotal = FormatAmount(creditTotal)
	return out
}
