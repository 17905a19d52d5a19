package reports

import "time"

// StatementEntry is one voucher leg against the ledger under report.
type StatementEntry struct {
	Date          time.Time
	VoucherID     int64
	VoucherNumber string
	VoucherType   string
	Narration     string
	Debit         float64
	Credit        float64
}

// StatementLine is a statement entry with its running balance.
type StatementLine struct {
	StatementEntry
	Balance float64
}

// Statement is the transaction history of a single ledger over a range.
type Statement struct {
	LedgerID    int64
	LedgerName  string
	Opening     float64
	Lines       []StatementLine
	TotalDebit  float64
	TotalCredit float64
	Closing     float64
}

// BuildStatement folds entries left-to-right into running balances.
// Entries must arrive ordered by voucher date, stable by insertion.
func BuildStatement(ledgerID int64, ledgerName string, opening float64, entries []StatementEntry) Statement {
	st := Statement{
		LedgerID:   ledgerID,
		LedgerName: ledgerName,
		Opening:    opening,
		Closing:    opening,
	}
	balance := opening
	for _, entry := range entries {
		balance += entry.Debit - entry.Credit
		st.Lines = append(st.Lines, StatementLine{StatementEntry: entry, Balance: balance})
		st.TotalDebit += entry.Debit
		st.TotalCredit += entry.Credit
	}
	st.Closing = balance
	return st
}
