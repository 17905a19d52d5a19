package reports

import (
	"sort"

	"github.com/timberline-erp/timberline/internal/masterdata/ledgers"
)

// LedgerActivity models a ledger with balances aggregated over a period.
type LedgerActivity struct {
	LedgerID int64
	Name     string
	Type     ledgers.AccountType
	Opening  float64
	Debit    float64
	Credit   float64
}

// Closing computes the closing balance for the ledger.
func (a LedgerActivity) Closing() float64 {
	return a.Opening + a.Debit - a.Credit
}

// TrialBalanceRow represents a row inside a trial balance group.
type TrialBalanceRow struct {
	LedgerID int64
	Name     string
	Opening  float64
	Debit    float64
	Credit   float64
	Closing  float64
}

// TrialBalanceGroup aggregates ledgers of one account type.
type TrialBalanceGroup struct {
	Type    ledgers.AccountType
	Rows    []TrialBalanceRow
	Opening float64
	Debit   float64
	Credit  float64
	Closing float64
}

// TrialBalance is the final structure rendered for the report.
type TrialBalance struct {
	Groups       []TrialBalanceGroup
	TotalOpening float64
	TotalDebit   float64
	TotalCredit  float64
	TotalClosing float64
}

// BuildTrialBalance converts ledger activities into grouped trial balance data.
func BuildTrialBalance(activities []LedgerActivity) TrialBalance {
	groups := make(map[ledgers.AccountType]*TrialBalanceGroup)
	keys := make([]ledgers.AccountType, 0)
	for _, act := range activities {
		grp, ok := groups[act.Type]
		if !ok {
			grp = &TrialBalanceGroup{Type: act.Type}
			groups[act.Type] = grp
			keys = append(keys, act.Type)
		}
		row := TrialBalanceRow{
			LedgerID: act.LedgerID,
			Name:     act.Name,
			Opening:  act.Opening,
			Debit:    act.Debit,
			Credit:   act.Credit,
			Closing:  act.Closing(),
		}
		grp.Rows = append(grp.Rows, row)
		grp.Opening += row.Opening
		grp.Debit += row.Debit
		grp.Credit += row.Credit
		grp.Closing += row.Closing
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Rows, func(i, j int) bool {
			return grp.Rows[i].Name < grp.Rows[j].Name
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalOpening += grp.Opening
		result.TotalDebit += grp.Debit
		result.TotalCredit += grp.Credit
		result.TotalClosing += grp.Closing
	}
	return result
}
