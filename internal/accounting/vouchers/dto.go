package vouchers

import (
	"fmt"
	"math"
	"time"

	"github.com/timberline-erp/timberline/internal/accounting/shared"
)

// balanceTolerance is the maximum allowed gap between debit and credit totals.
const balanceTolerance = 0.01

// EntryInput describes one voucher leg in a posting request.
type EntryInput struct {
	LedgerID  int64   `json:"ledger_id"`
	Debit     float64 `json:"debit_amount"`
	Credit    float64 `json:"credit_amount"`
	Narration string  `json:"narration"`
}

// PostingInput groups fields required to post a voucher.
type PostingInput struct {
	CompanyID     int64        `json:"-"`
	Type          VoucherType  `json:"voucher_type"`
	Date          time.Time    `json:"voucher_date"`
	PartyLedgerID *int64       `json:"party_ledger_id"`
	Narration     string       `json:"narration"`
	PostedBy      int64        `json:"-"`
	NotifyEmail   string       `json:"notify_email"`
	Entries       []EntryInput `json:"entries"`
}

// Validate ensures posting input meets minimum criteria before touching storage.
func (in PostingInput) Validate() error {
	if !in.Type.IsValid() {
		return shared.ErrInvalidVoucherType
	}
	if in.Date.IsZero() {
		return fmt.Errorf("accounting: voucher date required")
	}
	if len(in.Entries) < 2 {
		return shared.ErrTooFewEntries
	}
	var debit, credit float64
	for idx, entry := range in.Entries {
		if entry.LedgerID == 0 {
			return fmt.Errorf("accounting: entry %d missing ledger", idx)
		}
		if entry.Debit < 0 || entry.Credit < 0 {
			return fmt.Errorf("accounting: entry %d negative amount", idx)
		}
		if entry.Debit > 0 && entry.Credit > 0 {
			return fmt.Errorf("accounting: entry %d cannot be both debit and credit", idx)
		}
		debit += entry.Debit
		credit += entry.Credit
	}
	if math.Abs(debit-credit) > balanceTolerance {
		return shared.ErrUnbalanced
	}
	return nil
}

// TotalDebit sums the debit side of the entries.
func (in PostingInput) TotalDebit() float64 {
	var total float64
	for _, entry := range in.Entries {
		total += entry.Debit
	}
	return total
}

// LedgerDeltas folds the entries into a net (debit minus credit) per ledger,
// preserving first-seen ledger order.
func (in PostingInput) LedgerDeltas() ([]int64, map[int64]float64) {
	order := make([]int64, 0, len(in.Entries))
	deltas := make(map[int64]float64, len(in.Entries))
	for _, entry := range in.Entries {
		if _, seen := deltas[entry.LedgerID]; !seen {
			order = append(order, entry.LedgerID)
		}
		deltas[entry.LedgerID] += entry.Debit - entry.Credit
	}
	return order, deltas
}

// ListFilters narrows voucher listings.
type ListFilters struct {
	CompanyID int64
	Type      VoucherType
	From      time.Time
	To        time.Time
	Page      int
	Limit     int
}
