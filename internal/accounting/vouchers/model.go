package vouchers

import (
	"time"
)

// VoucherType enumerates the fixed set of business transaction types.
type VoucherType string

const (
	TypeSales    VoucherType = "sales"
	TypePurchase VoucherType = "purchase"
	TypePayment  VoucherType = "payment"
	TypeReceipt  VoucherType = "receipt"
	TypeJournal  VoucherType = "journal"
	TypeContra   VoucherType = "contra"
)

// IsValid reports whether the voucher type is known.
func (t VoucherType) IsValid() bool {
	switch t {
	case TypeSales, TypePurchase, TypePayment, TypeReceipt, TypeJournal, TypeContra:
		return true
	default:
		return false
	}
}

// NumberPrefix returns the document number prefix for the type.
func (t VoucherType) NumberPrefix() string {
	switch t {
	case TypeSales:
		return "SAL"
	case TypePurchase:
		return "PUR"
	case TypePayment:
		return "PAY"
	case TypeReceipt:
		return "RCT"
	case TypeJournal:
		return "JRN"
	case TypeContra:
		return "CON"
	default:
		return "VCH"
	}
}

// Voucher is a dated business transaction owning balanced entries.
type Voucher struct {
	ID            int64       `json:"id"`
	CompanyID     int64       `json:"company_id"`
	Number        string      `json:"voucher_number"`
	Type          VoucherType `json:"voucher_type"`
	Date          time.Time   `json:"voucher_date"`
	PartyLedgerID *int64      `json:"party_ledger_id,omitempty"`
	TotalAmount   float64     `json:"total_amount"`
	Narration     string      `json:"narration"`
	PostedBy      int64       `json:"posted_by"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	Entries       []Entry     `json:"entries,omitempty"`
}

// Entry is one debit-or-credit leg of a voucher against one ledger.
// It never exists without its parent voucher.
type Entry struct {
	ID        int64   `json:"id"`
	VoucherID int64   `json:"voucher_id"`
	LedgerID  int64   `json:"ledger_id"`
	Debit     float64 `json:"debit_amount"`
	Credit    float64 `json:"credit_amount"`
	Narration string  `json:"narration,omitempty"`
}
