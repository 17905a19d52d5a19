package contractors

import "time"

// Contractor is a harvesting or transport contractor. Each contractor is
// backed by a sundry-creditor ledger so payables flow through vouchers.
type Contractor struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	LedgerID  int64     `json:"ledger_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
