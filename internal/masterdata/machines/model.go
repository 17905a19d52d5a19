package machines

import "time"

// Machine is a production-floor machine available for order assignment.
type Machine struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
