package companies

import (
	"time"
)

// Company represents a tenant company.
type Company struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	GSTIN     string    `json:"gstin"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
