package production

import "time"

// OrderStatus is derived from entry sums at read time, never stored.
type OrderStatus string

const (
	StatusPending             OrderStatus = "pending"
	StatusInProduction        OrderStatus = "in_production"
	StatusPartiallyDispatched OrderStatus = "partially_dispatched"
	StatusCompleted           OrderStatus = "completed"
)

// Order is a customer sales order tracked on the production floor.
type Order struct {
	ID              int64     `json:"id"`
	CompanyID       int64     `json:"company_id"`
	OrderNumber     string    `json:"order_number"`
	CustomerLedgerID int64    `json:"customer_ledger_id"`
	Product         string    `json:"product"`
	OrderedQuantity float64   `json:"ordered_quantity"`
	Rate            float64   `json:"rate"`
	OrderDate       time.Time `json:"order_date"`
	CreatedBy       int64     `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// OrderView is an order plus its derived quantities. BalanceQuantity is
// always ordered minus dispatched, recomputed from the entry tables.
type OrderView struct {
	Order
	MachineID         *int64      `json:"machine_id,omitempty"`
	ProducedQuantity  float64     `json:"produced_quantity"`
	DispatchedQuantity float64    `json:"dispatched_quantity"`
	BalanceQuantity   float64     `json:"balance_quantity"`
	Status            OrderStatus `json:"status"`
}

// DeriveStatus classifies an order from its entry sums.
func DeriveStatus(ordered, produced, dispatched float64) OrderStatus {
	switch {
	case dispatched >= ordered && ordered > 0:
		return StatusCompleted
	case dispatched > 0:
		return StatusPartiallyDispatched
	case produced > 0:
		return StatusInProduction
	default:
		return StatusPending
	}
}

// ProductionEntry is an append-only record of quantity produced on a
// machine, optionally consuming a tagged sawmill log.
type ProductionEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	MachineID int64     `json:"machine_id"`
	LogID     *int64    `json:"log_id,omitempty"`
	Quantity  float64   `json:"quantity"`
	EntryDate time.Time `json:"entry_date"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// DispatchEntry is an append-only record of quantity shipped out.
type DispatchEntry struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	Quantity      float64   `json:"quantity"`
	VehicleNumber string    `json:"vehicle_number"`
	DispatchDate  time.Time `json:"dispatch_date"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
