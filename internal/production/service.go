package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timberline-erp/timberline/internal/sawmill/logs"
)

// NotifyQueue hands a committed outbox row to the background dispatcher.
type NotifyQueue interface {
	Enqueue(ctx context.Context, notificationID int64) error
}

// LogConsumer advances a sawmill log when a production entry consumes it.
type LogConsumer interface {
	Consume(ctx context.Context, companyID, actorID, id int64) (logs.Log, error)
}

// ErrOverDispatch indicates a dispatch larger than the remaining balance.
var ErrOverDispatch = errors.New("production: dispatch exceeds order balance")

// Service coordinates order and entry tracking.
type Service struct {
	repo      Repository
	queue     NotifyQueue
	logStore  LogConsumer
	now       func() time.Time
}

// NewService constructs the production service.
func NewService(repo Repository, queue NotifyQueue, logStore LogConsumer) *Service {
	return &Service{repo: repo, queue: queue, logStore: logStore, now: time.Now}
}

// WithNow overrides the clock, used in tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// OrderInput carries a new sales order.
type OrderInput struct {
	OrderNumber      string    `json:"order_number"`
	CustomerLedgerID int64     `json:"customer_ledger_id"`
	Product          string    `json:"product"`
	OrderedQuantity  float64   `json:"ordered_quantity"`
	Rate             float64   `json:"rate"`
	OrderDate        time.Time `json:"order_date"`
}

func (in OrderInput) validate() error {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return errors.New("order number is required")
	}
	if strings.TrimSpace(in.Product) == "" {
		return errors.New("product is required")
	}
	if in.OrderedQuantity <= 0 {
		return errors.New("ordered quantity must be positive")
	}
	if in.Rate < 0 {
		return errors.New("rate cannot be negative")
	}
	return nil
}

func (s *Service) CreateOrder(ctx context.Context, companyID, actorID int64, in OrderInput) (Order, error) {
	if err := in.validate(); err != nil {
		return Order{}, err
	}
	date := in.OrderDate
	if date.IsZero() {
		date = s.now()
	}
	return s.repo.CreateOrder(ctx, Order{
		CompanyID:        companyID,
		OrderNumber:      strings.TrimSpace(in.OrderNumber),
		CustomerLedgerID: in.CustomerLedgerID,
		Product:          strings.TrimSpace(in.Product),
		OrderedQuantity:  in.OrderedQuantity,
		Rate:             in.Rate,
		OrderDate:        date,
		CreatedBy:        actorID,
	})
}

func (s *Service) GetOrder(ctx context.Context, companyID, id int64) (OrderView, error) {
	return s.repo.GetOrder(ctx, companyID, id)
}

func (s *Service) ListOrders(ctx context.Context, companyID int64) ([]OrderView, error) {
	return s.repo.ListOrders(ctx, companyID)
}

func (s *Service) AssignMachine(ctx context.Context, companyID, orderID, machineID int64) error {
	if orderID <= 0 || machineID <= 0 {
		return errors.New("order and machine are required")
	}
	return s.repo.AssignMachine(ctx, companyID, orderID, machineID, s.now())
}

// ProductionInput carries a daily production entry.
type ProductionInput struct {
	MachineID int64     `json:"machine_id"`
	LogID     *int64    `json:"log_id,omitempty"`
	Quantity  float64   `json:"quantity"`
	EntryDate time.Time `json:"entry_date"`
}

// RecordProduction appends a production entry. When the entry names a
// sawmill log, the log is consumed first; a log that cannot advance
// rejects the entry before anything is written.
func (s *Service) RecordProduction(ctx context.Context, companyID, actorID, orderID int64, in ProductionInput) (ProductionEntry, error) {
	if in.Quantity <= 0 {
		return ProductionEntry{}, errors.New("quantity must be positive")
	}
	if in.MachineID <= 0 {
		return ProductionEntry{}, errors.New("machine is required")
	}
	if _, err := s.repo.GetOrder(ctx, companyID, orderID); err != nil {
		return ProductionEntry{}, err
	}
	if in.LogID != nil && s.logStore != nil {
		if _, err := s.logStore.Consume(ctx, companyID, actorID, *in.LogID); err != nil {
			return ProductionEntry{}, err
		}
	}
	date := in.EntryDate
	if date.IsZero() {
		date = s.now()
	}
	return s.repo.InsertProduction(ctx, ProductionEntry{
		OrderID:   orderID,
		MachineID: in.MachineID,
		LogID:     in.LogID,
		Quantity:  in.Quantity,
		EntryDate: date,
		CreatedBy: actorID,
	})
}

// DispatchInput carries a dispatch entry.
type DispatchInput struct {
	Quantity      float64   `json:"quantity"`
	VehicleNumber string    `json:"vehicle_number"`
	DispatchDate  time.Time `json:"dispatch_date"`
	NotifyEmail   string    `json:"notify_email,omitempty"`
}

// RecordDispatch appends a dispatch entry and, when a recipient is given,
// writes the notification outbox row in the same transaction. The enqueue
// after commit is best-effort.
func (s *Service) RecordDispatch(ctx context.Context, companyID, actorID, orderID int64, in DispatchInput) (DispatchEntry, error) {
	if in.Quantity <= 0 {
		return DispatchEntry{}, errors.New("quantity must be positive")
	}
	view, err := s.repo.GetOrder(ctx, companyID, orderID)
	if err != nil {
		return DispatchEntry{}, err
	}
	if in.Quantity > view.BalanceQuantity {
		return DispatchEntry{}, ErrOverDispatch
	}
	date := in.DispatchDate
	if date.IsZero() {
		date = s.now()
	}
	message := fmt.Sprintf("Order %s: %.2f dispatched via %s", view.OrderNumber, in.Quantity, in.VehicleNumber)
	entry, notificationID, err := s.repo.InsertDispatchWithNotification(ctx, DispatchEntry{
		OrderID:       orderID,
		Quantity:      in.Quantity,
		VehicleNumber: strings.TrimSpace(in.VehicleNumber),
		DispatchDate:  date,
		CreatedBy:     actorID,
	}, strings.TrimSpace(in.NotifyEmail), message)
	if err != nil {
		return DispatchEntry{}, err
	}
	if notificationID != 0 && s.queue != nil {
		_ = s.queue.Enqueue(ctx, notificationID)
	}
	return entry, nil
}

func (s *Service) ListProduction(ctx context.Context, companyID, orderID int64) ([]ProductionEntry, error) {
	return s.repo.ListProduction(ctx, companyID, orderID)
}

func (s *Service) ListDispatch(ctx context.Context, companyID, orderID int64) ([]DispatchEntry, error) {
	return s.repo.ListDispatch(ctx, companyID, orderID)
}
