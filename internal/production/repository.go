package production

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/platform/db"
	"github.com/timberline-erp/timberline/internal/shared"
)

// ErrDuplicateOrderNumber indicates an order number collision within the company.
var ErrDuplicateOrderNumber = errors.New("production: order number already exists for company")

// Repository persists orders and their entry streams.
type Repository interface {
	CreateOrder(ctx context.Context, order Order) (Order, error)
	GetOrder(ctx context.Context, companyID, id int64) (OrderView, error)
	ListOrders(ctx context.Context, companyID int64) ([]OrderView, error)
	AssignMachine(ctx context.Context, companyID, orderID, machineID int64, at time.Time) error
	InsertProduction(ctx context.Context, entry ProductionEntry) (ProductionEntry, error)
	// InsertDispatchWithNotification appends the dispatch entry and its
	// notification outbox row in one transaction.
	InsertDispatchWithNotification(ctx context.Context, entry DispatchEntry, recipient, message string) (DispatchEntry, int64, error)
	ListProduction(ctx context.Context, companyID, orderID int64) ([]ProductionEntry, error)
	ListDispatch(ctx context.Context, companyID, orderID int64) ([]DispatchEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a production repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CreateOrder(ctx context.Context, order Order) (Order, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO sales_orders
(company_id, order_number, customer_ledger_id, product, ordered_quantity, rate, order_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		order.CompanyID, order.OrderNumber, order.CustomerLedgerID, order.Product,
		order.OrderedQuantity, order.Rate, order.OrderDate, order.CreatedBy, now).Scan(&order.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Order{}, ErrDuplicateOrderNumber
		}
		return Order{}, err
	}
	order.CreatedAt = now
	return order, nil
}

// orderViewQuery recomputes produced and dispatched sums on every read so
// balance_quantity never drifts from the entry tables.
const orderViewQuery = `SELECT o.id, o.company_id, o.order_number, o.customer_ledger_id, o.product,
o.ordered_quantity, o.rate, o.order_date, o.created_by, o.created_at,
(SELECT machine_id FROM order_assignments a WHERE a.order_id = o.id ORDER BY a.assigned_at DESC, a.id DESC LIMIT 1),
COALESCE((SELECT SUM(p.quantity) FROM production_entries p WHERE p.order_id = o.id), 0),
COALESCE((SELECT SUM(d.quantity) FROM dispatch_entries d WHERE d.order_id = o.id), 0)
FROM sales_orders o`

func scanOrderView(row pgx.Row) (OrderView, error) {
	var v OrderView
	err := row.Scan(&v.ID, &v.CompanyID, &v.OrderNumber, &v.CustomerLedgerID, &v.Product,
		&v.OrderedQuantity, &v.Rate, &v.OrderDate, &v.CreatedBy, &v.CreatedAt,
		&v.MachineID, &v.ProducedQuantity, &v.DispatchedQuantity)
	if err != nil {
		return OrderView{}, err
	}
	v.BalanceQuantity = v.OrderedQuantity - v.DispatchedQuantity
	v.Status = DeriveStatus(v.OrderedQuantity, v.ProducedQuantity, v.DispatchedQuantity)
	return v, nil
}

func (r *repository) GetOrder(ctx context.Context, companyID, id int64) (OrderView, error) {
	v, err := scanOrderView(r.pool.QueryRow(ctx,
		orderViewQuery+` WHERE o.id=$1 AND o.company_id=$2`, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderView{}, shared.ErrNotFound
	}
	return v, err
}

func (r *repository) ListOrders(ctx context.Context, companyID int64) ([]OrderView, error) {
	rows, err := r.pool.Query(ctx,
		orderViewQuery+` WHERE o.company_id=$1 ORDER BY o.order_date DESC, o.id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderView
	for rows.Next() {
		v, err := scanOrderView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) AssignMachine(ctx context.Context, companyID, orderID, machineID int64, at time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sales_orders WHERE id=$1 AND company_id=$2)`,
			orderID, companyID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM machines WHERE id=$1 AND company_id=$2)`,
			machineID, companyID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return shared.ErrNotFound
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO order_assignments (order_id, machine_id, assigned_at) VALUES ($1,$2,$3)`,
			orderID, machineID, at)
		return err
	})
}

func (r *repository) InsertProduction(ctx context.Context, entry ProductionEntry) (ProductionEntry, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO production_entries
(order_id, machine_id, log_id, quantity, entry_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		entry.OrderID, entry.MachineID, entry.LogID, entry.Quantity,
		entry.EntryDate, entry.CreatedBy, now).Scan(&entry.ID)
	if err != nil {
		return ProductionEntry{}, err
	}
	entry.CreatedAt = now
	return entry, nil
}

func (r *repository) InsertDispatchWithNotification(ctx context.Context, entry DispatchEntry, recipient, message string) (DispatchEntry, int64, error) {
	now := time.Now()
	var notificationID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO dispatch_entries
(order_id, quantity, vehicle_number, dispatch_date, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
			entry.OrderID, entry.Quantity, entry.VehicleNumber,
			entry.DispatchDate, entry.CreatedBy, now).Scan(&entry.ID)
		if err != nil {
			return err
		}
		if recipient == "" {
			return nil
		}
		return tx.QueryRow(ctx, `INSERT INTO notifications (kind, ref_id, recipient, message, status, attempts, created_at)
VALUES ($1,$2,$3,$4,'pending',0,$5) RETURNING id`,
			"dispatch", entry.ID, recipient, message, now).Scan(&notificationID)
	})
	if err != nil {
		return DispatchEntry{}, 0, err
	}
	entry.CreatedAt = now
	return entry, notificationID, nil
}

func (r *repository) ListProduction(ctx context.Context, companyID, orderID int64) ([]ProductionEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.order_id, p.machine_id, p.log_id, p.quantity, p.entry_date, p.created_by, p.created_at
FROM production_entries p JOIN sales_orders o ON o.id = p.order_id
WHERE p.order_id=$1 AND o.company_id=$2 ORDER BY p.entry_date ASC, p.id ASC`, orderID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductionEntry
	for rows.Next() {
		var e ProductionEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.MachineID, &e.LogID, &e.Quantity, &e.EntryDate, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) ListDispatch(ctx context.Context, companyID, orderID int64) ([]DispatchEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT d.id, d.order_id, d.quantity, d.vehicle_number, d.dispatch_date, d.created_by, d.created_at
FROM dispatch_entries d JOIN sales_orders o ON o.id = d.order_id
WHERE d.order_id=$1 AND o.company_id=$2 ORDER BY d.dispatch_date ASC, d.id ASC`, orderID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DispatchEntry
	for rows.Next() {
		var e DispatchEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Quantity, &e.VehicleNumber, &e.DispatchDate, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
