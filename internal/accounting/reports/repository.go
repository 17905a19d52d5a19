package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/timberline-erp/timberline/internal/accounting/shared"
)

// Repository reads aggregated ledger activity for report building.
type Repository interface {
	LedgerActivities(ctx context.Context, companyID int64, from, to time.Time) ([]LedgerActivity, error)
	StatementOpening(ctx context.Context, companyID, ledgerID int64, before time.Time) (string, float64, error)
	StatementEntries(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementEntry, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a report repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) LedgerActivities(ctx context.Context, companyID int64, from, to time.Time) ([]LedgerActivity, error) {
	rows, err := r.db.Query(ctx, `
SELECT l.id, l.name, l.type,
       l.opening_balance
         + COALESCE(SUM(CASE WHEN v.voucher_date < $2 THEN e.debit_amount - e.credit_amount ELSE 0 END), 0) AS opening,
       COALESCE(SUM(CASE WHEN v.voucher_date >= $2 AND v.voucher_date <= $3 THEN e.debit_amount ELSE 0 END), 0) AS debit,
       COALESCE(SUM(CASE WHEN v.voucher_date >= $2 AND v.voucher_date <= $3 THEN e.credit_amount ELSE 0 END), 0) AS credit
FROM ledgers l
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
LEFT JOIN vouchers v ON v.id = e.voucher_id
WHERE l.company_id = $1
GROUP BY l.id, l.name, l.type, l.opening_balance
ORDER BY l.name ASC`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []LedgerActivity
	for rows.Next() {
		var a LedgerActivity
		if err := rows.Scan(&a.LedgerID, &a.Name, &a.Type, &a.Opening, &a.Debit, &a.Credit); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *repository) StatementOpening(ctx context.Context, companyID, ledgerID int64, before time.Time) (string, float64, error) {
	var name string
	var opening float64
	err := r.db.QueryRow(ctx, `
SELECT l.name,
       l.opening_balance
         + COALESCE(SUM(CASE WHEN v.voucher_date < $3 THEN e.debit_amount - e.credit_amount ELSE 0 END), 0)
FROM ledgers l
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
LEFT JOIN vouchers v ON v.id = e.voucher_id
WHERE l.id = $1 AND l.company_id = $2
GROUP BY l.name, l.opening_balance`, ledgerID, companyID, before).Scan(&name, &opening)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, acctshared.ErrLedgerNotFound
	}
	return name, opening, err
}

func (r *repository) StatementEntries(ctx context.Context, companyID, ledgerID int64, from, to time.Time) ([]StatementEntry, error) {
	rows, err := r.db.Query(ctx, `
SELECT v.voucher_date, v.id, v.voucher_number, v.voucher_type, e.narration, e.debit_amount, e.credit_amount
FROM voucher_entries e
JOIN vouchers v ON v.id = e.voucher_id
WHERE e.ledger_id = $1 AND v.company_id = $2 AND v.voucher_date >= $3 AND v.voucher_date <= $4
ORDER BY v.voucher_date ASC, e.id ASC`, ledgerID, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []StatementEntry
	for rows.Next() {
		var e StatementEntry
		if err := rows.Scan(&e.Date, &e.VoucherID, &e.VoucherNumber, &e.VoucherType, &e.Narration, &e.Debit, &e.Credit); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
