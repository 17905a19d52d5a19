package vouchers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/accounting/shared"
)

// Repository encapsulates DB operations for vouchers.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Voucher, int, error)
	Get(ctx context.Context, companyID, id int64) (Voucher, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// LedgerRef is the slice of a ledger row needed for posting checks.
type LedgerRef struct {
	ID        int64
	CompanyID int64
}

// TxRepository exposes methods available within a posting transaction.
type TxRepository interface {
	// NextSequence atomically advances the per-(company,type) voucher counter.
	NextSequence(ctx context.Context, companyID int64, vtype VoucherType) (int64, error)
	GetLedgerForUpdate(ctx context.Context, ledgerID int64) (LedgerRef, error)
	InsertVoucher(ctx context.Context, voucher Voucher) (Voucher, error)
	InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error
	AdjustLedgerBalance(ctx context.Context, ledgerID int64, delta float64) error
	GetVoucherWithEntries(ctx context.Context, companyID, id int64) (Voucher, error)
	DeleteVoucher(ctx context.Context, id int64) error
	// InsertNotification writes an outbox row; kept here so the intent record
	// shares the posting transaction.
	InsertNotification(ctx context.Context, kind string, refID int64, recipient, message string) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a voucher repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const voucherColumns = `id, company_id, voucher_number, voucher_type, voucher_date, party_ledger_id, total_amount, narration, posted_by, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Voucher, int, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id=$1`
	countQuery := `SELECT COUNT(*) FROM vouchers WHERE company_id=$1`
	args := []interface{}{filters.CompanyID}
	countArgs := []interface{}{filters.CompanyID}
	argCount := 1

	addClause := func(clause string, value interface{}) {
		argCount++
		numbered := clause + "$" + strconv.Itoa(argCount)
		query += numbered
		countQuery += numbered
		args = append(args, value)
		countArgs = append(countArgs, value)
	}

	if filters.Type != "" {
		addClause(` AND voucher_type=`, filters.Type)
	}
	if !filters.From.IsZero() {
		addClause(` AND voucher_date >= `, filters.From)
	}
	if !filters.To.IsZero() {
		addClause(` AND voucher_date <= `, filters.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY voucher_date DESC, id DESC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var vouchersList []Voucher
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.Number, &v.Type, &v.Date, &v.PartyLedgerID, &v.TotalAmount, &v.Narration, &v.PostedBy, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, 0, err
		}
		vouchersList = append(vouchersList, v)
	}
	return vouchersList, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Voucher, error) {
	var voucher Voucher
	err := r.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		voucher, err = tx.GetVoucherWithEntries(ctx, companyID, id)
		return err
	})
	return voucher, err
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) NextSequence(ctx context.Context, companyID int64, vtype VoucherType) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `INSERT INTO voucher_sequences (company_id, voucher_type, next_no)
VALUES ($1,$2,1)
ON CONFLICT (company_id, voucher_type) DO UPDATE SET next_no = voucher_sequences.next_no + 1
RETURNING next_no`, companyID, vtype).Scan(&next)
	return next, err
}

func (r *txRepository) GetLedgerForUpdate(ctx context.Context, ledgerID int64) (LedgerRef, error) {
	var ref LedgerRef
	err := r.tx.QueryRow(ctx, `SELECT id, company_id FROM ledgers WHERE id=$1 FOR UPDATE`, ledgerID).
		Scan(&ref.ID, &ref.CompanyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LedgerRef{}, shared.ErrLedgerNotFound
	}
	return ref, err
}

func (r *txRepository) InsertVoucher(ctx context.Context, voucher Voucher) (Voucher, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO vouchers (company_id, voucher_number, voucher_type, voucher_date, party_ledger_id, total_amount, narration, posted_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id, created_at, updated_at`,
		voucher.CompanyID, voucher.Number, voucher.Type, voucher.Date, voucher.PartyLedgerID, voucher.TotalAmount, voucher.Narration, voucher.PostedBy).
		Scan(&voucher.ID, &voucher.CreatedAt, &voucher.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Voucher{}, shared.ErrDuplicateNumber
		}
		return Voucher{}, err
	}
	return voucher, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, voucherID int64, entries []EntryInput) error {
	for _, entry := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_entries (voucher_id, ledger_id, debit_amount, credit_amount, narration)
VALUES ($1,$2,$3,$4,$5)`, voucherID, entry.LedgerID, entry.Debit, entry.Credit, entry.Narration); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) AdjustLedgerBalance(ctx context.Context, ledgerID int64, delta float64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledgers SET current_balance = current_balance + $2, updated_at = NOW() WHERE id=$1`, ledgerID, delta)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrLedgerNotFound
	}
	return nil
}

func (r *txRepository) GetVoucherWithEntries(ctx context.Context, companyID, id int64) (Voucher, error) {
	var v Voucher
	err := r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&v.ID, &v.CompanyID, &v.Number, &v.Type, &v.Date, &v.PartyLedgerID, &v.TotalAmount, &v.Narration, &v.PostedBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, voucher_id, ledger_id, debit_amount, credit_amount, narration
FROM voucher_entries WHERE voucher_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Voucher{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.VoucherID, &e.LedgerID, &e.Debit, &e.Credit, &e.Narration); err != nil {
			return Voucher{}, err
		}
		v.Entries = append(v.Entries, e)
	}
	return v, rows.Err()
}

func (r *txRepository) DeleteVoucher(ctx context.Context, id int64) error {
	// Entries first: they never outlive their parent voucher.
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_entries WHERE voucher_id=$1`, id); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) InsertNotification(ctx context.Context, kind string, refID int64, recipient, message string) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO notifications (kind, ref_id, recipient, message, status, attempts, created_at)
VALUES ($1,$2,$3,$4,'pending',0,$5) RETURNING id`, kind, refID, recipient, message, time.Now()).Scan(&id)
	return id, err
}
