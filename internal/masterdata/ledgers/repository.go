package ledgers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/shared"
)

// ErrDuplicateName indicates a ledger name collision within the company.
var ErrDuplicateName = errors.New("ledgers: name already exists for company")

// ListFilters narrows ledger listings.
type ListFilters struct {
	CompanyID int64
	Type      AccountType
	Search    string
	Page      int
	Limit     int
}

// Repository persists ledgers.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Ledger, int, error)
	Get(ctx context.Context, companyID, id int64) (Ledger, error)
	Create(ctx context.Context, ledger Ledger) (Ledger, error)
	Update(ctx context.Context, ledger Ledger) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a ledger repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const ledgerColumns = `id, company_id, name, type, opening_balance, current_balance, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Ledger, int, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE company_id=$1`
	countQuery := `SELECT COUNT(*) FROM ledgers WHERE company_id=$1`
	args := []interface{}{filters.CompanyID}
	countArgs := []interface{}{filters.CompanyID}
	argCount := 1

	if filters.Type != "" {
		argCount++
		clause := ` AND type=$` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Type)
		countArgs = append(countArgs, filters.Type)
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
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

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ledgers []Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Type, &l.OpeningBalance, &l.CurrentBalance, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Ledger, error) {
	var l Ledger
	err := r.pool.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledgers WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&l.ID, &l.CompanyID, &l.Name, &l.Type, &l.OpeningBalance, &l.CurrentBalance, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ledger{}, shared.ErrNotFound
	}
	return l, err
}

func (r *repository) Create(ctx context.Context, ledger Ledger) (Ledger, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO ledgers (company_id, name, type, opening_balance, current_balance, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		ledger.CompanyID, ledger.Name, ledger.Type, ledger.OpeningBalance, ledger.OpeningBalance, now, now).Scan(&ledger.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Ledger{}, ErrDuplicateName
		}
		return Ledger{}, err
	}
	ledger.CurrentBalance = ledger.OpeningBalance
	ledger.CreatedAt = now
	ledger.UpdatedAt = now
	return ledger, nil
}

func (r *repository) Update(ctx context.Context, ledger Ledger) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE ledgers SET name=$1, type=$2, updated_at=$3 WHERE id=$4 AND company_id=$5`,
		ledger.Name, ledger.Type, time.Now(), ledger.ID, ledger.CompanyID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
