package contractors

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

// ErrDuplicateName indicates a contractor name collision within the company.
var ErrDuplicateName = errors.New("contractors: name already exists for company")

// Repository persists contractors.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Contractor, error)
	Get(ctx context.Context, companyID, id int64) (Contractor, error)
	// CreateWithLedger inserts the contractor and its backing
	// sundry-creditor ledger in one transaction.
	CreateWithLedger(ctx context.Context, contractor Contractor, openingBalance float64) (Contractor, error)
	Update(ctx context.Context, contractor Contractor) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a contractor repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Contractor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, name, phone, ledger_id, active, created_at, updated_at
FROM sawmill_contractors WHERE company_id=$1 ORDER BY name ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contractor
	for rows.Next() {
		var c Contractor
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.LedgerID, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Contractor, error) {
	var c Contractor
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, name, phone, ledger_id, active, created_at, updated_at
FROM sawmill_contractors WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Phone, &c.LedgerID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contractor{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) CreateWithLedger(ctx context.Context, contractor Contractor, openingBalance float64) (Contractor, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO ledgers
(company_id, name, type, opening_balance, current_balance, created_at, updated_at)
VALUES ($1,$2,'sundry_creditors',$3,$3,$4,$4) RETURNING id`,
			contractor.CompanyID, contractor.Name, openingBalance, now).Scan(&contractor.LedgerID)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx, `INSERT INTO sawmill_contractors
(company_id, name, phone, ledger_id, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6) RETURNING id`,
			contractor.CompanyID, contractor.Name, contractor.Phone, contractor.LedgerID,
			contractor.Active, now).Scan(&contractor.ID)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Contractor{}, ErrDuplicateName
		}
		return Contractor{}, err
	}
	contractor.CreatedAt = now
	contractor.UpdatedAt = now
	return contractor, nil
}

func (r *repository) Update(ctx context.Context, contractor Contractor) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE sawmill_contractors SET name=$1, phone=$2, active=$3, updated_at=$4
WHERE id=$5 AND company_id=$6`,
		contractor.Name, contractor.Phone, contractor.Active, time.Now(), contractor.ID, contractor.CompanyID)
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
