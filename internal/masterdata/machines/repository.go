package machines

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/shared"
)

// ErrDuplicateCode indicates a machine code collision within the company.
var ErrDuplicateCode = errors.New("machines: code already exists for company")

// Repository persists machines.
type Repository interface {
	List(ctx context.Context, companyID int64) ([]Machine, error)
	Get(ctx context.Context, companyID, id int64) (Machine, error)
	Create(ctx context.Context, machine Machine) (Machine, error)
	Update(ctx context.Context, machine Machine) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a machine repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Machine, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_id, code, name, active, created_at, updated_at
FROM machines WHERE company_id=$1 ORDER BY code ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []Machine
	for rows.Next() {
		var m Machine
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.Code, &m.Name, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Machine, error) {
	var m Machine
	err := r.pool.QueryRow(ctx, `SELECT id, company_id, code, name, active, created_at, updated_at
FROM machines WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&m.ID, &m.CompanyID, &m.Code, &m.Name, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Machine{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) Create(ctx context.Context, machine Machine) (Machine, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO machines (company_id, code, name, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		machine.CompanyID, machine.Code, machine.Name, machine.Active, now, now).Scan(&machine.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Machine{}, ErrDuplicateCode
		}
		return Machine{}, err
	}
	machine.CreatedAt = now
	machine.UpdatedAt = now
	return machine, nil
}

func (r *repository) Update(ctx context.Context, machine Machine) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE machines SET code=$1, name=$2, active=$3, updated_at=$4 WHERE id=$5 AND company_id=$6`,
		machine.Code, machine.Name, machine.Active, time.Now(), machine.ID, machine.CompanyID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
