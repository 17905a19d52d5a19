package companies

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

// ErrDuplicateCode indicates the company code is already taken.
var ErrDuplicateCode = errors.New("companies: code already exists")

// ListFilters narrows company listings.
type ListFilters struct {
	Search  string
	Page    int
	Limit   int
	SortBy  string
	SortDir string
}

// Repository persists companies.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a company repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, code, name, address, gstin, state, pincode, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Company, int, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM companies WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND (name ILIKE $1 OR code ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

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

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.GSTIN, &c.State, &c.Pincode, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Address, &c.GSTIN, &c.State, &c.Pincode, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO companies (code, name, address, gstin, state, pincode, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		company.Code, company.Name, company.Address, company.GSTIN, company.State, company.Pincode, now, now).Scan(&company.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Company{}, ErrDuplicateCode
		}
		return Company{}, err
	}
	company.CreatedAt = now
	company.UpdatedAt = now
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE companies SET code=$1, name=$2, address=$3, gstin=$4, state=$5, pincode=$6, updated_at=$7 WHERE id=$8`,
		company.Code, company.Name, company.Address, company.GSTIN, company.State, company.Pincode, time.Now(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "code":
		return "code " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
