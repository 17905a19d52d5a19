package logs

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

// ErrDuplicateTag indicates a tag number collision within the company.
var ErrDuplicateTag = errors.New("sawmill: tag number already exists for company")

// ListFilters narrows a log listing.
type ListFilters struct {
	Status Status
	Grade  Grade
	Tag    string
}

// Repository persists sawmill logs.
type Repository interface {
	List(ctx context.Context, companyID int64, filters ListFilters) ([]Log, error)
	Get(ctx context.Context, companyID, id int64) (Log, error)
	GetByTag(ctx context.Context, companyID int64, tag string) (Log, error)
	Create(ctx context.Context, log Log) (Log, error)
	AdvanceStatus(ctx context.Context, companyID, id int64, from, to Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a sawmill log repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const logColumns = `id, company_id, tag_number, girth_cm, girth_inch, length_meter, grade, cft, status, qr_data, created_at, updated_at`

func scanLog(row pgx.Row) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.CompanyID, &l.TagNumber, &l.GirthCM, &l.GirthInch,
		&l.LengthMeter, &l.Grade, &l.CFT, &l.Status, &l.QRData, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *repository) List(ctx context.Context, companyID int64, filters ListFilters) ([]Log, error) {
	query := `SELECT ` + logColumns + ` FROM sawmill_logs WHERE company_id=$1`
	args := []any{companyID}
	argCount := 1
	if filters.Status != "" {
		argCount++
		query += " AND status=$" + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.Grade != "" {
		argCount++
		query += " AND grade=$" + strconv.Itoa(argCount)
		args = append(args, filters.Grade)
	}
	if filters.Tag != "" {
		argCount++
		query += " AND tag_number ILIKE $" + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Tag+"%")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Log, error) {
	l, err := scanLog(r.pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM sawmill_logs WHERE id=$1 AND company_id=$2`, id, companyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, shared.ErrNotFound
	}
	return l, err
}

func (r *repository) GetByTag(ctx context.Context, companyID int64, tag string) (Log, error) {
	l, err := scanLog(r.pool.QueryRow(ctx,
		`SELECT `+logColumns+` FROM sawmill_logs WHERE company_id=$1 AND tag_number=$2`, companyID, tag))
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, shared.ErrNotFound
	}
	return l, err
}

func (r *repository) Create(ctx context.Context, log Log) (Log, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO sawmill_logs
(company_id, tag_number, girth_cm, girth_inch, length_meter, grade, cft, status, qr_data, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		log.CompanyID, log.TagNumber, log.GirthCM, log.GirthInch, log.LengthMeter,
		log.Grade, log.CFT, log.Status, log.QRData, now, now).Scan(&log.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Log{}, ErrDuplicateTag
		}
		return Log{}, err
	}
	log.CreatedAt = now
	log.UpdatedAt = now
	return log, nil
}

// AdvanceStatus moves a log forward only when its current status still
// matches from, so concurrent consumers cannot double-advance.
func (r *repository) AdvanceStatus(ctx context.Context, companyID, id int64, from, to Status) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE sawmill_logs SET status=$1, updated_at=$2 WHERE id=$3 AND company_id=$4 AND status=$5`,
		to, time.Now(), id, companyID, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}
