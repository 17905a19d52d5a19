package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/shared"
)

// Repository persists users and role records.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertUser(ctx context.Context, user User) (int64, error)
	InsertRoleRecord(ctx context.Context, userID int64, role Role, department string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a Repository backed by pgx.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const userColumns = `id, company_id, email, full_name, role, department, phone, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.FullName, &u.Role, &u.Department, &u.Phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *repository) FindByID(ctx context.Context, id int64) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
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

func (r *txRepository) InsertUser(ctx context.Context, user User) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO users (company_id, email, full_name, role, department, phone, password_hash)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		user.CompanyID, user.Email, user.FullName, user.Role, user.Department, user.Phone, user.PasswordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (r *txRepository) InsertRoleRecord(ctx context.Context, userID int64, role Role, department string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO user_roles (user_id, role, department) VALUES ($1,$2,$3)`, userID, role, department)
	return err
}
