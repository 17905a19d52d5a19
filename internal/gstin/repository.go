package gstin

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timberline-erp/timberline/internal/shared"
)

// Repository caches looked-up GSTIN records in Postgres.
type Repository interface {
	Get(ctx context.Context, gstin string) (Record, error)
	Upsert(ctx context.Context, record Record) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a GSTIN record repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, gstin string) (Record, error) {
	var rec Record
	err := r.pool.QueryRow(ctx, `SELECT gstin, legal_name, trade_name, state, state_code, address, status, fetched_at
FROM gst_records WHERE gstin=$1`, gstin).
		Scan(&rec.GSTIN, &rec.LegalName, &rec.TradeName, &rec.State, &rec.StateCode, &rec.Address, &rec.Status, &rec.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, shared.ErrNotFound
	}
	return rec, err
}

func (r *repository) Upsert(ctx context.Context, record Record) error {
	if record.FetchedAt.IsZero() {
		record.FetchedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO gst_records (gstin, legal_name, trade_name, state, state_code, address, status, fetched_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (gstin) DO UPDATE SET legal_name=EXCLUDED.legal_name, trade_name=EXCLUDED.trade_name,
state=EXCLUDED.state, state_code=EXCLUDED.state_code, address=EXCLUDED.address,
status=EXCLUDED.status, fetched_at=EXCLUDED.fetched_at`,
		record.GSTIN, record.LegalName, record.TradeName, record.State, record.StateCode,
		record.Address, record.Status, record.FetchedAt)
	return err
}
