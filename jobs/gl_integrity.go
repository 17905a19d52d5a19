package jobs

import (
	"context"
	"log/slog"
	"math"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// balanceDriftTolerance absorbs float accumulation noise when comparing
// the stored running balance with the recomputed one.
const balanceDriftTolerance = 0.01

// NewGLIntegrityHandler returns the nightly scan that recomputes each
// ledger's balance from its entries and logs any drift from the stored
// accumulator.
func NewGLIntegrityHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		rows, err := pool.Query(ctx, `SELECT l.id, l.company_id, l.name, l.current_balance,
l.opening_balance + COALESCE(SUM(e.debit_amount - e.credit_amount), 0)
FROM ledgers l
LEFT JOIN voucher_entries e ON e.ledger_id = l.id
GROUP BY l.id, l.company_id, l.name, l.current_balance, l.opening_balance`)
		if err != nil {
			return err
		}
		defer rows.Close()

		checked, drifted := 0, 0
		for rows.Next() {
			var (
				id, companyID    int64
				name             string
				stored, computed float64
			)
			if err := rows.Scan(&id, &companyID, &name, &stored, &computed); err != nil {
				return err
			}
			checked++
			if math.Abs(stored-computed) > balanceDriftTolerance {
				drifted++
				logger.Error("ledger balance drift",
					slog.Int64("ledger_id", id),
					slog.Int64("company_id", companyID),
					slog.String("ledger", name),
					slog.Float64("stored", stored),
					slog.Float64("computed", computed))
			}
		}
		if err := rows.Err(); err != nil {
			return err
		}
		logger.Info("gl integrity scan",
			slog.Int("ledgers", checked),
			slog.Int("drifted", drifted))
		return nil
	}
}
