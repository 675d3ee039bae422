package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LowStockScanJob walks the catalog nightly and flags products at or
// below their restock threshold. Advisory only, it never blocks anything.
type LowStockScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewLowStockScanJob initialises the low stock scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Pool: pool, Logger: logger}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("lowstock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Limit <= 0 {
		payload.Limit = 50
	}

	logger := j.logger()

	rows, err := j.Pool.Query(ctx, `
SELECT id, name, stock, min_stock
FROM products
WHERE active AND stock <= min_stock
ORDER BY stock - min_stock
LIMIT $1`, payload.Limit)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var id, stock, minStock int64
		var name string
		if err := rows.Scan(&id, &name, &stock, &minStock); err != nil {
			return err
		}
		flagged++
		logger.Warn("low stock",
			slog.Int64("product_id", id),
			slog.String("name", name),
			slog.Int64("stock", stock),
			slog.Int64("min_stock", minStock))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	logger.Info("completed low stock scan", slog.Int("flagged", flagged))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskTypeLowStockScan))
}
