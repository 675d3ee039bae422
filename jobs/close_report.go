package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CloseReportJob archives the end-of-day summary after a successful close.
type CloseReportJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewCloseReportJob initialises the close report handler.
func NewCloseReportJob(pool *pgxpool.Pool, logger *slog.Logger) *CloseReportJob {
	return &CloseReportJob{Pool: pool, Logger: logger}
}

// Handle persists the report row and logs the summary.
func (j *CloseReportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("close report: handler not configured")
	}
	var payload CloseReportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger().With(slog.Int64("day_id", payload.DayID))

	top, err := json.Marshal(payload.TopProducts)
	if err != nil {
		return asynq.SkipRetry
	}
	_, err = j.Pool.Exec(ctx, `
INSERT INTO close_reports (business_day_id, closed_at, total_sales, total_orders, top_products, created_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (business_day_id) DO UPDATE
SET closed_at = EXCLUDED.closed_at,
    total_sales = EXCLUDED.total_sales,
    total_orders = EXCLUDED.total_orders,
    top_products = EXCLUDED.top_products`,
		payload.DayID, payload.ClosedAt, payload.TotalSales, payload.TotalOrders, top)
	if err != nil {
		logger.Error("store close report", slog.Any("error", err))
		return err
	}

	logger.Info("close report archived",
		slog.Int64("total_sales", payload.TotalSales),
		slog.Int("total_orders", payload.TotalOrders),
		slog.Int("top_products", len(payload.TopProducts)))
	return nil
}

func (j *CloseReportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeCloseReport))
	}
	return slog.Default().With(slog.String("job", TaskTypeCloseReport))
}
