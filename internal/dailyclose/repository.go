package dailyclose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/shared"
)

// Store is the persistence surface the service depends on. Read methods run
// against the pool; Execute and Reopen mutate through WithTx.
type Store interface {
	OpenDay(ctx context.Context) (BusinessDay, error)
	LastClosedDay(ctx context.Context) (BusinessDay, error)
	EnsureOpenDay(ctx context.Context) (BusinessDay, error)
	DayByID(ctx context.Context, id int64) (BusinessDay, error)
	CountPendingOrders(ctx context.Context, dayID int64) (int, error)
	CountOpenShifts(ctx context.Context) (int, error)
	CountPendingPayments(ctx context.Context, dayID int64) (int, error)
	ListLowStock(ctx context.Context) ([]LowStockProduct, error)
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
}

// TxStore exposes the transactional operations of the close and reopen
// transitions. All reads observe the transaction snapshot.
type TxStore interface {
	LockOpenDay(ctx context.Context) (BusinessDay, error)
	LockLatestClosedDay(ctx context.Context) (BusinessDay, error)
	CountPendingOrders(ctx context.Context, dayID int64) (int, error)
	CountOpenShifts(ctx context.Context) (int, error)
	CountPendingPayments(ctx context.Context, dayID int64) (int, error)
	ListLowStock(ctx context.Context) ([]LowStockProduct, error)
	AggregateStatistics(ctx context.Context, dayID int64, topN int) (CloseStatistics, error)
	CloseDay(ctx context.Context, dayID int64, closedAt time.Time, closedBy int64, stats CloseStatistics) error
	ReopenDay(ctx context.Context, dayID int64) error
}

// Repository persists business days in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("dailyclose: repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txStore{q: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const dayColumns = "id, opened_at, closed_at, closed_by, stats"

// OpenDay returns the running day, or ErrNoOpenDay when every day is closed.
func (r *Repository) OpenDay(ctx context.Context) (BusinessDay, error) {
	return scanDay(r.pool.QueryRow(ctx, `SELECT `+dayColumns+` FROM business_days WHERE closed_at IS NULL LIMIT 1`), ErrNoOpenDay)
}

// LastClosedDay returns the most recently closed day.
func (r *Repository) LastClosedDay(ctx context.Context) (BusinessDay, error) {
	return scanDay(r.pool.QueryRow(ctx, `SELECT `+dayColumns+` FROM business_days WHERE closed_at IS NOT NULL ORDER BY closed_at DESC LIMIT 1`), shared.ErrNotFound)
}

// DayByID loads a single day.
func (r *Repository) DayByID(ctx context.Context, id int64) (BusinessDay, error) {
	return scanDay(r.pool.QueryRow(ctx, `SELECT `+dayColumns+` FROM business_days WHERE id = $1`, id), shared.ErrNotFound)
}

// EnsureOpenDay returns the running day, creating it when none exists. The
// partial unique index on open rows makes concurrent creation race-safe; a
// loser re-reads the winner's row.
func (r *Repository) EnsureOpenDay(ctx context.Context) (BusinessDay, error) {
	day, err := r.OpenDay(ctx)
	if err == nil {
		return day, nil
	}
	if !shared.IsStateError(err) {
		return BusinessDay{}, err
	}

	day, err = scanDay(r.pool.QueryRow(ctx, `
INSERT INTO business_days (opened_at)
SELECT now()
WHERE NOT EXISTS (SELECT 1 FROM business_days WHERE closed_at IS NULL)
RETURNING `+dayColumns), ErrNoOpenDay)
	if err == nil {
		return day, nil
	}
	var pgErr *pgconn.PgError
	if shared.IsStateError(err) || (errors.As(err, &pgErr) && pgErr.Code == "23505") {
		// Lost the creation race; the open row now exists.
		return r.OpenDay(ctx)
	}
	return BusinessDay{}, err
}

// CountPendingOrders counts the day's orders still in a non-terminal status.
func (r *Repository) CountPendingOrders(ctx context.Context, dayID int64) (int, error) {
	return countPendingOrders(ctx, r.pool, dayID)
}

// CountOpenShifts counts shifts with no recorded end time.
func (r *Repository) CountOpenShifts(ctx context.Context) (int, error) {
	return countOpenShifts(ctx, r.pool)
}

// CountPendingPayments counts the day's orders whose payment is unsettled.
func (r *Repository) CountPendingPayments(ctx context.Context, dayID int64) (int, error) {
	return countPendingPayments(ctx, r.pool, dayID)
}

// ListLowStock returns products at or below their minimum threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]LowStockProduct, error) {
	return listLowStock(ctx, r.pool)
}

type txStore struct {
	q pgx.Tx
}

func (t *txStore) LockOpenDay(ctx context.Context) (BusinessDay, error) {
	return scanDay(t.q.QueryRow(ctx, `SELECT `+dayColumns+` FROM business_days WHERE closed_at IS NULL LIMIT 1 FOR UPDATE`), ErrNoOpenDay)
}

func (t *txStore) LockLatestClosedDay(ctx context.Context) (BusinessDay, error) {
	return scanDay(t.q.QueryRow(ctx, `SELECT `+dayColumns+` FROM business_days WHERE closed_at IS NOT NULL ORDER BY closed_at DESC LIMIT 1 FOR UPDATE`), ErrNoClosedDay)
}

func (t *txStore) CountPendingOrders(ctx context.Context, dayID int64) (int, error) {
	return countPendingOrders(ctx, t.q, dayID)
}

func (t *txStore) CountOpenShifts(ctx context.Context) (int, error) {
	return countOpenShifts(ctx, t.q)
}

func (t *txStore) CountPendingPayments(ctx context.Context, dayID int64) (int, error) {
	return countPendingPayments(ctx, t.q, dayID)
}

func (t *txStore) ListLowStock(ctx context.Context) ([]LowStockProduct, error) {
	return listLowStock(ctx, t.q)
}

// AggregateStatistics computes the day's snapshot: settled sales total,
// order count, and the top products by quantity with a deterministic
// tie-break on product id.
func (t *txStore) AggregateStatistics(ctx context.Context, dayID int64, topN int) (CloseStatistics, error) {
	var stats CloseStatistics
	err := t.q.QueryRow(ctx, `
SELECT COALESCE(SUM(total) FILTER (WHERE payment_status = 'SETTLED'), 0), COUNT(*)
FROM orders
WHERE business_day_id = $1 AND status <> 'CANCELLED'`, dayID).Scan(&stats.TotalSales, &stats.TotalOrders)
	if err != nil {
		return CloseStatistics{}, err
	}

	rows, err := t.q.Query(ctx, `
SELECT oi.product_id, p.name, SUM(oi.quantity)::bigint AS qty
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN products p ON p.id = oi.product_id
WHERE o.business_day_id = $1 AND o.status <> 'CANCELLED'
GROUP BY oi.product_id, p.name`, dayID)
	if err != nil {
		return CloseStatistics{}, err
	}
	defer rows.Close()
	var sales []ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.Quantity); err != nil {
			return CloseStatistics{}, err
		}
		sales = append(sales, ps)
	}
	if err := rows.Err(); err != nil {
		return CloseStatistics{}, err
	}
	stats.TopProducts = RankTopProducts(sales, topN)
	return stats, nil
}

// CloseDay stamps the close, conditioned on the row still being open. The
// statistics write and the closed-at stamp are a single statement, so the
// transition is all-or-nothing.
func (t *txStore) CloseDay(ctx context.Context, dayID int64, closedAt time.Time, closedBy int64, stats CloseStatistics) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, `
UPDATE business_days
SET closed_at = $2, closed_by = $3, stats = $4
WHERE id = $1 AND closed_at IS NULL`, dayID, closedAt, closedBy, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoOpenDay
	}
	return nil
}

// ReopenDay clears the close stamp and discards the statistics snapshot.
func (t *txStore) ReopenDay(ctx context.Context, dayID int64) error {
	tag, err := t.q.Exec(ctx, `
UPDATE business_days
SET closed_at = NULL, closed_by = NULL, stats = NULL
WHERE id = $1 AND closed_at IS NOT NULL`, dayID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoClosedDay
	}
	return nil
}

func scanDay(row pgx.Row, missing error) (BusinessDay, error) {
	var day BusinessDay
	var stats []byte
	if err := row.Scan(&day.ID, &day.OpenedAt, &day.ClosedAt, &day.ClosedBy, &stats); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusinessDay{}, missing
		}
		return BusinessDay{}, err
	}
	if len(stats) > 0 {
		day.Stats = &CloseStatistics{}
		if err := json.Unmarshal(stats, day.Stats); err != nil {
			return BusinessDay{}, err
		}
	}
	return day, nil
}

func countPendingOrders(ctx context.Context, q querier, dayID int64) (int, error) {
	var count int
	err := q.QueryRow(ctx, `
SELECT COUNT(*) FROM orders
WHERE business_day_id = $1 AND status NOT IN ('SERVED','COMPLETED','CANCELLED')`, dayID).Scan(&count)
	return count, err
}

func countOpenShifts(ctx context.Context, q querier) (int, error) {
	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM shifts WHERE ended_at IS NULL`).Scan(&count)
	return count, err
}

func countPendingPayments(ctx context.Context, q querier, dayID int64) (int, error) {
	var count int
	err := q.QueryRow(ctx, `
SELECT COUNT(*) FROM orders
WHERE business_day_id = $1 AND payment_status <> 'SETTLED' AND status <> 'CANCELLED'`, dayID).Scan(&count)
	return count, err
}

func listLowStock(ctx context.Context, q querier) ([]LowStockProduct, error) {
	rows, err := q.Query(ctx, `
SELECT id, name, stock, min_stock FROM products
WHERE active AND stock <= min_stock
ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []LowStockProduct
	for rows.Next() {
		var p LowStockProduct
		if err := rows.Scan(&p.ProductID, &p.Name, &p.CurrentStock, &p.MinStock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
