package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = "id, code, business_day_id, table_number, status, payment_status, total, created_by, created_at, updated_at"

// Create inserts the order and its item snapshots in one transaction.
// Product names and prices are copied from the catalog at order time.
func (r *Repository) Create(ctx context.Context, in CreateOrderInput, dayID int64, code string) (Order, error) {
	var order Order
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		items, total, err := snapshotItems(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx, `
INSERT INTO orders (code, business_day_id, table_number, status, payment_status, total, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING `+orderColumns,
			code, dayID, in.TableNumber, StatusPending, PaymentStatusUnpaid, total, in.ActorID,
		).Scan(&order.ID, &order.Code, &order.BusinessDayID, &order.TableNumber, &order.Status,
			&order.PaymentStatus, &order.Total, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_orders_code" {
				return ErrDuplicateCode
			}
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, name, price, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`, order.ID, items[i].ProductID, items[i].Name, items[i].Price, items[i].Quantity).Scan(&items[i].ID)
			if err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

func snapshotItems(ctx context.Context, tx pgx.Tx, inputs []OrderItemInput) ([]OrderItem, int64, error) {
	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		ids = append(ids, in.ProductID)
	}
	rows, err := tx.Query(ctx, `SELECT id, name, price FROM products WHERE active AND id = ANY($1)`, ids)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	type catalogEntry struct {
		name  string
		price int64
	}
	catalog := make(map[int64]catalogEntry, len(ids))
	for rows.Next() {
		var id int64
		var entry catalogEntry
		if err := rows.Scan(&id, &entry.name, &entry.price); err != nil {
			return nil, 0, err
		}
		catalog[id] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	items := make([]OrderItem, 0, len(inputs))
	for _, in := range inputs {
		entry, ok := catalog[in.ProductID]
		if !ok {
			return nil, 0, ErrUnknownProduct
		}
		items = append(items, OrderItem{
			ProductID: in.ProductID,
			Name:      entry.name,
			Price:     entry.price,
			Quantity:  in.Quantity,
		})
		total += entry.price * in.Quantity
	}
	return items, total, nil
}

// GetByID loads an order with its items.
func (r *Repository) GetByID(ctx context.Context, id int64) (Order, error) {
	var order Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).
		Scan(&order.ID, &order.Code, &order.BusinessDayID, &order.TableNumber, &order.Status,
			&order.PaymentStatus, &order.Total, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, name, price, quantity FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity); err != nil {
			return Order{}, err
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Order{}, err
	}
	return order, nil
}

// List returns the day's orders, optionally filtered by status.
func (r *Repository) List(ctx context.Context, dayID int64, status Status) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE business_day_id = $1`
	args := []any{dayID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Order
	for rows.Next() {
		var order Order
		if err := rows.Scan(&order.ID, &order.Code, &order.BusinessDayID, &order.TableNumber, &order.Status,
			&order.PaymentStatus, &order.Total, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Writes are conditioned on the owning day still being open in the same
// statement, so a close that lands between the service-level check and
// the write makes the write a no-op instead of mutating a closed day.
const openDayCondition = ` AND EXISTS (
	SELECT 1 FROM business_days d
	WHERE d.id = orders.business_day_id AND d.closed_at IS NULL
)`

// UpdateStatus moves the order to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`+openDayCondition, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyWriteFailure(ctx, id)
	}
	return nil
}

// SettlePayment marks the order total as settled.
func (r *Repository) SettlePayment(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE orders SET payment_status = $2, paid_at = $3, updated_at = now()
WHERE id = $1`+openDayCondition, id, PaymentStatusSettled, paidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyWriteFailure(ctx, id)
	}
	return nil
}

func (r *Repository) classifyWriteFailure(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	return ErrDayClosed
}
