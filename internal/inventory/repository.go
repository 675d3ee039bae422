package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
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

const productColumns = "id, name, price, stock, min_stock, active, updated_at"

// List returns active products ordered by name.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// ListLowStock returns active products at or below their threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE active AND stock <= min_stock ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

// Adjust applies a stock delta. The stock check and update happen in one
// statement so concurrent adjustments cannot drive stock negative.
func (r *Repository) Adjust(ctx context.Context, in AdjustInput) (Product, error) {
	var product Product
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
UPDATE products SET stock = stock + $2, updated_at = now()
WHERE id = $1 AND stock + $2 >= 0
RETURNING `+productColumns, in.ProductID, in.Delta).
			Scan(&product.ID, &product.Name, &product.Price, &product.Stock, &product.MinStock, &product.Active, &product.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyAdjustFailure(ctx, in.ProductID)
			}
			return err
		}

		_, err = tx.Exec(ctx, `
INSERT INTO stock_adjustments (product_id, delta, reason, adjusted_by, adjusted_at)
VALUES ($1, $2, $3, $4, now())`, in.ProductID, in.Delta, in.Reason, in.ActorID)
		return err
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (r *Repository) classifyAdjustFailure(ctx context.Context, productID int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return shared.ErrNotFound
	}
	return ErrNegativeStock
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	var result []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.MinStock, &p.Active, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
