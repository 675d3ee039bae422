package inventory

import (
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// Product is one menu item. Price is integer rupiah.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int64     `json:"stock"`
	MinStock  int64     `json:"minStock"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsLowStock reports whether the product has fallen to or below its
// restock threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// AdjustInput describes a manual stock correction.
type AdjustInput struct {
	ProductID int64
	Delta     int64
	Reason    string
	ActorID   int64
}

// ErrNegativeStock indicates an adjustment would take stock below zero.
var ErrNegativeStock = shared.NewStateError("penyesuaian ditolak, stok tidak boleh negatif")
