package inventory

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

type memStore struct {
	products map[int64]*Product
}

func newMemStore(products ...Product) *memStore {
	m := &memStore{products: make(map[int64]*Product)}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *memStore) List(context.Context) ([]Product, error) {
	var result []Product
	for _, p := range m.products {
		if p.Active {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *memStore) ListLowStock(context.Context) ([]Product, error) {
	var result []Product
	for _, p := range m.products {
		if p.Active && p.IsLowStock() {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *memStore) Adjust(_ context.Context, in AdjustInput) (Product, error) {
	p, ok := m.products[in.ProductID]
	if !ok {
		return Product{}, shared.ErrNotFound
	}
	if p.Stock+in.Delta < 0 {
		return Product{}, ErrNegativeStock
	}
	p.Stock += in.Delta
	return *p, nil
}

func TestAdjustRejectsNegativeStock(t *testing.T) {
	store := newMemStore(Product{ID: 1, Name: "Es Teh", Stock: 3, MinStock: 5, Active: true})
	svc := NewService(store, slog.New(slog.DiscardHandler))

	_, err := svc.Adjust(context.Background(), AdjustInput{ProductID: 1, Delta: -4, Reason: "koreksi"})
	require.True(t, shared.IsStateError(err))

	product, err := svc.Adjust(context.Background(), AdjustInput{ProductID: 1, Delta: -3, Reason: "koreksi"})
	require.NoError(t, err)
	require.Equal(t, int64(0), product.Stock)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	svc := NewService(newMemStore(), slog.New(slog.DiscardHandler))
	_, err := svc.Adjust(context.Background(), AdjustInput{ProductID: 1, Delta: 0, Reason: "koreksi"})
	require.Error(t, err)
}

func TestLowStockBoundary(t *testing.T) {
	store := newMemStore(
		Product{ID: 1, Name: "Es Teh", Stock: 5, MinStock: 5, Active: true},
		Product{ID: 2, Name: "Nasi Goreng", Stock: 6, MinStock: 5, Active: true},
		Product{ID: 3, Name: "Kopi", Stock: 0, MinStock: 5, Active: false},
	)
	svc := NewService(store, slog.New(slog.DiscardHandler))

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, int64(1), low[0].ID)
}
