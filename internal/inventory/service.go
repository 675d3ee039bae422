package inventory

import (
	"context"
	"errors"
	"log/slog"
)

// ProductStore abstracts product persistence.
type ProductStore interface {
	List(ctx context.Context) ([]Product, error)
	ListLowStock(ctx context.Context) ([]Product, error)
	Adjust(ctx context.Context, in AdjustInput) (Product, error)
}

type Service struct {
	store  ProductStore
	logger *slog.Logger
}

func NewService(store ProductStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns the active catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.store.List(ctx)
}

// ListLowStock returns products that need restocking.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.store.ListLowStock(ctx)
}

// Adjust applies a manual stock correction and logs it.
func (s *Service) Adjust(ctx context.Context, in AdjustInput) (Product, error) {
	if in.Delta == 0 {
		return Product{}, errors.New("inventory: delta must be non-zero")
	}
	product, err := s.store.Adjust(ctx, in)
	if err != nil {
		return Product{}, err
	}
	s.logger.Info("stock adjusted",
		slog.Int64("product_id", in.ProductID),
		slog.Int64("delta", in.Delta),
		slog.String("reason", in.Reason),
		slog.Int64("actor_id", in.ActorID))
	return product, nil
}
