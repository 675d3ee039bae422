package orders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/warungpos/internal/shared"
)

// OrderStore abstracts order persistence.
type OrderStore interface {
	Create(ctx context.Context, in CreateOrderInput, dayID int64, code string) (Order, error)
	GetByID(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context, dayID int64, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	SettlePayment(ctx context.Context, id int64, paidAt time.Time) error
}

// DayGuard resolves the active business day and rejects writes on closed
// days. CurrentOpenDay is read-only; only EnsureOpenDay may create a day.
type DayGuard interface {
	EnsureOpenDay(ctx context.Context) (BusinessDayRef, error)
	CurrentOpenDay(ctx context.Context) (BusinessDayRef, error)
	EnsureDayOpen(ctx context.Context, dayID int64) error
}

// BusinessDayRef is the slice of the business day orders care about.
type BusinessDayRef struct {
	ID int64
}

type Service struct {
	store  OrderStore
	days   DayGuard
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store OrderStore, days DayGuard, logger *slog.Logger) *Service {
	return &Service{store: store, days: days, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	s.now = now
}

// Create opens today's business day if needed and records the order.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}
	day, err := s.days.EnsureOpenDay(ctx)
	if err != nil {
		return Order{}, err
	}
	order, err := s.store.Create(ctx, in, day.ID, newOrderCode())
	if err != nil {
		return Order{}, err
	}
	s.logger.Info("order created",
		slog.Int64("order_id", order.ID),
		slog.String("code", order.Code),
		slog.Int64("total", order.Total))
	return order, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.store.GetByID(ctx, id)
}

// ListToday lists orders on the current open day, optionally filtered by
// status. Listing is a pure read: when no day is open it returns an empty
// list instead of opening one.
func (s *Service) ListToday(ctx context.Context, status Status) ([]Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	day, err := s.days.CurrentOpenDay(ctx)
	if err != nil {
		if shared.IsStateError(err) {
			return []Order{}, nil
		}
		return nil, err
	}
	return s.store.List(ctx, day.ID, status)
}

// UpdateStatus moves an order along the kitchen flow. Writes on a closed
// business day are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status) (Order, error) {
	if !next.Valid() {
		return Order{}, ErrInvalidStatus
	}
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.days.EnsureDayOpen(ctx, order.BusinessDayID); err != nil {
		return Order{}, err
	}
	if !order.Status.CanTransition(next) {
		return Order{}, shared.NewStateError("status pesanan tidak dapat diubah dari %s ke %s", order.Status, next)
	}
	if err := s.store.UpdateStatus(ctx, id, next); err != nil {
		return Order{}, err
	}
	order.Status = next
	return order, nil
}

// Settle records payment for an order.
func (s *Service) Settle(ctx context.Context, id int64) (Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := s.days.EnsureDayOpen(ctx, order.BusinessDayID); err != nil {
		return Order{}, err
	}
	if order.PaymentStatus == PaymentStatusSettled {
		return Order{}, shared.NewStateError("pesanan sudah dibayar")
	}
	if order.Status == StatusCancelled {
		return Order{}, shared.NewStateError("pesanan yang dibatalkan tidak dapat dibayar")
	}
	if err := s.store.SettlePayment(ctx, id, s.now()); err != nil {
		return Order{}, err
	}
	order.PaymentStatus = PaymentStatusSettled
	return order, nil
}

func newOrderCode() string {
	id := uuid.New().String()
	return "ORD-" + strings.ToUpper(id[:8])
}
