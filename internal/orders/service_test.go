package orders

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

type stubStore struct {
	createFn        func(ctx context.Context, in CreateOrderInput, dayID int64, code string) (Order, error)
	getByIDFn       func(ctx context.Context, id int64) (Order, error)
	listFn          func(ctx context.Context, dayID int64, status Status) ([]Order, error)
	updateStatusFn  func(ctx context.Context, id int64, status Status) error
	settlePaymentFn func(ctx context.Context, id int64, paidAt time.Time) error
}

func (s *stubStore) Create(ctx context.Context, in CreateOrderInput, dayID int64, code string) (Order, error) {
	return s.createFn(ctx, in, dayID, code)
}

func (s *stubStore) GetByID(ctx context.Context, id int64) (Order, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubStore) List(ctx context.Context, dayID int64, status Status) ([]Order, error) {
	return s.listFn(ctx, dayID, status)
}

func (s *stubStore) UpdateStatus(ctx context.Context, id int64, status Status) error {
	return s.updateStatusFn(ctx, id, status)
}

func (s *stubStore) SettlePayment(ctx context.Context, id int64, paidAt time.Time) error {
	return s.settlePaymentFn(ctx, id, paidAt)
}

type stubDays struct {
	ensureOpenDayFn  func(ctx context.Context) (BusinessDayRef, error)
	currentOpenDayFn func(ctx context.Context) (BusinessDayRef, error)
	ensureDayOpenFn  func(ctx context.Context, dayID int64) error
}

func (s *stubDays) EnsureOpenDay(ctx context.Context) (BusinessDayRef, error) {
	return s.ensureOpenDayFn(ctx)
}

func (s *stubDays) CurrentOpenDay(ctx context.Context) (BusinessDayRef, error) {
	return s.currentOpenDayFn(ctx)
}

func (s *stubDays) EnsureDayOpen(ctx context.Context, dayID int64) error {
	return s.ensureDayOpenFn(ctx, dayID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCreateOpensBusinessDayLazily(t *testing.T) {
	opened := false
	days := &stubDays{
		ensureOpenDayFn: func(ctx context.Context) (BusinessDayRef, error) {
			opened = true
			return BusinessDayRef{ID: 7}, nil
		},
	}
	store := &stubStore{
		createFn: func(ctx context.Context, in CreateOrderInput, dayID int64, code string) (Order, error) {
			require.Equal(t, int64(7), dayID)
			require.NotEmpty(t, code)
			return Order{ID: 1, Code: code, BusinessDayID: dayID, Status: StatusPending, Total: 25000}, nil
		},
	}
	svc := NewService(store, days, testLogger())

	order, err := svc.Create(context.Background(), CreateOrderInput{
		TableNumber: 4,
		Items:       []OrderItemInput{{ProductID: 1, Quantity: 2}},
		ActorID:     10,
	})
	require.NoError(t, err)
	require.True(t, opened)
	require.Equal(t, StatusPending, order.Status)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	svc := NewService(&stubStore{}, &stubDays{}, testLogger())
	_, err := svc.Create(context.Background(), CreateOrderInput{TableNumber: 2})
	require.Error(t, err)
}

func TestListTodayNeverOpensDay(t *testing.T) {
	ensureCalls := 0
	days := &stubDays{
		ensureOpenDayFn: func(ctx context.Context) (BusinessDayRef, error) {
			ensureCalls++
			return BusinessDayRef{ID: 7}, nil
		},
		currentOpenDayFn: func(ctx context.Context) (BusinessDayRef, error) {
			return BusinessDayRef{ID: 7}, nil
		},
	}
	store := &stubStore{
		listFn: func(ctx context.Context, dayID int64, status Status) ([]Order, error) {
			require.Equal(t, int64(7), dayID)
			return []Order{{ID: 1, BusinessDayID: dayID}}, nil
		},
	}
	svc := NewService(store, days, testLogger())

	list, err := svc.ListToday(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Zero(t, ensureCalls)
}

func TestListTodayEmptyAfterClose(t *testing.T) {
	ensureCalls := 0
	days := &stubDays{
		ensureOpenDayFn: func(ctx context.Context) (BusinessDayRef, error) {
			ensureCalls++
			return BusinessDayRef{ID: 8}, nil
		},
		currentOpenDayFn: func(ctx context.Context) (BusinessDayRef, error) {
			return BusinessDayRef{}, shared.NewStateError("hari usaha sudah ditutup")
		},
	}
	svc := NewService(&stubStore{}, days, testLogger())

	list, err := svc.ListToday(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, list)
	require.Zero(t, ensureCalls)
}

func TestUpdateStatusRejectsClosedDay(t *testing.T) {
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: StatusPending}, nil
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error {
			return shared.NewStateError("hari usaha sudah ditutup, transaksi tidak dapat diubah")
		},
	}
	svc := NewService(store, days, testLogger())

	_, err := svc.UpdateStatus(context.Background(), 1, StatusPreparing)
	require.True(t, shared.IsStateError(err))
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: StatusCompleted}, nil
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error { return nil },
	}
	svc := NewService(store, days, testLogger())

	_, err := svc.UpdateStatus(context.Background(), 1, StatusPreparing)
	require.True(t, shared.IsStateError(err))
	require.EqualError(t, err, "status pesanan tidak dapat diubah dari COMPLETED ke PREPARING")
}

func TestUpdateStatusPropagatesLostRaceWithClose(t *testing.T) {
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: StatusPending}, nil
		},
		updateStatusFn: func(ctx context.Context, id int64, status Status) error {
			// The day closed between the load and the write; the
			// conditional update matched no row.
			return ErrDayClosed
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error { return nil },
	}
	svc := NewService(store, days, testLogger())

	_, err := svc.UpdateStatus(context.Background(), 1, StatusPreparing)
	require.True(t, shared.IsStateError(err))
}

func TestUpdateStatusFollowsKitchenFlow(t *testing.T) {
	current := StatusPending
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: current}, nil
		},
		updateStatusFn: func(ctx context.Context, id int64, status Status) error {
			current = status
			return nil
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error { return nil },
	}
	svc := NewService(store, days, testLogger())

	for _, next := range []Status{StatusPreparing, StatusReady, StatusServed, StatusCompleted} {
		order, err := svc.UpdateStatus(context.Background(), 1, next)
		require.NoError(t, err)
		require.Equal(t, next, order.Status)
	}
}

func TestSettleRejectsDoublePayment(t *testing.T) {
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: StatusServed, PaymentStatus: PaymentStatusSettled}, nil
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error { return nil },
	}
	svc := NewService(store, days, testLogger())

	_, err := svc.Settle(context.Background(), 1)
	require.True(t, shared.IsStateError(err))
}

func TestSettleRecordsPaymentTime(t *testing.T) {
	paidAt := time.Date(2024, 9, 1, 20, 30, 0, 0, time.UTC)
	var recorded time.Time
	store := &stubStore{
		getByIDFn: func(ctx context.Context, id int64) (Order, error) {
			return Order{ID: id, BusinessDayID: 3, Status: StatusServed, PaymentStatus: PaymentStatusUnpaid}, nil
		},
		settlePaymentFn: func(ctx context.Context, id int64, at time.Time) error {
			recorded = at
			return nil
		},
	}
	days := &stubDays{
		ensureDayOpenFn: func(ctx context.Context, dayID int64) error { return nil },
	}
	svc := NewService(store, days, testLogger())
	svc.WithNow(func() time.Time { return paidAt })

	order, err := svc.Settle(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, PaymentStatusSettled, order.PaymentStatus)
	require.Equal(t, paidAt, recorded)
}
