package dailyclose

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warungpos/warungpos/internal/shared"
)

// ReportEnqueuer schedules the end-of-day report job after a close.
type ReportEnqueuer interface {
	EnqueueCloseReport(ctx context.Context, day BusinessDay) error
}

// checkSource is the read surface shared by the pool-backed validator and
// the tx-backed re-check inside the close executor.
type checkSource interface {
	CountPendingOrders(ctx context.Context, dayID int64) (int, error)
	CountOpenShifts(ctx context.Context) (int, error)
	CountPendingPayments(ctx context.Context, dayID int64) (int, error)
	ListLowStock(ctx context.Context) ([]LowStockProduct, error)
}

// Service orchestrates the daily-close workflow.
type Service struct {
	store   Store
	cache   *StatusCache
	reports ReportEnqueuer
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a Service instance.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithCache attaches the Redis status cache.
func (s *Service) WithCache(cache *StatusCache) {
	s.cache = cache
}

// WithReports attaches the close-report enqueuer.
func (s *Service) WithReports(reports ReportEnqueuer) {
	s.reports = reports
}

var rupiah = message.NewPrinter(language.Indonesian)

// Status answers the read-only close status query. Safe to call at any
// time, including concurrently with a close in progress.
func (s *Service) Status(ctx context.Context) (CloseStatus, error) {
	return s.cache.Fetch(ctx, s.loadStatus)
}

func (s *Service) loadStatus(ctx context.Context) (CloseStatus, error) {
	var status CloseStatus

	_, err := s.store.OpenDay(ctx)
	switch {
	case err == nil:
		status.CanClose = true
	case errors.Is(err, ErrNoOpenDay):
		status.IsClosed = true
		status.Reason = "hari usaha sudah ditutup"
	default:
		return CloseStatus{}, err
	}

	last, err := s.store.LastClosedDay(ctx)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return CloseStatus{}, err
		}
		if status.IsClosed {
			// Nothing was ever opened or closed.
			status.Reason = "belum ada transaksi hari ini"
		}
	} else {
		status.LastCloseDate = last.ClosedAt
	}
	return status, nil
}

// Validate runs the four pre-close checks concurrently and joins on all of
// them before returning. A failed data source aborts the whole verdict.
func (s *Service) Validate(ctx context.Context) (ValidationVerdict, error) {
	day, err := s.store.OpenDay(ctx)
	if err != nil {
		return ValidationVerdict{}, err
	}

	var verdict ValidationVerdict
	var g errgroup.Group
	g.Go(func() error {
		count, err := s.store.CountPendingOrders(ctx, day.ID)
		if err != nil {
			return shared.NewValidationError("pesanan", err)
		}
		verdict.PendingOrders = pendingOrdersResult(count)
		return nil
	})
	g.Go(func() error {
		count, err := s.store.CountOpenShifts(ctx)
		if err != nil {
			return shared.NewValidationError("shift", err)
		}
		verdict.OpenShifts = openShiftsResult(count)
		return nil
	})
	g.Go(func() error {
		count, err := s.store.CountPendingPayments(ctx, day.ID)
		if err != nil {
			return shared.NewValidationError("pembayaran", err)
		}
		verdict.PendingPayments = pendingPaymentsResult(count)
		return nil
	})
	g.Go(func() error {
		products, err := s.store.ListLowStock(ctx)
		if err != nil {
			return shared.NewValidationError("stok", err)
		}
		verdict.LowStock = lowStockResult(products)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ValidationVerdict{}, err
	}

	verdict.Finalise()
	return verdict, nil
}

// errCloseRejected aborts the close transaction when the re-check fails;
// the verdict itself travels back through the captured result.
var errCloseRejected = errors.New("dailyclose: close rejected by validation")

// Execute performs the close transition. The validation re-check, the
// statistics aggregation, and the close stamp all happen inside one
// transaction conditioned on the day still being open, so a concurrent
// close attempt serialises and the loser observes a state error.
func (s *Service) Execute(ctx context.Context, actor shared.Actor) (CloseResult, error) {
	var result CloseResult
	var closedDay BusinessDay
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		day, err := tx.LockOpenDay(ctx)
		if err != nil {
			return err
		}

		verdict, err := buildVerdict(ctx, tx, day.ID)
		if err != nil {
			return err
		}
		if !verdict.CanClose {
			result = CloseResult{Success: false, Message: rejectionMessage(verdict)}
			return errCloseRejected
		}

		stats, err := tx.AggregateStatistics(ctx, day.ID, TopProductsLimit)
		if err != nil {
			return err
		}
		closedAt := s.now()
		if err := tx.CloseDay(ctx, day.ID, closedAt, actor.ID, stats); err != nil {
			return err
		}

		day.Stats = &stats
		day.ClosedAt = &closedAt
		day.ClosedBy = &actor.ID
		closedDay = day
		result = CloseResult{
			Success: true,
			Message: rupiah.Sprintf("Tutup buku berhasil. Total penjualan Rp%d dari %d pesanan.", stats.TotalSales, stats.TotalOrders),
			Stats:   &stats,
		}
		return nil
	})
	switch {
	case err == nil:
		s.cache.Invalidate(ctx)
		s.notifyClosed(ctx, closedDay)
		return result, nil
	case errors.Is(err, errCloseRejected):
		return result, nil
	case shared.IsStateError(err), shared.IsValidationError(err):
		return CloseResult{}, err
	default:
		// Rollback guarantees the day row is untouched; retrying is safe.
		if s.logger != nil {
			s.logger.Error("execute close", slog.Any("error", err))
		}
		return CloseResult{Success: false, Message: "tutup buku gagal, tidak ada perubahan yang disimpan"}, nil
	}
}

// Reopen reverses the latest close. Restricted to administrators; no
// validation preconditions apply.
func (s *Service) Reopen(ctx context.Context, actor shared.Actor) error {
	if !actor.IsAdmin() {
		return shared.NewPermissionError("hanya administrator yang dapat membuka kembali hari usaha")
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if _, err := tx.LockOpenDay(ctx); err == nil {
			return ErrNoClosedDay
		} else if !errors.Is(err, ErrNoOpenDay) {
			return err
		}
		day, err := tx.LockLatestClosedDay(ctx)
		if err != nil {
			return err
		}
		return tx.ReopenDay(ctx, day.ID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	if s.logger != nil {
		s.logger.Info("business day reopened", slog.Int64("actor_id", actor.ID))
	}
	return nil
}

// EnsureOpenDay returns the running day, lazily creating it. Called by the
// order subsystem when the first order of a new day is placed.
func (s *Service) EnsureOpenDay(ctx context.Context) (BusinessDay, error) {
	return s.store.EnsureOpenDay(ctx)
}

// CurrentDay returns the running day without creating one. Reads that
// merely observe the day go through here so they never resurrect a
// closed day. Returns ErrNoOpenDay when nothing is open.
func (s *Service) CurrentDay(ctx context.Context) (BusinessDay, error) {
	return s.store.OpenDay(ctx)
}

// EnsureDayOpen validates that the given day still accepts writes.
func (s *Service) EnsureDayOpen(ctx context.Context, dayID int64) error {
	day, err := s.store.DayByID(ctx, dayID)
	if err != nil {
		return err
	}
	if day.IsClosed() {
		return ErrDayClosed
	}
	return nil
}

func (s *Service) notifyClosed(ctx context.Context, day BusinessDay) {
	if s.reports == nil {
		return
	}
	if err := s.reports.EnqueueCloseReport(ctx, day); err != nil && s.logger != nil {
		s.logger.Warn("enqueue close report", slog.Any("error", err))
	}
}

func buildVerdict(ctx context.Context, src checkSource, dayID int64) (ValidationVerdict, error) {
	var verdict ValidationVerdict

	count, err := src.CountPendingOrders(ctx, dayID)
	if err != nil {
		return ValidationVerdict{}, shared.NewValidationError("pesanan", err)
	}
	verdict.PendingOrders = pendingOrdersResult(count)

	count, err = src.CountOpenShifts(ctx)
	if err != nil {
		return ValidationVerdict{}, shared.NewValidationError("shift", err)
	}
	verdict.OpenShifts = openShiftsResult(count)

	count, err = src.CountPendingPayments(ctx, dayID)
	if err != nil {
		return ValidationVerdict{}, shared.NewValidationError("pembayaran", err)
	}
	verdict.PendingPayments = pendingPaymentsResult(count)

	products, err := src.ListLowStock(ctx)
	if err != nil {
		return ValidationVerdict{}, shared.NewValidationError("stok", err)
	}
	verdict.LowStock = lowStockResult(products)

	verdict.Finalise()
	return verdict, nil
}

func pendingOrdersResult(count int) CheckResult {
	res := CheckResult{Valid: count == 0, Count: count, Message: "Semua pesanan sudah selesai"}
	if count > 0 {
		res.Message = rupiah.Sprintf("Masih ada %d pesanan yang belum selesai", count)
	}
	return res
}

func openShiftsResult(count int) CheckResult {
	res := CheckResult{Valid: count == 0, Count: count, Message: "Semua shift sudah ditutup"}
	if count > 0 {
		res.Message = rupiah.Sprintf("Masih ada %d shift yang belum ditutup", count)
	}
	return res
}

func pendingPaymentsResult(count int) CheckResult {
	res := CheckResult{Valid: count == 0, Count: count, Message: "Semua pembayaran sudah lunas"}
	if count > 0 {
		res.Message = rupiah.Sprintf("Masih ada %d pesanan yang belum dibayar", count)
	}
	return res
}

func lowStockResult(products []LowStockProduct) CheckResult {
	res := CheckResult{
		Valid:    len(products) == 0,
		Count:    len(products),
		Message:  "Stok semua produk di atas batas minimum",
		Products: products,
	}
	if len(products) > 0 {
		res.Message = rupiah.Sprintf("%d produk berada pada atau di bawah batas minimum stok", len(products))
	}
	return res
}

func rejectionMessage(verdict ValidationVerdict) string {
	for _, def := range checkDefinitions {
		if def.Severity != SeverityBlocking {
			continue
		}
		if res := verdict.result(def.Name); res != nil && !res.Valid {
			return "Tutup buku ditolak: " + res.Message
		}
	}
	return "Tutup buku ditolak"
}
