package shifts

import (
	"context"
	"log/slog"

	"github.com/warungpos/warungpos/internal/shared"
)

// ShiftStore abstracts shift persistence.
type ShiftStore interface {
	Open(ctx context.Context, staffID int64) (Shift, error)
	CloseOpen(ctx context.Context, staffID int64) (Shift, error)
	ListOpen(ctx context.Context) ([]Shift, error)
}

type Service struct {
	store  ShiftStore
	logger *slog.Logger
}

func NewService(store ShiftStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Open starts a shift for the acting staff member.
func (s *Service) Open(ctx context.Context, actor shared.Actor) (Shift, error) {
	shift, err := s.store.Open(ctx, actor.ID)
	if err != nil {
		return Shift{}, err
	}
	s.logger.Info("shift opened", slog.Int64("shift_id", shift.ID), slog.Int64("staff_id", actor.ID))
	return shift, nil
}

// Close ends the actor's running shift.
func (s *Service) Close(ctx context.Context, actor shared.Actor) (Shift, error) {
	shift, err := s.store.CloseOpen(ctx, actor.ID)
	if err != nil {
		return Shift{}, err
	}
	s.logger.Info("shift closed", slog.Int64("shift_id", shift.ID), slog.Int64("staff_id", actor.ID))
	return shift, nil
}

// ListOpen returns all running shifts.
func (s *Service) ListOpen(ctx context.Context) ([]Shift, error) {
	return s.store.ListOpen(ctx)
}
