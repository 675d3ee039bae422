package shifts

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

// memStore keeps shifts in memory and enforces one open shift per staff,
// mirroring the partial unique index in the schema.
type memStore struct {
	nextID int64
	shifts []Shift
}

func (m *memStore) Open(_ context.Context, staffID int64) (Shift, error) {
	for _, s := range m.shifts {
		if s.StaffID == staffID && s.IsOpen() {
			return Shift{}, ErrShiftAlreadyOpen
		}
	}
	m.nextID++
	shift := Shift{ID: m.nextID, StaffID: staffID, StartedAt: time.Now()}
	m.shifts = append(m.shifts, shift)
	return shift, nil
}

func (m *memStore) CloseOpen(_ context.Context, staffID int64) (Shift, error) {
	for i, s := range m.shifts {
		if s.StaffID == staffID && s.IsOpen() {
			now := time.Now()
			m.shifts[i].EndedAt = &now
			return m.shifts[i], nil
		}
	}
	return Shift{}, ErrNoOpenShift
}

func (m *memStore) ListOpen(_ context.Context) ([]Shift, error) {
	var open []Shift
	for _, s := range m.shifts {
		if s.IsOpen() {
			open = append(open, s)
		}
	}
	return open, nil
}

func TestOpenRejectsSecondShift(t *testing.T) {
	svc := NewService(&memStore{}, slog.New(slog.DiscardHandler))
	actor := shared.Actor{ID: 1, Role: shared.RoleStaff}

	_, err := svc.Open(context.Background(), actor)
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), actor)
	require.True(t, shared.IsStateError(err))
}

func TestCloseWithoutOpenShift(t *testing.T) {
	svc := NewService(&memStore{}, slog.New(slog.DiscardHandler))
	actor := shared.Actor{ID: 1, Role: shared.RoleStaff}

	_, err := svc.Close(context.Background(), actor)
	require.True(t, shared.IsStateError(err))
}

func TestOpenCloseReopenCycle(t *testing.T) {
	svc := NewService(&memStore{}, slog.New(slog.DiscardHandler))
	actor := shared.Actor{ID: 1, Role: shared.RoleStaff}
	ctx := context.Background()

	first, err := svc.Open(ctx, actor)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, first.ID, closed.ID)
	require.NotNil(t, closed.EndedAt)

	second, err := svc.Open(ctx, actor)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	open, err := svc.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, second.ID, open[0].ID)
}
