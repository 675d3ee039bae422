package shifts

import (
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// Shift records one staff working session. A shift with a nil EndedAt is
// still open and blocks the daily close.
type Shift struct {
	ID        int64      `json:"id"`
	StaffID   int64      `json:"staffId"`
	StaffName string     `json:"staffName"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// IsOpen reports whether the shift has not ended yet.
func (s Shift) IsOpen() bool {
	return s.EndedAt == nil
}

var (
	// ErrShiftAlreadyOpen indicates the staff already has an open shift.
	ErrShiftAlreadyOpen = shared.NewStateError("shift masih berjalan, tutup shift sebelumnya terlebih dahulu")
	// ErrNoOpenShift indicates there is no open shift to close.
	ErrNoOpenShift = shared.NewStateError("tidak ada shift yang sedang berjalan")
)
