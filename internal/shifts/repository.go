package shifts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

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

const shiftColumns = `s.id, s.staff_id, u.name, s.started_at, s.ended_at`

// Open starts a shift for the staff member. The partial unique index on
// (staff_id) WHERE ended_at IS NULL enforces one open shift per staff.
func (r *Repository) Open(ctx context.Context, staffID int64) (Shift, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO shifts (staff_id, started_at)
SELECT $1, now()
WHERE NOT EXISTS (SELECT 1 FROM shifts WHERE staff_id = $1 AND ended_at IS NULL)
RETURNING id`, staffID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shift{}, ErrShiftAlreadyOpen
		}
		return Shift{}, err
	}
	return r.byID(ctx, id)
}

// CloseOpen ends the staff member's open shift.
func (r *Repository) CloseOpen(ctx context.Context, staffID int64) (Shift, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
UPDATE shifts SET ended_at = now()
WHERE staff_id = $1 AND ended_at IS NULL
RETURNING id`, staffID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shift{}, ErrNoOpenShift
		}
		return Shift{}, err
	}
	return r.byID(ctx, id)
}

// ListOpen returns all shifts that have not ended yet.
func (r *Repository) ListOpen(ctx context.Context) ([]Shift, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+shiftColumns+`
FROM shifts s
JOIN users u ON u.id = s.staff_id
WHERE s.ended_at IS NULL
ORDER BY s.started_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) byID(ctx context.Context, id int64) (Shift, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+shiftColumns+`
FROM shifts s
JOIN users u ON u.id = s.staff_id
WHERE s.id = $1`, id)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shift{}, shared.ErrNotFound
		}
		return Shift{}, err
	}
	return shift, nil
}

func scanShift(row pgx.Row) (Shift, error) {
	var shift Shift
	err := row.Scan(&shift.ID, &shift.StaffID, &shift.StaffName, &shift.StartedAt, &shift.EndedAt)
	return shift, err
}
