package sqlite

import (
	"context"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/scheduler"
)

// ShiftRepository implements application.ShiftCatalog using SQLite.
type ShiftRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewShiftRepository creates a SQLite shift repository.
func NewShiftRepository(pool *ConnectionPool) *ShiftRepository {
	return &ShiftRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// GetShift loads a shift template by id.
func (r *ShiftRepository) GetShift(ctx context.Context, id string) (scheduler.Shift, error) {
	if id == "" {
		return scheduler.Shift{}, persistence.ErrNotFound
	}
	var shift scheduler.Shift
	err := r.helper.QueryRow(ctx, `
		SELECT id, name, start_time, end_time, break_start, break_end, color
		FROM shifts
		WHERE id = ?
	`, id).Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
		&shift.BreakStart, &shift.BreakEnd, &shift.Color)
	if err != nil {
		return scheduler.Shift{}, r.mapper.MapError(err)
	}
	return shift, nil
}

// ListShifts returns every shift template ordered by start time, then name.
func (r *ShiftRepository) ListShifts(ctx context.Context) ([]scheduler.Shift, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, start_time, end_time, break_start, break_end, color
		FROM shifts
		ORDER BY start_time ASC, name ASC
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var shifts []scheduler.Shift
	for rows.Next() {
		var shift scheduler.Shift
		if err := rows.Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.BreakStart, &shift.BreakEnd, &shift.Color); err != nil {
			return nil, r.mapper.MapError(err)
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return shifts, nil
}

// CreateShift inserts a shift template and returns it unchanged.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift scheduler.Shift) (scheduler.Shift, error) {
	if shift.ID == "" {
		return scheduler.Shift{}, persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO shifts (id, name, start_time, end_time, break_start, break_end, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, shift.ID, shift.Name, shift.StartTime, shift.EndTime,
		shift.BreakStart, shift.BreakEnd, shift.Color, formatTimestamp(r.now()))
	if err != nil {
		return scheduler.Shift{}, r.mapper.MapError(err)
	}
	return shift, nil
}
