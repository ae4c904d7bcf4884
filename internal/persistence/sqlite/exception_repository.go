package sqlite

import (
	"context"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/scheduler"
)

// ExceptionRepository implements application.ExceptionRepository using
// SQLite.
type ExceptionRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewExceptionRepository creates a SQLite exception repository.
func NewExceptionRepository(pool *ConnectionPool) *ExceptionRepository {
	return &ExceptionRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// ListExceptions returns every exception for the user on date, any
// approval status. The resolver filters and orders by precedence.
func (r *ExceptionRepository) ListExceptions(ctx context.Context, userID string, date time.Time) ([]scheduler.ShiftException, error) {
	if userID == "" {
		return nil, nil
	}
	rows, err := r.helper.Query(ctx, `
		SELECT id, user_id, date, type, original_shift_id, replacement_shift_id,
		       replacement_user_id, status, priority, recurrence_rule_id, created_at
		FROM exceptions
		WHERE user_id = ? AND date = ?
		ORDER BY priority DESC, created_at DESC, id ASC
	`, userID, formatDate(date))
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var exceptions []scheduler.ShiftException
	for rows.Next() {
		var e scheduler.ShiftException
		var day, typ, status, createdAt string
		err := rows.Scan(&e.ID, &e.UserID, &day, &typ, &e.OriginalShiftID,
			&e.ReplacementShiftID, &e.ReplacementUserID, &status, &e.Priority,
			&e.RecurrenceRuleID, &createdAt)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		if e.Date, err = parseDate(day); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		e.Type = scheduler.ExceptionType(typ)
		e.Status = scheduler.ApprovalStatus(status)
		exceptions = append(exceptions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return exceptions, nil
}

// CreateException inserts an exception and returns it unchanged.
func (r *ExceptionRepository) CreateException(ctx context.Context, exception scheduler.ShiftException) (scheduler.ShiftException, error) {
	if exception.ID == "" {
		return scheduler.ShiftException{}, persistence.ErrConstraintViolation
	}
	createdAt := exception.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
		exception.CreatedAt = createdAt
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO exceptions
		(id, user_id, date, type, original_shift_id, replacement_shift_id,
		 replacement_user_id, status, priority, recurrence_rule_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, exception.ID, exception.UserID, formatDate(exception.Date), string(exception.Type),
		exception.OriginalShiftID, exception.ReplacementShiftID, exception.ReplacementUserID,
		string(exception.Status), exception.Priority, exception.RecurrenceRuleID,
		formatTimestamp(createdAt))
	if err != nil {
		return scheduler.ShiftException{}, r.mapper.MapError(err)
	}
	return exception, nil
}
