package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/scheduler"
)

// AssignmentRepository implements application.AssignmentRepository using
// SQLite. Superseded assignments stay in the table with status expired.
type AssignmentRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewAssignmentRepository creates a SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

const assignmentSelect = `
	SELECT id, subject_id, rule_id, shift_id, starts_on, ends_on, status, created_at
	FROM assignments`

// FindAssignments returns every assignment for the subject whose window
// contains date, any status. EndsOn is inclusive.
func (r *AssignmentRepository) FindAssignments(ctx context.Context, subjectID string, date time.Time) ([]scheduler.TeamAssignment, error) {
	if subjectID == "" {
		return nil, nil
	}
	day := formatDate(date)
	rows, err := r.helper.Query(ctx, assignmentSelect+`
		WHERE subject_id = ?
		  AND starts_on <= ?
		  AND (ends_on IS NULL OR ends_on >= ?)
		ORDER BY created_at DESC, id ASC
	`, subjectID, day, day)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()
	return r.collectAssignments(rows)
}

// CreateAssignment inserts an assignment and returns it unchanged.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment scheduler.TeamAssignment) (scheduler.TeamAssignment, error) {
	if assignment.ID == "" {
		return scheduler.TeamAssignment{}, persistence.ErrConstraintViolation
	}
	createdAt := assignment.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
		assignment.CreatedAt = createdAt
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO assignments (id, subject_id, rule_id, shift_id, starts_on, ends_on, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, assignment.ID, assignment.SubjectID, assignment.RuleID, assignment.ShiftID,
		formatDate(assignment.StartsOn), formatDatePtr(assignment.EndsOn),
		string(assignment.Status), formatTimestamp(createdAt))
	if err != nil {
		return scheduler.TeamAssignment{}, r.mapper.MapError(err)
	}
	return assignment, nil
}

// SupersedeAssignments expires every non-expired assignment of the
// subject except keepID.
func (r *AssignmentRepository) SupersedeAssignments(ctx context.Context, subjectID, keepID string) error {
	if subjectID == "" {
		return nil
	}
	_, err := r.helper.Exec(ctx, `
		UPDATE assignments
		SET status = 'expired'
		WHERE subject_id = ? AND id != ? AND status != 'expired'
	`, subjectID, keepID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// ListAssignments returns the subject's assignments, newest first.
func (r *AssignmentRepository) ListAssignments(ctx context.Context, subjectID string) ([]scheduler.TeamAssignment, error) {
	if subjectID == "" {
		return nil, nil
	}
	rows, err := r.helper.Query(ctx, assignmentSelect+`
		WHERE subject_id = ?
		ORDER BY created_at DESC, id ASC
	`, subjectID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()
	return r.collectAssignments(rows)
}

func (r *AssignmentRepository) collectAssignments(rows *sql.Rows) ([]scheduler.TeamAssignment, error) {
	var assignments []scheduler.TeamAssignment
	for rows.Next() {
		var a scheduler.TeamAssignment
		var status, startsOn, createdAt string
		var endsOn sql.NullString
		err := rows.Scan(&a.ID, &a.SubjectID, &a.RuleID, &a.ShiftID,
			&startsOn, &endsOn, &status, &createdAt)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		if a.StartsOn, err = parseDate(startsOn); err != nil {
			return nil, err
		}
		if a.EndsOn, err = parseDatePtr(endsOn); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		a.Status = scheduler.AssignmentStatus(status)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return assignments, nil
}
