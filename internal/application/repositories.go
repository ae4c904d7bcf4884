package application

import (
	"context"
	"time"

	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

// AssignmentRepository captures the persistence interactions needed to
// locate schedule assignments.
type AssignmentRepository interface {
	// FindAssignments returns every assignment for the subject whose
	// window contains date, regardless of status. The service selects
	// the winner.
	FindAssignments(ctx context.Context, subjectID string, date time.Time) ([]scheduler.TeamAssignment, error)
	CreateAssignment(ctx context.Context, assignment scheduler.TeamAssignment) (scheduler.TeamAssignment, error)
	// SupersedeAssignments marks the subject's other assignments expired
	// instead of deleting them, preserving audit history.
	SupersedeAssignments(ctx context.Context, subjectID, keepID string) error
	ListAssignments(ctx context.Context, subjectID string) ([]scheduler.TeamAssignment, error)
}

// RuleRepository loads recurrence rules referenced by assignments.
type RuleRepository interface {
	GetRule(ctx context.Context, id string) (recurrence.Rule, error)
	CreateRule(ctx context.Context, rule recurrence.Rule) (recurrence.Rule, error)
	ListRules(ctx context.Context) ([]recurrence.Rule, error)
}

// ExceptionRepository loads point-in-time overrides for a user.
type ExceptionRepository interface {
	ListExceptions(ctx context.Context, userID string, date time.Time) ([]scheduler.ShiftException, error)
	CreateException(ctx context.Context, exception scheduler.ShiftException) (scheduler.ShiftException, error)
}

// TeamCatalog exposes the team roster table.
type TeamCatalog interface {
	ListTeams(ctx context.Context) ([]scheduler.Team, error)
	CreateTeam(ctx context.Context, team scheduler.Team) (scheduler.Team, error)
}

// ShiftCatalog exposes the shift template table.
type ShiftCatalog interface {
	GetShift(ctx context.Context, id string) (scheduler.Shift, error)
	ListShifts(ctx context.Context) ([]scheduler.Shift, error)
	CreateShift(ctx context.Context, shift scheduler.Shift) (scheduler.Shift, error)
}
