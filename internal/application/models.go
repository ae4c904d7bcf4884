package application

import (
	"time"

	"github.com/example/shift-roster/internal/scheduler"
)

// DateKeyFormat is the canonical key for per-day maps and cache entries.
const DateKeyFormat = "2006-01-02"

// ScheduleQuery identifies one resolved schedule day. TeamID narrows the
// base day to a team's perspective; UserID additionally overlays that
// user's approved exceptions.
type ScheduleQuery struct {
	Date           time.Time
	TeamID         string
	UserID         string
	IncludePending bool
}

// RangeQuery asks for every day in [Start, End], both bounds inclusive.
type RangeQuery struct {
	Start          time.Time
	End            time.Time
	TeamID         string
	UserID         string
	IncludePending bool
}

// RangeResult carries per-day outcomes of a range computation. Failures
// are per-day: Days holds every day that resolved, DegradedDates the days
// that fell back to placeholder data, and FailedDates the days that could
// not be computed at all (including ones cancelled mid-batch).
type RangeResult struct {
	Days          map[string]scheduler.WorkScheduleDay
	DegradedDates []string
	FailedDates   map[string]string
}

// TeamInput captures caller provided team fields.
type TeamInput struct {
	Name        string
	CycleOffset int
}

// ShiftInput captures caller provided shift template fields.
type ShiftInput struct {
	Name       string
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
	Color      string
}

// RuleInput captures caller provided recurrence rule fields.
type RuleInput struct {
	Frequency     string
	Interval      int
	StartsOn      time.Time
	EndKind       string
	Until         time.Time
	Count         int
	Weekdays      []time.Weekday
	MonthDays     []int
	CycleLength   int
	CycleWorkDays int
	CycleRestDays int
	PatternSlots  []string
}

// AssignmentInput captures caller provided assignment fields. A subject is
// a team or user id; ShiftID names the shift worked on days the rule fires
// (pattern rules carry shifts per slot instead).
type AssignmentInput struct {
	SubjectID string
	RuleID    string
	ShiftID   string
	StartsOn  time.Time
	EndsOn    *time.Time
	Status    string
}

// ExceptionInput captures caller provided exception fields.
type ExceptionInput struct {
	UserID             string
	Date               time.Time
	Type               string
	OriginalShiftID    string
	ReplacementShiftID string
	ReplacementUserID  string
	Status             string
	Priority           int
	RecurrenceRuleID   string
}
