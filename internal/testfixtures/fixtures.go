// Package testfixtures provides deterministic domain fixtures, clocks,
// and repository doubles shared by tests across the module.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

var (
	teamCounter       uint64
	shiftCounter      uint64
	ruleCounter       uint64
	assignmentCounter uint64
	exceptionCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the canonical schedule date used by fixtures.
func ReferenceDate() time.Time {
	return time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
}

// TeamOption configures a generated team fixture.
type TeamOption func(*scheduler.Team)

// WithTeamOffset sets the cycle offset of the fixture.
func WithTeamOffset(offset int) TeamOption {
	return func(team *scheduler.Team) { team.CycleOffset = offset }
}

// WithTeamName sets the name of the fixture.
func WithTeamName(name string) TeamOption {
	return func(team *scheduler.Team) { team.Name = name }
}

// NewTeam returns a deterministic team with optional overrides.
func NewTeam(opts ...TeamOption) scheduler.Team {
	idx := atomic.AddUint64(&teamCounter, 1)
	team := scheduler.Team{
		ID:   fmt.Sprintf("team-%03d", idx),
		Name: fmt.Sprintf("Team %03d", idx),
	}
	for _, opt := range opts {
		opt(&team)
	}
	return team
}

// ShiftOption configures a generated shift fixture.
type ShiftOption func(*scheduler.Shift)

// WithShiftTimes sets the start and end clock of the fixture.
func WithShiftTimes(start, end string) ShiftOption {
	return func(shift *scheduler.Shift) {
		shift.StartTime = start
		shift.EndTime = end
	}
}

// WithShiftID overrides the generated id.
func WithShiftID(id string) ShiftOption {
	return func(shift *scheduler.Shift) { shift.ID = id }
}

// NewShift returns a deterministic day shift with optional overrides.
func NewShift(opts ...ShiftOption) scheduler.Shift {
	idx := atomic.AddUint64(&shiftCounter, 1)
	shift := scheduler.Shift{
		ID:        fmt.Sprintf("shift-%03d", idx),
		Name:      fmt.Sprintf("Shift %03d", idx),
		StartTime: "08:00",
		EndTime:   "16:00",
	}
	for _, opt := range opts {
		opt(&shift)
	}
	return shift
}

// RuleOption configures a generated rule fixture.
type RuleOption func(*recurrence.Rule)

// WithRuleFrequency replaces the frequency of the fixture.
func WithRuleFrequency(frequency recurrence.Frequency) RuleOption {
	return func(rule *recurrence.Rule) { rule.Frequency = frequency }
}

// WithRuleStart anchors the rule on the given date.
func WithRuleStart(start time.Time) RuleOption {
	return func(rule *recurrence.Rule) { rule.StartsOn = start }
}

// WithRuleEnd sets the termination condition of the fixture.
func WithRuleEnd(end recurrence.End) RuleOption {
	return func(rule *recurrence.Rule) { rule.End = end }
}

// WithRuleCycle turns the fixture into a cycle rule of the given shape.
func WithRuleCycle(length, work, rest int) RuleOption {
	return func(rule *recurrence.Rule) {
		rule.Frequency = recurrence.FrequencyCycle
		rule.CycleLength = length
		rule.CycleWorkDays = work
		rule.CycleRestDays = rest
	}
}

// WithRulePattern turns the fixture into a pattern rule over the slots.
func WithRulePattern(slots ...recurrence.Slot) RuleOption {
	return func(rule *recurrence.Rule) {
		rule.Frequency = recurrence.FrequencyPattern
		rule.Pattern = slots
	}
}

// NewRule returns a deterministic daily rule anchored on ReferenceDate,
// with optional overrides.
func NewRule(opts ...RuleOption) recurrence.Rule {
	idx := atomic.AddUint64(&ruleCounter, 1)
	rule := recurrence.Rule{
		ID:        fmt.Sprintf("rule-%03d", idx),
		Frequency: recurrence.FrequencyDaily,
		Interval:  1,
		StartsOn:  ReferenceDate(),
	}
	for _, opt := range opts {
		opt(&rule)
	}
	return rule
}

// AssignmentOption configures a generated assignment fixture.
type AssignmentOption func(*scheduler.TeamAssignment)

// WithAssignmentSubject binds the fixture to a subject id.
func WithAssignmentSubject(subjectID string) AssignmentOption {
	return func(a *scheduler.TeamAssignment) { a.SubjectID = subjectID }
}

// WithAssignmentRule binds the fixture to a rule id.
func WithAssignmentRule(ruleID string) AssignmentOption {
	return func(a *scheduler.TeamAssignment) { a.RuleID = ruleID }
}

// WithAssignmentShift sets the shift worked when the rule fires.
func WithAssignmentShift(shiftID string) AssignmentOption {
	return func(a *scheduler.TeamAssignment) { a.ShiftID = shiftID }
}

// WithAssignmentWindow bounds the fixture to [start, end] inclusive.
func WithAssignmentWindow(start, end time.Time) AssignmentOption {
	return func(a *scheduler.TeamAssignment) {
		a.StartsOn = start
		a.EndsOn = &end
	}
}

// WithAssignmentStatus sets the lifecycle status of the fixture.
func WithAssignmentStatus(status scheduler.AssignmentStatus) AssignmentOption {
	return func(a *scheduler.TeamAssignment) { a.Status = status }
}

// WithAssignmentCreatedAt sets the creation timestamp used for recency
// ordering.
func WithAssignmentCreatedAt(created time.Time) AssignmentOption {
	return func(a *scheduler.TeamAssignment) { a.CreatedAt = created }
}

// NewAssignment returns a deterministic active open-ended assignment with
// optional overrides.
func NewAssignment(opts ...AssignmentOption) scheduler.TeamAssignment {
	idx := atomic.AddUint64(&assignmentCounter, 1)
	assignment := scheduler.TeamAssignment{
		ID:        fmt.Sprintf("asg-%03d", idx),
		SubjectID: "team-001",
		RuleID:    "rule-001",
		StartsOn:  ReferenceDate().AddDate(0, -1, 0),
		Status:    scheduler.AssignmentActive,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&assignment)
	}
	return assignment
}

// ExceptionOption configures a generated exception fixture.
type ExceptionOption func(*scheduler.ShiftException)

// WithExceptionType sets the override type of the fixture.
func WithExceptionType(t scheduler.ExceptionType) ExceptionOption {
	return func(e *scheduler.ShiftException) { e.Type = t }
}

// WithExceptionStatus sets the approval status of the fixture.
func WithExceptionStatus(status scheduler.ApprovalStatus) ExceptionOption {
	return func(e *scheduler.ShiftException) { e.Status = status }
}

// WithExceptionPriority sets the precedence of the fixture.
func WithExceptionPriority(priority int) ExceptionOption {
	return func(e *scheduler.ShiftException) { e.Priority = priority }
}

// WithExceptionReplacement sets the substitute shift of the fixture.
func WithExceptionReplacement(shiftID string) ExceptionOption {
	return func(e *scheduler.ShiftException) { e.ReplacementShiftID = shiftID }
}

// WithExceptionDate overrides the target date of the fixture.
func WithExceptionDate(date time.Time) ExceptionOption {
	return func(e *scheduler.ShiftException) { e.Date = date }
}

// NewException returns a deterministic approved vacation exception for
// user-001 on ReferenceDate, with optional overrides.
func NewException(opts ...ExceptionOption) scheduler.ShiftException {
	idx := atomic.AddUint64(&exceptionCounter, 1)
	exception := scheduler.ShiftException{
		ID:        fmt.Sprintf("exc-%03d", idx),
		UserID:    "user-001",
		Date:      ReferenceDate(),
		Type:      scheduler.ExceptionVacation,
		Status:    scheduler.ApprovalApproved,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&exception)
	}
	return exception
}
