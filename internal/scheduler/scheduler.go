// Package scheduler holds the work-shift roster domain: teams, shift
// templates, schedule days, and point-in-time exceptions with their
// resolution semantics. The package is pure; persistence and assembly
// live in the application layer.
package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Team represents a roster team with its fixed phase offset inside the
// rotating cycle. Offsets are assigned at setup and never change.
type Team struct {
	ID          string
	Name        string
	CycleOffset int
}

// Shift is a catalog template shared by many schedule days. Times are
// "HH:MM" wall-clock strings; a shift whose end is not after its start
// crosses midnight.
type Shift struct {
	ID         string
	Name       string
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
	Color      string
}

// PlaceholderShiftName labels the substitute used for dangling shift
// references so partial results stay usable.
const PlaceholderShiftName = "Unknown shift"

// PlaceholderShift returns the degraded substitute for a shift id that is
// absent from the catalog.
func PlaceholderShift(id string) Shift {
	return Shift{ID: id, Name: PlaceholderShiftName}
}

// IsPlaceholder reports whether the shift is the degraded substitute.
func (s Shift) IsPlaceholder() bool {
	return s.Name == PlaceholderShiftName
}

// SpansMidnight reports whether the shift ends on the following day.
// Malformed times are treated as a same-day shift.
func (s Shift) SpansMidnight() bool {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return false
	}
	return end <= start
}

// Validate rejects malformed shift templates at catalog time.
func (s Shift) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("scheduler: shift id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("scheduler: shift name is required")
	}
	if _, err := ParseClock(s.StartTime); err != nil {
		return fmt.Errorf("scheduler: invalid start time: %w", err)
	}
	if _, err := ParseClock(s.EndTime); err != nil {
		return fmt.Errorf("scheduler: invalid end time: %w", err)
	}
	if (s.BreakStart == "") != (s.BreakEnd == "") {
		return fmt.Errorf("scheduler: break requires both start and end")
	}
	if s.BreakStart != "" {
		if _, err := ParseClock(s.BreakStart); err != nil {
			return fmt.Errorf("scheduler: invalid break start: %w", err)
		}
		if _, err := ParseClock(s.BreakEnd); err != nil {
			return fmt.Errorf("scheduler: invalid break end: %w", err)
		}
	}
	return nil
}

// ParseClock converts an "HH:MM" string to minutes from midnight.
func ParseClock(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	return hour*60 + minute, nil
}

// AssignmentStatus ranks schedule assignments when their windows overlap.
type AssignmentStatus string

const (
	AssignmentActive  AssignmentStatus = "active"
	AssignmentDraft   AssignmentStatus = "draft"
	AssignmentExpired AssignmentStatus = "expired"
)

// TeamAssignment binds a user or team to a recurrence rule for a bounded
// or unbounded window. EndsOn, when set, is inclusive. Superseded
// assignments are kept with AssignmentExpired for audit history.
type TeamAssignment struct {
	ID        string
	SubjectID string
	RuleID    string
	// ShiftID names the shift worked on days the rule fires. Pattern rules
	// carry a shift per slot and ignore it.
	ShiftID   string
	StartsOn  time.Time
	EndsOn    *time.Time
	Status    AssignmentStatus
	CreatedAt time.Time
}

// Covers reports whether the assignment window contains date.
func (a TeamAssignment) Covers(date time.Time) bool {
	if date.Before(a.StartsOn) {
		return false
	}
	if a.EndsOn != nil && date.After(*a.EndsOn) {
		return false
	}
	return true
}

// Validate rejects assignment windows whose end precedes their start.
func (a TeamAssignment) Validate() error {
	if a.StartsOn.IsZero() {
		return fmt.Errorf("scheduler: assignment start date is required")
	}
	// EndsOn is inclusive, so an end equal to the start is a one-day window.
	if a.EndsOn != nil && a.EndsOn.Before(a.StartsOn) {
		return fmt.Errorf("scheduler: assignment end date precedes start date")
	}
	switch a.Status {
	case AssignmentActive, AssignmentDraft, AssignmentExpired:
		return nil
	default:
		return fmt.Errorf("scheduler: unknown assignment status %q", a.Status)
	}
}
