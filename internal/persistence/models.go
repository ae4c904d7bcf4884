package persistence

import "time"

// TeamRecord is the storage shape of a roster team.
type TeamRecord struct {
	ID          string
	Name        string
	CycleOffset int
	CreatedAt   time.Time
}

// ShiftRecord is the storage shape of a shift template. Clock fields are
// "HH:MM" strings exactly as entered.
type ShiftRecord struct {
	ID         string
	Name       string
	StartTime  string
	EndTime    string
	BreakStart string
	BreakEnd   string
	Color      string
	CreatedAt  time.Time
}

// RuleRecord is the storage shape of a recurrence rule. Weekday filters
// are stored as a bitmask keyed by time.Weekday, month-day filters as a
// comma-separated list, and pattern slots in a child table.
type RuleRecord struct {
	ID            string
	Frequency     string
	Interval      int
	StartsOn      time.Time
	EndKind       string
	EndUntil      *time.Time
	EndCount      int
	Weekdays      int64
	MonthDays     string
	CycleLength   int
	CycleWorkDays int
	CycleRestDays int
	CreatedAt     time.Time
}

// PatternSlotRecord is one ordered slot of a pattern rule. An empty
// ShiftID marks a rest day.
type PatternSlotRecord struct {
	RuleID   string
	Position int
	ShiftID  string
}

// AssignmentRecord is the storage shape of a schedule assignment. EndsOn
// is inclusive; nil leaves the window open-ended.
type AssignmentRecord struct {
	ID        string
	SubjectID string
	RuleID    string
	ShiftID   string
	StartsOn  time.Time
	EndsOn    *time.Time
	Status    string
	CreatedAt time.Time
}

// ExceptionRecord is the storage shape of a single-date schedule override.
type ExceptionRecord struct {
	ID                 string
	UserID             string
	Date               time.Time
	Type               string
	OriginalShiftID    string
	ReplacementShiftID string
	ReplacementUserID  string
	Status             string
	Priority           int
	RecurrenceRuleID   string
	CreatedAt          time.Time
}
