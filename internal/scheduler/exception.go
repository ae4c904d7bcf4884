package scheduler

import "time"

// ExceptionType is the closed set of point-in-time schedule overrides.
type ExceptionType string

const (
	ExceptionSwap          ExceptionType = "swap"
	ExceptionReplacement   ExceptionType = "replacement"
	ExceptionCancellation  ExceptionType = "cancellation"
	ExceptionOvertime      ExceptionType = "overtime"
	ExceptionVacation      ExceptionType = "vacation"
	ExceptionSickLeave     ExceptionType = "sick_leave"
	ExceptionPersonalLeave ExceptionType = "personal_leave"
)

// ExceptionCategory groups exception types by their effect on the base day.
type ExceptionCategory string

const (
	// CategoryChange substitutes a different shift or user pairing.
	CategoryChange ExceptionCategory = "change"
	// CategoryAbsence removes the base shift without a substitute.
	CategoryAbsence ExceptionCategory = "absence"
	// CategoryAddition appends a shift on top of the base day.
	CategoryAddition ExceptionCategory = "addition"
)

// TypeAttributes describes how an exception type behaves. The table keeps
// behavior data separate from the type definition: dispatch reads the
// table instead of switching on the type.
type TypeAttributes struct {
	Category         ExceptionCategory
	Label            string
	RemovesBase      bool
	AddsShift        bool
	RequiresApproval bool
}

var typeAttributes = map[ExceptionType]TypeAttributes{
	ExceptionSwap:          {Category: CategoryChange, Label: "Shift swap", RemovesBase: true, AddsShift: true, RequiresApproval: true},
	ExceptionReplacement:   {Category: CategoryChange, Label: "Shift replacement", RemovesBase: true, AddsShift: true, RequiresApproval: true},
	ExceptionCancellation:  {Category: CategoryAbsence, Label: "Cancellation", RemovesBase: true, RequiresApproval: true},
	ExceptionOvertime:      {Category: CategoryAddition, Label: "Overtime", AddsShift: true, RequiresApproval: true},
	ExceptionVacation:      {Category: CategoryAbsence, Label: "Vacation", RemovesBase: true, RequiresApproval: true},
	ExceptionSickLeave:     {Category: CategoryAbsence, Label: "Sick leave", RemovesBase: true, RequiresApproval: false},
	ExceptionPersonalLeave: {Category: CategoryAbsence, Label: "Personal leave", RemovesBase: true, RequiresApproval: true},
}

// AttributesFor returns the behavior attributes of an exception type.
func AttributesFor(t ExceptionType) (TypeAttributes, bool) {
	attrs, ok := typeAttributes[t]
	return attrs, ok
}

// KnownExceptionType reports whether t is part of the closed set.
func KnownExceptionType(t ExceptionType) bool {
	_, ok := typeAttributes[t]
	return ok
}

// ApprovalStatus tracks an exception through its review lifecycle.
type ApprovalStatus string

const (
	ApprovalDraft    ApprovalStatus = "draft"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ShiftException is a single-date override for one user. An exception
// targets exactly one (user, date) pair; an optional recurrence rule
// reference lets the override itself repeat.
type ShiftException struct {
	ID                 string
	UserID             string
	Date               time.Time
	Type               ExceptionType
	OriginalShiftID    string
	ReplacementShiftID string
	ReplacementUserID  string
	Status             ApprovalStatus
	Priority           int
	RecurrenceRuleID   string
	CreatedAt          time.Time
}
