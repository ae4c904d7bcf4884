// Package recurrence decides which dates a schedule rule applies to. It
// covers calendar-style daily and weekly rules, fixed work/rest cycles,
// and user-authored repeating patterns of shift-or-rest slots.
package recurrence

import (
	"errors"
	"time"

	"github.com/example/shift-roster/internal/cycle"
)

// Frequency represents supported recurrence kinds.
type Frequency int

const (
	// FrequencyUnspecified indicates the rule frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily fires every interval-th day from the rule start.
	FrequencyDaily
	// FrequencyWeekly fires on selected weekdays of every interval-th week.
	FrequencyWeekly
	// FrequencyCycle fires on the work positions of a fixed work/rest cycle.
	FrequencyCycle
	// FrequencyPattern fires on the work slots of a repeating custom pattern.
	FrequencyPattern
)

// EndKind discriminates the termination condition of a rule.
type EndKind int

const (
	// EndNever leaves the rule unbounded.
	EndNever EndKind = iota
	// EndUntil stops the rule after an inclusive final date.
	EndUntil
	// EndCount stops the rule after a fixed number of periods.
	EndCount
)

// End is a rule's termination condition.
type End struct {
	Kind  EndKind
	Until time.Time
	Count int
}

// Until returns an inclusive-final-date end condition.
func Until(date time.Time) End {
	return End{Kind: EndUntil, Until: cycle.DateOf(date)}
}

// Count returns an occurrence-count end condition.
func Count(n int) End {
	return End{Kind: EndCount, Count: n}
}

// Slot is one element of a custom pattern: either a work day carrying a
// shift reference, or a rest day.
type Slot struct {
	ShiftID string
}

// Rest is the rest-day pattern slot.
var Rest = Slot{}

// Work returns a pattern slot referencing a shift.
func Work(shiftID string) Slot {
	return Slot{ShiftID: shiftID}
}

// IsRest reports whether the slot is a rest day.
func (s Slot) IsRest() bool {
	return s.ShiftID == ""
}

// Rule describes a recurrence configuration for a schedule assignment.
// StartsOn anchors all offset math; a rule never fires before it.
type Rule struct {
	ID        string
	Frequency Frequency
	Interval  int
	StartsOn  time.Time
	End       End

	// Optional filters for daily and weekly rules.
	Weekdays  []time.Weekday
	MonthDays []int

	// Cycle shape, only meaningful for FrequencyCycle.
	CycleLength   int
	CycleWorkDays int
	CycleRestDays int

	// Ordered slots, only meaningful for FrequencyPattern. The pattern
	// length is the implicit cycle length.
	Pattern []Slot
}

var (
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
	// ErrInvalidInterval indicates the interval is not a positive number.
	ErrInvalidInterval = errors.New("recurrence: interval must be at least 1")
	// ErrMissingStart indicates the rule has no anchor date.
	ErrMissingStart = errors.New("recurrence: start date is required")
	// ErrInvalidEnd indicates an internally inconsistent end condition.
	ErrInvalidEnd = errors.New("recurrence: end condition is inconsistent with the start date")
	// ErrEmptyPattern indicates a custom pattern with no slots.
	ErrEmptyPattern = errors.New("recurrence: pattern requires at least one slot")
	// ErrInvalidMonthDay indicates a by-month-day filter entry outside 1..31.
	ErrInvalidMonthDay = errors.New("recurrence: month day filter entries must be within 1..31")
)

// Validate rejects configuration errors before a rule becomes usable by
// the engine. Evaluation assumes a validated rule.
func (r Rule) Validate() error {
	if r.StartsOn.IsZero() {
		return ErrMissingStart
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	for _, day := range r.MonthDays {
		if day < 1 || day > 31 {
			return ErrInvalidMonthDay
		}
	}
	switch r.End.Kind {
	case EndNever:
	case EndUntil:
		if r.End.Until.IsZero() || cycle.DateOf(r.End.Until).Before(cycle.DateOf(r.StartsOn)) {
			return ErrInvalidEnd
		}
	case EndCount:
		if r.End.Count < 1 {
			return ErrInvalidEnd
		}
	default:
		return ErrInvalidEnd
	}

	switch r.Frequency {
	case FrequencyDaily, FrequencyWeekly:
		return nil
	case FrequencyCycle:
		shape := cycle.Roster{
			SchemeStart: r.StartsOn,
			Length:      r.CycleLength,
			WorkDays:    r.CycleWorkDays,
			RestDays:    r.CycleRestDays,
		}
		return shape.Validate()
	case FrequencyPattern:
		if len(r.Pattern) == 0 {
			return ErrEmptyPattern
		}
		return nil
	default:
		return ErrInvalidFrequency
	}
}
