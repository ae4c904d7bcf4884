package recurrence

import (
	"time"

	"github.com/example/shift-roster/internal/cycle"
)

// OccursOn reports whether a validated rule fires on the given date.
//
// Semantics:
//   - Dates strictly before StartsOn never occur.
//   - When weekday and month-day filters are both present, both must pass.
//   - EndUntil excludes dates after the (inclusive) final date; EndCount
//     excludes dates whose period index from the start reaches the cap.
//     The period index is O(1) interval arithmetic for every frequency;
//     cycle and pattern rules count whole cycles as one period each.
func OccursOn(rule Rule, date time.Time) bool {
	day := cycle.DateOf(date)
	start := cycle.DateOf(rule.StartsOn)
	if day.Before(start) {
		return false
	}
	if rule.End.Kind == EndUntil && day.After(cycle.DateOf(rule.End.Until)) {
		return false
	}

	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}
	days := cycle.DaysBetween(start, day)

	var fires bool
	var period int

	switch rule.Frequency {
	case FrequencyDaily:
		fires = days%interval == 0 && matchesFilters(rule, day)
		period = days / interval
	case FrequencyWeekly:
		week := days / 7
		fires = week%interval == 0 && matchesWeekday(rule, start, day) && matchesMonthDay(rule, day)
		period = week / interval
	case FrequencyCycle:
		fires = cycle.IsWorkPosition(cycle.Position(day, start, rule.CycleLength), rule.CycleWorkDays)
		period = days / rule.CycleLength
	case FrequencyPattern:
		fires = !SlotOn(rule.Pattern, start, day).IsRest()
		period = days / len(rule.Pattern)
	default:
		return false
	}

	if rule.End.Kind == EndCount && period >= rule.End.Count {
		return false
	}
	return fires
}

// matchesWeekday applies the optional by-weekday filter. An absent filter
// pins a weekly rule to the weekday of its start date.
func matchesWeekday(rule Rule, start, day time.Time) bool {
	if len(rule.Weekdays) == 0 {
		return day.Weekday() == start.Weekday()
	}
	for _, weekday := range rule.Weekdays {
		if day.Weekday() == weekday {
			return true
		}
	}
	return false
}

func matchesMonthDay(rule Rule, day time.Time) bool {
	if len(rule.MonthDays) == 0 {
		return true
	}
	for _, monthDay := range rule.MonthDays {
		if day.Day() == monthDay {
			return true
		}
	}
	return false
}

// matchesFilters applies both optional filters for daily rules. An absent
// weekday filter leaves daily rules unrestricted.
func matchesFilters(rule Rule, day time.Time) bool {
	if len(rule.Weekdays) > 0 {
		found := false
		for _, weekday := range rule.Weekdays {
			if day.Weekday() == weekday {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return matchesMonthDay(rule, day)
}

// Expand enumerates the dates on which the rule fires within [from, to],
// both bounds inclusive. The window must be bounded by the caller; an
// inverted window yields no dates.
func Expand(rule Rule, from, to time.Time) []time.Time {
	start := cycle.DateOf(from)
	end := cycle.DateOf(to)
	if end.Before(start) {
		return nil
	}

	var dates []time.Time
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if OccursOn(rule, current) {
			dates = append(dates, current)
		}
	}
	return dates
}
