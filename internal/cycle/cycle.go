// Package cycle implements the date arithmetic behind fixed rotating
// rosters: mapping calendar dates onto positions inside a repeating
// work/rest cycle, with per-team phase offsets.
package cycle

import (
	"errors"
	"time"
)

// ErrInvalidCycle indicates a cycle whose work and rest day counts do not
// sum to its length, or whose length is not positive.
var ErrInvalidCycle = errors.New("cycle: work and rest days must sum to a positive cycle length")

// DateOf truncates a timestamp to its calendar date in UTC. All cycle
// arithmetic operates on these truncated values so that wall-clock times
// and zones cannot shift a date across a cycle boundary.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b. The result
// is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / (24 * time.Hour))
}

// Position maps date onto [0, length) relative to anchor. The double
// modulo keeps the result well defined for dates before the anchor.
func Position(date, anchor time.Time, length int) int {
	if length <= 0 {
		return 0
	}
	return ((DaysBetween(anchor, date) % length) + length) % length
}

// IsWorkPosition reports whether a cycle position falls in the leading
// work block. The first workDays positions of every cycle are work days;
// the remainder are rest days.
func IsWorkPosition(position, workDays int) bool {
	return position >= 0 && position < workDays
}

// Roster describes a fixed rotating roster: a repeating cycle anchored at
// a scheme start date, split into a work block followed by a rest block.
// Teams participate phase-shifted by their offset.
type Roster struct {
	SchemeStart time.Time
	Length      int
	WorkDays    int
	RestDays    int
}

// QuattroDue returns the classic 18-day roster: repeated 4-work/2-rest
// alternations, twelve work positions and six rest positions per cycle.
func QuattroDue(schemeStart time.Time) Roster {
	return Roster{
		SchemeStart: DateOf(schemeStart),
		Length:      18,
		WorkDays:    12,
		RestDays:    6,
	}
}

// Validate rejects rosters whose work/rest split does not partition the
// cycle. Violations are configuration errors surfaced before the roster
// is ever evaluated.
func (r Roster) Validate() error {
	if r.Length <= 0 || r.WorkDays < 0 || r.RestDays < 0 || r.WorkDays+r.RestDays != r.Length {
		return ErrInvalidCycle
	}
	return nil
}

// Position returns the cycle position of date for a team with the given
// offset. The offset shifts the effective anchor backward, so each team
// sees a phase-shifted view of the same cycle.
func (r Roster) Position(date time.Time, offset int) int {
	anchor := DateOf(r.SchemeStart).AddDate(0, 0, -offset)
	return Position(date, anchor, r.Length)
}

// IsWorkingDay reports whether a team with the given offset works on date.
func (r Roster) IsWorkingDay(date time.Time, offset int) bool {
	return IsWorkPosition(r.Position(date, offset), r.WorkDays)
}

// CycleLength returns the roster cycle length.
func (r Roster) CycleLength() int {
	return r.Length
}

// DaysFromSchemeStart returns the signed day count from the scheme start
// to date.
func (r Roster) DaysFromSchemeStart(date time.Time) int {
	return DaysBetween(r.SchemeStart, date)
}
