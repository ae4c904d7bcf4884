package recurrence

import (
	"time"

	"github.com/example/shift-roster/internal/cycle"
)

// SlotOn resolves the pattern slot active on date for a pattern anchored
// at startsOn. The pattern repeats indefinitely in both directions: dates
// before the anchor wrap backward, so moving a pattern's start date
// re-derives history instead of failing.
func SlotOn(pattern []Slot, startsOn, date time.Time) Slot {
	if len(pattern) == 0 {
		return Rest
	}
	return pattern[cycle.Position(cycle.DateOf(date), cycle.DateOf(startsOn), len(pattern))]
}
