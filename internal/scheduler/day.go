package scheduler

import (
	"slices"
	"time"
)

// InstanceSource distinguishes how a shift instance entered the day.
type InstanceSource string

const (
	// SourceRoster marks instances produced by the base schedule.
	SourceRoster InstanceSource = "roster"
	// SourceException marks instances produced by exception resolution.
	SourceException InstanceSource = "exception"
)

// ShiftInstance is one shift active on a schedule day with its
// participating teams and users. Instances originating from exceptions
// keep the replaced shift id for audit.
type ShiftInstance struct {
	Shift           Shift
	TeamIDs         []string
	UserIDs         []string
	Source          InstanceSource
	ExceptionID     string
	ReplacedShiftID string
}

// WorkScheduleDay is the computed output for one date: the shifts active
// that day and the teams that are off. Degraded is set when any shift
// reference had to fall back to a placeholder.
type WorkScheduleDay struct {
	Date       time.Time
	Shifts     []ShiftInstance
	OffTeamIDs []string
	Degraded   bool
}

// Clone returns a deep copy so resolution can overlay exceptions without
// mutating the assembled base day.
func (d WorkScheduleDay) Clone() WorkScheduleDay {
	out := d
	out.OffTeamIDs = slices.Clone(d.OffTeamIDs)
	out.Shifts = make([]ShiftInstance, len(d.Shifts))
	for i, instance := range d.Shifts {
		copied := instance
		copied.TeamIDs = slices.Clone(instance.TeamIDs)
		copied.UserIDs = slices.Clone(instance.UserIDs)
		out.Shifts[i] = copied
	}
	return out
}

// UserShiftIDs lists the ids of shifts the user participates in that day.
func (d WorkScheduleDay) UserShiftIDs(userID string) []string {
	var ids []string
	for _, instance := range d.Shifts {
		if slices.Contains(instance.UserIDs, userID) {
			ids = append(ids, instance.Shift.ID)
		}
	}
	return ids
}
