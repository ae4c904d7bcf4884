package scheduler

import (
	"slices"
	"sort"
	"time"
)

// ShiftLookup resolves a shift id against the catalog. A failed lookup
// degrades to a placeholder rather than aborting resolution.
type ShiftLookup func(id string) (Shift, bool)

// ResolveOptions controls which exceptions participate in resolution.
type ResolveOptions struct {
	// IncludePending previews pending exceptions as if they were approved.
	IncludePending bool
}

// ResolveDay overlays the user's exceptions onto an assembled base day
// and returns a new day; the base is never mutated.
//
// Only approved exceptions apply by default. When several exceptions
// target the same (user, date) they apply in descending priority order,
// ties broken by most recent creation. A cancellation always wins over an
// addition for the same slot, regardless of ordering.
func ResolveDay(base WorkScheduleDay, userID string, exceptions []ShiftException, lookup ShiftLookup, opts ResolveOptions) WorkScheduleDay {
	day := base.Clone()

	applicable := make([]ShiftException, 0, len(exceptions))
	for _, exception := range exceptions {
		if exception.UserID != userID {
			continue
		}
		if !exception.Date.IsZero() && !sameDate(exception.Date, day.Date) {
			continue
		}
		if !KnownExceptionType(exception.Type) {
			continue
		}
		switch exception.Status {
		case ApprovalApproved:
		case ApprovalPending:
			if !opts.IncludePending {
				continue
			}
		default:
			continue
		}
		applicable = append(applicable, exception)
	}
	if len(applicable) == 0 {
		return day
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		if applicable[i].Priority != applicable[j].Priority {
			return applicable[i].Priority > applicable[j].Priority
		}
		return applicable[i].CreatedAt.After(applicable[j].CreatedAt)
	})

	for _, exception := range applicable {
		attrs, _ := AttributesFor(exception.Type)
		if attrs.RemovesBase {
			day = removeUserShift(day, userID, exception.OriginalShiftID)
		}
		if attrs.AddsShift {
			day = addExceptionShift(day, userID, exception, lookup)
		}
	}

	// Cancellations win over additions for the same slot even when a
	// lower-priority addition was applied afterwards.
	for _, exception := range applicable {
		attrs, _ := AttributesFor(exception.Type)
		if attrs.RemovesBase && !attrs.AddsShift {
			day = removeUserShift(day, userID, exception.OriginalShiftID)
		}
	}

	return day
}

// removeUserShift detaches the user from instances of the given shift, or
// from every instance when shiftID is empty. Instances introduced by
// exceptions are dropped entirely once their last user is removed.
func removeUserShift(day WorkScheduleDay, userID, shiftID string) WorkScheduleDay {
	kept := day.Shifts[:0]
	for _, instance := range day.Shifts {
		if shiftID != "" && instance.Shift.ID != shiftID {
			kept = append(kept, instance)
			continue
		}
		if idx := slices.Index(instance.UserIDs, userID); idx >= 0 {
			instance.UserIDs = slices.Delete(slices.Clone(instance.UserIDs), idx, idx+1)
		}
		if instance.Source == SourceException && len(instance.UserIDs) == 0 {
			continue
		}
		kept = append(kept, instance)
	}
	day.Shifts = kept
	return day
}

func addExceptionShift(day WorkScheduleDay, userID string, exception ShiftException, lookup ShiftLookup) WorkScheduleDay {
	shiftID := exception.ReplacementShiftID
	if shiftID == "" {
		shiftID = exception.OriginalShiftID
	}

	shift := PlaceholderShift(shiftID)
	if lookup != nil {
		if found, ok := lookup(shiftID); ok {
			shift = found
		} else {
			day.Degraded = true
		}
	} else {
		day.Degraded = true
	}

	assignee := userID
	if exception.ReplacementUserID != "" {
		assignee = exception.ReplacementUserID
	}

	day.Shifts = append(day.Shifts, ShiftInstance{
		Shift:           shift,
		UserIDs:         []string{assignee},
		Source:          SourceException,
		ExceptionID:     exception.ID,
		ReplacedShiftID: exception.OriginalShiftID,
	})
	return day
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
