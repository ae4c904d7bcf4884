package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/shift-roster/internal/cycle"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
	"github.com/example/shift-roster/internal/testfixtures"
)

// 2024-01-15 is cycle position 13 (rest) at offset 0 and position 11
// (work) at offset 16 for the 2013-11-07 scheme start.
var schemeStart = time.Date(2013, time.November, 7, 0, 0, 0, 0, time.UTC)

func newScheduleService(store *testfixtures.MemoryStore, cfg ScheduleServiceConfig) *ScheduleService {
	if cfg.Roster == (cycle.Roster{}) {
		cfg.Roster = cycle.QuattroDue(schemeStart)
	}
	if cfg.DefaultShiftID == "" {
		cfg.DefaultShiftID = "shift-default"
	}
	return NewScheduleService(store, store, store, store, store, cfg, testfixtures.ReferenceTime)
}

func seedDefaultShift(store *testfixtures.MemoryStore) scheduler.Shift {
	shift := testfixtures.NewShift(testfixtures.WithShiftID("shift-default"))
	store.Seed(nil, []scheduler.Shift{shift}, nil, nil, nil)
	return shift
}

func instanceFor(day scheduler.WorkScheduleDay, shiftID string) (scheduler.ShiftInstance, bool) {
	for _, instance := range day.Shifts {
		if instance.Shift.ID == shiftID {
			return instance, true
		}
	}
	return scheduler.ShiftInstance{}, false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func TestGetScheduleForDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects a zero date", func(t *testing.T) {
		t.Parallel()

		service := newScheduleService(testfixtures.NewMemoryStore(), ScheduleServiceConfig{})
		_, err := service.GetScheduleForDate(ctx, ScheduleQuery{})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["date"]; !ok {
			t.Fatalf("expected a date field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("returns ErrNoSchedule when nothing can produce a day", func(t *testing.T) {
		t.Parallel()

		service := newScheduleService(testfixtures.NewMemoryStore(), ScheduleServiceConfig{})
		_, err := service.GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if !errors.Is(err, ErrNoSchedule) {
			t.Fatalf("expected ErrNoSchedule, got %v", err)
		}
	})

	t.Run("an active assignment beats a newer draft", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		early := testfixtures.NewShift(testfixtures.WithShiftID("shift-early"))
		late := testfixtures.NewShift(testfixtures.WithShiftID("shift-late"))
		rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
		active := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift(early.ID),
			testfixtures.WithAssignmentCreatedAt(testfixtures.ReferenceTime()),
		)
		draft := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift(late.ID),
			testfixtures.WithAssignmentStatus(scheduler.AssignmentDraft),
			testfixtures.WithAssignmentCreatedAt(testfixtures.ReferenceTime().Add(time.Hour)),
		)
		store.Seed([]scheduler.Team{team}, []scheduler.Shift{early, late}, []recurrence.Rule{rule}, []scheduler.TeamAssignment{active, draft}, nil)

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		instance, ok := instanceFor(day, early.ID)
		if !ok {
			t.Fatalf("expected the active assignment's shift, got %+v", day.Shifts)
		}
		if !containsString(instance.TeamIDs, team.ID) {
			t.Fatalf("expected team %s on the shift, got %v", team.ID, instance.TeamIDs)
		}
		if _, ok := instanceFor(day, late.ID); ok {
			t.Fatal("the draft assignment's shift should not appear")
		}
	})

	t.Run("the most recently created active assignment wins", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		older := testfixtures.NewShift(testfixtures.WithShiftID("shift-older"))
		newer := testfixtures.NewShift(testfixtures.WithShiftID("shift-newer"))
		rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
		first := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift(older.ID),
			testfixtures.WithAssignmentCreatedAt(testfixtures.ReferenceTime()),
		)
		second := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift(newer.ID),
			testfixtures.WithAssignmentCreatedAt(testfixtures.ReferenceTime().Add(time.Hour)),
		)
		store.Seed([]scheduler.Team{team}, []scheduler.Shift{older, newer}, []recurrence.Rule{rule}, []scheduler.TeamAssignment{first, second}, nil)

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if _, ok := instanceFor(day, newer.ID); !ok {
			t.Fatalf("expected the newer assignment's shift, got %+v", day.Shifts)
		}
		if _, ok := instanceFor(day, older.ID); ok {
			t.Fatal("the superseded shift should not appear")
		}
	})

	t.Run("expired assignments never win", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		shift := testfixtures.NewShift(testfixtures.WithShiftID("shift-expired"))
		rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
		expired := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift(shift.ID),
			testfixtures.WithAssignmentStatus(scheduler.AssignmentExpired),
		)
		store.Seed([]scheduler.Team{team}, []scheduler.Shift{shift}, []recurrence.Rule{rule}, []scheduler.TeamAssignment{expired}, nil)

		// 2024-01-15 is a rest day at offset 0, so the roster fallback
		// puts the team off duty.
		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if _, ok := instanceFor(day, shift.ID); ok {
			t.Fatal("the expired assignment's shift should not appear")
		}
		if !containsString(day.OffTeamIDs, team.ID) {
			t.Fatalf("expected team %s off duty, got %v", team.ID, day.OffTeamIDs)
		}
	})

	t.Run("phase shifted teams split work and rest on the roster fallback", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		defaultShift := seedDefaultShift(store)
		resting := testfixtures.NewTeam()
		working := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
		store.Seed([]scheduler.Team{resting, working}, nil, nil, nil, nil)

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		instance, ok := instanceFor(day, defaultShift.ID)
		if !ok {
			t.Fatalf("expected the default shift, got %+v", day.Shifts)
		}
		if !containsString(instance.TeamIDs, working.ID) {
			t.Fatalf("expected the offset-16 team on shift, got %v", instance.TeamIDs)
		}
		if !containsString(day.OffTeamIDs, resting.ID) {
			t.Fatalf("expected the offset-0 team off duty, got %v", day.OffTeamIDs)
		}
		if day.Degraded {
			t.Fatal("a fully resolved day should not be degraded")
		}
	})

	t.Run("a pattern rule walks its slots from the rule start", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		morning := testfixtures.NewShift(testfixtures.WithShiftID("shift-morning"))
		night := testfixtures.NewShift(testfixtures.WithShiftID("shift-night"), testfixtures.WithShiftTimes("22:00", "06:00"))
		rule := testfixtures.NewRule(
			testfixtures.WithRuleStart(testfixtures.ReferenceDate()),
			testfixtures.WithRulePattern(recurrence.Work(morning.ID), recurrence.Work(night.ID), recurrence.Rest),
		)
		assignment := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
		)
		store.Seed([]scheduler.Team{team}, []scheduler.Shift{morning, night}, []recurrence.Rule{rule}, []scheduler.TeamAssignment{assignment}, nil)
		service := newScheduleService(store, ScheduleServiceConfig{})

		expected := []struct {
			offset  int
			shiftID string
		}{
			{0, morning.ID},
			{1, night.ID},
			{2, ""},
			{3, morning.ID},
		}
		for _, want := range expected {
			date := testfixtures.ReferenceDate().AddDate(0, 0, want.offset)
			day, err := service.GetScheduleForDate(ctx, ScheduleQuery{Date: date})
			if err != nil {
				t.Fatalf("GetScheduleForDate(%s): %v", date.Format(DateKeyFormat), err)
			}
			if want.shiftID == "" {
				if !containsString(day.OffTeamIDs, team.ID) {
					t.Fatalf("expected a rest slot on %s, got %+v", date.Format(DateKeyFormat), day.Shifts)
				}
				continue
			}
			instance, ok := instanceFor(day, want.shiftID)
			if !ok || !containsString(instance.TeamIDs, team.ID) {
				t.Fatalf("expected shift %s on %s, got %+v", want.shiftID, date.Format(DateKeyFormat), day.Shifts)
			}
		}
	})

	t.Run("a dangling shift reference degrades to a placeholder", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
		assignment := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift("shift-ghost"),
		)
		store.Seed([]scheduler.Team{team}, nil, []recurrence.Rule{rule}, []scheduler.TeamAssignment{assignment}, nil)

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{Date: testfixtures.ReferenceDate()})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if !day.Degraded {
			t.Fatal("expected the day to be flagged degraded")
		}
		instance, ok := instanceFor(day, "shift-ghost")
		if !ok {
			t.Fatalf("expected a placeholder instance, got %+v", day.Shifts)
		}
		if !instance.Shift.IsPlaceholder() {
			t.Fatalf("expected a placeholder shift, got %+v", instance.Shift)
		}
	})

	t.Run("a user inherits the duty of the queried team", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		defaultShift := seedDefaultShift(store)
		team := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
		store.Seed([]scheduler.Team{team}, nil, nil, nil, nil)

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{
			Date:   testfixtures.ReferenceDate(),
			TeamID: team.ID,
			UserID: "user-001",
		})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if got := day.UserShiftIDs("user-001"); !containsString(got, defaultShift.ID) {
			t.Fatalf("expected the user on the default shift, got %v", got)
		}
	})

	t.Run("an approved vacation removes the user from the day", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
		vacation := testfixtures.NewException()
		store.Seed([]scheduler.Team{team}, nil, nil, nil, []scheduler.ShiftException{vacation})

		day, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForDate(ctx, ScheduleQuery{
			Date:   testfixtures.ReferenceDate(),
			TeamID: team.ID,
			UserID: vacation.UserID,
		})
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if got := day.UserShiftIDs(vacation.UserID); len(got) != 0 {
			t.Fatalf("expected the user off the day entirely, got %v", got)
		}
		if day.Degraded {
			t.Fatal("an approved exception should not degrade the day")
		}
	})

	t.Run("pending exceptions apply only when previewed", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
		overtimeShift := testfixtures.NewShift(testfixtures.WithShiftID("shift-overtime"))
		overtime := testfixtures.NewException(
			testfixtures.WithExceptionType(scheduler.ExceptionOvertime),
			testfixtures.WithExceptionStatus(scheduler.ApprovalPending),
			testfixtures.WithExceptionReplacement(overtimeShift.ID),
		)
		store.Seed([]scheduler.Team{team}, []scheduler.Shift{overtimeShift}, nil, nil, []scheduler.ShiftException{overtime})
		service := newScheduleService(store, ScheduleServiceConfig{})

		query := ScheduleQuery{Date: testfixtures.ReferenceDate(), TeamID: team.ID, UserID: overtime.UserID}
		day, err := service.GetScheduleForDate(ctx, query)
		if err != nil {
			t.Fatalf("GetScheduleForDate: %v", err)
		}
		if _, ok := instanceFor(day, overtimeShift.ID); ok {
			t.Fatal("a pending exception should not apply by default")
		}

		query.IncludePending = true
		preview, err := service.GetScheduleForDate(ctx, query)
		if err != nil {
			t.Fatalf("GetScheduleForDate preview: %v", err)
		}
		instance, ok := instanceFor(preview, overtimeShift.ID)
		if !ok {
			t.Fatalf("expected the overtime shift in preview, got %+v", preview.Shifts)
		}
		if instance.Source != scheduler.SourceException {
			t.Fatalf("expected an exception-sourced instance, got %q", instance.Source)
		}
	})
}

func TestGetScheduleForRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("computes each day and reports degraded dates", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam()
		rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
		assignment := testfixtures.NewAssignment(
			testfixtures.WithAssignmentSubject(team.ID),
			testfixtures.WithAssignmentRule(rule.ID),
			testfixtures.WithAssignmentShift("shift-ghost"),
		)
		store.Seed([]scheduler.Team{team}, nil, []recurrence.Rule{rule}, []scheduler.TeamAssignment{assignment}, nil)

		result, err := newScheduleService(store, ScheduleServiceConfig{}).GetScheduleForRange(ctx, RangeQuery{
			Start: testfixtures.ReferenceDate(),
			End:   testfixtures.ReferenceDate().AddDate(0, 0, 2),
		})
		if err != nil {
			t.Fatalf("GetScheduleForRange: %v", err)
		}
		if len(result.Days) != 3 {
			t.Fatalf("expected 3 days, got %d", len(result.Days))
		}
		if len(result.DegradedDates) != 3 {
			t.Fatalf("expected every date degraded, got %v", result.DegradedDates)
		}
		for i := 1; i < len(result.DegradedDates); i++ {
			if result.DegradedDates[i-1] > result.DegradedDates[i] {
				t.Fatalf("degraded dates not sorted: %v", result.DegradedDates)
			}
		}
		if len(result.FailedDates) != 0 {
			t.Fatalf("expected no failures, got %v", result.FailedDates)
		}
	})

	t.Run("rejects spans beyond the configured maximum", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		seedDefaultShift(store)
		team := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
		store.Seed([]scheduler.Team{team}, nil, nil, nil, nil)
		service := newScheduleService(store, ScheduleServiceConfig{MaxRangeDays: 5})

		result, err := service.GetScheduleForRange(ctx, RangeQuery{
			Start: testfixtures.ReferenceDate(),
			End:   testfixtures.ReferenceDate().AddDate(0, 0, 4),
		})
		if err != nil {
			t.Fatalf("a 5 day span should pass: %v", err)
		}
		if len(result.Days) != 5 {
			t.Fatalf("expected 5 days, got %d", len(result.Days))
		}

		_, err = service.GetScheduleForRange(ctx, RangeQuery{
			Start: testfixtures.ReferenceDate(),
			End:   testfixtures.ReferenceDate().AddDate(0, 0, 5),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a validation error for 6 days, got %v", err)
		}
		if _, ok := vErr.FieldErrors["range"]; !ok {
			t.Fatalf("expected a range field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("a full leap year exceeds the default maximum", func(t *testing.T) {
		t.Parallel()

		service := newScheduleService(testfixtures.NewMemoryStore(), ScheduleServiceConfig{})
		_, err := service.GetScheduleForRange(ctx, RangeQuery{
			Start: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a validation error for 366 days, got %v", err)
		}
	})

	t.Run("rejects an inverted range", func(t *testing.T) {
		t.Parallel()

		service := newScheduleService(testfixtures.NewMemoryStore(), ScheduleServiceConfig{})
		_, err := service.GetScheduleForRange(ctx, RangeQuery{
			Start: testfixtures.ReferenceDate(),
			End:   testfixtures.ReferenceDate().AddDate(0, 0, -1),
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected a validation error, got %v", err)
		}
	})

	t.Run("reports per-day failures without aborting the range", func(t *testing.T) {
		t.Parallel()

		store := testfixtures.NewMemoryStore()
		store.FailWith = errors.New("storage offline")
		service := newScheduleService(store, ScheduleServiceConfig{})

		result, err := service.GetScheduleForRange(ctx, RangeQuery{
			Start: testfixtures.ReferenceDate(),
			End:   testfixtures.ReferenceDate().AddDate(0, 0, 2),
		})
		if !errors.Is(err, ErrNoSchedule) {
			t.Fatalf("expected ErrNoSchedule when every day fails, got %v", err)
		}
		if len(result.FailedDates) != 3 {
			t.Fatalf("expected 3 failed dates, got %v", result.FailedDates)
		}
		for date, reason := range result.FailedDates {
			if reason == "" {
				t.Fatalf("expected a failure reason for %s", date)
			}
		}
	})
}

func TestIsWorkingDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := testfixtures.NewMemoryStore()
	seedDefaultShift(store)
	resting := testfixtures.NewTeam()
	working := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
	assigned := testfixtures.NewTeam()
	rule := testfixtures.NewRule(testfixtures.WithRuleStart(testfixtures.ReferenceDate().AddDate(0, -2, 0)))
	assignment := testfixtures.NewAssignment(
		testfixtures.WithAssignmentSubject(assigned.ID),
		testfixtures.WithAssignmentRule(rule.ID),
	)
	store.Seed([]scheduler.Team{resting, working, assigned}, nil, []recurrence.Rule{rule}, []scheduler.TeamAssignment{assignment}, nil)
	service := newScheduleService(store, ScheduleServiceConfig{})

	t.Run("roster fallback follows the team offset", func(t *testing.T) {
		t.Parallel()

		got, err := service.IsWorkingDay(ctx, testfixtures.ReferenceDate(), resting.ID)
		if err != nil {
			t.Fatalf("IsWorkingDay: %v", err)
		}
		if got {
			t.Fatal("offset 0 should rest on 2024-01-15")
		}
		got, err = service.IsWorkingDay(ctx, testfixtures.ReferenceDate(), working.ID)
		if err != nil {
			t.Fatalf("IsWorkingDay: %v", err)
		}
		if !got {
			t.Fatal("offset 16 should work on 2024-01-15")
		}
	})

	t.Run("an assignment overrides the roster", func(t *testing.T) {
		t.Parallel()

		// The daily rule fires on the roster rest day.
		got, err := service.IsWorkingDay(ctx, testfixtures.ReferenceDate(), assigned.ID)
		if err != nil {
			t.Fatalf("IsWorkingDay: %v", err)
		}
		if !got {
			t.Fatal("the daily assignment should put the team on duty")
		}
	})

	t.Run("unknown teams are ErrNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := service.IsWorkingDay(ctx, testfixtures.ReferenceDate(), "team-nope")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCycleAccessors(t *testing.T) {
	t.Parallel()

	service := newScheduleService(testfixtures.NewMemoryStore(), ScheduleServiceConfig{})

	if got := service.DayInCycle(testfixtures.ReferenceDate()); got != 13 {
		t.Fatalf("expected cycle position 13 for 2024-01-15, got %d", got)
	}
	if got := service.DaysFromSchemeStart(testfixtures.ReferenceDate()); got != 3721 {
		t.Fatalf("expected 3721 days from scheme start, got %d", got)
	}
	if got := service.DaysFromSchemeStart(schemeStart.AddDate(0, 0, -3)); got != -3 {
		t.Fatalf("expected -3 days before scheme start, got %d", got)
	}
}

func TestScheduleCacheLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := testfixtures.NewMemoryStore()
	seedDefaultShift(store)
	team := testfixtures.NewTeam(testfixtures.WithTeamOffset(16))
	store.Seed([]scheduler.Team{team}, nil, nil, nil, nil)
	service := newScheduleService(store, ScheduleServiceConfig{})

	query := ScheduleQuery{Date: testfixtures.ReferenceDate(), TeamID: team.ID, UserID: "user-001"}
	day, err := service.GetScheduleForDate(ctx, query)
	if err != nil {
		t.Fatalf("GetScheduleForDate: %v", err)
	}
	if got := day.UserShiftIDs("user-001"); len(got) != 1 {
		t.Fatalf("expected the user on one shift, got %v", got)
	}

	// A write behind the cache stays invisible until invalidation.
	vacation := testfixtures.NewException()
	store.Seed(nil, nil, nil, nil, []scheduler.ShiftException{vacation})

	cached, err := service.GetScheduleForDate(ctx, query)
	if err != nil {
		t.Fatalf("GetScheduleForDate cached: %v", err)
	}
	if got := cached.UserShiftIDs("user-001"); len(got) != 1 {
		t.Fatalf("expected the cached day unchanged, got %v", got)
	}

	service.InvalidateCache()
	fresh, err := service.GetScheduleForDate(ctx, query)
	if err != nil {
		t.Fatalf("GetScheduleForDate after invalidation: %v", err)
	}
	if got := fresh.UserShiftIDs("user-001"); len(got) != 0 {
		t.Fatalf("expected the vacation applied after invalidation, got %v", got)
	}
}
