package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/shift-roster/internal/cycle"
	"github.com/example/shift-roster/internal/metrics"
	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

// DefaultMaxRangeDays bounds range queries; longer spans are rejected
// before any computation starts.
const DefaultMaxRangeDays = 365

// DefaultRangeWorkers bounds the per-day fan-out of range queries.
const DefaultRangeWorkers = 8

// ScheduleServiceConfig carries the engine configuration that used to be
// ambient state: the fixed roster anchor and shape, the shift worked on
// roster fallback days, and operational bounds.
type ScheduleServiceConfig struct {
	Roster         cycle.Roster
	DefaultShiftID string
	MaxRangeDays   int
	RangeWorkers   int
	CacheSize      int
}

// ScheduleService assembles and resolves work schedule days: it selects
// the applicable assignment for a date, evaluates its rule, merges every
// team's duty into a single day, and overlays the requesting user's
// exceptions. Resolved days are memoized per cache generation.
type ScheduleService struct {
	assignments AssignmentRepository
	rules       RuleRepository
	exceptions  ExceptionRepository
	teams       TeamCatalog
	shifts      ShiftCatalog

	roster         cycle.Roster
	defaultShiftID string
	maxRangeDays   int
	rangeWorkers   int

	cache  *dayCache
	logger *slog.Logger
	now    func() time.Time
}

// NewScheduleService wires dependencies for schedule computation.
func NewScheduleService(assignments AssignmentRepository, rules RuleRepository, exceptions ExceptionRepository, teams TeamCatalog, shifts ShiftCatalog, cfg ScheduleServiceConfig, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(assignments, rules, exceptions, teams, shifts, cfg, now, nil)
}

// NewScheduleServiceWithLogger constructs a ScheduleService with a specified logger.
func NewScheduleServiceWithLogger(assignments AssignmentRepository, rules RuleRepository, exceptions ExceptionRepository, teams TeamCatalog, shifts ShiftCatalog, cfg ScheduleServiceConfig, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = DefaultMaxRangeDays
	}
	if cfg.RangeWorkers <= 0 {
		cfg.RangeWorkers = DefaultRangeWorkers
	}
	return &ScheduleService{
		assignments:    assignments,
		rules:          rules,
		exceptions:     exceptions,
		teams:          teams,
		shifts:         shifts,
		roster:         cfg.Roster,
		defaultShiftID: cfg.DefaultShiftID,
		maxRangeDays:   cfg.MaxRangeDays,
		rangeWorkers:   cfg.RangeWorkers,
		cache:          newDayCache(cfg.CacheSize),
		logger:         defaultLogger(logger),
		now:            now,
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// GetScheduleForDate computes the resolved schedule day for the query,
// serving repeated calls for an unmodified date from the cache.
func (s *ScheduleService) GetScheduleForDate(ctx context.Context, query ScheduleQuery) (scheduler.WorkScheduleDay, error) {
	if s == nil {
		return scheduler.WorkScheduleDay{}, fmt.Errorf("ScheduleService is nil")
	}
	if query.Date.IsZero() {
		vErr := &ValidationError{}
		vErr.add("date", "date is required")
		return scheduler.WorkScheduleDay{}, vErr
	}

	key := cacheKey(query)
	day, hit, err := s.cache.GetOrCompute(key, func() (scheduler.WorkScheduleDay, error) {
		return s.computeDay(ctx, query)
	})
	if hit {
		metrics.IncCacheHit()
	} else {
		metrics.IncCacheMiss()
	}
	if err != nil {
		s.loggerWith(ctx, "GetScheduleForDate", "date", query.Date.Format(DateKeyFormat)).
			ErrorContext(ctx, "failed to compute schedule day", "error", err, "error_kind", ErrorKind(err))
		return scheduler.WorkScheduleDay{}, err
	}
	return day, nil
}

// GetScheduleForRange computes every day in [Start, End] as independent
// per-day computations fanned out over a bounded worker pool. Days that
// fail or are cancelled are reported individually; already-computed days
// stay in the result.
func (s *ScheduleService) GetScheduleForRange(ctx context.Context, query RangeQuery) (RangeResult, error) {
	if s == nil {
		return RangeResult{}, fmt.Errorf("ScheduleService is nil")
	}

	vErr := &ValidationError{}
	if query.Start.IsZero() {
		vErr.add("start", "start date is required")
	}
	if query.End.IsZero() {
		vErr.add("end", "end date is required")
	}
	if vErr.HasErrors() {
		return RangeResult{}, vErr
	}

	start := cycle.DateOf(query.Start)
	end := cycle.DateOf(query.End)
	if end.Before(start) {
		vErr.add("range", "end date precedes start date")
		return RangeResult{}, vErr
	}
	span := cycle.DaysBetween(start, end) + 1
	if span > s.maxRangeDays {
		metrics.IncRangeRejected()
		vErr.add("range", fmt.Sprintf("span of %d days exceeds the maximum of %d", span, s.maxRangeDays))
		return RangeResult{}, vErr
	}

	result := RangeResult{
		Days:        make(map[string]scheduler.WorkScheduleDay, span),
		FailedDates: make(map[string]string),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.rangeWorkers)

	for offset := 0; offset < span; offset++ {
		date := start.AddDate(0, 0, offset)
		dateKey := date.Format(DateKeyFormat)

		if err := ctx.Err(); err != nil {
			mu.Lock()
			result.FailedDates[dateKey] = err.Error()
			mu.Unlock()
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			day, err := s.GetScheduleForDate(ctx, ScheduleQuery{
				Date:           date,
				TeamID:         query.TeamID,
				UserID:         query.UserID,
				IncludePending: query.IncludePending,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedDates[dateKey] = err.Error()
				return
			}
			result.Days[dateKey] = day
			if day.Degraded {
				result.DegradedDates = append(result.DegradedDates, dateKey)
			}
		}()
	}
	wg.Wait()

	sort.Strings(result.DegradedDates)

	// Propagate an error only when the whole range produced nothing.
	if len(result.Days) == 0 && span > 0 && ctx.Err() == nil {
		return result, ErrNoSchedule
	}
	return result, nil
}

// IsWorkingDay reports whether the team works on the given date, through
// its assignment when one is active and the fixed roster otherwise.
func (s *ScheduleService) IsWorkingDay(ctx context.Context, date time.Time, teamID string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("ScheduleService is nil")
	}

	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return false, mapRepoError(err)
	}
	for _, team := range teams {
		if team.ID != teamID {
			continue
		}
		duty, _ := s.subjectDuty(ctx, team.ID, team.CycleOffset, cycle.DateOf(date))
		return duty.working, nil
	}
	return false, ErrNotFound
}

// DayInCycle returns the roster cycle position of date at offset zero.
func (s *ScheduleService) DayInCycle(date time.Time) int {
	return s.roster.Position(date, 0)
}

// DaysFromSchemeStart returns the signed day count from the roster scheme
// start to date.
func (s *ScheduleService) DaysFromSchemeStart(date time.Time) int {
	return s.roster.DaysFromSchemeStart(date)
}

// InvalidateCache flips the cache generation. Call after any rule,
// assignment, or exception change.
func (s *ScheduleService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
	metrics.IncCacheInvalidation()
}

// duty is a subject's computed obligation for one date.
type duty struct {
	working bool
	shiftID string
	hasData bool
}

// subjectDuty evaluates the winning assignment for a subject on a date,
// falling back to the fixed roster at the given offset. The returned
// boolean reports whether degraded data was involved.
func (s *ScheduleService) subjectDuty(ctx context.Context, subjectID string, offset int, date time.Time) (duty, bool) {
	assignments, err := s.assignments.FindAssignments(ctx, subjectID, date)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		// Repository trouble degrades to the roster rather than losing the day.
		return s.rosterDuty(offset, date, true), true
	}

	winner, ok := pickAssignment(assignments, date)
	if !ok {
		return s.rosterDuty(offset, date, false), false
	}

	rule, err := s.rules.GetRule(ctx, winner.RuleID)
	if err != nil {
		return s.rosterDuty(offset, date, true), true
	}

	if rule.Frequency == recurrence.FrequencyPattern {
		slot := recurrence.SlotOn(rule.Pattern, rule.StartsOn, date)
		if !recurrence.OccursOn(rule, date) {
			return duty{hasData: true}, false
		}
		return duty{working: true, shiftID: slot.ShiftID, hasData: true}, false
	}

	if !recurrence.OccursOn(rule, date) {
		return duty{hasData: true}, false
	}
	shiftID := winner.ShiftID
	if shiftID == "" {
		shiftID = s.defaultShiftID
	}
	return duty{working: true, shiftID: shiftID, hasData: true}, false
}

func (s *ScheduleService) rosterDuty(offset int, date time.Time, degraded bool) duty {
	return duty{
		working: s.roster.IsWorkingDay(date, offset),
		shiftID: s.defaultShiftID,
		hasData: !degraded,
	}
}

// computeDay assembles the base day across all teams, attaches the
// requesting user, and overlays the user's exceptions.
func (s *ScheduleService) computeDay(ctx context.Context, query ScheduleQuery) (scheduler.WorkScheduleDay, error) {
	date := cycle.DateOf(query.Date)
	day := scheduler.WorkScheduleDay{Date: date}

	teams, err := s.teams.ListTeams(ctx)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return scheduler.WorkScheduleDay{}, mapRepoError(err)
	}

	lookup, catalogDegraded := s.shiftLookup(ctx)
	if catalogDegraded {
		day.Degraded = true
	}

	hasData := len(teams) > 0
	teamShift := make(map[string]string, len(teams))

	for _, team := range teams {
		teamDuty, degraded := s.subjectDuty(ctx, team.ID, team.CycleOffset, date)
		if degraded {
			day.Degraded = true
		}
		if !teamDuty.working {
			day.OffTeamIDs = append(day.OffTeamIDs, team.ID)
			continue
		}
		teamShift[team.ID] = teamDuty.shiftID
		day = mergeTeamShift(day, team.ID, teamDuty.shiftID, lookup)
	}

	if query.UserID != "" {
		userDuty, degraded := s.userDuty(ctx, query, teamShift, date)
		if degraded {
			day.Degraded = true
		}
		if userDuty.hasData {
			hasData = true
		}
		if userDuty.working {
			day = mergeUserShift(day, query.UserID, userDuty.shiftID, lookup)
		}

		exceptions, err := s.exceptions.ListExceptions(ctx, query.UserID, date)
		if err != nil && !errors.Is(err, persistence.ErrNotFound) {
			// Exceptions unavailable: serve the base day, flagged degraded.
			day.Degraded = true
		} else {
			day = scheduler.ResolveDay(day, query.UserID, exceptions, lookup, scheduler.ResolveOptions{IncludePending: query.IncludePending})
		}
	}

	if !hasData {
		return scheduler.WorkScheduleDay{}, ErrNoSchedule
	}

	sort.Strings(day.OffTeamIDs)
	sort.SliceStable(day.Shifts, func(i, j int) bool {
		return day.Shifts[i].Shift.ID < day.Shifts[j].Shift.ID
	})

	metrics.IncDayAssembled()
	if day.Degraded {
		metrics.IncDayDegraded()
		s.loggerWith(ctx, "computeDay", "date", date.Format(DateKeyFormat)).
			WarnContext(ctx, "schedule day assembled with degraded data")
	}
	return day, nil
}

// userDuty resolves the requesting user's own duty: a user-level
// assignment wins; otherwise the user inherits their team's duty when the
// query names a team.
func (s *ScheduleService) userDuty(ctx context.Context, query ScheduleQuery, teamShift map[string]string, date time.Time) (duty, bool) {
	assignments, err := s.assignments.FindAssignments(ctx, query.UserID, date)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return duty{}, true
	}
	if winner, ok := pickAssignment(assignments, date); ok {
		rule, err := s.rules.GetRule(ctx, winner.RuleID)
		if err != nil {
			return duty{hasData: true}, true
		}
		if rule.Frequency == recurrence.FrequencyPattern {
			if !recurrence.OccursOn(rule, date) {
				return duty{hasData: true}, false
			}
			slot := recurrence.SlotOn(rule.Pattern, rule.StartsOn, date)
			return duty{working: true, shiftID: slot.ShiftID, hasData: true}, false
		}
		if !recurrence.OccursOn(rule, date) {
			return duty{hasData: true}, false
		}
		shiftID := winner.ShiftID
		if shiftID == "" {
			shiftID = s.defaultShiftID
		}
		return duty{working: true, shiftID: shiftID, hasData: true}, false
	}

	if query.TeamID != "" {
		if shiftID, ok := teamShift[query.TeamID]; ok {
			return duty{working: true, shiftID: shiftID, hasData: true}, false
		}
	}
	return duty{}, false
}

// pickAssignment selects the winner among overlapping assignment windows:
// active over draft, then most recently created. Expired assignments are
// audit history and never win.
func pickAssignment(assignments []scheduler.TeamAssignment, date time.Time) (scheduler.TeamAssignment, bool) {
	candidates := make([]scheduler.TeamAssignment, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.Status == scheduler.AssignmentExpired {
			continue
		}
		if !assignment.Covers(date) {
			continue
		}
		candidates = append(candidates, assignment)
	}
	if len(candidates) == 0 {
		return scheduler.TeamAssignment{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Status != candidates[j].Status {
			return candidates[i].Status == scheduler.AssignmentActive
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	return candidates[0], true
}

// shiftLookup loads the shift catalog once per assembly. A failed load
// degrades every reference to a placeholder instead of failing the day.
func (s *ScheduleService) shiftLookup(ctx context.Context) (scheduler.ShiftLookup, bool) {
	shifts, err := s.shifts.ListShifts(ctx)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return func(string) (scheduler.Shift, bool) { return scheduler.Shift{}, false }, true
	}
	byID := make(map[string]scheduler.Shift, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID] = shift
	}
	return func(id string) (scheduler.Shift, bool) {
		shift, ok := byID[id]
		return shift, ok
	}, false
}

// mergeTeamShift attaches a team to the instance for shiftID, creating it
// from the catalog (or a placeholder) when absent.
func mergeTeamShift(day scheduler.WorkScheduleDay, teamID, shiftID string, lookup scheduler.ShiftLookup) scheduler.WorkScheduleDay {
	for i := range day.Shifts {
		if day.Shifts[i].Shift.ID == shiftID && day.Shifts[i].Source == scheduler.SourceRoster {
			day.Shifts[i].TeamIDs = append(day.Shifts[i].TeamIDs, teamID)
			return day
		}
	}
	shift, ok := lookup(shiftID)
	if !ok {
		shift = scheduler.PlaceholderShift(shiftID)
		day.Degraded = true
	}
	day.Shifts = append(day.Shifts, scheduler.ShiftInstance{
		Shift:   shift,
		TeamIDs: []string{teamID},
		Source:  scheduler.SourceRoster,
	})
	return day
}

func mergeUserShift(day scheduler.WorkScheduleDay, userID, shiftID string, lookup scheduler.ShiftLookup) scheduler.WorkScheduleDay {
	for i := range day.Shifts {
		if day.Shifts[i].Shift.ID == shiftID && day.Shifts[i].Source == scheduler.SourceRoster {
			day.Shifts[i].UserIDs = append(day.Shifts[i].UserIDs, userID)
			return day
		}
	}
	shift, ok := lookup(shiftID)
	if !ok {
		shift = scheduler.PlaceholderShift(shiftID)
		day.Degraded = true
	}
	day.Shifts = append(day.Shifts, scheduler.ShiftInstance{
		Shift:   shift,
		UserIDs: []string{userID},
		Source:  scheduler.SourceRoster,
	})
	return day
}

func cacheKey(query ScheduleQuery) string {
	return query.Date.UTC().Format(DateKeyFormat) + "|" + query.TeamID + "|" + query.UserID + "|" + strconv.FormatBool(query.IncludePending)
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) || errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "related records are missing or inconsistent")
		return vErr
	}
	return err
}
