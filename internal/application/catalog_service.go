package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/shift-roster/internal/scheduler"
)

// CatalogService manages the team and shift catalogs. Both are setup-time
// data: teams carry immutable cycle offsets, shifts are templates shared
// by many schedule days.
type CatalogService struct {
	teams       TeamCatalog
	shifts      ShiftCatalog
	roster      RosterShape
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// RosterShape exposes the cycle length used to validate team offsets.
type RosterShape interface {
	CycleLength() int
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(teams TeamCatalog, shifts ShiftCatalog, roster RosterShape, idGenerator func() string, now func() time.Time) *CatalogService {
	return NewCatalogServiceWithLogger(teams, shifts, roster, idGenerator, now, nil)
}

// NewCatalogServiceWithLogger constructs a catalog service with a specified logger.
func NewCatalogServiceWithLogger(teams TeamCatalog, shifts ShiftCatalog, roster RosterShape, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		teams:       teams,
		shifts:      shifts,
		roster:      roster,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

// CreateTeam validates input and persists a new team.
func (s *CatalogService) CreateTeam(ctx context.Context, input TeamInput) (team scheduler.Team, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTeam", "team_name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create team", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("team_id", team.ID).InfoContext(ctx, "team created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.CycleOffset < 0 {
		vErr.add("cycle_offset", "cycle offset must not be negative")
	}
	if s.roster != nil && input.CycleOffset >= s.roster.CycleLength() {
		vErr.add("cycle_offset", fmt.Sprintf("cycle offset must be below the cycle length of %d", s.roster.CycleLength()))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	team = scheduler.Team{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		CycleOffset: input.CycleOffset,
	}

	if s.teams == nil {
		return
	}
	var persisted scheduler.Team
	persisted, err = s.teams.CreateTeam(ctx, team)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	team = persisted
	return
}

// ListTeams returns the team catalog ordered by name.
func (s *CatalogService) ListTeams(ctx context.Context) ([]scheduler.Team, error) {
	if s == nil || s.teams == nil {
		return nil, fmt.Errorf("team catalog not configured")
	}
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

// CreateShift validates a shift template and persists it.
func (s *CatalogService) CreateShift(ctx context.Context, input ShiftInput) (shift scheduler.Shift, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateShift", "shift_name", input.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create shift", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("shift_id", shift.ID).InfoContext(ctx, "shift created")
	}()

	shift = scheduler.Shift{
		ID:         s.idGenerator(),
		Name:       strings.TrimSpace(input.Name),
		StartTime:  strings.TrimSpace(input.StartTime),
		EndTime:    strings.TrimSpace(input.EndTime),
		BreakStart: strings.TrimSpace(input.BreakStart),
		BreakEnd:   strings.TrimSpace(input.BreakEnd),
		Color:      strings.TrimSpace(input.Color),
	}
	if verr := shift.Validate(); verr != nil {
		vErr := &ValidationError{}
		vErr.add("shift", verr.Error())
		err = vErr
		return
	}

	if s.shifts == nil {
		return
	}
	var persisted scheduler.Shift
	persisted, err = s.shifts.CreateShift(ctx, shift)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	shift = persisted
	return
}

// ListShifts returns the shift catalog ordered by name.
func (s *CatalogService) ListShifts(ctx context.Context) ([]scheduler.Shift, error) {
	if s == nil || s.shifts == nil {
		return nil, fmt.Errorf("shift catalog not configured")
	}
	shifts, err := s.shifts.ListShifts(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Name < shifts[j].Name })
	return shifts, nil
}
