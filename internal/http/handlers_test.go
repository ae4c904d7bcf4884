package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/shift-roster/internal/application"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

type stubScheduleService struct {
	day         scheduler.WorkScheduleDay
	dayErr      error
	lastQuery   application.ScheduleQuery
	rangeResult application.RangeResult
	rangeErr    error
	working     bool
	workingErr  error
	invalidated int
}

func (s *stubScheduleService) GetScheduleForDate(_ context.Context, query application.ScheduleQuery) (scheduler.WorkScheduleDay, error) {
	s.lastQuery = query
	return s.day, s.dayErr
}

func (s *stubScheduleService) GetScheduleForRange(_ context.Context, _ application.RangeQuery) (application.RangeResult, error) {
	return s.rangeResult, s.rangeErr
}

func (s *stubScheduleService) IsWorkingDay(_ context.Context, _ time.Time, _ string) (bool, error) {
	return s.working, s.workingErr
}

func (s *stubScheduleService) DayInCycle(_ time.Time) int { return 7 }

func (s *stubScheduleService) DaysFromSchemeStart(_ time.Time) int { return 3655 }

func (s *stubScheduleService) InvalidateCache() { s.invalidated++ }

type stubCatalogService struct {
	team     scheduler.Team
	teamErr  error
	shifts   []scheduler.Shift
	shiftErr error
}

func (s *stubCatalogService) CreateTeam(_ context.Context, input application.TeamInput) (scheduler.Team, error) {
	if s.teamErr != nil {
		return scheduler.Team{}, s.teamErr
	}
	s.team = scheduler.Team{ID: "team-1", Name: input.Name, CycleOffset: input.CycleOffset}
	return s.team, nil
}

func (s *stubCatalogService) ListTeams(_ context.Context) ([]scheduler.Team, error) {
	return []scheduler.Team{s.team}, s.teamErr
}

func (s *stubCatalogService) CreateShift(_ context.Context, input application.ShiftInput) (scheduler.Shift, error) {
	return scheduler.Shift{ID: "shift-1", Name: input.Name, StartTime: input.StartTime, EndTime: input.EndTime}, s.shiftErr
}

func (s *stubCatalogService) ListShifts(_ context.Context) ([]scheduler.Shift, error) {
	return s.shifts, s.shiftErr
}

type stubRosterService struct {
	rule        recurrence.Rule
	ruleErr     error
	assignment  scheduler.TeamAssignment
	exception   scheduler.ShiftException
	lastSubject string
}

func (s *stubRosterService) CreateRule(_ context.Context, _ application.RuleInput) (recurrence.Rule, error) {
	return s.rule, s.ruleErr
}

func (s *stubRosterService) ListRules(_ context.Context) ([]recurrence.Rule, error) {
	return []recurrence.Rule{s.rule}, s.ruleErr
}

func (s *stubRosterService) CreateAssignment(_ context.Context, _ application.AssignmentInput) (scheduler.TeamAssignment, error) {
	return s.assignment, nil
}

func (s *stubRosterService) ListAssignments(_ context.Context, subjectID string) ([]scheduler.TeamAssignment, error) {
	s.lastSubject = subjectID
	return []scheduler.TeamAssignment{s.assignment}, nil
}

func (s *stubRosterService) CreateException(_ context.Context, _ application.ExceptionInput) (scheduler.ShiftException, error) {
	return s.exception, nil
}

func newTestRouter(svc *stubScheduleService, catalog *stubCatalogService, roster *stubRosterService, health Pinger) http.Handler {
	return NewRouter(RouterConfig{
		Schedules: NewScheduleHandler(svc, nil),
		Admin:     NewAdminHandler(catalog, roster, nil),
		Health:    health,
	})
}

func TestScheduleDayEndpoint(t *testing.T) {
	day := scheduler.WorkScheduleDay{
		Date: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Shifts: []scheduler.ShiftInstance{
			{
				Shift:   scheduler.Shift{ID: "shift-day", Name: "Day", StartTime: "08:00", EndTime: "16:00"},
				TeamIDs: []string{"team-a"},
				Source:  scheduler.SourceRoster,
			},
		},
		OffTeamIDs: []string{"team-b"},
	}

	t.Run("resolves a day", func(t *testing.T) {
		svc := &stubScheduleService{day: day}
		router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/schedule/days/2024-01-15?user=user-1&include_pending=true", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
		}
		if svc.lastQuery.UserID != "user-1" || !svc.lastQuery.IncludePending {
			t.Fatalf("query not forwarded: %+v", svc.lastQuery)
		}
		var got dayDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Date != "2024-01-15" || len(got.Shifts) != 1 {
			t.Fatalf("unexpected body: %+v", got)
		}
		if got.Shifts[0].Shift.ID != "shift-day" || got.Shifts[0].Source != "roster" {
			t.Fatalf("unexpected shift instance: %+v", got.Shifts[0])
		}
		if len(got.OffTeamIDs) != 1 || got.OffTeamIDs[0] != "team-b" {
			t.Fatalf("unexpected off teams: %v", got.OffTeamIDs)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/schedule/days/15-01-2024", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("maps a missing schedule to its own error code", func(t *testing.T) {
		svc := &stubScheduleService{dayErr: application.ErrNoSchedule}
		router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/schedule/days/2024-01-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.ErrorCode != "no_schedule" {
			t.Fatalf("error code %q, want no_schedule", resp.ErrorCode)
		}
	})

	t.Run("maps validation errors to field details", func(t *testing.T) {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"range": "span of 400 days exceeds the maximum of 365"}}
		svc := &stubScheduleService{rangeErr: vErr}
		router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/schedule/range?start=2024-01-01&end=2025-02-04", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status %d, want 422", rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Errors["range"] == "" {
			t.Fatalf("expected range field error, got %+v", resp)
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/schedule/days/2024-01-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("status %d, want 405", rec.Code)
		}
	})
}

func TestScheduleRangeEndpoint(t *testing.T) {
	svc := &stubScheduleService{
		rangeResult: application.RangeResult{
			Days: map[string]scheduler.WorkScheduleDay{
				"2024-01-01": {Date: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
				"2024-01-02": {Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Degraded: true},
			},
			DegradedDates: []string{"2024-01-02"},
			FailedDates:   map[string]string{"2024-01-03": "storage unavailable"},
		},
	}
	router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/schedule/range?start=2024-01-01&end=2024-01-03", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var got rangeDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got.Days))
	}
	if got.FailedDates["2024-01-03"] != "storage unavailable" {
		t.Fatalf("failed dates not reported: %+v", got.FailedDates)
	}
	if len(got.DegradedDates) != 1 || got.DegradedDates[0] != "2024-01-02" {
		t.Fatalf("degraded dates not reported: %+v", got.DegradedDates)
	}
}

func TestTeamWorkingEndpoint(t *testing.T) {
	t.Run("reports a working day", func(t *testing.T) {
		svc := &stubScheduleService{working: true}
		router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/teams/team-a/working?date=2024-01-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
		}
		var got workingResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.Working || got.TeamID != "team-a" || got.Date != "2024-01-15" {
			t.Fatalf("unexpected body: %+v", got)
		}
	})

	t.Run("maps unknown teams to 404", func(t *testing.T) {
		svc := &stubScheduleService{workingErr: application.ErrNotFound}
		router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/teams/ghost/working?date=2024-01-15", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status %d, want 404", rec.Code)
		}
	})
}

func TestCycleEndpoint(t *testing.T) {
	router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/cycle?date=2024-01-15", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	var got cycleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DayInCycle != 7 || got.DaysFromSchemeStart != 3655 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestCacheInvalidationEndpoint(t *testing.T) {
	svc := &stubScheduleService{}
	router := newTestRouter(svc, &stubCatalogService{}, &stubRosterService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/cache/invalidations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", rec.Code)
	}
	if svc.invalidated != 1 {
		t.Fatalf("expected one invalidation, got %d", svc.invalidated)
	}
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("creates a team", func(t *testing.T) {
		catalog := &stubCatalogService{}
		router := newTestRouter(&stubScheduleService{}, catalog, &stubRosterService{}, nil)

		body := strings.NewReader(`{"name":"Team A","cycle_offset":4}`)
		req := httptest.NewRequest(http.MethodPost, "/teams", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
		}
		var got teamDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Name != "Team A" || got.CycleOffset != 4 {
			t.Fatalf("unexpected body: %+v", got)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("maps duplicates to 409", func(t *testing.T) {
		catalog := &stubCatalogService{teamErr: application.ErrAlreadyExists}
		router := newTestRouter(&stubScheduleService{}, catalog, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(`{"name":"Team A"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status %d, want 409", rec.Code)
		}
	})

	t.Run("lists assignments by subject", func(t *testing.T) {
		roster := &stubRosterService{
			assignment: scheduler.TeamAssignment{
				ID:        "asg-1",
				SubjectID: "team-a",
				RuleID:    "rule-1",
				StartsOn:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
				Status:    scheduler.AssignmentActive,
			},
		}
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, roster, nil)

		req := httptest.NewRequest(http.MethodGet, "/assignments?subject=team-a", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
		}
		if roster.lastSubject != "team-a" {
			t.Fatalf("subject not forwarded: %q", roster.lastSubject)
		}
		var got listResponse[assignmentDTO]
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got.Items) != 1 || got.Items[0].ID != "asg-1" {
			t.Fatalf("unexpected body: %+v", got)
		}
	})

	t.Run("requires the subject parameter", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/assignments", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("round trips rule pattern slots", func(t *testing.T) {
		roster := &stubRosterService{
			rule: recurrence.Rule{
				ID:        "rule-1",
				Frequency: recurrence.FrequencyPattern,
				Interval:  1,
				StartsOn:  time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				Pattern:   []recurrence.Slot{recurrence.Work("shift-early"), recurrence.Rest},
			},
		}
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, roster, nil)

		body := strings.NewReader(`{"frequency":"pattern","interval":1,"starts_on":"2024-03-01","pattern_slots":["shift-early",""]}`)
		req := httptest.NewRequest(http.MethodPost, "/rules", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
		}
		var got ruleDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Frequency != "pattern" || len(got.PatternSlots) != 2 {
			t.Fatalf("unexpected body: %+v", got)
		}
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(_ context.Context) error { return p.err }

func TestHealthzEndpoint(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, stubPinger{})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
	})

	t.Run("database unreachable", func(t *testing.T) {
		router := newTestRouter(&stubScheduleService{}, &stubCatalogService{}, &stubRosterService{}, stubPinger{err: errors.New("closed")})

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status %d, want 503", rec.Code)
		}
	})
}
