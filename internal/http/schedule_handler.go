package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/shift-roster/internal/application"
	"github.com/example/shift-roster/internal/scheduler"
)

type scheduleService interface {
	GetScheduleForDate(ctx context.Context, query application.ScheduleQuery) (scheduler.WorkScheduleDay, error)
	GetScheduleForRange(ctx context.Context, query application.RangeQuery) (application.RangeResult, error)
	IsWorkingDay(ctx context.Context, date time.Time, teamID string) (bool, error)
	DayInCycle(date time.Time) int
	DaysFromSchemeStart(date time.Time) int
	InvalidateCache()
}

// ScheduleHandler serves the read side of the roster: resolved days,
// ranges, cycle arithmetic, and cache invalidation.
type ScheduleHandler struct {
	service   scheduleService
	responder responder
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, responder: newResponder(logger)}
}

// Day answers GET /schedule/days/{date}.
func (h *ScheduleHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw, ok := DateFromContext(r.Context())
	date, err := parseDateParam(raw)
	if !ok || err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	query := application.ScheduleQuery{
		Date:           date,
		TeamID:         strings.TrimSpace(r.URL.Query().Get("team")),
		UserID:         strings.TrimSpace(r.URL.Query().Get("user")),
		IncludePending: boolParam(r.URL.Query(), "include_pending"),
	}

	day, err := h.service.GetScheduleForDate(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDayDTO(day))
}

// Range answers GET /schedule/range.
func (h *ScheduleHandler) Range(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	values := r.URL.Query()
	start, startErr := parseDateParam(values.Get("start"))
	end, endErr := parseDateParam(values.Get("end"))
	if startErr != nil || endErr != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	query := application.RangeQuery{
		Start:          start,
		End:            end,
		TeamID:         strings.TrimSpace(values.Get("team")),
		UserID:         strings.TrimSpace(values.Get("user")),
		IncludePending: boolParam(values, "include_pending"),
	}

	result, err := h.service.GetScheduleForRange(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toRangeDTO(result))
}

// TeamWorking answers GET /teams/{id}/working.
func (h *ScheduleHandler) TeamWorking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	teamID, ok := TeamIDFromContext(r.Context())
	if !ok || strings.TrimSpace(teamID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTeamID)
		return
	}
	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	working, err := h.service.IsWorkingDay(r.Context(), date, teamID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workingResponse{
		TeamID:  teamID,
		Date:    date.Format(application.DateKeyFormat),
		Working: working,
	})
}

// Cycle answers GET /cycle.
func (h *ScheduleHandler) Cycle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, cycleResponse{
		Date:                date.Format(application.DateKeyFormat),
		DayInCycle:          h.service.DayInCycle(date),
		DaysFromSchemeStart: h.service.DaysFromSchemeStart(date),
	})
}

// InvalidateCache answers POST /cache/invalidations.
func (h *ScheduleHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.service.InvalidateCache()
	handlerLogger(r.Context(), h.responder.logger, "ScheduleHandler", "InvalidateCache").
		InfoContext(r.Context(), "schedule cache invalidated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	return time.Parse(application.DateKeyFormat, value)
}

func boolParam(values url.Values, name string) bool {
	switch strings.ToLower(strings.TrimSpace(values.Get(name))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

type shiftDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	BreakStart    string `json:"break_start,omitempty"`
	BreakEnd      string `json:"break_end,omitempty"`
	Color         string `json:"color,omitempty"`
	SpansMidnight bool   `json:"spans_midnight"`
	Placeholder   bool   `json:"placeholder,omitempty"`
}

func toShiftDTO(shift scheduler.Shift) shiftDTO {
	return shiftDTO{
		ID:            shift.ID,
		Name:          shift.Name,
		StartTime:     shift.StartTime,
		EndTime:       shift.EndTime,
		BreakStart:    shift.BreakStart,
		BreakEnd:      shift.BreakEnd,
		Color:         shift.Color,
		SpansMidnight: shift.SpansMidnight(),
		Placeholder:   shift.IsPlaceholder(),
	}
}

type shiftInstanceDTO struct {
	Shift           shiftDTO `json:"shift"`
	TeamIDs         []string `json:"team_ids,omitempty"`
	UserIDs         []string `json:"user_ids,omitempty"`
	Source          string   `json:"source"`
	ExceptionID     string   `json:"exception_id,omitempty"`
	ReplacedShiftID string   `json:"replaced_shift_id,omitempty"`
}

type dayDTO struct {
	Date       string             `json:"date"`
	Shifts     []shiftInstanceDTO `json:"shifts"`
	OffTeamIDs []string           `json:"off_team_ids,omitempty"`
	Degraded   bool               `json:"degraded,omitempty"`
}

func toDayDTO(day scheduler.WorkScheduleDay) dayDTO {
	dto := dayDTO{
		Date:       day.Date.Format(application.DateKeyFormat),
		Shifts:     make([]shiftInstanceDTO, 0, len(day.Shifts)),
		OffTeamIDs: day.OffTeamIDs,
		Degraded:   day.Degraded,
	}
	for _, instance := range day.Shifts {
		dto.Shifts = append(dto.Shifts, shiftInstanceDTO{
			Shift:           toShiftDTO(instance.Shift),
			TeamIDs:         instance.TeamIDs,
			UserIDs:         instance.UserIDs,
			Source:          string(instance.Source),
			ExceptionID:     instance.ExceptionID,
			ReplacedShiftID: instance.ReplacedShiftID,
		})
	}
	return dto
}

type rangeDTO struct {
	Days          map[string]dayDTO `json:"days"`
	DegradedDates []string          `json:"degraded_dates,omitempty"`
	FailedDates   map[string]string `json:"failed_dates,omitempty"`
}

func toRangeDTO(result application.RangeResult) rangeDTO {
	dto := rangeDTO{
		Days:          make(map[string]dayDTO, len(result.Days)),
		DegradedDates: result.DegradedDates,
		FailedDates:   result.FailedDates,
	}
	for key, day := range result.Days {
		dto.Days[key] = toDayDTO(day)
	}
	return dto
}

type workingResponse struct {
	TeamID  string `json:"team_id"`
	Date    string `json:"date"`
	Working bool   `json:"working"`
}

type cycleResponse struct {
	Date                string `json:"date"`
	DayInCycle          int    `json:"day_in_cycle"`
	DaysFromSchemeStart int    `json:"days_from_scheme_start"`
}
