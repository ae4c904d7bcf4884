package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/shift-roster/internal/application"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

type catalogService interface {
	CreateTeam(ctx context.Context, input application.TeamInput) (scheduler.Team, error)
	ListTeams(ctx context.Context) ([]scheduler.Team, error)
	CreateShift(ctx context.Context, input application.ShiftInput) (scheduler.Shift, error)
	ListShifts(ctx context.Context) ([]scheduler.Shift, error)
}

type rosterService interface {
	CreateRule(ctx context.Context, input application.RuleInput) (recurrence.Rule, error)
	ListRules(ctx context.Context) ([]recurrence.Rule, error)
	CreateAssignment(ctx context.Context, input application.AssignmentInput) (scheduler.TeamAssignment, error)
	ListAssignments(ctx context.Context, subjectID string) ([]scheduler.TeamAssignment, error)
	CreateException(ctx context.Context, input application.ExceptionInput) (scheduler.ShiftException, error)
}

// AdminHandler serves the write side of the roster: the catalog and rule
// data the schedule is computed from.
type AdminHandler struct {
	catalog   catalogService
	roster    rosterService
	responder responder
}

func NewAdminHandler(catalog catalogService, roster rosterService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, roster: roster, responder: newResponder(logger)}
}

func (h *AdminHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	team, err := h.catalog.CreateTeam(r.Context(), application.TeamInput{
		Name:        strings.TrimSpace(req.Name),
		CycleOffset: req.CycleOffset,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTeamDTO(team))
}

func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	teams, err := h.catalog.ListTeams(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]teamDTO, 0, len(teams))
	for _, team := range teams {
		out = append(out, toTeamDTO(team))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[teamDTO]{Items: out})
}

func (h *AdminHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	shift, err := h.catalog.CreateShift(r.Context(), application.ShiftInput{
		Name:       strings.TrimSpace(req.Name),
		StartTime:  strings.TrimSpace(req.StartTime),
		EndTime:    strings.TrimSpace(req.EndTime),
		BreakStart: strings.TrimSpace(req.BreakStart),
		BreakEnd:   strings.TrimSpace(req.BreakEnd),
		Color:      strings.TrimSpace(req.Color),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toShiftDTO(shift))
}

func (h *AdminHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.catalog == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	shifts, err := h.catalog.ListShifts(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]shiftDTO, 0, len(shifts))
	for _, shift := range shifts {
		out = append(out, toShiftDTO(shift))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[shiftDTO]{Items: out})
}

func (h *AdminHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	rule, err := h.roster.CreateRule(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRuleDTO(rule))
}

func (h *AdminHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rules, err := h.roster.ListRules(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]ruleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleDTO(rule))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[ruleDTO]{Items: out})
}

func (h *AdminHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.AssignmentInput{
		SubjectID: strings.TrimSpace(req.SubjectID),
		RuleID:    strings.TrimSpace(req.RuleID),
		ShiftID:   strings.TrimSpace(req.ShiftID),
		StartsOn:  parseDate(req.StartsOn),
		Status:    strings.TrimSpace(req.Status),
	}
	if strings.TrimSpace(req.EndsOn) != "" {
		end := parseDate(req.EndsOn)
		input.EndsOn = &end
	}

	assignment, err := h.roster.CreateAssignment(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAssignmentDTO(assignment))
}

func (h *AdminHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	subjectID := strings.TrimSpace(r.URL.Query().Get("subject"))
	if subjectID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("subject query parameter is required"))
		return
	}

	assignments, err := h.roster.ListAssignments(r.Context(), subjectID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, toAssignmentDTO(assignment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse[assignmentDTO]{Items: out})
}

func (h *AdminHandler) CreateException(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.roster == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req exceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	exception, err := h.roster.CreateException(r.Context(), application.ExceptionInput{
		UserID:             strings.TrimSpace(req.UserID),
		Date:               parseDate(req.Date),
		Type:               strings.TrimSpace(req.Type),
		OriginalShiftID:    strings.TrimSpace(req.OriginalShiftID),
		ReplacementShiftID: strings.TrimSpace(req.ReplacementShiftID),
		ReplacementUserID:  strings.TrimSpace(req.ReplacementUserID),
		Status:             strings.TrimSpace(req.Status),
		Priority:           req.Priority,
		RecurrenceRuleID:   strings.TrimSpace(req.RecurrenceRuleID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toExceptionDTO(exception))
}

// parseDate returns the zero time for values it cannot parse; the service
// validation rejects zero dates with a field-level message.
func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(application.DateKeyFormat, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

type teamRequest struct {
	Name        string `json:"name"`
	CycleOffset int    `json:"cycle_offset"`
}

type teamDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CycleOffset int    `json:"cycle_offset"`
}

func toTeamDTO(team scheduler.Team) teamDTO {
	return teamDTO{ID: team.ID, Name: team.Name, CycleOffset: team.CycleOffset}
}

type shiftRequest struct {
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`
	Color      string `json:"color"`
}

type ruleRequest struct {
	Frequency     string   `json:"frequency"`
	Interval      int      `json:"interval"`
	StartsOn      string   `json:"starts_on"`
	EndKind       string   `json:"end_kind"`
	Until         string   `json:"until"`
	Count         int      `json:"count"`
	Weekdays      []int    `json:"weekdays"`
	MonthDays     []int    `json:"month_days"`
	CycleLength   int      `json:"cycle_length"`
	CycleWorkDays int      `json:"cycle_work_days"`
	CycleRestDays int      `json:"cycle_rest_days"`
	PatternSlots  []string `json:"pattern_slots"`
}

func (r ruleRequest) toInput() application.RuleInput {
	input := application.RuleInput{
		Frequency:     strings.TrimSpace(r.Frequency),
		Interval:      r.Interval,
		StartsOn:      parseDate(r.StartsOn),
		EndKind:       strings.TrimSpace(r.EndKind),
		Until:         parseDate(r.Until),
		Count:         r.Count,
		MonthDays:     append([]int(nil), r.MonthDays...),
		CycleLength:   r.CycleLength,
		CycleWorkDays: r.CycleWorkDays,
		CycleRestDays: r.CycleRestDays,
		PatternSlots:  append([]string(nil), r.PatternSlots...),
	}
	for _, day := range r.Weekdays {
		input.Weekdays = append(input.Weekdays, time.Weekday(day))
	}
	return input
}

type ruleDTO struct {
	ID            string   `json:"id"`
	Frequency     string   `json:"frequency"`
	Interval      int      `json:"interval"`
	StartsOn      string   `json:"starts_on"`
	EndKind       string   `json:"end_kind"`
	Until         string   `json:"until,omitempty"`
	Count         int      `json:"count,omitempty"`
	Weekdays      []int    `json:"weekdays,omitempty"`
	MonthDays     []int    `json:"month_days,omitempty"`
	CycleLength   int      `json:"cycle_length,omitempty"`
	CycleWorkDays int      `json:"cycle_work_days,omitempty"`
	CycleRestDays int      `json:"cycle_rest_days,omitempty"`
	PatternSlots  []string `json:"pattern_slots,omitempty"`
}

func toRuleDTO(rule recurrence.Rule) ruleDTO {
	dto := ruleDTO{
		ID:            rule.ID,
		Interval:      rule.Interval,
		StartsOn:      rule.StartsOn.Format(application.DateKeyFormat),
		MonthDays:     rule.MonthDays,
		CycleLength:   rule.CycleLength,
		CycleWorkDays: rule.CycleWorkDays,
		CycleRestDays: rule.CycleRestDays,
	}

	switch rule.Frequency {
	case recurrence.FrequencyDaily:
		dto.Frequency = "daily"
	case recurrence.FrequencyWeekly:
		dto.Frequency = "weekly"
	case recurrence.FrequencyCycle:
		dto.Frequency = "cycle"
	case recurrence.FrequencyPattern:
		dto.Frequency = "pattern"
	}

	switch rule.End.Kind {
	case recurrence.EndNever:
		dto.EndKind = "never"
	case recurrence.EndUntil:
		dto.EndKind = "until"
		dto.Until = rule.End.Until.Format(application.DateKeyFormat)
	case recurrence.EndCount:
		dto.EndKind = "count"
		dto.Count = rule.End.Count
	}

	for _, day := range rule.Weekdays {
		dto.Weekdays = append(dto.Weekdays, int(day))
	}
	for _, slot := range rule.Pattern {
		dto.PatternSlots = append(dto.PatternSlots, slot.ShiftID)
	}
	return dto
}

type assignmentRequest struct {
	SubjectID string `json:"subject_id"`
	RuleID    string `json:"rule_id"`
	ShiftID   string `json:"shift_id"`
	StartsOn  string `json:"starts_on"`
	EndsOn    string `json:"ends_on"`
	Status    string `json:"status"`
}

type assignmentDTO struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	RuleID    string `json:"rule_id"`
	ShiftID   string `json:"shift_id,omitempty"`
	StartsOn  string `json:"starts_on"`
	EndsOn    string `json:"ends_on,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toAssignmentDTO(assignment scheduler.TeamAssignment) assignmentDTO {
	dto := assignmentDTO{
		ID:        assignment.ID,
		SubjectID: assignment.SubjectID,
		RuleID:    assignment.RuleID,
		ShiftID:   assignment.ShiftID,
		StartsOn:  assignment.StartsOn.Format(application.DateKeyFormat),
		Status:    string(assignment.Status),
		CreatedAt: assignment.CreatedAt.UTC().Format(time.RFC3339),
	}
	if assignment.EndsOn != nil {
		dto.EndsOn = assignment.EndsOn.Format(application.DateKeyFormat)
	}
	return dto
}

type exceptionRequest struct {
	UserID             string `json:"user_id"`
	Date               string `json:"date"`
	Type               string `json:"type"`
	OriginalShiftID    string `json:"original_shift_id"`
	ReplacementShiftID string `json:"replacement_shift_id"`
	ReplacementUserID  string `json:"replacement_user_id"`
	Status             string `json:"status"`
	Priority           int    `json:"priority"`
	RecurrenceRuleID   string `json:"recurrence_rule_id"`
}

type exceptionDTO struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	Date               string `json:"date"`
	Type               string `json:"type"`
	OriginalShiftID    string `json:"original_shift_id,omitempty"`
	ReplacementShiftID string `json:"replacement_shift_id,omitempty"`
	ReplacementUserID  string `json:"replacement_user_id,omitempty"`
	Status             string `json:"status"`
	Priority           int    `json:"priority"`
	RecurrenceRuleID   string `json:"recurrence_rule_id,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func toExceptionDTO(exception scheduler.ShiftException) exceptionDTO {
	return exceptionDTO{
		ID:                 exception.ID,
		UserID:             exception.UserID,
		Date:               exception.Date.Format(application.DateKeyFormat),
		Type:               string(exception.Type),
		OriginalShiftID:    exception.OriginalShiftID,
		ReplacementShiftID: exception.ReplacementShiftID,
		ReplacementUserID:  exception.ReplacementUserID,
		Status:             string(exception.Status),
		Priority:           exception.Priority,
		RecurrenceRuleID:   exception.RecurrenceRuleID,
		CreatedAt:          exception.CreatedAt.UTC().Format(time.RFC3339),
	}
}
