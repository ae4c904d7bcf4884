package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/shift-roster/internal/cycle"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

// CacheInvalidator flips the schedule cache generation after writes.
type CacheInvalidator interface {
	InvalidateCache()
}

// RosterService manages the rule, assignment, and exception records the
// schedule engine reads. Every successful write invalidates the schedule
// cache so subsequent reads recompute. Rules referenced by an assignment
// are read-only: changing a schedule means creating a new rule and
// re-pointing the assignment, which preserves historical correctness.
type RosterService struct {
	rules       RuleRepository
	assignments AssignmentRepository
	exceptions  ExceptionRepository
	cache       CacheInvalidator
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRosterService constructs a roster service with the provided dependencies.
func NewRosterService(rules RuleRepository, assignments AssignmentRepository, exceptions ExceptionRepository, cache CacheInvalidator, idGenerator func() string, now func() time.Time) *RosterService {
	return NewRosterServiceWithLogger(rules, assignments, exceptions, cache, idGenerator, now, nil)
}

// NewRosterServiceWithLogger constructs a roster service with a specified logger.
func NewRosterServiceWithLogger(rules RuleRepository, assignments AssignmentRepository, exceptions ExceptionRepository, cache CacheInvalidator, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RosterService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RosterService{
		rules:       rules,
		assignments: assignments,
		exceptions:  exceptions,
		cache:       cache,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

func (s *RosterService) invalidate() {
	if s.cache != nil {
		s.cache.InvalidateCache()
	}
}

// CreateRule validates and persists a recurrence rule.
func (s *RosterService) CreateRule(ctx context.Context, input RuleInput) (rule recurrence.Rule, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRule", "frequency", input.Frequency)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_id", rule.ID).InfoContext(ctx, "rule created")
	}()

	rule, vErr := ruleFromInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	rule.ID = s.idGenerator()
	if verr := rule.Validate(); verr != nil {
		fieldErr := &ValidationError{}
		fieldErr.add("rule", verr.Error())
		err = fieldErr
		return
	}

	if s.rules == nil {
		return
	}
	var persisted recurrence.Rule
	persisted, err = s.rules.CreateRule(ctx, rule)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	rule = persisted
	s.invalidate()
	return
}

// ListRules returns every stored recurrence rule.
func (s *RosterService) ListRules(ctx context.Context) ([]recurrence.Rule, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("rule repository not configured")
	}
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

// PreviewRule expands a stored rule over a bounded window, for callers
// that want to inspect upcoming occurrences before assigning it.
func (s *RosterService) PreviewRule(ctx context.Context, ruleID string, from, to time.Time) ([]time.Time, error) {
	if s == nil || s.rules == nil {
		return nil, fmt.Errorf("rule repository not configured")
	}

	vErr := &ValidationError{}
	if from.IsZero() || to.IsZero() {
		vErr.add("window", "preview window requires both bounds")
		return nil, vErr
	}
	if cycle.DateOf(to).Before(cycle.DateOf(from)) {
		vErr.add("window", "window end precedes start")
		return nil, vErr
	}

	rule, err := s.rules.GetRule(ctx, ruleID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return recurrence.Expand(rule, from, to), nil
}

// CreateAssignment validates and persists a schedule assignment,
// superseding the subject's previous assignments rather than deleting
// them.
func (s *RosterService) CreateAssignment(ctx context.Context, input AssignmentInput) (assignment scheduler.TeamAssignment, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateAssignment", "subject_id", input.SubjectID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "assignment created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.SubjectID) == "" {
		vErr.add("subject_id", "subject is required")
	}
	if strings.TrimSpace(input.RuleID) == "" {
		vErr.add("rule_id", "rule is required")
	}
	status := scheduler.AssignmentStatus(input.Status)
	if input.Status == "" {
		status = scheduler.AssignmentActive
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	assignment = scheduler.TeamAssignment{
		ID:        s.idGenerator(),
		SubjectID: strings.TrimSpace(input.SubjectID),
		RuleID:    strings.TrimSpace(input.RuleID),
		ShiftID:   strings.TrimSpace(input.ShiftID),
		StartsOn:  cycle.DateOf(input.StartsOn),
		Status:    status,
		CreatedAt: s.now(),
	}
	if input.EndsOn != nil {
		endsOn := cycle.DateOf(*input.EndsOn)
		assignment.EndsOn = &endsOn
	}
	if verr := assignment.Validate(); verr != nil {
		fieldErr := &ValidationError{}
		fieldErr.add("assignment", verr.Error())
		err = fieldErr
		return
	}

	if s.assignments == nil {
		return
	}
	var persisted scheduler.TeamAssignment
	persisted, err = s.assignments.CreateAssignment(ctx, assignment)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	assignment = persisted

	if status == scheduler.AssignmentActive {
		if err = s.assignments.SupersedeAssignments(ctx, assignment.SubjectID, assignment.ID); err != nil {
			err = mapRepoError(err)
			return
		}
	}
	s.invalidate()
	return
}

// ListAssignments returns the subject's assignments, newest first.
func (s *RosterService) ListAssignments(ctx context.Context, subjectID string) ([]scheduler.TeamAssignment, error) {
	if s == nil || s.assignments == nil {
		return nil, fmt.Errorf("assignment repository not configured")
	}
	assignments, err := s.assignments.ListAssignments(ctx, subjectID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].CreatedAt.After(assignments[j].CreatedAt)
	})
	return assignments, nil
}

// CreateException validates and persists a shift exception.
func (s *RosterService) CreateException(ctx context.Context, input ExceptionInput) (exception scheduler.ShiftException, err error) {
	if s == nil {
		err = fmt.Errorf("RosterService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateException", "user_id", input.UserID, "type", input.Type)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create exception", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("exception_id", exception.ID).InfoContext(ctx, "exception created")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(input.UserID) == "" {
		vErr.add("user_id", "user is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	exceptionType := scheduler.ExceptionType(input.Type)
	if !scheduler.KnownExceptionType(exceptionType) {
		vErr.add("type", fmt.Sprintf("unknown exception type %q", input.Type))
	}
	status := scheduler.ApprovalStatus(input.Status)
	if input.Status == "" {
		status = scheduler.ApprovalDraft
	}
	switch status {
	case scheduler.ApprovalDraft, scheduler.ApprovalPending, scheduler.ApprovalApproved, scheduler.ApprovalRejected:
	default:
		vErr.add("status", fmt.Sprintf("unknown approval status %q", input.Status))
	}
	if attrs, ok := scheduler.AttributesFor(exceptionType); ok {
		if attrs.AddsShift && attrs.Category == scheduler.CategoryChange && strings.TrimSpace(input.ReplacementShiftID) == "" {
			vErr.add("replacement_shift_id", "a change exception requires a replacement shift")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	exception = scheduler.ShiftException{
		ID:                 s.idGenerator(),
		UserID:             strings.TrimSpace(input.UserID),
		Date:               cycle.DateOf(input.Date),
		Type:               exceptionType,
		OriginalShiftID:    strings.TrimSpace(input.OriginalShiftID),
		ReplacementShiftID: strings.TrimSpace(input.ReplacementShiftID),
		ReplacementUserID:  strings.TrimSpace(input.ReplacementUserID),
		Status:             status,
		Priority:           input.Priority,
		RecurrenceRuleID:   strings.TrimSpace(input.RecurrenceRuleID),
		CreatedAt:          s.now(),
	}

	if s.exceptions == nil {
		return
	}
	var persisted scheduler.ShiftException
	persisted, err = s.exceptions.CreateException(ctx, exception)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	exception = persisted
	s.invalidate()
	return
}

// ruleFromInput converts transport-level rule fields to a domain rule,
// collecting field errors for unknown enumerations.
func ruleFromInput(input RuleInput) (recurrence.Rule, *ValidationError) {
	vErr := &ValidationError{}

	rule := recurrence.Rule{
		Interval:      input.Interval,
		StartsOn:      cycle.DateOf(input.StartsOn),
		Weekdays:      input.Weekdays,
		MonthDays:     input.MonthDays,
		CycleLength:   input.CycleLength,
		CycleWorkDays: input.CycleWorkDays,
		CycleRestDays: input.CycleRestDays,
	}

	switch strings.ToLower(strings.TrimSpace(input.Frequency)) {
	case "daily":
		rule.Frequency = recurrence.FrequencyDaily
	case "weekly":
		rule.Frequency = recurrence.FrequencyWeekly
	case "cycle":
		rule.Frequency = recurrence.FrequencyCycle
	case "pattern":
		rule.Frequency = recurrence.FrequencyPattern
	default:
		vErr.add("frequency", fmt.Sprintf("unknown frequency %q", input.Frequency))
	}

	switch strings.ToLower(strings.TrimSpace(input.EndKind)) {
	case "", "never":
		rule.End = recurrence.End{Kind: recurrence.EndNever}
	case "until":
		rule.End = recurrence.Until(input.Until)
	case "count":
		rule.End = recurrence.Count(input.Count)
	default:
		vErr.add("end", fmt.Sprintf("unknown end condition %q", input.EndKind))
	}

	for _, slot := range input.PatternSlots {
		slot = strings.TrimSpace(slot)
		if slot == "" || strings.EqualFold(slot, "rest") {
			rule.Pattern = append(rule.Pattern, recurrence.Rest)
			continue
		}
		rule.Pattern = append(rule.Pattern, recurrence.Work(slot))
	}

	return rule, vErr
}
