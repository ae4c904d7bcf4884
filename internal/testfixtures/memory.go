package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/recurrence"
	"github.com/example/shift-roster/internal/scheduler"
)

// MemoryStore is an in-memory implementation of every application
// repository interface. It mirrors the persistence layer's error
// contract so service tests exercise the same mapping paths as the
// SQLite repositories. FailWith, when set, is returned by every call.
type MemoryStore struct {
	mu          sync.Mutex
	teams       []scheduler.Team
	shifts      []scheduler.Shift
	rules       []recurrence.Rule
	assignments []scheduler.TeamAssignment
	exceptions  []scheduler.ShiftException

	FailWith error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed loads fixtures without the duplicate checks of the create paths.
func (m *MemoryStore) Seed(teams []scheduler.Team, shifts []scheduler.Shift, rules []recurrence.Rule, assignments []scheduler.TeamAssignment, exceptions []scheduler.ShiftException) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams = append(m.teams, teams...)
	m.shifts = append(m.shifts, shifts...)
	m.rules = append(m.rules, rules...)
	m.assignments = append(m.assignments, assignments...)
	m.exceptions = append(m.exceptions, exceptions...)
}

func (m *MemoryStore) ListTeams(_ context.Context) ([]scheduler.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return append([]scheduler.Team(nil), m.teams...), nil
}

func (m *MemoryStore) CreateTeam(_ context.Context, team scheduler.Team) (scheduler.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return scheduler.Team{}, m.FailWith
	}
	for _, existing := range m.teams {
		if existing.ID == team.ID || existing.Name == team.Name {
			return scheduler.Team{}, persistence.ErrDuplicate
		}
	}
	m.teams = append(m.teams, team)
	return team, nil
}

func (m *MemoryStore) GetShift(_ context.Context, id string) (scheduler.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return scheduler.Shift{}, m.FailWith
	}
	for _, shift := range m.shifts {
		if shift.ID == id {
			return shift, nil
		}
	}
	return scheduler.Shift{}, persistence.ErrNotFound
}

func (m *MemoryStore) ListShifts(_ context.Context) ([]scheduler.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return append([]scheduler.Shift(nil), m.shifts...), nil
}

func (m *MemoryStore) CreateShift(_ context.Context, shift scheduler.Shift) (scheduler.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return scheduler.Shift{}, m.FailWith
	}
	for _, existing := range m.shifts {
		if existing.ID == shift.ID {
			return scheduler.Shift{}, persistence.ErrDuplicate
		}
	}
	m.shifts = append(m.shifts, shift)
	return shift, nil
}

func (m *MemoryStore) GetRule(_ context.Context, id string) (recurrence.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return recurrence.Rule{}, m.FailWith
	}
	for _, rule := range m.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return recurrence.Rule{}, persistence.ErrNotFound
}

func (m *MemoryStore) CreateRule(_ context.Context, rule recurrence.Rule) (recurrence.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return recurrence.Rule{}, m.FailWith
	}
	for _, existing := range m.rules {
		if existing.ID == rule.ID {
			return recurrence.Rule{}, persistence.ErrDuplicate
		}
	}
	m.rules = append(m.rules, rule)
	return rule, nil
}

func (m *MemoryStore) ListRules(_ context.Context) ([]recurrence.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return append([]recurrence.Rule(nil), m.rules...), nil
}

func (m *MemoryStore) FindAssignments(_ context.Context, subjectID string, date time.Time) ([]scheduler.TeamAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []scheduler.TeamAssignment
	for _, assignment := range m.assignments {
		if assignment.SubjectID == subjectID && assignment.Covers(date) {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateAssignment(_ context.Context, assignment scheduler.TeamAssignment) (scheduler.TeamAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return scheduler.TeamAssignment{}, m.FailWith
	}
	for _, existing := range m.assignments {
		if existing.ID == assignment.ID {
			return scheduler.TeamAssignment{}, persistence.ErrDuplicate
		}
	}
	m.assignments = append(m.assignments, assignment)
	return assignment, nil
}

func (m *MemoryStore) SupersedeAssignments(_ context.Context, subjectID, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.assignments {
		a := &m.assignments[i]
		if a.SubjectID == subjectID && a.ID != keepID {
			a.Status = scheduler.AssignmentExpired
		}
	}
	return nil
}

func (m *MemoryStore) ListAssignments(_ context.Context, subjectID string) ([]scheduler.TeamAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []scheduler.TeamAssignment
	for _, assignment := range m.assignments {
		if assignment.SubjectID == subjectID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListExceptions(_ context.Context, userID string, date time.Time) ([]scheduler.ShiftException, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []scheduler.ShiftException
	for _, exception := range m.exceptions {
		if exception.UserID == userID && exception.Date.Equal(date) {
			out = append(out, exception)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateException(_ context.Context, exception scheduler.ShiftException) (scheduler.ShiftException, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return scheduler.ShiftException{}, m.FailWith
	}
	for _, existing := range m.exceptions {
		if existing.ID == exception.ID {
			return scheduler.ShiftException{}, persistence.ErrDuplicate
		}
	}
	m.exceptions = append(m.exceptions, exception)
	return exception, nil
}
