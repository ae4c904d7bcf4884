package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/recurrence"
)

// RuleRepository implements application.RuleRepository using SQLite.
// Pattern slots live in a child table keyed by (rule_id, position).
type RuleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewRuleRepository creates a SQLite rule repository.
func NewRuleRepository(pool *ConnectionPool) *RuleRepository {
	return &RuleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// CreateRule stores a validated rule together with its pattern slots.
func (r *RuleRepository) CreateRule(ctx context.Context, rule recurrence.Rule) (recurrence.Rule, error) {
	if rule.ID == "" {
		return recurrence.Rule{}, persistence.ErrConstraintViolation
	}
	record, err := ruleToRecord(rule)
	if err != nil {
		return recurrence.Rule{}, persistence.ErrConstraintViolation
	}
	record.CreatedAt = r.now()

	err = r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO rules
			(id, frequency, interval_value, starts_on, end_kind, end_until, end_count,
			 weekdays, month_days, cycle_length, cycle_work_days, cycle_rest_days, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, record.ID, record.Frequency, record.Interval, formatDate(record.StartsOn),
			record.EndKind, formatDatePtr(record.EndUntil), record.EndCount,
			record.Weekdays, record.MonthDays,
			record.CycleLength, record.CycleWorkDays, record.CycleRestDays,
			formatTimestamp(record.CreatedAt))
		if err != nil {
			return r.mapper.MapError(err)
		}
		for position, slot := range rule.Pattern {
			_, err := r.helper.ExecTx(tx, `
				INSERT INTO pattern_slots (rule_id, position, shift_id)
				VALUES (?, ?, ?)
			`, rule.ID, position, slot.ShiftID)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		return recurrence.Rule{}, err
	}
	return rule, nil
}

// GetRule loads a rule and its pattern slots by id.
func (r *RuleRepository) GetRule(ctx context.Context, id string) (recurrence.Rule, error) {
	if id == "" {
		return recurrence.Rule{}, persistence.ErrNotFound
	}
	record, err := r.scanRule(r.helper.QueryRow(ctx, ruleSelect+" WHERE id = ?", id))
	if err != nil {
		return recurrence.Rule{}, err
	}
	rule, err := ruleFromRecord(record)
	if err != nil {
		return recurrence.Rule{}, err
	}
	rule.Pattern, err = r.loadPattern(ctx, id)
	if err != nil {
		return recurrence.Rule{}, err
	}
	return rule, nil
}

// ListRules returns every rule ordered by creation time.
func (r *RuleRepository) ListRules(ctx context.Context) ([]recurrence.Rule, error) {
	rows, err := r.helper.Query(ctx, ruleSelect+" ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rules []recurrence.Rule
	for rows.Next() {
		record, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}
		rule, err := ruleFromRecord(record)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	for i := range rules {
		if rules[i].Frequency != recurrence.FrequencyPattern {
			continue
		}
		rules[i].Pattern, err = r.loadPattern(ctx, rules[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return rules, nil
}

const ruleSelect = `
	SELECT id, frequency, interval_value, starts_on, end_kind, end_until, end_count,
	       weekdays, month_days, cycle_length, cycle_work_days, cycle_rest_days, created_at
	FROM rules`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RuleRepository) scanRule(row rowScanner) (persistence.RuleRecord, error) {
	var record persistence.RuleRecord
	var startsOn, createdAt string
	var endUntil sql.NullString
	err := row.Scan(&record.ID, &record.Frequency, &record.Interval, &startsOn,
		&record.EndKind, &endUntil, &record.EndCount,
		&record.Weekdays, &record.MonthDays,
		&record.CycleLength, &record.CycleWorkDays, &record.CycleRestDays, &createdAt)
	if err != nil {
		return persistence.RuleRecord{}, r.mapper.MapError(err)
	}
	if record.StartsOn, err = parseDate(startsOn); err != nil {
		return persistence.RuleRecord{}, err
	}
	if record.EndUntil, err = parseDatePtr(endUntil); err != nil {
		return persistence.RuleRecord{}, err
	}
	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.RuleRecord{}, err
	}
	return record, nil
}

func (r *RuleRepository) loadPattern(ctx context.Context, ruleID string) ([]recurrence.Slot, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT shift_id FROM pattern_slots
		WHERE rule_id = ?
		ORDER BY position ASC
	`, ruleID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var pattern []recurrence.Slot
	for rows.Next() {
		var shiftID string
		if err := rows.Scan(&shiftID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		pattern = append(pattern, recurrence.Slot{ShiftID: shiftID})
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return pattern, nil
}

func ruleToRecord(rule recurrence.Rule) (persistence.RuleRecord, error) {
	frequency, err := frequencyName(rule.Frequency)
	if err != nil {
		return persistence.RuleRecord{}, err
	}
	endKind, err := endKindName(rule.End.Kind)
	if err != nil {
		return persistence.RuleRecord{}, err
	}
	record := persistence.RuleRecord{
		ID:            rule.ID,
		Frequency:     frequency,
		Interval:      rule.Interval,
		StartsOn:      rule.StartsOn,
		EndKind:       endKind,
		EndCount:      rule.End.Count,
		Weekdays:      encodeWeekdays(rule.Weekdays),
		MonthDays:     encodeMonthDays(rule.MonthDays),
		CycleLength:   rule.CycleLength,
		CycleWorkDays: rule.CycleWorkDays,
		CycleRestDays: rule.CycleRestDays,
	}
	if rule.End.Kind == recurrence.EndUntil {
		until := rule.End.Until
		record.EndUntil = &until
	}
	return record, nil
}

func ruleFromRecord(record persistence.RuleRecord) (recurrence.Rule, error) {
	frequency, err := frequencyFromName(record.Frequency)
	if err != nil {
		return recurrence.Rule{}, err
	}
	endKind, err := endKindFromName(record.EndKind)
	if err != nil {
		return recurrence.Rule{}, err
	}
	monthDays, err := decodeMonthDays(record.MonthDays)
	if err != nil {
		return recurrence.Rule{}, err
	}
	rule := recurrence.Rule{
		ID:            record.ID,
		Frequency:     frequency,
		Interval:      record.Interval,
		StartsOn:      record.StartsOn,
		End:           recurrence.End{Kind: endKind, Count: record.EndCount},
		Weekdays:      decodeWeekdays(record.Weekdays),
		MonthDays:     monthDays,
		CycleLength:   record.CycleLength,
		CycleWorkDays: record.CycleWorkDays,
		CycleRestDays: record.CycleRestDays,
	}
	if endKind == recurrence.EndUntil && record.EndUntil != nil {
		rule.End.Until = *record.EndUntil
	}
	return rule, nil
}
