package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/shift-roster/internal/recurrence"
)

// dateLayout stores calendar dates without a time component.
const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	return t, nil
}

func formatDatePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*t), Valid: true}
}

func parseDatePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}

var frequencyNames = map[recurrence.Frequency]string{
	recurrence.FrequencyDaily:   "daily",
	recurrence.FrequencyWeekly:  "weekly",
	recurrence.FrequencyCycle:   "cycle",
	recurrence.FrequencyPattern: "pattern",
}

func frequencyName(f recurrence.Frequency) (string, error) {
	name, ok := frequencyNames[f]
	if !ok {
		return "", fmt.Errorf("unknown frequency %d", f)
	}
	return name, nil
}

func frequencyFromName(name string) (recurrence.Frequency, error) {
	for f, n := range frequencyNames {
		if n == name {
			return f, nil
		}
	}
	return recurrence.FrequencyUnspecified, fmt.Errorf("unknown frequency %q", name)
}

var endKindNames = map[recurrence.EndKind]string{
	recurrence.EndNever: "never",
	recurrence.EndUntil: "until",
	recurrence.EndCount: "count",
}

func endKindName(k recurrence.EndKind) (string, error) {
	name, ok := endKindNames[k]
	if !ok {
		return "", fmt.Errorf("unknown end kind %d", k)
	}
	return name, nil
}

func endKindFromName(name string) (recurrence.EndKind, error) {
	for k, n := range endKindNames {
		if n == name {
			return k, nil
		}
	}
	return recurrence.EndNever, fmt.Errorf("unknown end kind %q", name)
}

// encodeWeekdays packs a weekday filter into a bitmask keyed by
// time.Weekday.
func encodeWeekdays(weekdays []time.Weekday) int64 {
	var mask int64
	for _, day := range weekdays {
		if day >= time.Sunday && day <= time.Saturday {
			mask |= 1 << uint(day)
		}
	}
	return mask
}

func decodeWeekdays(mask int64) []time.Weekday {
	var weekdays []time.Weekday
	for day := time.Sunday; day <= time.Saturday; day++ {
		if mask&(1<<uint(day)) != 0 {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}

// encodeMonthDays stores a month-day filter as a comma-separated list.
func encodeMonthDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, len(days))
	for i, day := range days {
		parts[i] = strconv.Itoa(day)
	}
	return strings.Join(parts, ",")
}

func decodeMonthDays(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("failed to parse month days %q: %w", value, err)
		}
		days = append(days, day)
	}
	return days, nil
}
