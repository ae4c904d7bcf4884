package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the roster
// service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string

	// SchemeStart anchors the rotation cycle; every team offset is
	// relative to it.
	SchemeStart    time.Time
	CycleLength    int
	CycleWorkDays  int
	CycleRestDays  int
	DefaultShiftID string

	MaxRangeDays int
	CacheSize    int
	RangeWorkers int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; malformed values are collected
// and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:      8080,
		SQLiteDSN:     "file:roster.db",
		SchemeStart:   time.Date(2013, time.November, 7, 0, 0, 0, 0, time.UTC),
		CycleLength:   18,
		CycleWorkDays: 12,
		CycleRestDays: 6,
		MaxRangeDays:  365,
		CacheSize:     512,
		RangeWorkers:  8,
	}

	invalid := make([]string, 0, 2)

	intVar := func(name string, min int, dst *int) {
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			return
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < min {
			invalid = append(invalid, name)
			return
		}
		*dst = n
	}

	intVar("ROSTER_HTTP_PORT", 1, &cfg.HTTPPort)
	intVar("ROSTER_CYCLE_LENGTH", 1, &cfg.CycleLength)
	intVar("ROSTER_CYCLE_WORK_DAYS", 1, &cfg.CycleWorkDays)
	intVar("ROSTER_CYCLE_REST_DAYS", 0, &cfg.CycleRestDays)
	intVar("ROSTER_MAX_RANGE_DAYS", 1, &cfg.MaxRangeDays)
	intVar("ROSTER_CACHE_SIZE", 1, &cfg.CacheSize)
	intVar("ROSTER_RANGE_WORKERS", 1, &cfg.RangeWorkers)

	if dsn := strings.TrimSpace(os.Getenv("ROSTER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if start := strings.TrimSpace(os.Getenv("ROSTER_SCHEME_START")); start != "" {
		t, err := time.Parse("2006-01-02", start)
		if err != nil {
			invalid = append(invalid, "ROSTER_SCHEME_START")
		} else {
			cfg.SchemeStart = t
		}
	}

	if shiftID := strings.TrimSpace(os.Getenv("ROSTER_DEFAULT_SHIFT_ID")); shiftID != "" {
		cfg.DefaultShiftID = shiftID
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	if cfg.CycleWorkDays+cfg.CycleRestDays != cfg.CycleLength {
		return Config{}, fmt.Errorf("cycle shape mismatch: %d work + %d rest days != length %d",
			cfg.CycleWorkDays, cfg.CycleRestDays, cfg.CycleLength)
	}

	return cfg, nil
}
