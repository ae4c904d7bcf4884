package testfixtures

import (
	"context"
	"testing"

	"github.com/example/shift-roster/internal/persistence/sqlite"
)

// SQLiteHarness bundles migrated SQLite repositories for
// integration-style tests at the service layer.
type SQLiteHarness struct {
	Pool        *sqlite.ConnectionPool
	Teams       *sqlite.TeamRepository
	Shifts      *sqlite.ShiftRepository
	Rules       *sqlite.RuleRepository
	Assignments *sqlite.AssignmentRepository
	Exceptions  *sqlite.ExceptionRepository
}

// NewSQLiteHarness opens an in-memory database, migrates it, and wires
// every repository. Cleanup is registered with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	pool, err := sqlite.NewConnectionPool(":memory:")
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = pool.Close() })

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Pool:        pool,
		Teams:       sqlite.NewTeamRepository(pool),
		Shifts:      sqlite.NewShiftRepository(pool),
		Rules:       sqlite.NewRuleRepository(pool),
		Assignments: sqlite.NewAssignmentRepository(pool),
		Exceptions:  sqlite.NewExceptionRepository(pool),
	}
}
