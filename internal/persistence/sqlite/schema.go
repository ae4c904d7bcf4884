package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "roster tables",
		statements: []string{
			`CREATE TABLE teams (
				id           TEXT PRIMARY KEY,
				name         TEXT NOT NULL UNIQUE,
				cycle_offset INTEGER NOT NULL CHECK (cycle_offset >= 0),
				created_at   TEXT NOT NULL
			)`,
			`CREATE TABLE shifts (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				start_time  TEXT NOT NULL,
				end_time    TEXT NOT NULL,
				break_start TEXT NOT NULL DEFAULT '',
				break_end   TEXT NOT NULL DEFAULT '',
				color       TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL
			)`,
			`CREATE TABLE rules (
				id              TEXT PRIMARY KEY,
				frequency       TEXT NOT NULL CHECK (frequency IN ('daily','weekly','cycle','pattern')),
				interval_value  INTEGER NOT NULL CHECK (interval_value >= 1),
				starts_on       TEXT NOT NULL,
				end_kind        TEXT NOT NULL CHECK (end_kind IN ('never','until','count')),
				end_until       TEXT,
				end_count       INTEGER NOT NULL DEFAULT 0,
				weekdays        INTEGER NOT NULL DEFAULT 0,
				month_days      TEXT NOT NULL DEFAULT '',
				cycle_length    INTEGER NOT NULL DEFAULT 0,
				cycle_work_days INTEGER NOT NULL DEFAULT 0,
				cycle_rest_days INTEGER NOT NULL DEFAULT 0,
				created_at      TEXT NOT NULL
			)`,
			`CREATE TABLE pattern_slots (
				rule_id  TEXT NOT NULL REFERENCES rules(id) ON DELETE CASCADE,
				position INTEGER NOT NULL CHECK (position >= 0),
				shift_id TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (rule_id, position)
			)`,
			`CREATE TABLE assignments (
				id         TEXT PRIMARY KEY,
				subject_id TEXT NOT NULL,
				rule_id    TEXT NOT NULL REFERENCES rules(id),
				shift_id   TEXT NOT NULL DEFAULT '',
				starts_on  TEXT NOT NULL,
				ends_on    TEXT,
				status     TEXT NOT NULL CHECK (status IN ('active','draft','expired')),
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX idx_assignments_subject_start ON assignments (subject_id, starts_on)`,
			`CREATE TABLE exceptions (
				id                   TEXT PRIMARY KEY,
				user_id              TEXT NOT NULL,
				date                 TEXT NOT NULL,
				type                 TEXT NOT NULL,
				original_shift_id    TEXT NOT NULL DEFAULT '',
				replacement_shift_id TEXT NOT NULL DEFAULT '',
				replacement_user_id  TEXT NOT NULL DEFAULT '',
				status               TEXT NOT NULL CHECK (status IN ('draft','pending','approved','rejected')),
				priority             INTEGER NOT NULL DEFAULT 0,
				recurrence_rule_id   TEXT NOT NULL DEFAULT '',
				created_at           TEXT NOT NULL
			)`,
			`CREATE INDEX idx_exceptions_user_date ON exceptions (user_id, date)`,
			`CREATE INDEX idx_exceptions_status_date ON exceptions (status, date)`,
		},
	},
}

// Migrate brings the schema up to date, applying each pending migration
// inside its own transaction.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	_, err := pool.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	row := pool.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d %q: %w", m.version, m.name, err)
				}
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}
