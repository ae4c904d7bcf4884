package sqlite

import (
	"context"
	"time"

	"github.com/example/shift-roster/internal/persistence"
	"github.com/example/shift-roster/internal/scheduler"
)

// TeamRepository implements application.TeamCatalog using SQLite.
type TeamRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewTeamRepository creates a SQLite team repository.
func NewTeamRepository(pool *ConnectionPool) *TeamRepository {
	return &TeamRepository{
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    time.Now,
	}
}

// ListTeams returns every team ordered by cycle offset, then name.
func (r *TeamRepository) ListTeams(ctx context.Context) ([]scheduler.Team, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, cycle_offset
		FROM teams
		ORDER BY cycle_offset ASC, name ASC
	`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var teams []scheduler.Team
	for rows.Next() {
		var team scheduler.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CycleOffset); err != nil {
			return nil, r.mapper.MapError(err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return teams, nil
}

// CreateTeam inserts a team and returns it unchanged.
func (r *TeamRepository) CreateTeam(ctx context.Context, team scheduler.Team) (scheduler.Team, error) {
	if team.ID == "" {
		return scheduler.Team{}, persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO teams (id, name, cycle_offset, created_at)
		VALUES (?, ?, ?, ?)
	`, team.ID, team.Name, team.CycleOffset, formatTimestamp(r.now()))
	if err != nil {
		return scheduler.Team{}, r.mapper.MapError(err)
	}
	return team, nil
}
