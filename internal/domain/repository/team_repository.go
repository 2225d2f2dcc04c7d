package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
)

type TeamRepository interface {
	CountByCollege(ctx context.Context, tx *sql.Tx, collegeID int64) (int, error)
	Create(ctx context.Context, tx *sql.Tx, team *model.Team) error
	AddMembers(ctx context.Context, tx *sql.Tx, teamID int64, members []model.TeamMember) error
	ListByCollege(ctx context.Context, collegeID int64) ([]model.Team, error)
	FindByID(ctx context.Context, id int64) (*model.Team, error)
	FindByLeaderID(ctx context.Context, leaderID int64) (*model.Team, error)
	ListMembers(ctx context.Context, teamID int64) ([]model.TeamMember, error)
}

type pgTeamRepository struct {
	db *sql.DB
}

func NewPgTeamRepository(db *sql.DB) TeamRepository {
	return &pgTeamRepository{db: db}
}

const teamSelect = `SELECT t.id, t.name, t.college_id, t.leader_id, u.name, u.email, t.created_at
	FROM teams t JOIN users u ON t.leader_id = u.id`

func scanTeam(row rowScanner) (*model.Team, error) {
	t := &model.Team{}
	if err := row.Scan(&t.ID, &t.Name, &t.CollegeID, &t.LeaderID, &t.LeaderName, &t.LeaderEmail, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTeamRepository) CountByCollege(ctx context.Context, tx *sql.Tx, collegeID int64) (int, error) {
	var count int
	err := pick(r.db, tx).QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE college_id = $1`, collegeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("pgTeamRepository.CountByCollege: %w", err)
	}
	return count, nil
}

func (r *pgTeamRepository) Create(ctx context.Context, tx *sql.Tx, team *model.Team) error {
	query := `INSERT INTO teams (name, college_id, leader_id) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query, team.Name, team.CollegeID, team.LeaderID).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTeamRepository) AddMembers(ctx context.Context, tx *sql.Tx, teamID int64, members []model.TeamMember) error {
	if len(members) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO team_members (team_id, position, name, email, phone, branch, stream, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`)
	if err != nil {
		return fmt.Errorf("pgTeamRepository.AddMembers prepare: %w", err)
	}
	defer stmt.Close()

	for i := range members {
		m := &members[i]
		m.TeamID = teamID
		if err := stmt.QueryRowContext(ctx, teamID, m.Position, m.Name, m.Email, m.Phone, m.Branch, m.Stream, m.Year).Scan(&m.ID); err != nil {
			return fmt.Errorf("pgTeamRepository.AddMembers exec for position %d: %w", m.Position, err)
		}
	}
	return nil
}

func (r *pgTeamRepository) ListByCollege(ctx context.Context, collegeID int64) ([]model.Team, error) {
	rows, err := r.db.QueryContext(ctx, teamSelect+` WHERE t.college_id = $1 ORDER BY t.id`, collegeID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListByCollege query: %w", err)
	}
	defer rows.Close()

	teams := []model.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListByCollege scan: %w", err)
		}
		teams = append(teams, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListByCollege rows.Err: %w", err)
	}
	return teams, nil
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.ErrNotFound, "Team not found")
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTeamRepository) FindByLeaderID(ctx context.Context, leaderID int64) (*model.Team, error) {
	t, err := scanTeam(r.db.QueryRowContext(ctx, teamSelect+` WHERE t.leader_id = $1`, leaderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.ErrNotFound, "Team not found for this user")
		}
		return nil, fmt.Errorf("pgTeamRepository.FindByLeaderID: %w", err)
	}
	return t, nil
}

func (r *pgTeamRepository) ListMembers(ctx context.Context, teamID int64) ([]model.TeamMember, error) {
	query := `SELECT id, team_id, position, name, email, phone, branch, stream, year
	          FROM team_members WHERE team_id = $1 ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers query: %w", err)
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Position, &m.Name, &m.Email, &m.Phone, &m.Branch, &m.Stream, &m.Year); err != nil {
			return nil, fmt.Errorf("pgTeamRepository.ListMembers scan: %w", err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTeamRepository.ListMembers rows.Err: %w", err)
	}
	return members, nil
}
