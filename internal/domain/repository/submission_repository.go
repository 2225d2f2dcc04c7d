package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
)

var ErrAlreadySubmitted = common.NewError(common.ErrConflict, "Team has already submitted an idea.")

type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	FindByTeamID(ctx context.Context, teamID int64) (*model.Submission, error)
	// ListAll joins team name and problem title for the admin overview.
	ListAll(ctx context.Context) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	query := `INSERT INTO submissions (team_id, ps_id, title, description, abstract, ppt_url, yt_link, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, sub.TeamID, sub.PsID, sub.Title, sub.Description, sub.Abstract, sub.PptURL, sub.YtLink, sub.Status).
		Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrAlreadySubmitted
		}
		return fmt.Errorf("pgSubmissionRepository.Create: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) FindByTeamID(ctx context.Context, teamID int64) (*model.Submission, error) {
	query := `SELECT id, team_id, ps_id, title, description, abstract, ppt_url, yt_link, status, created_at
	          FROM submissions WHERE team_id = $1`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, teamID).Scan(
		&s.ID, &s.TeamID, &s.PsID, &s.Title, &s.Description, &s.Abstract, &s.PptURL, &s.YtLink, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.FindByTeamID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	query := `SELECT s.id, s.team_id, s.ps_id, s.title, s.description, s.abstract, s.ppt_url, s.yt_link, s.status, s.created_at,
	                 t.name AS team_name, p.title AS ps_title
	          FROM submissions s
	          JOIN teams t ON s.team_id = t.id
	          JOIN problem_statements p ON s.ps_id = p.id
	          ORDER BY s.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListAll query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.TeamID, &s.PsID, &s.Title, &s.Description, &s.Abstract, &s.PptURL, &s.YtLink, &s.Status, &s.CreatedAt,
			&s.TeamName, &s.PsTitle); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListAll scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListAll rows.Err: %w", err)
	}
	return subs, nil
}
