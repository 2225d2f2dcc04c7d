package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

var errProblemNotFound = common.NewError(common.ErrNotFound, "Problem statement not found")

type ProblemRepository interface {
	Create(ctx context.Context, ps *model.ProblemStatement) error
	Update(ctx context.Context, ps *model.ProblemStatement) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.ProblemStatement, error)
	// List and ListWithSubmissionCounts both order by id descending.
	List(ctx context.Context) ([]model.ProblemStatement, error)
	ListWithSubmissionCounts(ctx context.Context) ([]model.ProblemStatement, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) Create(ctx context.Context, ps *model.ProblemStatement) error {
	query := `INSERT INTO problem_statements (title, description, type, category)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, ps.Title, ps.Description, ps.Type, ps.Category).Scan(&ps.ID, &ps.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Update(ctx context.Context, ps *model.ProblemStatement) error {
	query := `UPDATE problem_statements SET title = $1, description = $2, type = $3, category = $4
	          WHERE id = $5 RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, ps.Title, ps.Description, ps.Type, ps.Category, ps.ID).Scan(&ps.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errProblemNotFound
		}
		return fmt.Errorf("pgProblemRepository.Update: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problem_statements WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // Foreign key violation
			return common.NewError(common.ErrConflict, "Problem statement has submissions and cannot be deleted.")
		}
		return fmt.Errorf("pgProblemRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errProblemNotFound
	}
	return nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id int64) (*model.ProblemStatement, error) {
	ps := &model.ProblemStatement{}
	query := `SELECT id, title, description, type, category, created_at FROM problem_statements WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ps.ID, &ps.Title, &ps.Description, &ps.Type, &ps.Category, &ps.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errProblemNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return ps, nil
}

func (r *pgProblemRepository) List(ctx context.Context) ([]model.ProblemStatement, error) {
	query := `SELECT id, title, description, type, category, created_at
	          FROM problem_statements ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List query: %w", err)
	}
	defer rows.Close()

	list := []model.ProblemStatement{}
	for rows.Next() {
		var ps model.ProblemStatement
		if err := rows.Scan(&ps.ID, &ps.Title, &ps.Description, &ps.Type, &ps.Category, &ps.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.List scan: %w", err)
		}
		list = append(list, ps)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.List rows.Err: %w", err)
	}
	return list, nil
}

func (r *pgProblemRepository) ListWithSubmissionCounts(ctx context.Context) ([]model.ProblemStatement, error) {
	query := `SELECT p.id, p.title, p.description, p.type, p.category, p.created_at, COUNT(s.id)::int
	          FROM problem_statements p
	          LEFT JOIN submissions s ON p.id = s.ps_id
	          GROUP BY p.id
	          ORDER BY p.id DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListWithSubmissionCounts query: %w", err)
	}
	defer rows.Close()

	list := []model.ProblemStatement{}
	for rows.Next() {
		var ps model.ProblemStatement
		var count int
		if err := rows.Scan(&ps.ID, &ps.Title, &ps.Description, &ps.Type, &ps.Category, &ps.CreatedAt, &count); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListWithSubmissionCounts scan: %w", err)
		}
		ps.SubmissionCount = &count
		list = append(list, ps)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListWithSubmissionCounts rows.Err: %w", err)
	}
	return list, nil
}
