package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
)

var ErrInstitutionTaken = common.NewError(common.ErrConflict, "A SPOC already exists for this institution.")

type CollegeRepository interface {
	Create(ctx context.Context, tx *sql.Tx, college *model.College) error
	// ExistsByName compares names case-insensitively.
	ExistsByName(ctx context.Context, tx *sql.Tx, name string) (bool, error)
	FindByID(ctx context.Context, id int64) (*model.College, error)
	FindBySpocID(ctx context.Context, spocID int64) (*model.College, error)
	// LockByID row-locks the college for the rest of tx so team counts stay stable.
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.College, error)
}

type pgCollegeRepository struct {
	db *sql.DB
}

func NewPgCollegeRepository(db *sql.DB) CollegeRepository {
	return &pgCollegeRepository{db: db}
}

func (r *pgCollegeRepository) Create(ctx context.Context, tx *sql.Tx, college *model.College) error {
	query := `INSERT INTO colleges (name, spoc_id) VALUES ($1, $2) RETURNING id, created_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query, college.Name, college.SpocID).Scan(&college.ID, &college.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "idx_colleges_name_lower") {
			return ErrInstitutionTaken
		}
		return fmt.Errorf("pgCollegeRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCollegeRepository) ExistsByName(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM colleges WHERE LOWER(name) = LOWER($1))`
	if err := pick(r.db, tx).QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgCollegeRepository.ExistsByName: %w", err)
	}
	return exists, nil
}

func (r *pgCollegeRepository) findOne(ctx context.Context, q dbtx, query string, arg int64) (*model.College, error) {
	c := &model.College{}
	err := q.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.SpocID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.ErrNotFound, "College not found")
		}
		return nil, err
	}
	return c, nil
}

func (r *pgCollegeRepository) FindByID(ctx context.Context, id int64) (*model.College, error) {
	c, err := r.findOne(ctx, r.db, `SELECT id, name, spoc_id, created_at FROM colleges WHERE id = $1`, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgCollegeRepository.FindByID: %w", err)
	}
	return c, err
}

func (r *pgCollegeRepository) FindBySpocID(ctx context.Context, spocID int64) (*model.College, error) {
	c, err := r.findOne(ctx, r.db, `SELECT id, name, spoc_id, created_at FROM colleges WHERE spoc_id = $1`, spocID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgCollegeRepository.FindBySpocID: %w", err)
	}
	return c, err
}

func (r *pgCollegeRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.College, error) {
	c, err := r.findOne(ctx, pick(r.db, tx), `SELECT id, name, spoc_id, created_at FROM colleges WHERE id = $1 FOR UPDATE`, id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgCollegeRepository.LockByID: %w", err)
	}
	return c, err
}
