package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
)

var ErrUserExists = common.NewError(common.ErrConflict, "User already exists")

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	ExistsByEmail(ctx context.Context, tx *sql.Tx, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	SetIdentificationDoc(ctx context.Context, tx *sql.Tx, id int64, ref string) error

	ListSpocs(ctx context.Context) ([]model.User, error)
	ListPendingSpocs(ctx context.Context) ([]model.User, error)
	ApproveSpoc(ctx context.Context, id int64) (*model.User, error)
	// DeletePendingSpoc returns the removed row, or nil when nothing matched.
	DeletePendingSpoc(ctx context.Context, id int64) (*model.User, error)
	UpdateSpoc(ctx context.Context, user *model.User) error
	DeleteSpoc(ctx context.Context, id int64) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, password, role, phone, age, institution_name, identification_doc, verified, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.Role, &u.Phone, &u.Age,
		&u.InstitutionName, &u.IdentificationDoc, &u.Verified, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (name, email, password, role, phone, age, institution_name, identification_doc, verified)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at`
	err := pick(r.db, tx).QueryRowContext(ctx, query,
		user.Name, user.Email, user.HashedPassword, string(user.Role), user.Phone, user.Age,
		user.InstitutionName, user.IdentificationDoc, user.Verified,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "") {
			return ErrUserExists
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) ExistsByEmail(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	var exists bool
	err := pick(r.db, tx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgUserRepository.ExistsByEmail: %w", err)
	}
	return exists, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) SetIdentificationDoc(ctx context.Context, tx *sql.Tx, id int64, ref string) error {
	_, err := pick(r.db, tx).ExecContext(ctx, `UPDATE users SET identification_doc = $1 WHERE id = $2`, ref, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetIdentificationDoc: %w", err)
	}
	return nil
}

func (r *pgUserRepository) listUsers(ctx context.Context, query string, args ...interface{}) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) ListSpocs(ctx context.Context) ([]model.User, error) {
	users, err := r.listUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, string(model.RoleSpoc))
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListSpocs: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) ListPendingSpocs(ctx context.Context) ([]model.User, error) {
	users, err := r.listUsers(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 AND verified = FALSE ORDER BY created_at DESC`, string(model.RoleSpoc))
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListPendingSpocs: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) ApproveSpoc(ctx context.Context, id int64) (*model.User, error) {
	query := `UPDATE users SET verified = TRUE
	          WHERE id = $1 AND role = $2 AND verified = FALSE
	          RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, string(model.RoleSpoc)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.ApproveSpoc: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) DeletePendingSpoc(ctx context.Context, id int64) (*model.User, error) {
	query := `DELETE FROM users WHERE id = $1 AND role = $2 AND verified = FALSE RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, string(model.RoleSpoc)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgUserRepository.DeletePendingSpoc: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) UpdateSpoc(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET name = $1, email = $2, phone = $3, institution_name = $4
	          WHERE id = $5 AND role = $6
	          RETURNING verified, created_at`
	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Phone, user.InstitutionName, user.ID, string(model.RoleSpoc)).
		Scan(&user.Verified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewError(common.ErrNotFound, "SPOC not found")
		}
		if common.IsUniqueViolation(err, "") {
			return ErrUserExists
		}
		return fmt.Errorf("pgUserRepository.UpdateSpoc: %w", err)
	}
	return nil
}

// DeleteSpoc removes the SPOC together with the leader accounts of its teams.
// Colleges, teams, members and submissions follow by cascade.
func (r *pgUserRepository) DeleteSpoc(ctx context.Context, id int64) (*model.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.DeleteSpoc begin: %w", err)
	}
	defer tx.Rollback()

	leaders := `DELETE FROM users
	            WHERE role = $2 AND id IN (
	                SELECT t.leader_id FROM teams t
	                JOIN colleges c ON c.id = t.college_id
	                WHERE c.spoc_id = $1)`
	if _, err := tx.ExecContext(ctx, leaders, id, string(model.RoleTeamLeader)); err != nil {
		return nil, fmt.Errorf("pgUserRepository.DeleteSpoc leaders: %w", err)
	}

	query := `DELETE FROM users WHERE id = $1 AND role = $2 RETURNING ` + userColumns
	user, err := scanUser(tx.QueryRowContext(ctx, query, id, string(model.RoleSpoc)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.ErrNotFound, "SPOC not found")
		}
		return nil, fmt.Errorf("pgUserRepository.DeleteSpoc: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.DeleteSpoc commit: %w", err)
	}
	return user, nil
}
