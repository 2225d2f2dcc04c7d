package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"rsih_portal/internal/common"
	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/database"
	"rsih_portal/internal/platform/storage"
)

var (
	errInvalidCredentials = common.NewError(common.ErrBadRequest, "Invalid credentials")
	errSpocNotVerified    = common.NewError(common.ErrForbidden, "SPOC not yet verified by Admin.")
)

type AuthService struct {
	userRepo        repository.UserRepository
	collegeRepo     repository.CollegeRepository
	store           storage.Store
	tx              database.Transactor
	documentsBucket string
}

func NewAuthService(
	userRepo repository.UserRepository,
	collegeRepo repository.CollegeRepository,
	store storage.Store,
	tx database.Transactor,
	documentsBucket string,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		collegeRepo:     collegeRepo,
		store:           store,
		tx:              tx,
		documentsBucket: documentsBucket,
	}
}

// RegisterSpocRequest carries the form fields plus the staged nomination document.
type RegisterSpocRequest struct {
	Name         string
	Age          int
	Email        string
	Phone        string
	Institution  string
	Password     string
	DocumentPath string // temp file written by the HTTP layer
	DocumentName string // client-side file name
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterSpoc creates an unverified SPOC, its college and the stored nomination
// document as one unit. The staged temp file is always removed, and a promoted
// document is removed again if the transaction does not commit.
func (s *AuthService) RegisterSpoc(ctx context.Context, req RegisterSpocRequest) (err error) {
	if req.DocumentPath != "" {
		defer os.Remove(req.DocumentPath)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Institution = strings.TrimSpace(req.Institution)
	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Institution == "" || req.Password == "" || req.Age <= 0 {
		return common.NewError(common.ErrValidation, "All fields are required.")
	}
	if req.DocumentPath == "" {
		return common.NewError(common.ErrValidation, "Nomination document is required.")
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var documentRef string
	defer func() {
		if err != nil && documentRef != "" {
			if rmErr := s.store.Remove(context.WithoutCancel(ctx), s.documentsBucket, documentRef); rmErr != nil {
				log.Printf("WARN: failed to remove orphaned document %s: %v", documentRef, rmErr)
			}
		}
	}()

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		exists, err := s.userRepo.ExistsByEmail(ctx, tx, req.Email)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrUserExists
		}

		taken, err := s.collegeRepo.ExistsByName(ctx, tx, req.Institution)
		if err != nil {
			return err
		}
		if taken {
			return repository.ErrInstitutionTaken
		}

		age := req.Age
		user := &model.User{
			Name:            req.Name,
			Email:           req.Email,
			HashedPassword:  hashedPassword,
			Role:            model.RoleSpoc,
			Phone:           &req.Phone,
			Age:             &age,
			InstitutionName: &req.Institution,
			Verified:        false,
		}
		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}
		if err := s.collegeRepo.Create(ctx, tx, &model.College{Name: req.Institution, SpocID: user.ID}); err != nil {
			return err
		}

		ref, err := s.store.Promote(ctx, s.documentsBucket, req.DocumentPath, storage.DocumentName(user.ID, req.DocumentName))
		if err != nil {
			return fmt.Errorf("failed to store nomination document: %w", err)
		}
		documentRef = ref

		return s.userRepo.SetIdentificationDoc(ctx, tx, user.ID, ref)
	})
	return err
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, common.NewError(common.ErrValidation, "Email and password are required.")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, errInvalidCredentials
	}

	if !user.CanLogin() {
		switch user.Role {
		case model.RoleSpoc:
			return nil, errSpocNotVerified
		default:
			return nil, common.NewError(common.ErrForbidden, "Access denied")
		}
	}

	token, err := security.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{Token: token, User: user}, nil
}

// EnsureAdmin seeds a verified admin account when none exists for email.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, nil, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := &model.User{
		Name:           name,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           model.RoleAdmin,
		Verified:       true,
	}
	if err := s.userRepo.Create(ctx, nil, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("INFO: seeded admin account %s", email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nullable maps blank input to NULL.
func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
