package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/cache"
	"rsih_portal/internal/platform/storage"
)

var errSpocNotFound = common.NewError(common.ErrNotFound, "SPOC not found")

type AdminService struct {
	userRepo        repository.UserRepository
	submissionRepo  repository.SubmissionRepository
	store           storage.Store
	catalog         cache.CatalogCache
	documentsBucket string
}

func NewAdminService(
	userRepo repository.UserRepository,
	submissionRepo repository.SubmissionRepository,
	store storage.Store,
	catalog cache.CatalogCache,
	documentsBucket string,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		submissionRepo:  submissionRepo,
		store:           store,
		catalog:         catalog,
		documentsBucket: documentsBucket,
	}
}

type UpdateSpocRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	InstitutionName string `json:"institution_name"`
}

func (s *AdminService) ListSpocs(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListSpocs(ctx)
}

func (s *AdminService) ListPendingRegistrations(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListPendingSpocs(ctx)
}

// ApproveRegistration verifies a pending SPOC. Already verified or unknown ids are not found.
func (s *AdminService) ApproveRegistration(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.ApproveSpoc(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errSpocNotFound
		}
		return nil, err
	}
	log.Printf("INFO: SPOC %d (%s) approved", user.ID, user.Email)
	return user, nil
}

// RejectRegistration deletes a still-pending SPOC and its college. It is a
// no-op for verified or unknown ids.
func (s *AdminService) RejectRegistration(ctx context.Context, id int64) error {
	user, err := s.userRepo.DeletePendingSpoc(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	log.Printf("INFO: SPOC registration %d (%s) rejected", user.ID, user.Email)
	s.removeDocument(ctx, user)
	return nil
}

func (s *AdminService) UpdateSpoc(ctx context.Context, id int64, req UpdateSpocRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if req.Name == "" || req.Email == "" {
		return nil, common.NewError(common.ErrValidation, "Name and email are required.")
	}

	user := &model.User{
		ID:              id,
		Name:            req.Name,
		Email:           req.Email,
		Role:            model.RoleSpoc,
		Phone:           nullable(req.Phone),
		InstitutionName: nullable(req.InstitutionName),
	}
	if err := s.userRepo.UpdateSpoc(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteSpoc removes a SPOC with its college, teams, leader accounts and
// submissions. Submission counts change, so the public catalog is dropped.
func (s *AdminService) DeleteSpoc(ctx context.Context, id int64) error {
	user, err := s.userRepo.DeleteSpoc(ctx, id)
	if err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	log.Printf("INFO: SPOC %d (%s) deleted", user.ID, user.Email)
	s.removeDocument(ctx, user)
	return nil
}

func (s *AdminService) ListSubmissions(ctx context.Context) ([]model.Submission, error) {
	return s.submissionRepo.ListAll(ctx)
}

func (s *AdminService) removeDocument(ctx context.Context, user *model.User) {
	if user.IdentificationDoc == nil || *user.IdentificationDoc == "" {
		return
	}
	if err := s.store.Remove(ctx, s.documentsBucket, *user.IdentificationDoc); err != nil {
		log.Printf("WARN: failed to remove document for SPOC %d: %v", user.ID, err)
	}
}
