package service

import (
	"context"
	"strings"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/cache"
)

// ProblemService manages problem statements and renders the public catalog.
type ProblemService struct {
	problemRepo repository.ProblemRepository
	settingRepo repository.SettingRepository
	catalog     cache.CatalogCache
}

func NewProblemService(problemRepo repository.ProblemRepository, settingRepo repository.SettingRepository, catalog cache.CatalogCache) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, settingRepo: settingRepo, catalog: catalog}
}

type ProblemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Category    string `json:"category"`
}

func (r ProblemRequest) toModel(id int64) (*model.ProblemStatement, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return nil, common.NewError(common.ErrValidation, "Title is required.")
	}
	return &model.ProblemStatement{
		ID:          id,
		Title:       title,
		Description: nullable(r.Description),
		Type:        nullable(r.Type),
		Category:    nullable(r.Category),
	}, nil
}

func (s *ProblemService) Create(ctx context.Context, req ProblemRequest) (*model.ProblemStatement, error) {
	ps, err := req.toModel(0)
	if err != nil {
		return nil, err
	}
	if err := s.problemRepo.Create(ctx, ps); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return ps, nil
}

func (s *ProblemService) Update(ctx context.Context, id int64, req ProblemRequest) (*model.ProblemStatement, error) {
	ps, err := req.toModel(id)
	if err != nil {
		return nil, err
	}
	if err := s.problemRepo.Update(ctx, ps); err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx)
	return ps, nil
}

func (s *ProblemService) Delete(ctx context.Context, id int64) error {
	if err := s.problemRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

// List returns the bare catalog, newest first.
func (s *ProblemService) List(ctx context.Context) ([]model.ProblemStatement, error) {
	return s.problemRepo.List(ctx)
}

// PublicCatalog adds submission_count to every entry when the
// show_submission_counts setting is "true".
func (s *ProblemService) PublicCatalog(ctx context.Context) ([]model.ProblemStatement, error) {
	value, _, err := s.settingRepo.Get(ctx, model.SettingShowSubmissionCounts)
	if err != nil {
		return nil, err
	}
	withCounts := value == "true"

	if list, ok := s.catalog.Get(ctx, withCounts); ok {
		return list, nil
	}

	var list []model.ProblemStatement
	if withCounts {
		list, err = s.problemRepo.ListWithSubmissionCounts(ctx)
	} else {
		list, err = s.problemRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.catalog.Set(ctx, withCounts, list)
	return list, nil
}
