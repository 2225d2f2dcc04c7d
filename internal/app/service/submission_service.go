package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/cache"
	"rsih_portal/internal/platform/storage"
)

const (
	maxDescriptionWords = 1000
	maxAbstractWords    = 500
)

type SubmissionService struct {
	teamRepo       repository.TeamRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	store          storage.Store
	catalog        cache.CatalogCache
	bucket         string
}

func NewSubmissionService(
	teamRepo repository.TeamRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	store storage.Store,
	catalog cache.CatalogCache,
	bucket string,
) *SubmissionService {
	return &SubmissionService{
		teamRepo:       teamRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		store:          store,
		catalog:        catalog,
		bucket:         bucket,
	}
}

type SubmitIdeaRequest struct {
	PsID        int64  `json:"ps_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Abstract    string `json:"abstract"`
	YtLink      string `json:"yt_link"`
}

// FileUpload is an optional presentation attached to a submission.
type FileUpload struct {
	Name string
	Body io.Reader
}

func (r *SubmitIdeaRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.PsID <= 0 || r.Title == "" {
		return common.NewError(common.ErrValidation, "Problem statement and title are required.")
	}
	if n := len(strings.Fields(r.Description)); n > maxDescriptionWords {
		return common.NewError(common.ErrValidation, fmt.Sprintf("Description must not exceed %d words.", maxDescriptionWords))
	}
	if n := len(strings.Fields(r.Abstract)); n > maxAbstractWords {
		return common.NewError(common.ErrValidation, fmt.Sprintf("Abstract must not exceed %d words.", maxAbstractWords))
	}
	return nil
}

// Submit records the caller's single idea submission. The presentation, if
// any, is stored before the row is written and removed if the insert fails.
func (s *SubmissionService) Submit(ctx context.Context, userID int64, req SubmitIdeaRequest, file *FileUpload) (*model.Submission, error) {
	team, err := s.teamRepo.FindByLeaderID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.submissionRepo.FindByTeamID(ctx, team.ID); err == nil {
		return nil, repository.ErrAlreadySubmitted
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.problemRepo.FindByID(ctx, req.PsID); err != nil {
		return nil, err
	}

	var pptURL *string
	if file != nil {
		ref, err := s.store.Upload(ctx, s.bucket, file.Name, file.Body)
		if err != nil {
			log.Printf("ERROR: presentation upload for team %d failed: %v", team.ID, err)
			return nil, common.NewError(common.ErrUpstream, "Failed to upload presentation file")
		}
		pptURL = &ref
	}

	sub := &model.Submission{
		TeamID:      team.ID,
		PsID:        req.PsID,
		Title:       req.Title,
		Description: nullable(req.Description),
		Abstract:    nullable(req.Abstract),
		PptURL:      pptURL,
		YtLink:      nullable(req.YtLink),
		Status:      model.SubmissionStatusSubmitted,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if pptURL != nil {
			if rmErr := s.store.Remove(context.WithoutCancel(ctx), s.bucket, *pptURL); rmErr != nil {
				log.Printf("WARN: failed to remove orphaned presentation %s: %v", *pptURL, rmErr)
			}
		}
		return nil, err
	}
	log.Printf("INFO: team %d submitted idea %d for problem %d", team.ID, sub.ID, sub.PsID)

	s.catalog.Invalidate(ctx)
	return sub, nil
}

func (s *SubmissionService) MyTeam(ctx context.Context, userID int64) (*model.Team, error) {
	team, err := s.teamRepo.FindByLeaderID(ctx, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	team.Members = members
	return team, nil
}

// MySubmission returns nil when the caller has no team or the team has not submitted yet.
func (s *SubmissionService) MySubmission(ctx context.Context, userID int64) (*model.Submission, error) {
	team, err := s.teamRepo.FindByLeaderID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	sub, err := s.submissionRepo.FindByTeamID(ctx, team.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
