package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	netmail "net/mail"
	"strings"
	"time"

	"rsih_portal/internal/common"
	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/database"
	"rsih_portal/internal/platform/mail"
	"rsih_portal/internal/platform/queue"

	"github.com/google/uuid"
)

const generatedPasswordLength = 10

var errAccessDenied = common.NewError(common.ErrForbidden, "Access denied")

type TeamService struct {
	tx             database.Transactor
	userRepo       repository.UserRepository
	collegeRepo    repository.CollegeRepository
	teamRepo       repository.TeamRepository
	submissionRepo repository.SubmissionRepository
	mailer         mail.Mailer
	mailQueue      queue.MailQueue
	teamLimit      int
}

func NewTeamService(
	tx database.Transactor,
	userRepo repository.UserRepository,
	collegeRepo repository.CollegeRepository,
	teamRepo repository.TeamRepository,
	submissionRepo repository.SubmissionRepository,
	mailer mail.Mailer,
	mailQueue queue.MailQueue,
	teamLimit int,
) *TeamService {
	return &TeamService{
		tx:             tx,
		userRepo:       userRepo,
		collegeRepo:    collegeRepo,
		teamRepo:       teamRepo,
		submissionRepo: submissionRepo,
		mailer:         mailer,
		mailQueue:      mailQueue,
		teamLimit:      teamLimit,
	}
}

type MemberInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Branch string `json:"branch"`
	Stream string `json:"stream"`
	Year   string `json:"year"`
}

type RegisterTeamRequest struct {
	CollegeID      *int64        `json:"collegeId"`
	TeamName       string        `json:"teamName"`
	LeaderName     string        `json:"leaderName"`
	LeaderEmail    string        `json:"leaderEmail"`
	LeaderPassword string        `json:"leaderPassword"`
	LeaderPhone    string        `json:"leaderPhone"`
	Members        []MemberInput `json:"members"`
}

type RegisterTeamResult struct {
	Message string      `json:"message"`
	Team    *model.Team `json:"team"`
	Warning string      `json:"warning,omitempty"`
	// LeaderPassword is only returned when a generated password could not be mailed or queued.
	LeaderPassword string `json:"leader_password,omitempty"`
}

type TeamSubmissionStatus struct {
	Submitted  bool              `json:"submitted"`
	Submission *model.Submission `json:"submission,omitempty"`
}

func (r *RegisterTeamRequest) validate() error {
	r.TeamName = strings.TrimSpace(r.TeamName)
	r.LeaderName = strings.TrimSpace(r.LeaderName)
	r.LeaderEmail = normalizeEmail(r.LeaderEmail)
	if r.TeamName == "" || r.LeaderName == "" || r.LeaderEmail == "" {
		return common.NewError(common.ErrValidation, "Team name, leader name and leader email are required.")
	}
	if !validEmail(r.LeaderEmail) {
		return common.NewError(common.ErrValidation, "Leader email is not a valid email address.")
	}
	if len(r.Members) > model.MaxTeamMembers-1 {
		return common.NewError(common.ErrValidation, fmt.Sprintf("A team can have at most %d members.", model.MaxTeamMembers))
	}
	for _, m := range r.Members {
		if strings.TrimSpace(m.Name) == "" {
			return common.NewError(common.ErrValidation, "Every team member needs a name.")
		}
		if email := strings.TrimSpace(m.Email); email != "" && !validEmail(email) {
			return common.NewError(common.ErrValidation, fmt.Sprintf("Member email %q is not a valid email address.", email))
		}
	}
	return nil
}

// RegisterTeam creates the leader account, the team and its roster under the
// SPOC's college. The per-college limit is checked with the college row locked.
func (s *TeamService) RegisterTeam(ctx context.Context, spocID int64, req RegisterTeamRequest) (*RegisterTeamResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	college, err := s.ownedCollege(ctx, spocID, req.CollegeID)
	if err != nil {
		return nil, err
	}

	password := req.LeaderPassword
	generated := password == ""
	if generated {
		if password, err = security.GeneratePassword(generatedPasswordLength); err != nil {
			return nil, fmt.Errorf("failed to generate leader password: %w", err)
		}
	}
	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	team := &model.Team{
		Name:        req.TeamName,
		CollegeID:   college.ID,
		LeaderName:  req.LeaderName,
		LeaderEmail: req.LeaderEmail,
	}
	members := []model.TeamMember{{
		Position: 1,
		Name:     req.LeaderName,
		Email:    &req.LeaderEmail,
		Phone:    nullable(req.LeaderPhone),
	}}
	for i, m := range req.Members {
		members = append(members, model.TeamMember{
			Position: i + 2,
			Name:     strings.TrimSpace(m.Name),
			Email:    nullable(m.Email),
			Phone:    nullable(m.Phone),
			Branch:   nullable(m.Branch),
			Stream:   nullable(m.Stream),
			Year:     nullable(m.Year),
		})
	}

	err = s.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.collegeRepo.LockByID(ctx, tx, college.ID); err != nil {
			return err
		}
		count, err := s.teamRepo.CountByCollege(ctx, tx, college.ID)
		if err != nil {
			return err
		}
		if count >= s.teamLimit {
			return common.NewError(common.ErrConflict,
				fmt.Sprintf("Team registration limit reached. Each SPOC can register a maximum of %d teams.", s.teamLimit))
		}

		exists, err := s.userRepo.ExistsByEmail(ctx, tx, req.LeaderEmail)
		if err != nil {
			return err
		}
		if exists {
			return repository.ErrUserExists
		}

		leader := &model.User{
			Name:           req.LeaderName,
			Email:          req.LeaderEmail,
			HashedPassword: hashedPassword,
			Role:           model.RoleTeamLeader,
			Phone:          nullable(req.LeaderPhone),
			Verified:       true,
		}
		if err := s.userRepo.Create(ctx, tx, leader); err != nil {
			return err
		}

		team.LeaderID = leader.ID
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return err
		}
		return s.teamRepo.AddMembers(ctx, tx, team.ID, members)
	})
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].TeamID = team.ID
	}
	team.Members = members
	log.Printf("INFO: team %d (%s) registered for college %d", team.ID, team.Name, college.ID)

	result := &RegisterTeamResult{Message: "Team registered successfully.", Team: team}
	s.deliverCredentials(ctx, result, password, generated)
	return result, nil
}

// validEmail accepts a bare address only, not a display-name form.
func validEmail(s string) bool {
	addr, err := netmail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// deliverCredentials mails the leader's login. A failed send never undoes the
// registration: the SPOC gets a warning, a generated password is handed back,
// and the job goes to the retry queue unless mail is not configured at all.
func (s *TeamService) deliverCredentials(ctx context.Context, result *RegisterTeamResult, password string, generated bool) {
	job := model.MailJob{
		ID:         uuid.NewString(),
		To:         result.Team.LeaderEmail,
		Name:       result.Team.LeaderName,
		TeamName:   result.Team.Name,
		Password:   password,
		EnqueuedAt: time.Now().UTC(),
	}
	sendErr := s.mailer.SendCredentials(ctx, job)
	if sendErr == nil {
		return
	}
	log.Printf("WARN: credentials email to %s failed: %v", job.To, sendErr)
	if generated {
		result.LeaderPassword = password
	}
	if errors.Is(sendErr, mail.ErrNotConfigured) {
		result.Warning = "Team registered, but email delivery is not configured. Share the login details with the team leader directly."
		return
	}

	job.Attempts = 1
	lastErr := sendErr.Error()
	job.LastError = &lastErr
	if err := s.mailQueue.Push(ctx, job); err != nil {
		log.Printf("ERROR: could not queue credentials email for %s: %v", job.To, err)
		result.Warning = "Team registered, but the credentials email could not be sent. Share the login details with the team leader directly."
		return
	}
	result.Warning = "Team registered, but the credentials email could not be sent yet. Delivery will be retried."
}

func (s *TeamService) MyCollege(ctx context.Context, spocID int64) (*model.College, error) {
	return s.collegeRepo.FindBySpocID(ctx, spocID)
}

func (s *TeamService) MyTeams(ctx context.Context, spocID int64) ([]model.Team, error) {
	college, err := s.collegeRepo.FindBySpocID(ctx, spocID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return []model.Team{}, nil
		}
		return nil, err
	}
	return s.teamRepo.ListByCollege(ctx, college.ID)
}

func (s *TeamService) TeamsByCollege(ctx context.Context, spocID, collegeID int64) ([]model.Team, error) {
	college, err := s.ownedCollege(ctx, spocID, &collegeID)
	if err != nil {
		return nil, err
	}
	return s.teamRepo.ListByCollege(ctx, college.ID)
}

func (s *TeamService) TeamSubmission(ctx context.Context, spocID, teamID int64) (*TeamSubmissionStatus, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCollege(ctx, spocID, &team.CollegeID); err != nil {
		return nil, err
	}

	sub, err := s.submissionRepo.FindByTeamID(ctx, team.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &TeamSubmissionStatus{Submitted: false}, nil
		}
		return nil, err
	}
	return &TeamSubmissionStatus{Submitted: true, Submission: sub}, nil
}

// ownedCollege resolves collegeID, or the SPOC's own college when nil, and
// rejects colleges that belong to another SPOC.
func (s *TeamService) ownedCollege(ctx context.Context, spocID int64, collegeID *int64) (*model.College, error) {
	if collegeID == nil {
		return s.collegeRepo.FindBySpocID(ctx, spocID)
	}
	college, err := s.collegeRepo.FindByID(ctx, *collegeID)
	if err != nil {
		return nil, err
	}
	if college.SpocID != spocID {
		return nil, errAccessDenied
	}
	return college, nil
}
