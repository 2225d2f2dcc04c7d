// Package memrepo implements the repository interfaces in memory for tests.
package memrepo

import (
	"context"
	"database/sql"
	"maps"
	"slices"
	"strings"
	"time"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository"
)

// DB is an in-memory stand-in for the portal tables. Transactor snapshots it
// before a transaction and restores it when the transaction fails.
type DB struct {
	nextID      int64
	Users       map[int64]model.User
	Colleges    map[int64]model.College
	Teams       map[int64]model.Team
	Members     map[int64][]model.TeamMember
	Problems    map[int64]model.ProblemStatement
	Submissions map[int64]model.Submission
	Settings    map[string]string
}

func NewDB() *DB {
	return &DB{
		Users:       map[int64]model.User{},
		Colleges:    map[int64]model.College{},
		Teams:       map[int64]model.Team{},
		Members:     map[int64][]model.TeamMember{},
		Problems:    map[int64]model.ProblemStatement{},
		Submissions: map[int64]model.Submission{},
		Settings:    map[string]string{},
	}
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *DB) snapshot() DB {
	return DB{
		nextID:      db.nextID,
		Users:       maps.Clone(db.Users),
		Colleges:    maps.Clone(db.Colleges),
		Teams:       maps.Clone(db.Teams),
		Members:     maps.Clone(db.Members),
		Problems:    maps.Clone(db.Problems),
		Submissions: maps.Clone(db.Submissions),
		Settings:    maps.Clone(db.Settings),
	}
}

type Transactor struct {
	DB      *DB
	Commits int
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	snap := t.DB.snapshot()
	if err := fn(nil); err != nil {
		*t.DB = snap
		return err
	}
	t.Commits++
	return nil
}

func sortedDesc[T any](m map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	slices.Reverse(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// users

type UserRepository struct{ db *DB }

func (r *UserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	for _, u := range r.db.Users {
		if u.Email == user.Email {
			return repository.ErrUserExists
		}
	}
	user.ID = r.db.id()
	user.CreatedAt = time.Now()
	r.db.Users[user.ID] = *user
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, tx *sql.Tx, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.db.Users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.db.Users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) SetIdentificationDoc(ctx context.Context, tx *sql.Tx, id int64, ref string) error {
	u, ok := r.db.Users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.IdentificationDoc = &ref
	r.db.Users[id] = u
	return nil
}

func (r *UserRepository) ListSpocs(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range sortedDesc(r.db.Users) {
		if u.Role == model.RoleSpoc {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) ListPendingSpocs(ctx context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range sortedDesc(r.db.Users) {
		if u.Role == model.RoleSpoc && !u.Verified {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UserRepository) ApproveSpoc(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.db.Users[id]
	if !ok || u.Role != model.RoleSpoc || u.Verified {
		return nil, common.ErrNotFound
	}
	u.Verified = true
	r.db.Users[id] = u
	return &u, nil
}

func (r *UserRepository) DeletePendingSpoc(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.db.Users[id]
	if !ok || u.Role != model.RoleSpoc || u.Verified {
		return nil, nil
	}
	r.deleteCascade(id)
	return &u, nil
}

func (r *UserRepository) UpdateSpoc(ctx context.Context, user *model.User) error {
	u, ok := r.db.Users[user.ID]
	if !ok || u.Role != model.RoleSpoc {
		return common.NewError(common.ErrNotFound, "SPOC not found")
	}
	u.Name, u.Email, u.Phone, u.InstitutionName = user.Name, user.Email, user.Phone, user.InstitutionName
	r.db.Users[user.ID] = u
	user.Verified, user.CreatedAt = u.Verified, u.CreatedAt
	return nil
}

func (r *UserRepository) DeleteSpoc(ctx context.Context, id int64) (*model.User, error) {
	u, ok := r.db.Users[id]
	if !ok || u.Role != model.RoleSpoc {
		return nil, common.NewError(common.ErrNotFound, "SPOC not found")
	}
	r.deleteCascade(id)
	return &u, nil
}

func (r *UserRepository) deleteCascade(userID int64) {
	delete(r.db.Users, userID)
	for id, c := range r.db.Colleges {
		if c.SpocID != userID {
			continue
		}
		delete(r.db.Colleges, id)
		for tid, t := range r.db.Teams {
			if t.CollegeID != id {
				continue
			}
			if leader, ok := r.db.Users[t.LeaderID]; ok && leader.Role == model.RoleTeamLeader {
				delete(r.db.Users, t.LeaderID)
			}
			delete(r.db.Teams, tid)
			delete(r.db.Members, tid)
			for sid, sub := range r.db.Submissions {
				if sub.TeamID == tid {
					delete(r.db.Submissions, sid)
				}
			}
		}
	}
}

// colleges

type CollegeRepository struct{ db *DB }

func (r *CollegeRepository) Create(ctx context.Context, tx *sql.Tx, college *model.College) error {
	if taken, _ := r.ExistsByName(ctx, tx, college.Name); taken {
		return repository.ErrInstitutionTaken
	}
	college.ID = r.db.id()
	college.CreatedAt = time.Now()
	r.db.Colleges[college.ID] = *college
	return nil
}

func (r *CollegeRepository) ExistsByName(ctx context.Context, tx *sql.Tx, name string) (bool, error) {
	for _, c := range r.db.Colleges {
		if strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *CollegeRepository) FindByID(ctx context.Context, id int64) (*model.College, error) {
	c, ok := r.db.Colleges[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "College not found")
	}
	return &c, nil
}

func (r *CollegeRepository) FindBySpocID(ctx context.Context, spocID int64) (*model.College, error) {
	for _, c := range r.db.Colleges {
		if c.SpocID == spocID {
			return &c, nil
		}
	}
	return nil, common.NewError(common.ErrNotFound, "College not found")
}

func (r *CollegeRepository) LockByID(ctx context.Context, tx *sql.Tx, id int64) (*model.College, error) {
	return r.FindByID(ctx, id)
}

// teams

type TeamRepository struct{ db *DB }

func (r *TeamRepository) CountByCollege(ctx context.Context, tx *sql.Tx, collegeID int64) (int, error) {
	n := 0
	for _, t := range r.db.Teams {
		if t.CollegeID == collegeID {
			n++
		}
	}
	return n, nil
}

func (r *TeamRepository) Create(ctx context.Context, tx *sql.Tx, team *model.Team) error {
	team.ID = r.db.id()
	team.CreatedAt = time.Now()
	stored := *team
	stored.Members = nil
	r.db.Teams[team.ID] = stored
	return nil
}

func (r *TeamRepository) AddMembers(ctx context.Context, tx *sql.Tx, teamID int64, members []model.TeamMember) error {
	for _, m := range members {
		m.ID = r.db.id()
		m.TeamID = teamID
		r.db.Members[teamID] = append(slices.Clone(r.db.Members[teamID]), m)
	}
	return nil
}

func (r *TeamRepository) withLeader(t model.Team) model.Team {
	if u, ok := r.db.Users[t.LeaderID]; ok {
		t.LeaderName, t.LeaderEmail = u.Name, u.Email
	}
	return t
}

func (r *TeamRepository) ListByCollege(ctx context.Context, collegeID int64) ([]model.Team, error) {
	out := []model.Team{}
	for _, t := range sortedDesc(r.db.Teams) {
		if t.CollegeID == collegeID {
			out = append(out, r.withLeader(t))
		}
	}
	return out, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	t, ok := r.db.Teams[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "Team not found")
	}
	t = r.withLeader(t)
	return &t, nil
}

func (r *TeamRepository) FindByLeaderID(ctx context.Context, leaderID int64) (*model.Team, error) {
	for _, t := range r.db.Teams {
		if t.LeaderID == leaderID {
			t = r.withLeader(t)
			return &t, nil
		}
	}
	return nil, common.NewError(common.ErrNotFound, "Team not found for this user")
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64) ([]model.TeamMember, error) {
	return slices.Clone(r.db.Members[teamID]), nil
}

// problem statements

type ProblemRepository struct{ db *DB }

func (r *ProblemRepository) Create(ctx context.Context, ps *model.ProblemStatement) error {
	ps.ID = r.db.id()
	ps.CreatedAt = time.Now()
	r.db.Problems[ps.ID] = *ps
	return nil
}

func (r *ProblemRepository) Update(ctx context.Context, ps *model.ProblemStatement) error {
	old, ok := r.db.Problems[ps.ID]
	if !ok {
		return common.NewError(common.ErrNotFound, "Problem statement not found")
	}
	ps.CreatedAt = old.CreatedAt
	r.db.Problems[ps.ID] = *ps
	return nil
}

func (r *ProblemRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.db.Problems[id]; !ok {
		return common.NewError(common.ErrNotFound, "Problem statement not found")
	}
	for _, s := range r.db.Submissions {
		if s.PsID == id {
			return common.NewError(common.ErrConflict, "Problem statement has submissions and cannot be deleted.")
		}
	}
	delete(r.db.Problems, id)
	return nil
}

func (r *ProblemRepository) FindByID(ctx context.Context, id int64) (*model.ProblemStatement, error) {
	ps, ok := r.db.Problems[id]
	if !ok {
		return nil, common.NewError(common.ErrNotFound, "Problem statement not found")
	}
	return &ps, nil
}

func (r *ProblemRepository) List(ctx context.Context) ([]model.ProblemStatement, error) {
	return sortedDesc(r.db.Problems), nil
}

func (r *ProblemRepository) ListWithSubmissionCounts(ctx context.Context) ([]model.ProblemStatement, error) {
	list := sortedDesc(r.db.Problems)
	for i := range list {
		count := 0
		for _, s := range r.db.Submissions {
			if s.PsID == list[i].ID {
				count++
			}
		}
		list[i].SubmissionCount = &count
	}
	return list, nil
}

// submissions

type SubmissionRepository struct{ db *DB }

func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	for _, s := range r.db.Submissions {
		if s.TeamID == sub.TeamID {
			return repository.ErrAlreadySubmitted
		}
	}
	sub.ID = r.db.id()
	sub.CreatedAt = time.Now()
	r.db.Submissions[sub.ID] = *sub
	return nil
}

func (r *SubmissionRepository) FindByTeamID(ctx context.Context, teamID int64) (*model.Submission, error) {
	for _, s := range r.db.Submissions {
		if s.TeamID == teamID {
			return &s, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]model.Submission, error) {
	out := sortedDesc(r.db.Submissions)
	for i := range out {
		if t, ok := r.db.Teams[out[i].TeamID]; ok {
			out[i].TeamName = &t.Name
		}
		if p, ok := r.db.Problems[out[i].PsID]; ok {
			out[i].PsTitle = &p.Title
		}
	}
	return out, nil
}

// settings

type SettingRepository struct{ db *DB }

func (r *SettingRepository) All(ctx context.Context) (map[string]string, error) {
	return maps.Clone(r.db.Settings), nil
}

func (r *SettingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := r.db.Settings[key]
	return v, ok, nil
}

func (r *SettingRepository) Upsert(ctx context.Context, key, value string) error {
	r.db.Settings[key] = value
	return nil
}

func NewTransactor(db *DB) *Transactor { return &Transactor{DB: db} }

func NewUserRepository(db *DB) *UserRepository { return &UserRepository{db: db} }
func NewCollegeRepository(db *DB) *CollegeRepository { return &CollegeRepository{db: db} }
func NewTeamRepository(db *DB) *TeamRepository { return &TeamRepository{db: db} }
func NewProblemRepository(db *DB) *ProblemRepository { return &ProblemRepository{db: db} }
func NewSubmissionRepository(db *DB) *SubmissionRepository { return &SubmissionRepository{db: db} }
func NewSettingRepository(db *DB) *SettingRepository { return &SettingRepository{db: db} }

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.CollegeRepository    = (*CollegeRepository)(nil)
	_ repository.TeamRepository       = (*TeamRepository)(nil)
	_ repository.ProblemRepository    = (*ProblemRepository)(nil)
	_ repository.SubmissionRepository = (*SubmissionRepository)(nil)
	_ repository.SettingRepository    = (*SettingRepository)(nil)
)
