package service

import (
	"context"
	"testing"

	"rsih_portal/internal/common"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository/memrepo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveRegistration(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	spocID := p.verifiedSpoc(t, "a@x.com", "X")

	_, err := p.admin.ApproveRegistration(ctx, spocID)
	require.Error(t, err, "already verified")
	assert.Equal(t, "SPOC not found", common.MessageFromError(err, ""))
	assert.Equal(t, 404, common.HTTPStatusFromError(err))

	_, err = p.admin.ApproveRegistration(ctx, 12345)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRejectRegistration(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	require.NoError(t, p.auth.RegisterSpoc(ctx, spocRequest(t, "a@x.com", "X")))
	pending, err := p.admin.ListPendingRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	doc := *pending[0].IdentificationDoc

	require.NoError(t, p.admin.RejectRegistration(ctx, pending[0].ID))
	assert.Empty(t, p.db.Users)
	assert.Empty(t, p.db.Colleges)
	assert.Contains(t, p.store.removed, doc)

	// Idempotent for unknown and verified ids.
	require.NoError(t, p.admin.RejectRegistration(ctx, pending[0].ID))
	verified := p.verifiedSpoc(t, "b@x.com", "Y")
	require.NoError(t, p.admin.RejectRegistration(ctx, verified))
	assert.Len(t, p.db.Users, 1)

	// The freed institution name can be registered again.
	require.NoError(t, p.auth.RegisterSpoc(ctx, spocRequest(t, "c@x.com", "X")))
}

func TestUpdateAndDeleteSpoc(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	spocID := p.verifiedSpoc(t, "a@x.com", "X")
	_, err := p.teams.RegisterTeam(ctx, spocID, teamRequest(1))
	require.NoError(t, err)

	user, err := p.admin.UpdateSpoc(ctx, spocID, UpdateSpocRequest{Name: "Asha R", Email: "ASHA@x.com", Phone: "111"})
	require.NoError(t, err)
	assert.Equal(t, "asha@x.com", user.Email)
	assert.True(t, user.Verified)

	_, err = p.admin.UpdateSpoc(ctx, spocID, UpdateSpocRequest{Name: ""})
	assert.ErrorIs(t, err, common.ErrValidation)

	spocs, err := p.admin.ListSpocs(ctx)
	require.NoError(t, err)
	require.Len(t, spocs, 1)

	require.NoError(t, p.admin.DeleteSpoc(ctx, spocID))
	assert.Empty(t, p.db.Colleges)
	assert.Empty(t, p.db.Teams)
	assert.Empty(t, p.db.Users, "leader accounts go with their teams")

	_, err = p.auth.Login(ctx, LoginRequest{Email: "leader1@x.com", Password: "leader-pass"})
	assert.Equal(t, "Invalid credentials", common.MessageFromError(err, ""))

	err = p.admin.DeleteSpoc(ctx, spocID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListSubmissions(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	leaderID, psID := p.teamLeader(t)
	_, err := p.submissions.Submit(ctx, leaderID, SubmitIdeaRequest{PsID: psID, Title: "Idea"}, nil)
	require.NoError(t, err)

	subs, err := p.admin.ListSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.NotNil(t, subs[0].TeamName)
	assert.Equal(t, "Team 1", *subs[0].TeamName)
	require.NotNil(t, subs[0].PsTitle)
	assert.Equal(t, "Smart Irrigation", *subs[0].PsTitle)
}

func TestDeleteSpocRefreshesCatalogCounts(t *testing.T) {
	p := newPortal(t)
	ctx := context.Background()
	leaderID, psID := p.teamLeader(t)
	_, err := p.submissions.Submit(ctx, leaderID, SubmitIdeaRequest{PsID: psID, Title: "Idea"}, nil)
	require.NoError(t, err)
	_, err = p.settings.Update(ctx, UpdateSettingRequest{Key: model.SettingShowSubmissionCounts, Value: true})
	require.NoError(t, err)

	list, err := p.problems.PublicCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].SubmissionCount)
	assert.Equal(t, 1, *list[0].SubmissionCount)

	team, err := memrepo.NewTeamRepository(p.db).FindByLeaderID(ctx, leaderID)
	require.NoError(t, err)
	college, err := memrepo.NewCollegeRepository(p.db).FindByID(ctx, team.CollegeID)
	require.NoError(t, err)

	before := p.catalog.invalidations
	require.NoError(t, p.admin.DeleteSpoc(ctx, college.SpocID))
	assert.Greater(t, p.catalog.invalidations, before)
	assert.Empty(t, p.db.Submissions)

	list, err = p.problems.PublicCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].SubmissionCount)
	assert.Equal(t, 0, *list[0].SubmissionCount)
}
