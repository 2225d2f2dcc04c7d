package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleSpoc.Valid())
	assert.True(t, RoleTeamLeader.Valid())
	assert.False(t, Role("spoc").Valid())
	assert.False(t, Role("").Valid())
}

func TestCanLogin(t *testing.T) {
	assert.False(t, (&User{Role: RoleSpoc}).CanLogin())
	assert.True(t, (&User{Role: RoleSpoc, Verified: true}).CanLogin())
	assert.True(t, (&User{Role: RoleTeamLeader}).CanLogin())
	assert.True(t, (&User{Role: RoleAdmin}).CanLogin())
	assert.False(t, (&User{Role: "GUEST", Verified: true}).CanLogin())
}

func TestUserJSONNeverCarriesPassword(t *testing.T) {
	data, err := json.Marshal(User{ID: 1, Email: "a@x.com", HashedPassword: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "password")
}

func TestSubmissionCountOmittedWhenUnset(t *testing.T) {
	data, err := json.Marshal(ProblemStatement{ID: 1, Title: "PS"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "submission_count")

	zero := 0
	data, err = json.Marshal(ProblemStatement{ID: 1, Title: "PS", SubmissionCount: &zero})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"submission_count":0`)
}
