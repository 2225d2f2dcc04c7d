package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(12)
	require.NoError(t, err)
	b, err := GeneratePassword(12)
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	for _, c := range a {
		assert.True(t, strings.ContainsRune(passwordAlphabet, c))
	}
}

func TestTokenRoundTrip(t *testing.T) {
	InitJWT([]byte("test-secret"), 2*time.Hour)

	token, err := GenerateToken(42, "SPOC")
	require.NoError(t, err)

	decoded, err := TokenAuth.Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(t.Context())
	require.NoError(t, err)

	id, err := GetUserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	role, err := GetUserRoleFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "SPOC", role)

	assert.WithinDuration(t, time.Now().Add(2*time.Hour), decoded.Expiration(), time.Minute)
}

func TestClaimsRejectMissingValues(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{})
	assert.Error(t, err)
	_, err = GetUserRoleFromClaims(map[string]interface{}{"role": 1})
	assert.Error(t, err)
}
