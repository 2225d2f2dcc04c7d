package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	security.InitJWT([]byte("middleware-secret"), 2*time.Hour)
	os.Exit(m.Run())
}

func protected(roles ...model.Role) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, _ := GetUserRoleFromContext(r.Context())
		w.Header().Set("X-User", string(role))
	})
	if len(roles) > 0 {
		h = RequireRole(roles...)(h)
	}
	return jwtauth.Verifier(security.TokenAuth)(Authenticator(h))
}

func request(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthenticatorStoresClaims(t *testing.T) {
	token, err := security.GenerateToken(42, string(model.RoleSpoc))
	require.NoError(t, err)

	var gotID int64
	var gotRole model.Role
	h := jwtauth.Verifier(security.TokenAuth)(Authenticator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetUserRoleFromContext(r.Context())
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request(t, token))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, model.RoleSpoc, gotRole)
}

func TestAuthenticatorRejects(t *testing.T) {
	unknownRole, err := security.GenerateToken(7, "SUPERUSER")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		body  string
	}{
		{"missing token", "", "Authorization token required"},
		{"garbage token", "abc.def.ghi", "Invalid or expired token"},
		{"unknown role", unknownRole, "Invalid token claims"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, request(t, tc.token))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestRequireRole(t *testing.T) {
	leader, err := security.GenerateToken(3, string(model.RoleTeamLeader))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protected(model.RoleAdmin).ServeHTTP(rec, request(t, leader))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")

	rec = httptest.NewRecorder()
	protected(model.RoleAdmin, model.RoleTeamLeader).ServeHTTP(rec, request(t, leader))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(model.RoleTeamLeader), rec.Header().Get("X-User"))
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (l *stubLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allowed, l.err
}

func TestThrottle(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	denied := &stubLimiter{}
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rec := httptest.NewRecorder()
	Throttle(denied)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"203.0.113.9"}, denied.keys)

	// A limiter outage must not lock users out.
	broken := &stubLimiter{err: errors.New("redis down")}
	rec = httptest.NewRecorder()
	Throttle(broken)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
