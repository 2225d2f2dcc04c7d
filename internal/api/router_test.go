package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/domain/repository/memrepo"
	"rsih_portal/internal/platform/cache"
	"rsih_portal/internal/platform/queue"
	"rsih_portal/internal/platform/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@portal.test"
	adminPassword = "admin-pass"
)

func TestMain(m *testing.M) {
	security.InitJWT([]byte("router-test-secret"), 2*time.Hour)
	os.Exit(m.Run())
}

type recordingMailer struct {
	sent []model.MailJob
}

func (m *recordingMailer) SendCredentials(ctx context.Context, job model.MailJob) error {
	m.sent = append(m.sent, job)
	return nil
}

type denyLimiter struct{ calls int }

func (l *denyLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.calls++
	return false, nil
}

type testServer struct {
	db      *memrepo.DB
	uploads string
	mailer  *recordingMailer
	handler http.Handler
}

func newTestServer(t *testing.T, limiter cache.AttemptLimiter) *testServer {
	t.Helper()
	db := memrepo.NewDB()
	tx := memrepo.NewTransactor(db)
	users := memrepo.NewUserRepository(db)
	colleges := memrepo.NewCollegeRepository(db)
	teams := memrepo.NewTeamRepository(db)
	problems := memrepo.NewProblemRepository(db)
	submissions := memrepo.NewSubmissionRepository(db)
	settings := memrepo.NewSettingRepository(db)

	uploads := t.TempDir()
	store := storage.NewDiskStore(uploads)
	mailer := &recordingMailer{}
	catalog := cache.NopCatalogCache{}

	authService := service.NewAuthService(users, colleges, store, tx, "spoc-documents")
	require.NoError(t, authService.EnsureAdmin(context.Background(), "Admin", adminEmail, adminPassword))

	handler := NewRouter(
		authService,
		service.NewAdminService(users, submissions, store, catalog, "spoc-documents"),
		service.NewTeamService(tx, users, colleges, teams, submissions, mailer, queue.NopMailQueue{}, 15),
		service.NewSubmissionService(teams, problems, submissions, store, catalog, "team-presentations"),
		service.NewProblemService(problems, settings, catalog),
		service.NewSettingsService(settings, catalog),
		Options{MaxUploadBytes: 1 << 20, UploadDir: uploads, LoginLimiter: limiter},
	)
	return &testServer{db: db, uploads: uploads, mailer: mailer, handler: handler}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) registerSpoc(t *testing.T, email, institution string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":        "Asha Rao",
		"age":         "41",
		"email":       email,
		"phone":       "9876543210",
		"institution": institution,
		"password":    "spoc-pass",
	}
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	part, err := form.CreateFormFile("file", "Nomination Letter.pdf")
	require.NoError(t, err)
	part.Write([]byte("%PDF-1.7 nomination"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register-spoc", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) spocID(t *testing.T, email string) int64 {
	t.Helper()
	user, err := memrepo.NewUserRepository(s.db).FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/admin/spocs", "/api/spoc/teams", "/api/team/team"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := s.do(t, http.MethodGet, "/api/admin/spocs", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.login(t, adminEmail, adminPassword)

	rec := s.do(t, http.MethodGet, "/api/spoc/teams", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")

	rec = s.do(t, http.MethodGet, "/api/team/team", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/spocs", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSpocOnboardingFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.registerSpoc(t, "asha@college.edu", "Govt Engineering College")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Awaiting admin verification")

	spocID := s.spocID(t, "asha@college.edu")
	docs, err := os.ReadDir(filepath.Join(s.uploads, "spoc-documents"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, itoa(spocID)+"_nomination-letter.pdf", docs[0].Name())

	// Unverified SPOCs cannot log in.
	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@college.edu", "password": "spoc-pass"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "SPOC not yet verified by Admin.")

	adminToken := s.login(t, adminEmail, adminPassword)
	pending := decode[[]model.User](t, s.do(t, http.MethodGet, "/api/admin/registrations", adminToken, nil))
	require.Len(t, pending, 1)
	assert.Equal(t, spocID, pending[0].ID)

	rec = s.do(t, http.MethodPut, "/api/admin/registrations/"+itoa(spocID)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	spocToken := s.login(t, "asha@college.edu", "spoc-pass")
	college := decode[model.College](t, s.do(t, http.MethodGet, "/api/spoc/college", spocToken, nil))
	assert.Equal(t, "Govt Engineering College", college.Name)

	rec = s.do(t, http.MethodPost, "/api/spoc/team", spocToken, map[string]any{
		"teamName":       "Byte Busters",
		"leaderName":     "Ravi",
		"leaderEmail":    "ravi@college.edu",
		"leaderPassword": "leader-pass",
		"members":        []map[string]string{{"name": "Meena"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[service.RegisterTeamResult](t, rec)
	assert.Equal(t, "Team registered successfully.", result.Message)
	assert.Empty(t, result.Warning)
	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "ravi@college.edu", s.mailer.sent[0].To)

	teams := decode[[]model.Team](t, s.do(t, http.MethodGet, "/api/spoc/teams", spocToken, nil))
	require.Len(t, teams, 1)
	assert.Equal(t, "Byte Busters", teams[0].Name)
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusCreated, s.registerSpoc(t, "asha@college.edu", "GEC").Code)

	rec := s.registerSpoc(t, "asha@college.edu", "Another College")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestRegisterSpocRequiresMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPost, "/api/auth/register-spoc", "", map[string]string{"email": "x@y.z"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmissionFlowAndPublicCounts(t *testing.T) {
	s := newTestServer(t, nil)
	adminToken := s.login(t, adminEmail, adminPassword)

	rec := s.do(t, http.MethodPost, "/api/admin/ps", adminToken, map[string]string{"title": "Smart Irrigation", "category": "Software"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ps := decode[model.ProblemStatement](t, rec)

	require.Equal(t, http.StatusCreated, s.registerSpoc(t, "asha@college.edu", "GEC").Code)
	spocID := s.spocID(t, "asha@college.edu")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/admin/spoc/"+itoa(spocID)+"/verify", adminToken, nil).Code)
	spocToken := s.login(t, "asha@college.edu", "spoc-pass")

	rec = s.do(t, http.MethodPost, "/api/spoc/team", spocToken, map[string]any{
		"teamName":       "Byte Busters",
		"leaderName":     "Ravi",
		"leaderEmail":    "ravi@college.edu",
		"leaderPassword": "leader-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	leaderToken := s.login(t, "ravi@college.edu", "leader-pass")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	form.WriteField("ps_id", itoa(ps.ID))
	form.WriteField("title", "Soil moisture mesh")
	form.WriteField("abstract", "Sensors and a scheduler")
	part, err := form.CreateFormFile("ppt_file", "pitch.pptx")
	require.NoError(t, err)
	part.Write([]byte("slides"))
	require.NoError(t, form.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/team/submit", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+leaderToken)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode[model.Submission](t, rec)
	require.NotNil(t, sub.PptURL)
	assert.True(t, strings.HasPrefix(*sub.PptURL, "/uploads/team-presentations/"))
	assert.True(t, strings.HasSuffix(*sub.PptURL, ".pptx"))

	// The stored presentation is served back from disk.
	rec = s.do(t, http.MethodGet, *sub.PptURL, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slides", rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/team/submit", leaderToken, map[string]any{"ps_id": ps.ID, "title": "Again"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Team has already submitted an idea.")

	catalog := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/public/ps", "", nil))
	require.Len(t, catalog, 1)
	assert.NotContains(t, catalog[0], "submission_count")

	rec = s.do(t, http.MethodPut, "/api/settings", adminToken, map[string]any{"key": model.SettingShowSubmissionCounts, "value": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Setting updated")

	catalog = decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/public/ps", "", nil))
	require.Len(t, catalog, 1)
	assert.EqualValues(t, 1, catalog[0]["submission_count"])

	settings := decode[map[string]string](t, s.do(t, http.MethodGet, "/api/settings", "", nil))
	assert.Equal(t, "true", settings[model.SettingShowSubmissionCounts])

	// A problem statement with submissions cannot be deleted.
	rec = s.do(t, http.MethodDelete, "/api/admin/ps/"+itoa(ps.ID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsUpdateIsAdminOnly(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodPut, "/api/settings", "", map[string]any{"key": "k", "value": "v"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginThrottled(t *testing.T) {
	limiter := &denyLimiter{}
	s := newTestServer(t, limiter)

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": adminEmail, "password": adminPassword})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, limiter.calls)
}

func TestUploadsDirectoryListingDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(s.uploads, "spoc-documents"), 0o755))

	rec := s.do(t, http.MethodGet, "/uploads/spoc-documents/", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
