package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"veridia_hiring/internal/logger"
	"veridia_hiring/internal/middleware"
	"veridia_hiring/internal/repository/repotest"
	"veridia_hiring/internal/service"
	"veridia_hiring/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testAdminSecret = "handler-admin-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type testServer struct {
	router    *gin.Engine
	users     *repotest.Users
	apps      *repotest.Applications
	jwt       *utils.JWTUtil
	uploadDir string
	db        *fakePinger
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(context.Context) error { return p.err }

type serverOption func(*RouterDeps)

func withRateLimit(limit int) serverOption {
	return func(d *RouterDeps) {
		d.Limiter = middleware.NewMemoryRateLimiter()
		d.AuthRateLimit = limit
		d.AuthRateWindow = time.Minute
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "error")
	users := repotest.NewUsers()
	apps := repotest.NewApplications(users)
	jwtUtil := utils.NewJWTUtil("handler-secret", 168)
	uploadDir := t.TempDir()
	db := &fakePinger{}

	deps := RouterDeps{
		Auth:           service.NewAuthService(users, jwtUtil, testAdminSecret, log),
		Applications:   service.NewApplicationService(apps, users, service.NewResumeStore(uploadDir, 1<<20), 100, log),
		JWT:            jwtUtil,
		DB:             db,
		Metrics:        middleware.NewMetrics(),
		Log:            log,
		UploadsDir:     uploadDir,
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.Limiter != nil {
		t.Cleanup(deps.Limiter.Close)
	}

	return &testServer{
		router:    NewRouter(deps),
		users:     users,
		apps:      apps,
		jwt:       jwtUtil,
		uploadDir: uploadDir,
		db:        db,
	}
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
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doMultipart(t *testing.T, path, token string, fields map[string]string, fileName string, file []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		part, err := mw.CreateFormFile("resume", fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"user"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"fullName": "Jane Doe",
		"email":    email,
		"phone":    "+1 555 0100",
		"password": "hunter22",
	}
}

// registerCandidate registers through the API and returns the session.
func (s *testServer) registerCandidate(t *testing.T, email string) authResponse {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", registerBody(email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResponse](t, w)
}

// createAdmin bootstraps an admin through the API and logs in as it.
func (s *testServer) createAdmin(t *testing.T, email string) authResponse {
	t.Helper()
	body := registerBody(email)
	body["adminSecret"] = testAdminSecret
	w := s.do(t, http.MethodPost, "/api/admin/create", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": "hunter22", "isAdmin": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[authResponse](t, w)
}

func applicationFields() map[string]string {
	return map[string]string{
		"firstName":      "Jane",
		"lastName":       "Doe",
		"email":          "jane@example.com",
		"phone":          "555",
		"degree":         "BSc Computer Science",
		"university":     "MIT",
		"graduationYear": "2022",
		"position":       "Backend Engineer",
		"experience":     "3",
		"skills":         "Go, PostgreSQL",
		"coverLetter":    "I would love to join.",
	}
}

type submitResponse struct {
	Message     string `json:"message"`
	Application struct {
		ID          string    `json:"id"`
		Status      string    `json:"status"`
		AppliedDate time.Time `json:"appliedDate"`
	} `json:"application"`
}

func (s *testServer) submit(t *testing.T, token string) submitResponse {
	t.Helper()
	w := s.doMultipart(t, "/api/applications", token, applicationFields(), "cv.pdf", []byte("%PDF"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[submitResponse](t, w)
}

var errBoom = errors.New("boom")
