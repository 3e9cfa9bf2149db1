package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"veridia_hiring/internal/logger"
	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository/repotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appFixture struct {
	svc       ApplicationService
	apps      *repotest.Applications
	users     *repotest.Users
	uploadDir string
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	users := repotest.NewUsers()
	apps := repotest.NewApplications(users)
	dir := t.TempDir()
	svc := NewApplicationService(apps, users, NewResumeStore(dir, 5<<20), 100, logger.NewWithWriter(io.Discard, "test", "error"))
	return &appFixture{svc: svc, apps: apps, users: users, uploadDir: dir}
}

func (f *appFixture) addUser(t *testing.T, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		ID:       uuid.NewString(),
		FullName: "User " + string(role),
		Email:    uuid.NewString() + "@example.com",
		Phone:    "555",
		Role:     role,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// fileHeader builds a real multipart file header for name with content.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("resume", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["resume"][0]
}

func submitRequest() model.SubmitApplicationRequest {
	experience := 3
	return model.SubmitApplicationRequest{
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "jane@example.com",
		Phone:          "555",
		Degree:         "BSc",
		University:     "MIT",
		GraduationYear: 2022,
		GPA:            "3.8",
		Position:       "Backend Engineer",
		Experience:     &experience,
		Skills:         "Go, SQL",
		LinkedInURL:    "https://linkedin.com/in/jane",
		CoverLetter:    "Hello",
	}
}

func TestApplicationService_Submit(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)

	app, err := f.svc.Submit(context.Background(), owner.ID, submitRequest(), fileHeader(t, "My CV.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)

	assert.Equal(t, owner.ID, app.UserID)
	assert.Equal(t, model.StatusSubmitted, app.Status)
	assert.WithinDuration(t, time.Now(), app.AppliedDate, 5*time.Second)
	assert.Equal(t, app.AppliedDate, app.LastUpdated)
	assert.Nil(t, app.Address)
	require.NotNil(t, app.GPA)
	assert.Equal(t, "3.8", *app.GPA)
	assert.Nil(t, app.PortfolioURL)
	assert.Equal(t, 3, app.Experience)
	assert.Regexp(t, `^uploads/resumes/[0-9a-f-]{36}-My_CV\.pdf$`, app.ResumePath)

	stored, err := f.apps.FindByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.StatusSubmitted, stored.Status)

	onDisk := filepath.Join(f.uploadDir, "resumes", filepath.Base(app.ResumePath))
	content, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(content))
}

func TestApplicationService_Submit_ResumeRejected(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)

	tests := []struct {
		name    string
		resume  *multipart.FileHeader
		wantErr error
	}{
		{"missing", nil, ErrResumeRequired},
		{"wrong extension", fileHeader(t, "cv.exe", []byte("MZ")), ErrInvalidFileFormat},
		{"no extension", fileHeader(t, "cv", []byte("x")), ErrInvalidFileFormat},
		{"too large", &multipart.FileHeader{Filename: "cv.pdf", Size: 6 << 20}, ErrFileSizeExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), owner.ID, submitRequest(), tt.resume)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, f.apps.Len())
}

func TestApplicationService_Submit_RepositoryErrorRemovesResume(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	f.apps.Err = errors.New("insert failed")

	_, err := f.svc.Submit(context.Background(), owner.ID, submitRequest(), fileHeader(t, "cv.docx", []byte("doc")))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(f.uploadDir, "resumes"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApplicationService_GetDashboard(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	other := f.addUser(t, model.RoleCandidate)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f.apps.Put(model.Application{ID: uuid.NewString(), UserID: owner.ID, Position: "A", Status: model.StatusSubmitted, AppliedDate: base})
	f.apps.Put(model.Application{ID: uuid.NewString(), UserID: owner.ID, Position: "B", Status: model.StatusUnderReview, AppliedDate: base.Add(time.Hour)})
	f.apps.Put(model.Application{ID: uuid.NewString(), UserID: owner.ID, Position: "C", Status: model.StatusSelected, AppliedDate: base.Add(2 * time.Hour)})
	f.apps.Put(model.Application{ID: uuid.NewString(), UserID: other.ID, Position: "D", Status: model.StatusSelected, AppliedDate: base})

	dashboard, err := f.svc.GetDashboard(context.Background(), owner.ID)
	require.NoError(t, err)

	assert.Equal(t, owner.Email, dashboard.User.Email)
	require.Len(t, dashboard.Applications, 3)
	assert.Equal(t, "C", dashboard.Applications[0].Position)
	assert.Equal(t, "A", dashboard.Applications[2].Position)
	assert.Equal(t, model.Department, dashboard.Applications[0].Department)
	assert.Equal(t, model.DashboardStats{TotalApplications: 3, UnderReview: 1, Selected: 1}, dashboard.Stats)
}

func TestApplicationService_GetDashboard_Empty(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)

	dashboard, err := f.svc.GetDashboard(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.NotNil(t, dashboard.Applications)
	assert.Empty(t, dashboard.Applications)
	assert.Zero(t, dashboard.Stats.TotalApplications)
}

func TestApplicationService_GetDashboard_UnknownUser(t *testing.T) {
	f := newAppFixture(t)

	_, err := f.svc.GetDashboard(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.GetDashboard(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApplicationService_GetByID(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	stranger := f.addUser(t, model.RoleCandidate)
	admin := f.addUser(t, model.RoleAdmin)
	id := uuid.NewString()
	f.apps.Put(model.Application{ID: id, UserID: owner.ID, Status: model.StatusSubmitted})

	app, err := f.svc.GetByID(context.Background(), id, owner.ID, owner.Role)
	require.NoError(t, err)
	assert.Equal(t, id, app.ID)

	app, err = f.svc.GetByID(context.Background(), id, admin.ID, admin.Role)
	require.NoError(t, err)
	assert.Equal(t, id, app.ID)

	_, err = f.svc.GetByID(context.Background(), id, stranger.ID, stranger.Role)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetByID(context.Background(), uuid.NewString(), owner.ID, owner.Role)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	_, err = f.svc.GetByID(context.Background(), "42", owner.ID, owner.Role)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func seedApplications(f *appFixture, owner string, n int, status model.Status, lastName string) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f.apps.Put(model.Application{
			ID:          uuid.NewString(),
			UserID:      owner,
			FirstName:   fmt.Sprintf("Cand%02d", i),
			LastName:    lastName,
			Email:       fmt.Sprintf("c%02d-%s@example.com", i, status),
			Position:    "Engineer",
			Status:      status,
			AppliedDate: base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestApplicationService_ListAdmin_Pagination(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	seedApplications(f, owner.ID, 15, model.StatusSubmitted, "Smith")

	page, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Page: intPtr(2), Limit: intPtr(10)})
	require.NoError(t, err)
	assert.Len(t, page.Applications, 5)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, int64(15), page.TotalApplications)
	require.NotNil(t, page.Applications[0].SubmittedBy)
	assert.Equal(t, owner.Email, page.Applications[0].SubmittedBy.Email)

	first, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{})
	require.NoError(t, err)
	assert.Len(t, first.Applications, 10)
	assert.Equal(t, 1, first.CurrentPage)
	assert.Equal(t, "Cand14 Smith", first.Applications[0].CandidateName, "newest first")
}

func TestApplicationService_ListAdmin_StatusAndSearch(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	seedApplications(f, owner.ID, 3, model.StatusSelected, "Doe")
	seedApplications(f, owner.ID, 2, model.StatusSelected, "Smith")
	seedApplications(f, owner.ID, 4, model.StatusRejected, "Doe")

	page, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Status: "Selected", Search: "doe"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalApplications)
	for _, a := range page.Applications {
		assert.Equal(t, model.StatusSelected, a.Status)
		assert.Contains(t, a.CandidateName, "Doe")
	}

	all, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), all.TotalApplications)
}

func TestApplicationService_ListAdmin_NoMatches(t *testing.T) {
	f := newAppFixture(t)

	page, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Search: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, page.Applications)
	assert.Empty(t, page.Applications)
	assert.Equal(t, 0, page.TotalPages)
}

func TestApplicationService_ListAdmin_InvalidQuery(t *testing.T) {
	f := newAppFixture(t)

	_, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Status: "Hired"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	var verr *ValidationError
	_, err = f.svc.ListAdmin(context.Background(), model.AdminListQuery{Page: intPtr(0)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "page", verr.Field)

	_, err = f.svc.ListAdmin(context.Background(), model.AdminListQuery{Limit: intPtr(-5)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "limit", verr.Field)
}

func TestApplicationService_ListAdmin_ClampsLimit(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	seedApplications(f, owner.ID, 120, model.StatusSubmitted, "Smith")

	page, err := f.svc.ListAdmin(context.Background(), model.AdminListQuery{Limit: intPtr(1000)})
	require.NoError(t, err)
	assert.Len(t, page.Applications, 100)
	assert.Equal(t, 2, page.TotalPages)
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	id := uuid.NewString()
	applied := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f.apps.Put(model.Application{ID: id, UserID: owner.ID, Status: model.StatusSubmitted, AppliedDate: applied, LastUpdated: applied})

	change, err := f.svc.UpdateStatus(context.Background(), id, "Under Review", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, change.Status)
	assert.True(t, change.LastUpdated.After(applied))

	stored, _ := f.apps.FindByID(context.Background(), id)
	assert.Equal(t, model.StatusUnderReview, stored.Status)
	assert.Equal(t, change.LastUpdated, stored.LastUpdated)

	// Any valid target is accepted, including moving back.
	_, err = f.svc.UpdateStatus(context.Background(), id, "Submitted", "admin-1")
	assert.NoError(t, err)
}

func TestApplicationService_UpdateStatus_Errors(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	id := uuid.NewString()
	f.apps.Put(model.Application{ID: id, UserID: owner.ID, Status: model.StatusSubmitted})

	_, err := f.svc.UpdateStatus(context.Background(), id, "Hired", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	stored, _ := f.apps.FindByID(context.Background(), id)
	assert.Equal(t, model.StatusSubmitted, stored.Status)

	_, err = f.svc.UpdateStatus(context.Background(), id, "selected", "admin-1")
	assert.ErrorIs(t, err, ErrInvalidStatus, "status values are case sensitive")

	_, err = f.svc.UpdateStatus(context.Background(), uuid.NewString(), "Selected", "admin-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	_, err = f.svc.UpdateStatus(context.Background(), "abc", "Selected", "admin-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationService_Delete(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	id := uuid.NewString()
	f.apps.Put(model.Application{ID: id, UserID: owner.ID, Status: model.StatusSubmitted})

	require.NoError(t, f.svc.Delete(context.Background(), id, "admin-1"))

	_, err := f.svc.GetByID(context.Background(), id, owner.ID, owner.Role)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	err = f.svc.Delete(context.Background(), id, "admin-1")
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestApplicationService_Stats(t *testing.T) {
	f := newAppFixture(t)
	owner := f.addUser(t, model.RoleCandidate)
	seedApplications(f, owner.ID, 2, model.StatusSubmitted, "A")
	seedApplications(f, owner.ID, 1, model.StatusUnderReview, "B")
	seedApplications(f, owner.ID, 3, model.StatusRejected, "C")

	counts, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusCounts{TotalApplications: 6, Submitted: 2, UnderReview: 1, Rejected: 3}, *counts)
}

func intPtr(v int) *int { return &v }
