package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrForbidden           = errors.New("forbidden: user does not have permission for this action")
	ErrInvalidStatus       = errors.New("invalid status")
)

// ValidationError reports a rejected input value that passed request binding.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ApplicationService defines operations for job applications
type ApplicationService interface {
	Submit(ctx context.Context, userID string, req model.SubmitApplicationRequest, resume *multipart.FileHeader) (*model.Application, error)
	GetDashboard(ctx context.Context, userID string) (*model.CandidateDashboard, error)
	GetByID(ctx context.Context, applicationID, userID string, role model.Role) (*model.Application, error)

	// Admin methods
	ListAdmin(ctx context.Context, query model.AdminListQuery) (*model.ApplicationPage, error)
	UpdateStatus(ctx context.Context, applicationID, status, actorID string) (*model.StatusChange, error)
	Delete(ctx context.Context, applicationID, actorID string) error
	Stats(ctx context.Context) (*model.StatusCounts, error)
}

type applicationService struct {
	repo        repository.ApplicationRepository
	userRepo    repository.UserRepository
	resumes     *ResumeStore
	maxPageSize int
	log         *slog.Logger
	now         func() time.Time
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(repo repository.ApplicationRepository, userRepo repository.UserRepository, resumes *ResumeStore, maxPageSize int, log *slog.Logger) ApplicationService {
	return &applicationService{
		repo:        repo,
		userRepo:    userRepo,
		resumes:     resumes,
		maxPageSize: maxPageSize,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *applicationService) Submit(ctx context.Context, userID string, req model.SubmitApplicationRequest, resume *multipart.FileHeader) (*model.Application, error) {
	stored, err := s.resumes.Save(resume)
	if err != nil {
		return nil, err
	}

	now := s.now()
	experience := 0
	if req.Experience != nil {
		experience = *req.Experience
	}

	application := &model.Application{
		ID:             uuid.NewString(),
		UserID:         userID,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        optional(req.Address),
		Degree:         strings.TrimSpace(req.Degree),
		University:     strings.TrimSpace(req.University),
		GraduationYear: req.GraduationYear,
		GPA:            optional(req.GPA),
		Position:       strings.TrimSpace(req.Position),
		Experience:     experience,
		Skills:         strings.TrimSpace(req.Skills),
		LinkedInURL:    optional(req.LinkedInURL),
		PortfolioURL:   optional(req.PortfolioURL),
		CoverLetter:    req.CoverLetter,
		ResumePath:     stored.PublicPath,
		Status:         model.StatusSubmitted,
		AppliedDate:    now,
		LastUpdated:    now,
	}

	if err := s.repo.Create(ctx, application); err != nil {
		if rmErr := s.resumes.Remove(stored); rmErr != nil {
			s.log.Error("orphaned resume after failed insert", "path", stored.DiskPath, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to create application in repo: %w", err)
	}

	s.log.Info("application submitted", "application_id", application.ID, "user_id", userID, "position", application.Position)
	return application, nil
}

func (s *applicationService) GetDashboard(ctx context.Context, userID string) (*model.CandidateDashboard, error) {
	if !isUUID(userID) {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for dashboard: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	applications, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user applications from repo: %w", err)
	}

	dashboard := &model.CandidateDashboard{
		User: model.DashboardUser{
			FullName: user.FullName,
			Email:    user.Email,
			Phone:    user.Phone,
		},
		Applications: make([]model.DashboardApplication, 0, len(applications)),
	}
	for _, a := range applications {
		dashboard.Applications = append(dashboard.Applications, model.DashboardApplication{
			ID:          a.ID,
			Position:    a.Position,
			Status:      a.Status,
			AppliedDate: a.AppliedDate,
			Department:  model.Department,
		})
		switch a.Status {
		case model.StatusUnderReview:
			dashboard.Stats.UnderReview++
		case model.StatusSelected:
			dashboard.Stats.Selected++
		}
	}
	dashboard.Stats.TotalApplications = len(applications)
	return dashboard, nil
}

func (s *applicationService) GetByID(ctx context.Context, applicationID, userID string, role model.Role) (*model.Application, error) {
	if !isUUID(applicationID) {
		return nil, ErrApplicationNotFound
	}

	application, err := s.repo.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to find application by ID: %w", err)
	}
	if application == nil {
		return nil, ErrApplicationNotFound
	}

	if !role.IsAdmin() && application.UserID != userID {
		return nil, ErrForbidden
	}
	return application, nil
}

func (s *applicationService) ListAdmin(ctx context.Context, query model.AdminListQuery) (*model.ApplicationPage, error) {
	filters, err := s.normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	applications, err := s.repo.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search applications: %w", err)
	}
	if applications == nil {
		applications = []model.CandidateSummary{}
	}

	return &model.ApplicationPage{
		Applications:      applications,
		TotalPages:        totalPages(total, filters.Limit),
		CurrentPage:       filters.Page,
		TotalApplications: total,
	}, nil
}

func (s *applicationService) normalizeQuery(query model.AdminListQuery) (model.AdminApplicationFilters, error) {
	filters := model.AdminApplicationFilters{
		Search: strings.TrimSpace(query.Search),
		Page:   model.DefaultPage,
		Limit:  model.DefaultLimit,
	}
	if query.Page != nil {
		filters.Page = *query.Page
	}
	if query.Limit != nil {
		filters.Limit = *query.Limit
	}

	switch status := strings.TrimSpace(query.Status); status {
	case "", model.StatusFilterAll:
	default:
		parsed, ok := model.ParseStatus(status)
		if !ok {
			return filters, ErrInvalidStatus
		}
		filters.Status = &parsed
	}

	if filters.Page < 1 {
		return filters, &ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if filters.Limit < 1 {
		return filters, &ValidationError{Field: "limit", Message: "must be at least 1"}
	}
	if s.maxPageSize > 0 && filters.Limit > s.maxPageSize {
		filters.Limit = s.maxPageSize
	}
	return filters, nil
}

func (s *applicationService) UpdateStatus(ctx context.Context, applicationID, status, actorID string) (*model.StatusChange, error) {
	newStatus, ok := model.ParseStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}
	if !isUUID(applicationID) {
		return nil, ErrApplicationNotFound
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, applicationID, newStatus, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	s.log.Info("application status changed", "application_id", applicationID, "status", newStatus, "actor_id", actorID)
	return &model.StatusChange{ID: applicationID, Status: newStatus, LastUpdated: now}, nil
}

// Delete removes the record only; the stored resume stays on disk.
func (s *applicationService) Delete(ctx context.Context, applicationID, actorID string) error {
	if !isUUID(applicationID) {
		return ErrApplicationNotFound
	}
	if err := s.repo.Delete(ctx, applicationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("failed to delete application: %w", err)
	}
	s.log.Info("application deleted", "application_id", applicationID, "actor_id", actorID)
	return nil
}

func (s *applicationService) Stats(ctx context.Context) (*model.StatusCounts, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get application stats: %w", err)
	}
	return counts, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
