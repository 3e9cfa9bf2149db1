package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/repository"
	"veridia_hiring/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrUserAlreadyExists       = errors.New("email already registered")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	ErrInvalidAdminSecret      = errors.New("invalid admin secret")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error)
	CreateAdmin(ctx context.Context, req model.CreateAdminRequest) (*model.User, error)
	BootstrapAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	jwtUtil     *utils.JWTUtil
	adminSecret string
	log         *slog.Logger
}

// NewAuthService creates a new AuthService. adminSecret gates CreateAdmin.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, adminSecret string, log *slog.Logger) AuthService {
	return &authService{
		userRepo:    userRepo,
		jwtUtil:     jwtUtil,
		adminSecret: adminSecret,
		log:         log,
	}
}

// Register creates a candidate account and signs a token for it
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, string, error) {
	user, err := s.createAccount(ctx, req, model.RoleCandidate)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		s.log.Error("account created but token generation failed", "user_id", user.ID, "error", err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if req.IsAdmin && !user.Role.IsAdmin() {
		return nil, "", ErrInvalidAdminCredentials
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

// CreateAdmin creates an administrator account when the shared secret matches.
// A wrong secret never touches the repository.
func (s *authService) CreateAdmin(ctx context.Context, req model.CreateAdminRequest) (*model.User, error) {
	if s.adminSecret == "" || subtle.ConstantTimeCompare([]byte(req.AdminSecret), []byte(s.adminSecret)) != 1 {
		s.log.Warn("admin creation rejected: wrong secret", "email", normalizeEmail(req.Email))
		return nil, ErrInvalidAdminSecret
	}
	return s.BootstrapAdmin(ctx, req.RegisterRequest)
}

// BootstrapAdmin creates an administrator account without a secret check.
// It backs the offline CLI command.
func (s *authService) BootstrapAdmin(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	admin, err := s.createAccount(ctx, req, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info("administrator account created", "user_id", admin.ID, "email", admin.Email)
	return admin, nil
}

func (s *authService) createAccount(ctx context.Context, req model.RegisterRequest, role model.Role) (*model.User, error) {
	email := normalizeEmail(req.Email)
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The email can be taken between the lookup and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
