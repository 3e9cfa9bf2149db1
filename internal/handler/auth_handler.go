package handler

import (
	"log/slog"
	"net/http"

	"veridia_hiring/internal/model"
	"veridia_hiring/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    user.Public(),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user.Public(),
	})
}

// CreateAdmin bootstraps an administrator behind the shared admin secret.
func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req model.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	admin, err := h.service.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to create admin")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin created successfully",
		"user":    admin.Public(),
	})
}

// RegisterAuthRoutes registers auth routes. limit returns the rate limiter
// for a named credential endpoint.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, limit func(route string) gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", limit("register"), h.Register)
		authGroup.POST("/login", limit("login"), h.Login)
	}
	rg.POST("/admin/create", limit("admin_create"), h.CreateAdmin)
}
