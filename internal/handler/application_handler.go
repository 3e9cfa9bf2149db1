package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"veridia_hiring/internal/middleware"
	"veridia_hiring/internal/model"
	"veridia_hiring/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// multipartOverhead allows for the text fields next to the resume.
const multipartOverhead = 1 << 20

// ApplicationHandler handles candidate facing application requests
type ApplicationHandler struct {
	service        service.ApplicationService
	log            *slog.Logger
	maxUploadBytes int64
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(s service.ApplicationService, log *slog.Logger, maxUploadBytes int64) *ApplicationHandler {
	return &ApplicationHandler{service: s, log: log, maxUploadBytes: maxUploadBytes}
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	userID, ok := middleware.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	var req model.SubmitApplicationRequest
	if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
		abortWithBindError(c, err)
		return
	}

	// A missing file is reported by the service as ErrResumeRequired.
	resume, err := c.FormFile("resume")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		abortWithBindError(c, err)
		return
	}

	application, err := h.service.Submit(c.Request.Context(), userID, req, resume)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to submit application")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Application submitted successfully",
		"application": model.SubmittedApplication{
			ID:          application.ID,
			Status:      application.Status,
			AppliedDate: application.AppliedDate,
		},
	})
}

func (h *ApplicationHandler) GetDashboard(c *gin.Context) {
	userID, ok := middleware.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	dashboard, err := h.service.GetDashboard(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *ApplicationHandler) GetByID(c *gin.Context) {
	userID, ok := middleware.AuthUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	role, ok := middleware.AuthRole(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "User role not found"})
		return
	}

	application, err := h.service.GetByID(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to retrieve application")
		return
	}
	c.JSON(http.StatusOK, application)
}

// RegisterApplicationRoutes registers candidate routes behind authMW
func (h *ApplicationHandler) RegisterApplicationRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	appRoutes := rg.Group("/applications")
	appRoutes.Use(authMW)
	{
		appRoutes.POST("", h.Submit)
		appRoutes.GET("/:id", h.GetByID) // ownership checked in the service
	}
	rg.GET("/candidate/dashboard", authMW, h.GetDashboard)
}
