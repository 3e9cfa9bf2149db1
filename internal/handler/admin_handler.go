package handler

import (
	"log/slog"
	"net/http"

	"veridia_hiring/internal/middleware"
	"veridia_hiring/internal/model"
	"veridia_hiring/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles administrator requests on applications
type AdminHandler struct {
	service service.ApplicationService
	log     *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.ApplicationService, log *slog.Logger) *AdminHandler {
	return &AdminHandler{service: s, log: log}
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	var query model.AdminListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithBindError(c, err)
		return
	}

	page, err := h.service.ListAdmin(c.Request.Context(), query)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to retrieve applications")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithBindError(c, err)
		return
	}

	actorID, _ := middleware.AuthUserID(c)
	change, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, actorID)
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to update application status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application status updated successfully",
		"application": change,
	})
}

func (h *AdminHandler) DeleteApplication(c *gin.Context) {
	actorID, _ := middleware.AuthUserID(c)
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		writeServiceError(c, h.log, err, "Failed to delete application")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	counts, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err, "Failed to retrieve statistics")
		return
	}
	c.JSON(http.StatusOK, counts)
}

// RegisterAdminRoutes registers admin routes behind authMW and adminMW
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	adminRoutes := rg.Group("/admin")
	adminRoutes.Use(authMW)
	adminRoutes.Use(adminMW)
	{
		adminRoutes.GET("/applications", h.ListApplications)
		adminRoutes.PATCH("/applications/:id/status", h.UpdateStatus)
		adminRoutes.DELETE("/applications/:id", h.DeleteApplication)
		adminRoutes.GET("/stats", h.GetStats)
	}
}
