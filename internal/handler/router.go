package handler

import (
	"log/slog"
	"time"

	"veridia_hiring/internal/middleware"
	"veridia_hiring/internal/service"
	"veridia_hiring/internal/utils"

	"github.com/gin-gonic/gin"
)

// RouterDeps is everything NewRouter wires together.
type RouterDeps struct {
	Auth         service.AuthService
	Applications service.ApplicationService
	JWT          *utils.JWTUtil
	DB           Pinger
	Limiter      middleware.RateLimiter // nil disables rate limiting
	Metrics      *middleware.Metrics    // nil disables /metrics
	Log          *slog.Logger

	UploadsDir     string
	MaxUploadBytes int64
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// NewRouter builds the HTTP API.
func NewRouter(deps RouterDeps) *gin.Engine {
	useWireFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Log))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}
	router.Use(middleware.CORS())

	jwtAuthMW := middleware.JWTAuthMiddleware(deps.JWT)
	adminMW := middleware.AdminMiddleware()
	limit := func(route string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Limiter, deps.Metrics, route, deps.AuthRateLimit, deps.AuthRateWindow)
	}

	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	applicationHandler := NewApplicationHandler(deps.Applications, deps.Log, deps.MaxUploadBytes)
	adminHandler := NewAdminHandler(deps.Applications, deps.Log)
	healthHandler := NewHealthHandler(deps.DB, deps.Log)

	apiGroup := router.Group("/api")
	authHandler.RegisterAuthRoutes(apiGroup, limit)
	applicationHandler.RegisterApplicationRoutes(apiGroup, jwtAuthMW)
	adminHandler.RegisterAdminRoutes(apiGroup, jwtAuthMW, adminMW)
	apiGroup.GET("/health", healthHandler.Health)

	if deps.UploadsDir != "" {
		router.Static("/"+service.PublicUploadsPrefix, deps.UploadsDir)
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	return router
}
