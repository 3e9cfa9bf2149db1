package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"veridia_hiring/internal/config"
	"veridia_hiring/internal/handler"
	"veridia_hiring/internal/middleware"
	"veridia_hiring/internal/repository"
	"veridia_hiring/internal/service"
	"veridia_hiring/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return appFrom(cmd).serve(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg, log := a.cfg, a.log
	for _, name := range cfg.InsecureDefaults() {
		log.Warn("using insecure built-in default, set it in the environment", "setting", name)
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create uploads directory %s: %w", cfg.UploadsDir, err)
	}
	log.Info("uploads directory ready", "path", cfg.UploadsDir)

	pool, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if migrate {
		if err := config.NewMigrator(cfg, log).Up(ctx); err != nil {
			return err
		}
	}

	limiter := a.rateLimiter(ctx)
	defer limiter.Close()

	jwtUtil := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours)

	userRepo := repository.NewUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)

	authService := service.NewAuthService(userRepo, jwtUtil, cfg.AdminSecret, log)
	applicationService := service.NewApplicationService(
		applicationRepo,
		userRepo,
		service.NewResumeStore(cfg.UploadsDir, cfg.MaxUploadBytes),
		cfg.MaxPageSize,
		log,
	)

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(handler.RouterDeps{
		Auth:           authService,
		Applications:   applicationService,
		JWT:            jwtUtil,
		DB:             pool,
		Limiter:        limiter,
		Metrics:        middleware.NewMetrics(),
		Log:            log,
		UploadsDir:     cfg.UploadsDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AuthRateLimit:  cfg.AuthRateLimit,
		AuthRateWindow: cfg.AuthRateWindow(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exiting")
	return nil
}

// rateLimiter prefers Redis when configured and falls back to memory.
func (a *app) rateLimiter(ctx context.Context) middleware.RateLimiter {
	if addr := a.cfg.RateLimitRedisAddr; addr != "" {
		limiter, err := middleware.NewRedisRateLimiter(ctx, addr, a.cfg.RateLimitRedisPassword, a.cfg.RateLimitRedisDB, a.log)
		if err == nil {
			a.log.Info("rate limiter backed by redis", "addr", addr)
			return limiter
		}
		a.log.Warn("redis rate limiter unavailable, falling back to memory", "addr", addr, "error", err)
	}
	return middleware.NewMemoryRateLimiter()
}
