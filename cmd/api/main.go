package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-resume-backend/config"
	_ "go-resume-backend/docs" // Important for Swagger
	v1 "go-resume-backend/internal/delivery/http/v1"
	"go-resume-backend/internal/domain"
	"go-resume-backend/internal/repository/postgres"
	"go-resume-backend/internal/repository/rediscache"
	"go-resume-backend/internal/usecase"
	"go-resume-backend/pkg/database"
	"go-resume-backend/pkg/email"
	"go-resume-backend/pkg/integration"
	"go-resume-backend/pkg/logger"
	"go-resume-backend/pkg/redis"
	"go-resume-backend/pkg/storage"
	"go-resume-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           Resume Backend API
// @version         1.0
// @description     Resume management backend using Clean Architecture.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting resume backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(context.Background(), cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Repositories
	resumeRepo := postgres.NewResumeRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	activityRepo := postgres.NewActivityRepository(dbPool)

	// 5. Setup Redis projection cache (optional)
	var projectionCache domain.ProjectionCache
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, share projections will not be cached", "error", err)
		} else {
			defer redis.Close()
			projectionCache = rediscache.NewProjectionCache(redis.Client(), cfg.ProjectionTTL)
		}
	}

	// 6. Setup Email Service
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - share link notifications disabled")
	}

	// 7. Setup Object Storage (optional)
	objectStore, err := storage.NewObjectStore(context.Background(), cfg)
	if err != nil {
		logger.Log.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}
	var avatarStore usecase.AvatarStore
	if objectStore != nil {
		avatarStore = objectStore
	} else {
		logger.Log.Warn("Object storage not configured - avatar uploads disabled")
	}

	// 8. Setup UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	audit := usecase.NewAuditRecorder(activityRepo)
	platformClient := integration.NewClient(cfg.SyncPlatformTimeout)

	authUC := usecase.NewAuthUsecase(userRepo)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, userRepo, projectionCache, audit)
	sectionUC := usecase.NewSectionUsecase(resumeRepo, projectionCache, audit, validate)
	sharingUC := usecase.NewSharingUsecase(resumeRepo, userRepo, projectionCache, emailService, audit, cfg.FrontendURL)
	syncUC := usecase.NewSyncUsecase(resumeRepo, platformClient, projectionCache, audit, cfg.SyncPlatformTimeout)
	userUC := usecase.NewUserUsecase(userRepo, activityRepo, avatarStore, audit)
	adminUC := usecase.NewAdminUsecase(userRepo, resumeRepo, activityRepo, projectionCache, audit)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:    authUC,
		ResumeUC:  resumeUC,
		SectionUC: sectionUC,
		SharingUC: sharingUC,
		SyncUC:    syncUC,
		UserUC:    userUC,
		AdminUC:   adminUC,
		Config:    cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
