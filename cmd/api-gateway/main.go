package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/trainhub/assignment-api/internal/handler"
	"github.com/trainhub/assignment-api/internal/middleware"
	"github.com/trainhub/assignment-api/internal/models"
	"github.com/trainhub/assignment-api/internal/repository"
	"github.com/trainhub/assignment-api/internal/service"
	"github.com/trainhub/assignment-api/pkg/cache"
	"github.com/trainhub/assignment-api/pkg/config"
	"github.com/trainhub/assignment-api/pkg/database"
	"github.com/trainhub/assignment-api/pkg/logger"
	corsmiddleware "github.com/trainhub/assignment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/trainhub/assignment-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: without it auto-assign progress stays in memory.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-memory progress store", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()

	assignmentRepo := repository.NewAssignmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	roleMappingRepo := repository.NewRoleMappingRepository(db)
	userRepo := repository.NewUserRepository(db)

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "assignment-api",
	})
	assignmentService := service.NewAssignmentService(
		assignmentRepo, scheduleRepo, rosterRepo, roleMappingRepo,
		service.NewRoleAuthorizer(), metricsService,
		cfg.Engine.DefaultGroupCapacity, validate, logr,
	)
	progressStore := cache.NewProgressStore(redisClient, cfg.Engine.ProgressTTL)
	autoAssignService := service.NewAutoAssignService(assignmentService, progressStore, cfg.Engine.AutoAssignBuffer, metricsService, logr)
	rosterService := service.NewRosterService(rosterRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	autoAssignService.Start(ctx)
	defer autoAssignService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	autoAssignHandler := handler.NewAutoAssignHandler(autoAssignService)
	scheduleHandler := handler.NewScheduleHandler(assignmentService)
	rosterHandler := handler.NewRosterHandler(rosterService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	canMutate := middleware.RBAC(models.RoleAdmin, models.RoleCoordinator)

	schedules := protected.Group("/schedules/:id")
	schedules.GET("/sessions", scheduleHandler.Sessions)
	schedules.GET("/categories", scheduleHandler.Categories)
	schedules.GET("/capacity", scheduleHandler.Capacity)
	schedules.GET("/assignments", assignmentHandler.List)
	schedules.POST("/assignments", canMutate, assignmentHandler.Assign)
	schedules.POST("/assignments/bulk", canMutate, assignmentHandler.AssignBulk)
	schedules.DELETE("/assignments/group", canMutate, assignmentHandler.RemoveFromGroup)
	schedules.DELETE("/assignments/course", canMutate, assignmentHandler.RemoveFromCourse)
	schedules.DELETE("/assignments", canMutate, assignmentHandler.RemoveAll)
	schedules.POST("/auto-assign", canMutate, autoAssignHandler.Start)

	protected.GET("/auto-assign/:runID", autoAssignHandler.Progress)
	protected.POST("/auto-assign/:runID/cancel", canMutate, autoAssignHandler.Cancel)

	protected.GET("/projects/:projectID/learners", rosterHandler.List)
	protected.GET("/learners/:id", rosterHandler.Find)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
