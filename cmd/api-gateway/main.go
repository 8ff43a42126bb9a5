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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/classtap-api/api/swagger"
	"github.com/noah-isme/classtap-api/internal/handler"
	"github.com/noah-isme/classtap-api/internal/middleware"
	"github.com/noah-isme/classtap-api/internal/models"
	"github.com/noah-isme/classtap-api/internal/repository"
	"github.com/noah-isme/classtap-api/internal/service"
	"github.com/noah-isme/classtap-api/pkg/cache"
	"github.com/noah-isme/classtap-api/pkg/config"
	"github.com/noah-isme/classtap-api/pkg/database"
	"github.com/noah-isme/classtap-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/classtap-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classtap-api/pkg/middleware/requestid"
	"github.com/noah-isme/classtap-api/pkg/storage"
)

// @title ClassTap API
// @version 1.0.0
// @description Card-tap attendance engine: live status resolution, overrides, daily finalization and exports
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	recordRepo := repository.NewAttendanceRecordRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: "classtap-api",
	})
	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, studentRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(courseRepo, enrollmentRepo, recordRepo,
		cacheRepo, cfg.Summary.CacheTTL, nil, logr)
	eventSvc := service.NewEventService(enrollmentRepo, cacheRepo, nil, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(attendanceSvc, courseRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
			Workers:   cfg.Exports.WorkerConcurrency,
			Retries:   cfg.Exports.WorkerRetries,
		}, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	eventHandler := handler.NewEventHandler(eventSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	// Tap ingestion stays token-free so card readers can post directly.
	api.POST("/events", eventHandler.Ingest)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleProfessor)

	courses := authed.Group("/courses")
	courses.GET("", courseHandler.List)
	courses.GET("/:id", courseHandler.Get)
	courses.POST("", staff, courseHandler.Create)
	courses.PUT("/:id", staff, courseHandler.Update)
	courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)
	courses.POST("/:id/students", staff, courseHandler.Enroll)
	courses.DELETE("/:id/students/:sid", staff, courseHandler.Unenroll)

	courses.GET("/:id/attendance", staff, attendanceHandler.CourseView)
	courses.GET("/:id/attendance/class", staff, attendanceHandler.ClassSummary)
	courses.POST("/:id/attendance/finalize", staff, attendanceHandler.Finalize)
	courses.POST("/:id/attendance/clear", staff, attendanceHandler.Clear)
	courses.GET("/:id/students/:sid/history", middleware.RBAC("ADMIN", "PROFESSOR", "SELF"), attendanceHandler.StudentHistory)
	courses.PUT("/:id/students/:sid/override", staff, attendanceHandler.SetOverride)

	students := authed.Group("/students", staff)
	students.GET("", studentHandler.List)
	students.GET("/:id", studentHandler.Get)
	students.POST("", studentHandler.Create)
	students.DELETE("/:id", studentHandler.Delete)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		authed.POST("/courses/:id/exports", staff, exportHandler.Enqueue)
		authed.GET("/exports/:id", staff, exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if exportSvc != nil {
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
