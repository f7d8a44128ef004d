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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/api/swagger"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/handler"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/middleware"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/models"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/repository"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/internal/service"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/cache"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/config"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/database"
	"github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/logger"
	corsmiddleware "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/middleware/cors"
	reqidmiddleware "github.com/ataolali/Gelistirilmi-Universite-Sinav-Programi-Hazirlama-Uygulamasi/pkg/middleware/requestid"
)

// @title University Exam Planner API
// @version 1.0.0
// @description Final exam timetable planning and publishing service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timetable caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	blackoutRepo := repository.NewBlackoutRepository(db)
	examRepo := repository.NewExamRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "exam-planner-api",
	})
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, rosterRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	availabilitySvc := service.NewAvailabilityService(blackoutRepo, userRepo, validate, logr)
	plannerSvc := service.NewPlannerService(
		courseRepo,
		rosterRepo,
		roomRepo,
		blackoutRepo,
		examRepo,
		cacheRepo,
		metricsSvc,
		db,
		logr,
		service.PlannerRunConfig{
			ExamDays:        cfg.Planner.ExamDays,
			SlotTimes:       cfg.Planner.SlotTimes,
			DefaultDuration: time.Duration(cfg.Planner.DefaultExamDuration) * time.Minute,
		},
	)
	scheduleSvc := service.NewScheduleService(examRepo, cacheRepo, metricsSvc, logr, cfg.Exports.CacheTTL)
	exportSvc := service.NewExportService(examRepo, nil, nil, cfg.Exports.Title, logr)
	ingestSvc := service.NewIngestService(courseRepo, rosterRepo, roomRepo, db, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc)
	ingestHandler := handler.NewIngestHandler(ingestSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	authed := auth.Group("", middleware.JWT(authSvc))
	authed.POST("/logout", authHandler.Logout)
	authed.POST("/change-password", authHandler.ChangePassword)
	authed.GET("/me", authHandler.Me)

	protected := api.Group("", middleware.JWT(authSvc))

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentHead)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	instructorScoped := middleware.RequireRoles(models.RoleAdmin, models.RoleDepartmentHead, models.RoleTeacher)

	protected.GET("/faculties", facultyHandler.ListFaculties)
	protected.GET("/faculties/:id", facultyHandler.GetFaculty)
	protected.POST("/faculties", adminOnly, facultyHandler.CreateFaculty)
	protected.PUT("/faculties/:id", adminOnly, facultyHandler.UpdateFaculty)
	protected.DELETE("/faculties/:id", adminOnly, facultyHandler.DeleteFaculty)

	protected.GET("/departments", facultyHandler.ListDepartments)
	protected.GET("/departments/:id", facultyHandler.GetDepartment)
	protected.POST("/departments", adminOnly, facultyHandler.CreateDepartment)
	protected.PUT("/departments/:id", adminOnly, facultyHandler.UpdateDepartment)
	protected.DELETE("/departments/:id", adminOnly, facultyHandler.DeleteDepartment)

	protected.GET("/courses", courseHandler.List)
	protected.GET("/courses/:id", courseHandler.Get)
	protected.GET("/courses/:id/students", staffOnly, courseHandler.Roster)
	protected.POST("/courses", staffOnly, courseHandler.Create)
	protected.PUT("/courses/:id", staffOnly, courseHandler.Update)
	protected.DELETE("/courses/:id", staffOnly, courseHandler.Delete)

	protected.GET("/rooms", roomHandler.List)
	protected.GET("/rooms/proximities", roomHandler.ListProximities)
	protected.GET("/rooms/:id", roomHandler.Get)
	protected.POST("/rooms", adminOnly, roomHandler.Create)
	protected.PUT("/rooms/:id", adminOnly, roomHandler.Update)
	protected.DELETE("/rooms/:id", adminOnly, roomHandler.Delete)
	protected.PUT("/rooms/:id/proximities", adminOnly, roomHandler.ReplaceProximities)

	protected.GET("/instructors/:id/blackouts", instructorScoped, availabilityHandler.Blackouts)
	protected.PUT("/instructors/:id/blackouts", instructorScoped, availabilityHandler.ReplaceBlackouts)

	protected.POST("/planning/run", staffOnly, plannerHandler.Run)

	protected.GET("/exams", scheduleHandler.Timetable)
	protected.GET("/exams/export", scheduleHandler.Export)

	protected.POST("/ingest/rosters", adminOnly, ingestHandler.Rosters)
	protected.POST("/ingest/rooms", adminOnly, ingestHandler.Rooms)
	protected.POST("/ingest/proximities", adminOnly, ingestHandler.Proximities)

	protected.GET("/metrics/summary", adminOnly, metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
