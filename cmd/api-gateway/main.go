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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/scheduler/cron"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Multi-tenant academic timetable generation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-process cache and locks", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := buildApp(cfg, db, redisClient, logr)
	app.queue.Start(ctx)
	defer app.queue.Stop()

	if app.cron != nil {
		app.cron.Start()
		defer func() { <-app.cron.Stop().Done() }()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics, "/metrics", "/metrics/summary", "/health", "/ready"))

	pingers := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		pingers["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(app.metrics, pingers)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Identity(middleware.NewTokenVerifier(cfg.JWT)), middleware.WithResponseMeta())
	registerRoutes(api, app.handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

type handlers struct {
	departments *handler.DepartmentHandler
	subjects    *handler.SubjectHandler
	classrooms  *handler.ClassroomHandler
	staff       *handler.StaffHandler
	constraints *handler.ConstraintHandler
	timetable   *handler.TimetableHandler
	roster      *handler.RosterHandler
}

type app struct {
	metrics  *service.MetricsService
	queue    *jobs.Queue
	cron     *cron.Runner
	handlers handlers
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *app {
	validate := validator.New()
	metrics := service.NewMetricsService()

	departmentRepo := repository.NewDepartmentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	constraintRepo := repository.NewConstraintRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	runRepo := repository.NewGenerationRunRepository(db)
	lockRepo := repository.NewLockRepository(redisClient)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled)

	var timetableSvc *service.TimetableService
	queue := jobs.NewQueue("timetable-generation", func(ctx context.Context, job jobs.Job) error {
		return timetableSvc.HandleJob(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Timetable.WorkerConcurrency,
		MaxRetries: cfg.Timetable.WorkerRetries,
		RetryDelay: 5 * time.Second,
		JobTimeout: cfg.Timetable.LockTTL,
		Retryable:  func(err error) bool { return timetableSvc.Retryable(err) },
		Logger:     logr,
	})

	timetableSvc = service.NewTimetableService(
		departmentRepo,
		subjectRepo,
		staffRepo,
		classroomRepo,
		constraintRepo,
		timetableRepo,
		runRepo,
		lockRepo,
		db,
		queue,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.TimetableServiceConfig{
			Strategy:    cfg.Timetable.Strategy,
			Seed:        cfg.Timetable.RandomSeed,
			MaxAttempts: cfg.Timetable.MaxAttempts,
			LockTTL:     cfg.Timetable.LockTTL,
			CacheTTL:    cfg.Timetable.CacheTTL,
			MaxRetries:  cfg.Timetable.WorkerRetries,
		},
	)

	runner, err := cron.New(timetableSvc, cron.Config{
		AutoRegenerate:     cfg.Timetable.AutoRegenerate,
		AutoRegenerateSpec: cfg.Timetable.AutoRegenerateSpec,
		RunRetention:       cfg.Timetable.RunRetention,
		RetentionSpec:      cfg.Timetable.RetentionSpec,
	}, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid cron configuration", "error", err)
	}

	return &app{
		metrics: metrics,
		queue:   queue,
		cron:    runner,
		handlers: handlers{
			departments: handler.NewDepartmentHandler(service.NewDepartmentService(departmentRepo, validate, logr)),
			subjects:    handler.NewSubjectHandler(service.NewSubjectService(subjectRepo, departmentRepo, validate, logr)),
			classrooms:  handler.NewClassroomHandler(service.NewClassroomService(classroomRepo, departmentRepo, validate, logr)),
			staff:       handler.NewStaffHandler(service.NewStaffService(staffRepo, departmentRepo, subjectRepo, constraintRepo, validate, logr)),
			constraints: handler.NewConstraintHandler(service.NewConstraintService(constraintRepo, departmentRepo, validate, logr)),
			timetable:   handler.NewTimetableHandler(timetableSvc),
			roster: handler.NewRosterHandler(service.NewRosterImportService(
				db, departmentRepo, subjectRepo, classroomRepo, staffRepo, validate, logr, cfg.Import.MaxFileSizeBytes,
			)),
		},
	}
}
