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
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/dorm-admin-api/api/swagger"
	"github.com/noah-isme/dorm-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/dorm-admin-api/internal/middleware"
	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/internal/repository"
	"github.com/noah-isme/dorm-admin-api/internal/service"
	"github.com/noah-isme/dorm-admin-api/pkg/cache"
	"github.com/noah-isme/dorm-admin-api/pkg/config"
	"github.com/noah-isme/dorm-admin-api/pkg/database"
	"github.com/noah-isme/dorm-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dorm-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dorm-admin-api/pkg/middleware/requestid"
)

// @title Dormitory Admin API
// @version 1.0.0
// @description Student dormitory administration backend
// @BasePath /api
// @schemes http

const housekeepingInterval = 10 * time.Minute

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Migrations.AutoApply {
		if err := database.NewMigrator(db, logr).Up(ctx); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo, closeCache := newCacheRepository(cfg, logr)
	defer closeCache()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.StatsTTL, logr)

	rooms := repository.NewRoomRepository(db)
	students := repository.NewStudentRepository(db)
	staff := repository.NewStaffRepository(db)
	duties := repository.NewDutyScheduleRepository(db)
	repairs := repository.NewRepairRequestRepository(db)

	opts := service.ResourceOptions{
		Cache:     cacheSvc,
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		StatsTTL:  cfg.Cache.StatsTTL,
	}

	sessions := service.NewSessionService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		validate,
		metrics,
		logr,
		service.SessionConfig{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL, Issuer: cfg.Session.Issuer},
	)

	limiter := internalmiddleware.NewIPRateLimiter(rate.Limit(cfg.RateLimit.LoginPerSecond), cfg.RateLimit.LoginBurst)
	go housekeeping(ctx, sessions, limiter, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Routes{
		Users:   handler.NewUserHandler(sessions, handler.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure}),
		Exports: handler.NewExportHandler(service.NewExportService(students, metrics, logr)),
		Metrics: handler.NewMetricsHandler(metrics, db),
		Resources: []handler.ResourceRoute{
			{Path: "/students", Handler: handler.NewResourceHandler[models.Student, service.StudentRequest, service.StudentPatch](service.NewStudentService(students, rooms, opts))},
			{Path: "/rooms", Handler: handler.NewResourceHandler[models.Room, service.RoomRequest, service.RoomPatch](service.NewRoomService(rooms, opts))},
			{Path: "/staff", Handler: handler.NewResourceHandler[models.Staff, service.StaffRequest, service.StaffPatch](service.NewStaffService(staff, opts))},
			{Path: "/duty-schedules", Handler: handler.NewResourceHandler[models.DutySchedule, service.DutyScheduleRequest, service.DutySchedulePatch](service.NewDutyScheduleService(duties, students, opts))},
			{Path: "/repair-requests", Handler: handler.NewResourceHandler[models.RepairRequest, service.RepairRequestRequest, service.RepairRequestPatch](service.NewRepairRequestService(repairs, rooms, staff, opts))},
		},
		RequireAuth:  internalmiddleware.Auth(sessions, cfg.Session.CookieName),
		OptionalAuth: internalmiddleware.OptionalAuth(sessions, cfg.Session.CookieName),
		LoginLimit:   internalmiddleware.RateLimit(limiter),
	})

	if cfg.Env != config.EnvProduction {
		swagger.SwaggerInfo.BasePath = docsBasePath(cfg.APIPrefix)
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type cacheCloser interface {
	Close() error
}

func newCacheRepository(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func()) {
	var repo interface {
		service.CacheRepository
		cacheCloser
	}

	switch cfg.Cache.Driver {
	case config.CacheDriverNone:
		logr.Info("stats cache disabled")
		return nil, func() {}
	case config.CacheDriverRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, falling back to in-process cache", zap.Error(err))
			repo = repository.NewMemoryCacheRepository(cfg.Cache.StatsTTL, 2*cfg.Cache.StatsTTL)
			break
		}
		repo = repository.NewRedisCacheRepository(client, logr)
	default:
		repo = repository.NewMemoryCacheRepository(cfg.Cache.StatsTTL, 2*cfg.Cache.StatsTTL)
	}

	return repo, func() {
		if err := repo.Close(); err != nil {
			logr.Warn("failed to close cache", zap.Error(err))
		}
	}
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type limiterPruner interface {
	Prune() int
}

func housekeeping(ctx context.Context, sessions sessionPurger, limiter limiterPruner, logr *zap.Logger) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, sessions, limiter, logr)
		}
	}
}

// sweep purges expired sessions and idle login limiters. Each step runs
// even when the other fails.
func sweep(ctx context.Context, sessions sessionPurger, limiter limiterPruner, logr *zap.Logger) {
	purged, err := sessions.PurgeExpired(ctx)
	if err != nil {
		logr.Warn("failed to purge expired sessions", zap.Error(err))
	}
	idle := limiter.Prune()
	logr.Debug("housekeeping done", zap.Int64("sessions_purged", purged), zap.Int("limiters_pruned", idle))
}

func docsBasePath(prefix string) string {
	if prefix == "" {
		return "/"
	}
	return prefix
}
