package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/capacity-api/api/swagger"
	"github.com/noah-isme/capacity-api/internal/handler"
	"github.com/noah-isme/capacity-api/internal/middleware"
	"github.com/noah-isme/capacity-api/internal/repository"
	"github.com/noah-isme/capacity-api/internal/service"
	"github.com/noah-isme/capacity-api/pkg/cache"
	"github.com/noah-isme/capacity-api/pkg/config"
	"github.com/noah-isme/capacity-api/pkg/database"
	"github.com/noah-isme/capacity-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/capacity-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/capacity-api/pkg/middleware/requestid"
)

// @title Capacity API
// @version 1.0.0
// @description Field-service capacity availability and reservation API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

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
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Capacity.CacheEnabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, capacity cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	r := newRouter(cfg, logr, db, redisClient, metricsSvc)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, metricsSvc *service.MetricsService) *gin.Engine {
	capacityRepo := repository.NewCapacityRepository(db, cfg.Database.QueryTimeout, metricsSvc)
	parameterRepo := repository.NewParameterRepository(db, cfg.Database.QueryTimeout)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Capacity.CacheTTL, logr, redisClient != nil)
	parameterSvc := service.NewParameterService(parameterRepo, logr)
	engine := service.NewCapacityEngine(capacityRepo, parameterSvc, database.NewTxManager(db), cacheSvc, metricsSvc, logr,
		service.CapacityEngineConfig{
			TravelBufferParameter: cfg.Capacity.TravelBufferParameter,
			StrictScheduleMatch:   cfg.Capacity.StrictScheduleMatch,
			CacheTTL:              cfg.Capacity.CacheTTL,
		})
	schedulingSvc := service.NewSchedulingService(engine, validate, logr)
	exportSvc := service.NewExportService(schedulingSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		APIKeys:           cfg.Auth.APIKeys,
	})

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	capacityHandler := handler.NewCapacityHandler(schedulingSvc, exportSvc)
	parameterHandler := handler.NewParameterHandler(parameterSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.Auth(authSvc))
	secured.GET("/auth/me", authHandler.Me)
	secured.POST("/capacity", capacityHandler.Availability)
	secured.POST("/capacity/schedule", capacityHandler.Schedule)
	secured.POST("/capacity/export", capacityHandler.Export)
	secured.GET("/capacity/pools/:poolId/categories", capacityHandler.CapacityTable)
	secured.DELETE("/capacity/pools/:poolId/cache", capacityHandler.InvalidateCapacityTable)
	secured.GET("/parameters/:name", parameterHandler.Get)

	return r
}
