package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/nandaprs/designtrack/api/swagger"
	"github.com/nandaprs/designtrack/internal/handler"
	"github.com/nandaprs/designtrack/internal/middleware"
	"github.com/nandaprs/designtrack/internal/repository"
	"github.com/nandaprs/designtrack/internal/service"
	"github.com/nandaprs/designtrack/pkg/cache"
	"github.com/nandaprs/designtrack/pkg/config"
	"github.com/nandaprs/designtrack/pkg/database"
	"github.com/nandaprs/designtrack/pkg/export"
	"github.com/nandaprs/designtrack/pkg/jobs"
	"github.com/nandaprs/designtrack/pkg/logger"
	corsmiddleware "github.com/nandaprs/designtrack/pkg/middleware/cors"
	reqidmiddleware "github.com/nandaprs/designtrack/pkg/middleware/requestid"
	"github.com/nandaprs/designtrack/pkg/storage"
)

// @title DesignTrack API
// @version 1.0.0
// @description Freelance design project tracker with versioned deliverables and tokenized client access
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
	defer db.Close() //nolint:errcheck

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads directory", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it the dashboard simply skips its cache.
	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupQueue := jobs.NewQueue("artifact-cleanup", func(ctx context.Context, job jobs.Job) error {
		for _, path := range job.Paths {
			if err := uploads.Delete(path); err != nil {
				return err
			}
		}
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Cleanup.Workers,
		MaxRetries: cfg.Cleanup.MaxRetries,
		RetryDelay: cfg.Cleanup.RetryDelay,
		Logger:     logr,
	})
	cleanupQueue.Start(ctx)
	defer cleanupQueue.Stop()

	signer := storage.NewSignedURLSigner(cfg.Downloads.SignedURLSecret, cfg.Downloads.SignedURLTTL)

	projectRepo := repository.NewProjectRepository(db)
	fileRepo := repository.NewFileRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	projectSvc := service.NewProjectService(projectRepo, fileRepo, feedbackRepo, activityRepo, cacheSvc, cleanupQueue, nil, logr, cfg.Uploads.DefaultRevisions, cfg.Dashboard.CacheTTL)
	fileSvc := service.NewFileService(fileRepo, projectRepo, uploads, metricsSvc, logr, cfg.Uploads.AllowedExtensions, cfg.Uploads.MaxFileSizeBytes)
	clientSvc := service.NewClientService(projectRepo, fileRepo, feedbackRepo, activityRepo, uploads, signer, cacheSvc, metricsSvc, nil, logr, cfg.APIPrefix)
	reportSvc := service.NewReportService(projectRepo, activityRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	projectHandler := handler.NewProjectHandler(projectSvc, reportSvc)
	fileHandler := handler.NewFileHandler(fileSvc)
	clientHandler := handler.NewClientHandler(clientSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

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
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.Dashboard)
			projects.POST("", projectHandler.Create)
			projects.GET("/:id", projectHandler.Detail)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.POST("/:id/finish", projectHandler.Finish)
			projects.GET("/:id/report", projectHandler.Export)
			projects.POST("/:id/files", fileHandler.Upload)
		}

		files := api.Group("/files")
		{
			files.DELETE("/:id", fileHandler.Delete)
			files.POST("/:id/lock", fileHandler.ToggleLock)
		}

		client := api.Group("/client")
		{
			client.GET("/:token", clientHandler.View)
			client.POST("/:token/feedback", clientHandler.SubmitFeedback)
			client.GET("/:token/files/:id/download", clientHandler.Download)
			client.GET("/:token/files/:id/download-url", clientHandler.DownloadURL)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
