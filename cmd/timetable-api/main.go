package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/api/swagger"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/handler"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/middleware"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/repository"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/internal/service"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/cache"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/config"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/database"
	"github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/logger"
	corsmiddleware "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/UltraCapJjang-2-11/Timetable-Generator-sub000/pkg/middleware/requestid"
)

// @title Timetable Generator API
// @version 1.0.0
// @description Constraint-based timetable generation for university students
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Results then live only in the in-process store.
		logr.Sugar().Warnw("redis unavailable, running without shared result cache", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	courses := repository.NewCourseRepository(db, logr)
	ratings := repository.NewRatingRepository(db)
	departments := repository.NewDepartmentRepository(db, logr)
	distances := repository.NewDistanceRepository(db, cfg.Engine.DefaultWalkMinutes, logr)

	resultCache := repository.NewResultCacheRepository(redisClient, logr)

	filter := service.NewCandidateFilter(departments, service.FilterConfig{
		VirtualRoomKeyword: cfg.Engine.VirtualRoomKeyword,
	}, logr)
	scorer := service.NewCourseScorer(logr)
	builder := service.NewModelBuilder(distances, logr)
	finder := service.NewSolutionFinder(logr)

	generator := service.NewGenerationService(
		courses, ratings, filter, scorer, builder, finder,
		resultCache, metricsSvc, logr,
		service.GenerationConfig{
			ReturnCount:   cfg.Engine.ReturnCount,
			ResultTTL:     cfg.Engine.ResultTTL,
			DefaultPreset: service.Preset(cfg.Engine.DefaultPreset),
		},
	)

	var async *service.AsyncGenerator
	if cfg.Jobs.Enabled {
		async = service.NewAsyncGenerator(generator, service.AsyncConfig{
			Workers:    cfg.Jobs.Workers,
			QueueSize:  cfg.Jobs.QueueSize,
			JobTimeout: cfg.Jobs.JobTimeout,
		}, logr)
		async.Start(context.Background())
		defer async.Stop()
	}

	generationHandler := handler.NewGenerationHandler(generator, async, validator.New())
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", readyCheck(db))
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/status", metricsHandler.Status)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	timetable := api.Group("/timetable", middleware.JWT(cfg.JWT.Secret))
	{
		timetable.POST("/generate", generationHandler.Generate)
		timetable.POST("/generate/async", generationHandler.GenerateAsync)
		timetable.GET("/results/:id", generationHandler.GetResult)
		timetable.GET("/results/:id/export", generationHandler.ExportResult)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func readyCheck(db interface{ Ping() error }) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
