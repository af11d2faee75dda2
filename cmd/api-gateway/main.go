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

	_ "github.com/noah-isme/academica-api/api/swagger"
	"github.com/noah-isme/academica-api/internal/handler"
	"github.com/noah-isme/academica-api/internal/middleware"
	"github.com/noah-isme/academica-api/internal/repository"
	"github.com/noah-isme/academica-api/internal/service"
	"github.com/noah-isme/academica-api/pkg/cache"
	"github.com/noah-isme/academica-api/pkg/config"
	"github.com/noah-isme/academica-api/pkg/database"
	"github.com/noah-isme/academica-api/pkg/jobs"
	"github.com/noah-isme/academica-api/pkg/lock"
	"github.com/noah-isme/academica-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academica-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academica-api/pkg/middleware/requestid"
)

// @title Academica API
// @version 0.1.0
// @description Grade aggregation and random group assignment service
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
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	// Repositories.
	classRepo := repository.NewClassRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	weightRepo := repository.NewWeightRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	groupRepo := repository.NewGroupRepository(db)

	// Notification queue. Dispatch just logs; external channels hook in here.
	var notifier *service.NotificationService
	if cfg.Notifications.Enabled {
		queue := jobs.NewEventQueue("notifications", func(ctx context.Context, event jobs.Event) error {
			logr.Sugar().Infow("notification dispatched", "kind", event.Kind, "payload", event.Payload)
			return nil
		}, jobs.Options{
			Workers:    cfg.Notifications.Workers,
			BufferSize: cfg.Notifications.BufferSize,
			MaxRetries: cfg.Notifications.MaxRetries,
			RetryDelay: cfg.Notifications.RetryDelay,
			Logger:     logr,
		})
		queue.Start(context.Background())
		defer queue.Stop()
		notifier = service.NewNotificationService(queue, logr)
	} else {
		notifier = service.NewNotificationService(nil, logr)
	}

	// Services.
	metrics := service.NewMetricsService()
	classes := service.NewClassService(classRepo, validate, logr)
	periods := service.NewPeriodService(periodRepo, validate, logr)
	weights := service.NewWeightStructureService(weightRepo, validate, logr)
	evaluations := service.NewEvaluationService(evaluationRepo, weightRepo, validate, logr)
	scores := service.NewScoreService(scoreRepo, evaluationRepo, notifier, validate, logr)
	grades := service.NewGradeService(weights, evaluationRepo, scoreRepo, periodRepo, cfg.Grades.MissingScorePolicy, logr)
	roster := service.NewRosterService(rosterRepo, logr)
	projects := service.NewProjectService(projectRepo, groupRepo, validate, logr)
	assignments := service.NewAssignmentService(projectRepo, groupRepo, roster, lock.NewRedisLocker(redisClient, "draw:"), notifier, cfg.Assignment, validate, logr)
	exports := service.NewExportService(weights, roster, grades, logr)

	// Handlers.
	classHandler := handler.NewClassHandler(classes, roster)
	periodHandler := handler.NewPeriodHandler(periods)
	weightHandler := handler.NewWeightHandler(weights)
	evaluationHandler := handler.NewEvaluationHandler(evaluations)
	scoreHandler := handler.NewScoreHandler(scores)
	gradeHandler := handler.NewGradeHandler(grades, metrics)
	projectHandler := handler.NewProjectHandler(projects)
	assignmentHandler := handler.NewAssignmentHandler(assignments, metrics)
	exportHandler := handler.NewExportHandler(exports, projects)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/classes", classHandler.List)
		api.POST("/classes", classHandler.Create)
		api.GET("/classes/:classId", classHandler.Get)
		api.GET("/classes/:classId/roster", classHandler.Roster)
		api.GET("/classes/:classId/projects", projectHandler.ListByClass)
		api.GET("/classes/:classId/draw-capacity", assignmentHandler.Capacity)
		api.POST("/classes/:classId/projects/:projectId/draw", assignmentHandler.Draw)
		api.GET("/classes/:classId/partials/:partialId/weights", weightHandler.Structure)
		api.GET("/classes/:classId/partials/:partialId/weights/validate", weightHandler.Validate)

		api.POST("/weight-categories", weightHandler.Create)
		api.PUT("/weight-categories/:id", weightHandler.Update)
		api.DELETE("/weight-categories/:id", weightHandler.Delete)

		api.GET("/periods", periodHandler.List)
		api.POST("/periods", periodHandler.Create)
		api.GET("/periods/:id", periodHandler.Get)
		api.PUT("/periods/:id", periodHandler.Update)
		api.GET("/periods/:id/partials", periodHandler.ListPartials)
		api.POST("/periods/:id/partials", periodHandler.AddPartial)

		api.GET("/evaluations", evaluationHandler.List)
		api.POST("/evaluations", evaluationHandler.Create)
		api.GET("/evaluations/:id", evaluationHandler.Get)
		api.PUT("/evaluations/:id", evaluationHandler.Update)
		api.DELETE("/evaluations/:id", evaluationHandler.Delete)

		api.POST("/scores", scoreHandler.Record)
		api.POST("/scores/bulk", scoreHandler.BulkRecord)

		api.GET("/students/:studentId/classes/:classId/partials/:partialId/total", gradeHandler.PartialTotal)
		api.GET("/students/:studentId/classes/:classId/periods/:periodId/average", gradeHandler.PeriodAverage)

		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id", projectHandler.Update)
		api.GET("/projects/:id/groups", projectHandler.Groups)

		api.PUT("/groups/:groupId/members", assignmentHandler.AssignManually)

		if cfg.Exports.Enabled {
			api.GET("/classes/:classId/partials/:partialId/grade-sheet", exportHandler.GradeSheet)
			api.GET("/projects/:id/groups/export", exportHandler.GroupRoster)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
