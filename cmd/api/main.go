package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edukite/edukite-go-api/internal/config"
	"github.com/edukite/edukite-go-api/internal/database"
	"github.com/edukite/edukite-go-api/internal/handler"
	"github.com/edukite/edukite-go-api/internal/middleware"
	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/repository"
	"github.com/edukite/edukite-go-api/internal/router"
	"github.com/edukite/edukite-go-api/internal/service"
	cloud "github.com/edukite/edukite-go-api/pkg/cloudinary"
	"github.com/edukite/edukite-go-api/pkg/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Lesson{}, &models.Task{}, &models.TaskSubmission{}, &models.LessonProgress{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	// Eventing is optional: a missing broker degrades to dropped events, not
	// a dead API.
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(cfg.NATSURL, cfg.EventSubjectBase, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, events disabled")
		} else {
			defer publisher.Close()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	lessonRepo := repository.NewLessonRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	progressService := service.NewProgressService(progressRepo, lessonRepo, redisClient, cfg.ProgressCacheTTL, validate, logger)
	completionEvaluator := service.NewCompletionEvaluator(taskRepo, submissionRepo, progressRepo, progressService, publisher, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, completionEvaluator, uploader, publisher, validate, logger)
	draftService := service.NewDraftService(lessonRepo, submissionRepo, logger)
	taskService := service.NewTaskService(taskRepo, lessonRepo, submissionRepo, validate, logger)

	lessonHandler := handler.NewLessonHandler(draftService, progressService, taskService, logger)
	taskSubmissionHandler := handler.NewTaskSubmissionHandler(submissionService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(cfg.UploadMaxFileSizeMB)*1024*1024 + 1024*1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		LessonHandler:         lessonHandler,
		TaskSubmissionHandler: taskSubmissionHandler,
		TaskHandler:           taskHandler,
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
