package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/edukite/edukite-go-api/internal/config"
	"github.com/edukite/edukite-go-api/internal/handler"
	"github.com/edukite/edukite-go-api/internal/middleware"
	"github.com/edukite/edukite-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LessonHandler         *handler.LessonHandler
	TaskSubmissionHandler *handler.TaskSubmissionHandler
	TaskHandler           *handler.TaskHandler
	JWTMiddleware         fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Lesson lifecycle: draft initialization, task list, progress tracking
	if deps.LessonHandler != nil {
		lessons := api.Group("/lessons", jwtMiddleware)
		deps.LessonHandler.Register(lessons)
	}

	// Learner submissions, with a rate limit on the write path
	if deps.TaskSubmissionHandler != nil {
		tasks := api.Group("/tasks", jwtMiddleware)
		tasks.Use("/:taskID/submit", middleware.RateLimit("task_submit", 10, time.Minute))
		deps.TaskSubmissionHandler.Register(tasks)
	}

	// Admin surface: task catalog and reviewer verdicts
	adminOnly := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{Role: middleware.AuthRoleAdmin})
	admin := api.Group("/admin", jwtMiddleware, adminOnly)
	if deps.TaskHandler != nil {
		deps.TaskHandler.Register(admin)
	}
	if deps.TaskSubmissionHandler != nil {
		deps.TaskSubmissionHandler.RegisterReview(admin.Group("/tasks"))
	}
}
