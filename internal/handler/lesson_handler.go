package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/service"
	"github.com/edukite/edukite-go-api/internal/utils"
)

// LessonHandler manages lesson-scoped endpoints: submission draft
// initialization, progress tracking, and the learner's task list.
type LessonHandler struct {
	drafts   service.DraftService
	progress service.ProgressService
	tasks    service.TaskService
	logger   zerolog.Logger
}

// NewLessonHandler builds a lesson handler instance.
func NewLessonHandler(drafts service.DraftService, progress service.ProgressService, tasks service.TaskService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		drafts:   drafts,
		progress: progress,
		tasks:    tasks,
		logger:   logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *LessonHandler) Register(router fiber.Router) {
	router.Post("/:lessonID/init-submissions", h.initSubmissions)
	router.Get("/:lessonID/tasks", h.listTasks)
	router.Post("/:lessonID/progress", h.startProgress)
	router.Put("/:lessonID/progress", h.updateProgress)
	router.Get("/:lessonID/progress", h.getProgress)
}

func (h *LessonHandler) initSubmissions(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.drafts.EnsureDrafts(c.UserContext(), lessonID, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission drafts initialized", result)
}

func (h *LessonHandler) listTasks(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	tasks, err := h.tasks.ListForLesson(c.UserContext(), lessonID, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson tasks retrieved", tasks)
}

func (h *LessonHandler) startProgress(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.LessonProgressStartRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.progress.Start(c.UserContext(), lessonID, userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson progress started", progress)
}

func (h *LessonHandler) updateProgress(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.LessonProgressUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	progress, err := h.progress.Update(c.UserContext(), lessonID, userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "lesson progress updated", progress)
}

func (h *LessonHandler) getProgress(c *fiber.Ctx) error {
	lessonID, err := parseUintParam(c, "lessonID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	progress, found, err := h.progress.Get(c.UserContext(), lessonID, userID)
	if err != nil {
		return h.handleError(c, err)
	}
	if !found {
		return utils.SendError(c, fiber.StatusNotFound, "lesson progress not found")
	}

	return utils.SendSuccess(c, "lesson progress retrieved", progress)
}

func (h *LessonHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson not found")
	case errors.Is(err, service.ErrProgressNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "lesson progress not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
