package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/service"
	"github.com/edukite/edukite-go-api/internal/utils"
)

// TaskSubmissionHandler manages the learner submission endpoints and the
// reviewer verdict endpoint.
type TaskSubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewTaskSubmissionHandler builds a task submission handler instance.
func NewTaskSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *TaskSubmissionHandler {
	return &TaskSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "task_submission_handler").Logger(),
	}
}

// Register attaches the learner routes to the provided router group.
func (h *TaskSubmissionHandler) Register(router fiber.Router) {
	router.Post("/:taskID/submit", h.submit)
	router.Get("/:taskID/submission", h.get)
	router.Delete("/:taskID/submission", h.clear)
}

// RegisterReview attaches the reviewer verdict route to the provided group.
func (h *TaskSubmissionHandler) RegisterReview(router fiber.Router) {
	router.Patch("/:taskID/submissions/:userID/review", h.review)
}

func (h *TaskSubmissionHandler) submit(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.TaskSubmitRequest
	var files []*multipart.FileHeader

	// Zero-content confirmations arrive as JSON bodies; anything carrying
	// attachments arrives as multipart. Both map onto the same request type.
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid form data")
		}
		form, err := c.MultipartForm()
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid multipart form")
		}
		files = form.File["files"]
	} else if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	submission, err := h.service.Submit(c.UserContext(), taskID, userID, payload, files)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission stored", submission)
}

func (h *TaskSubmissionHandler) get(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	submission, err := h.service.Get(c.UserContext(), taskID, userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *TaskSubmissionHandler) clear(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Clear(c.UserContext(), taskID, userID); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission cleared", nil)
}

func (h *TaskSubmissionHandler) review(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reviewerID := userIDFromContext(c)
	if reviewerID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	payload.ReviewerID = reviewerID

	submission, err := h.service.Review(c.UserContext(), taskID, userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *TaskSubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validation *service.SubmissionValidationError
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrNothingToClear):
		return utils.SendError(c, fiber.StatusNotFound, "no submission to clear")
	case errors.Is(err, service.ErrNotReviewable):
		return utils.SendError(c, fiber.StatusConflict, "submission has no content to review")
	case errors.As(err, &validation):
		return utils.SendErrorDetails(c, fiber.StatusUnprocessableEntity, validation.Error(), fiber.Map{
			"missing_text":  validation.MissingText,
			"missing_files": validation.MissingFiles,
			"file_errors":   validation.FileErrors,
		})
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
