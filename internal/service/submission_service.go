package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/observability"
	"github.com/edukite/edukite-go-api/internal/repository"
)

var (
	// ErrTaskNotFound indicates the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubmissionNotFound indicates no submission row exists for the pair.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrNothingToClear indicates a clear was requested for a pair that has
	// no live row.
	ErrNothingToClear = errors.New("nothing to clear")
	// ErrNotReviewable indicates a reviewer verdict was attempted against a
	// draft that has no submitted content.
	ErrNotReviewable = errors.New("submission has no content to review")
)

// SubmissionValidationError reports why a candidate payload failed the
// task's submission mode, with enough detail for the client to prompt the
// learner for the missing half.
type SubmissionValidationError struct {
	MissingText  bool
	MissingFiles bool
	Reason       string
	FileErrors   []string
}

func (e *SubmissionValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "submission content does not satisfy the task requirements"
}

// FileStorage abstracts the external binary object store. Only the durable
// URL it returns is recorded by the engine.
type FileStorage interface {
	Upload(ctx context.Context, name string, file *multipart.FileHeader) (string, error)
}

// SubmissionService orchestrates the submit and clear paths: sanitize, gate
// the files, evaluate the submission mode, persist, then re-derive lesson
// completion.
type SubmissionService interface {
	Submit(ctx context.Context, taskID, userID uint, payload dto.TaskSubmitRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Get(ctx context.Context, taskID, userID uint) (dto.SubmissionResponse, error)
	Clear(ctx context.Context, taskID, userID uint) error
	Review(ctx context.Context, taskID, userID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tasks       repository.TaskRepository
	completion  CompletionEvaluator
	storage     FileStorage
	events      EventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, taskRepo repository.TaskRepository, completion CompletionEvaluator, storage FileStorage, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		tasks:       taskRepo,
		completion:  completion,
		storage:     storage,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/edukite/edukite-go-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, taskID, userID uint, payload dto.TaskSubmitRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int("task.id", int(taskID)),
		attribute.Int("user.id", int(userID)),
		attribute.Int("submission.candidate_files", len(files)),
	)

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.SubmissionText))

	staged, err := stageFiles(files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "staging failed")
		return dto.SubmissionResponse{}, err
	}

	report := GateFiles(task, staged)
	for _, rejected := range report.Rejected {
		observability.UploadFilesRejected().WithLabelValues(rejected.Reason).Inc()
	}

	// The submission mode is evaluated against the accepted subset only, so
	// wholesale rejection by the gate fails validation like any other empty
	// candidate. Validation happens strictly before any write.
	decision := EvaluateCandidate(task, SubmissionCandidate{
		Text:       text,
		Files:      report.Accepted,
		AllowEmpty: payload.AllowEmpty,
	})
	if !decision.Accepted {
		observability.SubmissionsRejected().WithLabelValues(task.SubmissionType).Inc()
		span.SetStatus(codes.Error, "policy rejected")
		return dto.SubmissionResponse{}, &SubmissionValidationError{
			MissingText:  decision.MissingText,
			MissingFiles: decision.MissingFiles,
			Reason:       decision.Reason,
			FileErrors:   report.Messages(),
		}
	}

	stored, err := s.storeFiles(ctx, report.Accepted, files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.SubmissionResponse{}, err
	}

	submittedAt := s.now()
	submission := models.TaskSubmission{
		TaskID:      taskID,
		UserID:      userID,
		Status:      models.SubmissionStatusSubmitted,
		SubmittedAt: &submittedAt,
	}
	if text != "" {
		submission.SubmissionText = &text
	}
	if err := submission.SetFiles(stored); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.submissions.Upsert(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionResponse{}, err
	}

	observability.SubmissionsAccepted().WithLabelValues(task.SubmissionType).Inc()
	if s.events != nil {
		s.events.SubmissionSubmitted(ctx, submission)
	}

	s.evaluateCompletion(ctx, task.LessonID, userID)

	saved, err := s.submissions.GetByTaskAndUser(ctx, taskID, userID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("task_id", taskID).
		Uint("user_id", userID).
		Str("submission_type", task.SubmissionType).
		Int("files", len(stored)).
		Msg("submission stored")

	response := dto.NewSubmissionResponse(saved)
	response.FileErrors = report.Messages()
	span.SetStatus(codes.Ok, "stored")
	return response, nil
}

func (s *submissionService) Get(ctx context.Context, taskID, userID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByTaskAndUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) Clear(ctx context.Context, taskID, userID uint) error {
	ctx, span := s.tracer.Start(ctx, "submission.clear")
	defer span.End()

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	cleared, err := s.submissions.Clear(ctx, taskID, userID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !cleared {
		return ErrNothingToClear
	}

	if s.events != nil {
		s.events.SubmissionCleared(ctx, taskID, userID)
	}

	// Re-derive completion after the reset. A lesson already flagged
	// complete stays complete: the evaluator skips it.
	s.evaluateCompletion(ctx, task.LessonID, userID)

	s.logger.Info().Uint("task_id", taskID).Uint("user_id", userID).Msg("submission cleared")
	return nil
}

func (s *submissionService) Review(ctx context.Context, taskID, userID uint, payload dto.SubmissionReviewRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrTaskNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByTaskAndUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.Status == models.SubmissionStatusPending {
		return dto.SubmissionResponse{}, ErrNotReviewable
	}

	reviewedAt := s.now()
	submission.Status = payload.Status
	submission.ReviewedBy = &payload.ReviewerID
	submission.ReviewedAt = &reviewedAt
	submission.Score = payload.Score
	if payload.ReviewNotes != nil {
		submission.ReviewNotes = *payload.ReviewNotes
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// Approval can be the change that satisfies the last required task.
	s.evaluateCompletion(ctx, task.LessonID, userID)

	s.logger.Info().
		Uint("task_id", taskID).
		Uint("user_id", userID).
		Str("verdict", payload.Status).
		Msg("submission reviewed")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) evaluateCompletion(ctx context.Context, lessonID, userID uint) {
	if s.completion == nil {
		return
	}
	if err := s.completion.Evaluate(ctx, lessonID, userID); err != nil {
		// The evaluator runs again on the next mutation; a failed pass is
		// logged, not surfaced.
		s.logger.Warn().Err(err).
			Uint("lesson_id", lessonID).
			Uint("user_id", userID).
			Msg("completion evaluation failed")
	}
}

func (s *submissionService) storeFiles(ctx context.Context, accepted []StagedFile, headers []*multipart.FileHeader) ([]models.SubmissionFile, error) {
	if len(accepted) == 0 {
		return nil, nil
	}
	if s.storage == nil {
		return nil, fmt.Errorf("file storage is not configured")
	}

	stored := make([]models.SubmissionFile, 0, len(accepted))
	for _, file := range accepted {
		url, err := s.storage.Upload(ctx, file.Name, headers[file.Index])
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", file.Name, err)
		}
		stored = append(stored, models.SubmissionFile{
			Name:      file.Name,
			URL:       url,
			SizeBytes: file.SizeBytes,
			Category:  file.Category,
		})
	}

	return stored, nil
}

func stageFiles(headers []*multipart.FileHeader) ([]StagedFile, error) {
	if len(headers) == 0 {
		return nil, nil
	}

	staged := make([]StagedFile, 0, len(headers))
	for i, header := range headers {
		mime, err := sniffMime(header)
		if err != nil {
			return nil, err
		}
		staged = append(staged, StagedFile{
			Index:     i,
			Name:      header.Filename,
			MimeType:  mime,
			SizeBytes: header.Size,
		})
	}

	return staged, nil
}

func sniffMime(header *multipart.FileHeader) (string, error) {
	handle, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer handle.Close()

	mime, err := mimetype.DetectReader(handle)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", header.Filename, err)
	}

	return mime.String(), nil
}
