package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/repository"
)

// ErrSubmissionTypeLocked indicates an attempt to change a task's submission
// mode after learners have already submitted against it. Historical
// submissions were validated under the old rules and cannot be migrated.
var ErrSubmissionTypeLocked = errors.New("submission type cannot change once submissions exist")

// TaskService exposes the task catalog: the learner view of a lesson's tasks
// and the administrative definition of them.
type TaskService interface {
	ListForLesson(ctx context.Context, lessonID, userID uint) ([]dto.TaskWithSubmissionResponse, error)
	Create(ctx context.Context, lessonID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error)
	Update(ctx context.Context, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error)
}

type taskService struct {
	tasks       repository.TaskRepository
	lessons     repository.LessonRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(taskRepo repository.TaskRepository, lessonRepo repository.LessonRepository, subRepo repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) TaskService {
	return &taskService{
		tasks:       taskRepo,
		lessons:     lessonRepo,
		submissions: subRepo,
		validator:   validate,
		logger:      logger.With().Str("component", "task_service").Logger(),
	}
}

func (s *taskService) ListForLesson(ctx context.Context, lessonID, userID uint) ([]dto.TaskWithSubmissionResponse, error) {
	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	tasks, err := s.tasks.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		return nil, err
	}
	byTask := make(map[uint]models.TaskSubmission, len(submissions))
	for _, submission := range submissions {
		byTask[submission.TaskID] = submission
	}

	responses := make([]dto.TaskWithSubmissionResponse, 0, len(tasks))
	for _, task := range tasks {
		entry := dto.TaskWithSubmissionResponse{Task: dto.NewTaskResponse(task)}
		if submission, ok := byTask[task.ID]; ok {
			response := dto.NewSubmissionResponse(submission)
			entry.Submission = &response
		}
		responses = append(responses, entry)
	}

	return responses, nil
}

func (s *taskService) Create(ctx context.Context, lessonID uint, payload dto.TaskCreateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrLessonNotFound
		}
		return dto.TaskResponse{}, err
	}

	task := models.Task{
		LessonID:                   lessonID,
		Title:                      payload.Title,
		Description:                payload.Description,
		IsRequired:                 payload.IsRequired,
		Points:                     payload.Points,
		SubmissionType:             payload.SubmissionType,
		TextSubmissionEnabled:      payload.TextSubmissionEnabled,
		TextSubmissionInstructions: payload.TextSubmissionInstructions,
		MediaRequired:              payload.MediaRequired,
		AllowedMediaTypes:          payload.AllowedMediaTypes,
		MaxFilesCount:              payload.MaxFilesCount,
		MaxFileSizeMB:              payload.MaxFileSizeMB,
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Uint("lesson_id", lessonID).Msg("task created")
	return dto.NewTaskResponse(task), nil
}

func (s *taskService) Update(ctx context.Context, taskID uint, payload dto.TaskUpdateRequest) (dto.TaskResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TaskResponse{}, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskResponse{}, ErrTaskNotFound
		}
		return dto.TaskResponse{}, err
	}

	if payload.SubmissionType != nil && *payload.SubmissionType != task.SubmissionType {
		reviewable, err := s.submissions.CountReviewable(ctx, taskID)
		if err != nil {
			return dto.TaskResponse{}, err
		}
		if reviewable > 0 {
			return dto.TaskResponse{}, ErrSubmissionTypeLocked
		}
		task.SubmissionType = *payload.SubmissionType
	}

	if payload.Title != nil {
		task.Title = *payload.Title
	}
	if payload.Description != nil {
		task.Description = *payload.Description
	}
	if payload.IsRequired != nil {
		task.IsRequired = payload.IsRequired
	}
	if payload.Points != nil {
		task.Points = *payload.Points
	}
	if payload.TextSubmissionEnabled != nil {
		task.TextSubmissionEnabled = *payload.TextSubmissionEnabled
	}
	if payload.TextSubmissionInstructions != nil {
		task.TextSubmissionInstructions = *payload.TextSubmissionInstructions
	}
	if payload.MediaRequired != nil {
		task.MediaRequired = *payload.MediaRequired
	}
	if payload.AllowedMediaTypes != nil {
		task.AllowedMediaTypes = payload.AllowedMediaTypes
	}
	if payload.MaxFilesCount != nil {
		task.MaxFilesCount = *payload.MaxFilesCount
	}
	if payload.MaxFileSizeMB != nil {
		task.MaxFileSizeMB = *payload.MaxFileSizeMB
	}

	if err := s.tasks.Update(ctx, &task); err != nil {
		return dto.TaskResponse{}, err
	}

	s.logger.Info().Uint("task_id", task.ID).Msg("task updated")
	return dto.NewTaskResponse(task), nil
}
