package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/observability"
	"github.com/edukite/edukite-go-api/internal/repository"
)

// CompletionEvaluator derives the lesson completion flag from the aggregate
// state of the lesson's task submissions. It runs after every submission
// mutation; a slightly stale read is fine because the next mutation runs it
// again.
type CompletionEvaluator interface {
	Evaluate(ctx context.Context, lessonID, userID uint) error
}

type completionEvaluator struct {
	tasks        repository.TaskRepository
	submissions  repository.SubmissionRepository
	progressRepo repository.ProgressRepository
	progress     ProgressService
	events       EventPublisher
	logger       zerolog.Logger
}

// NewCompletionEvaluator constructs a CompletionEvaluator instance.
func NewCompletionEvaluator(taskRepo repository.TaskRepository, subRepo repository.SubmissionRepository, progressRepo repository.ProgressRepository, progress ProgressService, events EventPublisher, logger zerolog.Logger) CompletionEvaluator {
	return &completionEvaluator{
		tasks:        taskRepo,
		submissions:  subRepo,
		progressRepo: progressRepo,
		progress:     progress,
		events:       events,
		logger:       logger.With().Str("component", "completion_evaluator").Logger(),
	}
}

func (e *completionEvaluator) Evaluate(ctx context.Context, lessonID, userID uint) error {
	observability.CompletionEvaluations().Inc()

	// Completion is monotonic: once achieved it is never re-derived, so a
	// clear on a completed lesson cannot reopen it.
	current, err := e.progressRepo.GetByLessonAndUser(ctx, lessonID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && current.IsCompleted {
		return nil
	}

	tasks, err := e.tasks.ListByLesson(ctx, lessonID)
	if err != nil {
		return err
	}

	required := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Required() {
			required = append(required, task)
		}
	}

	// A lesson with no required tasks is never auto-completed; it takes an
	// explicit manual completion call.
	if len(required) == 0 {
		return nil
	}

	submissions, err := e.submissions.ListByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		return err
	}
	byTask := make(map[uint]models.TaskSubmission, len(submissions))
	for _, submission := range submissions {
		byTask[submission.TaskID] = submission
	}

	satisfied := make([]uint, 0, len(required))
	for _, task := range required {
		submission, ok := byTask[task.ID]
		if !ok || !submission.Satisfied() {
			return nil
		}
		satisfied = append(satisfied, task.ID)
	}

	snapshot := models.CompletionSnapshot{
		TasksCompleted:   len(satisfied),
		TotalTasks:       len(required),
		SatisfiedTaskIDs: satisfied,
	}

	progress, completed, err := e.progress.Complete(ctx, lessonID, userID, snapshot)
	if err != nil {
		return err
	}
	if !completed {
		return nil
	}

	observability.LessonsCompleted().Inc()
	if e.events != nil {
		e.events.LessonCompleted(ctx, progress)
	}

	e.logger.Info().
		Uint("lesson_id", lessonID).
		Uint("user_id", userID).
		Int("required_tasks", len(required)).
		Msg("lesson completed")

	return nil
}
