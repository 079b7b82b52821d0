package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/repository"
)

// ErrProgressNotFound indicates the lesson has not been started by the user.
var ErrProgressNotFound = errors.New("lesson progress not found")

// ProgressService owns the per-learner lesson progress row: start events,
// accumulated time, and the monotonic completion flag.
type ProgressService interface {
	// Start creates the progress row on first call and is a no-op on every
	// later one; started_at is never reset.
	Start(ctx context.Context, lessonID, userID uint, payload dto.LessonProgressStartRequest) (dto.LessonProgressResponse, error)
	// Update records time spent and, when an assessment snapshot is
	// supplied, performs a manual completion.
	Update(ctx context.Context, lessonID, userID uint, payload dto.LessonProgressUpdateRequest) (dto.LessonProgressResponse, error)
	// Get returns the progress row, reading through the redis cache. The
	// boolean reports whether a row exists.
	Get(ctx context.Context, lessonID, userID uint) (dto.LessonProgressResponse, bool, error)
	// Complete flips the lesson to completed with the given snapshot. It is
	// a no-op when already completed; the boolean reports whether this call
	// performed the transition.
	Complete(ctx context.Context, lessonID, userID uint, snapshot models.CompletionSnapshot) (models.LessonProgress, bool, error)
}

type progressService struct {
	progress  repository.ProgressRepository
	lessons   repository.LessonRepository
	redis     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProgressService constructs a ProgressService instance. The redis client
// is optional; without it every read goes to the database.
func NewProgressService(progressRepo repository.ProgressRepository, lessonRepo repository.LessonRepository, redisClient *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &progressService{
		progress:  progressRepo,
		lessons:   lessonRepo,
		redis:     redisClient,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		now:       time.Now,
	}
}

func (s *progressService) Start(ctx context.Context, lessonID, userID uint, payload dto.LessonProgressStartRequest) (dto.LessonProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonProgressResponse{}, err
	}

	if _, err := s.lessons.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonProgressResponse{}, ErrLessonNotFound
		}
		return dto.LessonProgressResponse{}, err
	}

	row := models.LessonProgress{
		LessonID:  lessonID,
		UserID:    userID,
		CourseID:  payload.CourseID,
		StartedAt: s.now(),
	}

	created, err := s.progress.CreateIfAbsent(ctx, &row)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}
	if created {
		s.invalidate(ctx, lessonID, userID)
		s.logger.Info().Uint("lesson_id", lessonID).Uint("user_id", userID).Msg("lesson started")
	}

	progress, err := s.progress.GetByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		return dto.LessonProgressResponse{}, err
	}

	return dto.NewLessonProgressResponse(progress), nil
}

func (s *progressService) Update(ctx context.Context, lessonID, userID uint, payload dto.LessonProgressUpdateRequest) (dto.LessonProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonProgressResponse{}, err
	}

	progress, err := s.progress.GetByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonProgressResponse{}, ErrProgressNotFound
		}
		return dto.LessonProgressResponse{}, err
	}

	// Time spent only moves forward; a stale client cannot shrink it.
	if payload.TimeSpentMinutes > progress.TimeSpentMinutes {
		progress.TimeSpentMinutes = payload.TimeSpentMinutes
	}

	if payload.AssessmentData != nil && !progress.IsCompleted {
		completedAt := s.now()
		progress.IsCompleted = true
		progress.CompletedAt = &completedAt
		if err := progress.SetSnapshot(models.CompletionSnapshot{
			TasksCompleted: payload.AssessmentData.TasksCompleted,
			TotalTasks:     payload.AssessmentData.TotalTasks,
		}); err != nil {
			return dto.LessonProgressResponse{}, err
		}
		s.logger.Info().Uint("lesson_id", lessonID).Uint("user_id", userID).Msg("lesson manually completed")
	}

	if err := s.progress.Update(ctx, &progress); err != nil {
		return dto.LessonProgressResponse{}, err
	}
	s.invalidate(ctx, lessonID, userID)

	return dto.NewLessonProgressResponse(progress), nil
}

func (s *progressService) Get(ctx context.Context, lessonID, userID uint) (dto.LessonProgressResponse, bool, error) {
	key := s.cacheKey(lessonID, userID)
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, key).Result(); err == nil {
			var response dto.LessonProgressResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, true, nil
			}
		}
	}

	progress, err := s.progress.GetByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonProgressResponse{}, false, nil
		}
		return dto.LessonProgressResponse{}, false, err
	}

	response := dto.NewLessonProgressResponse(progress)
	if s.redis != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.redis.Set(ctx, key, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache lesson progress")
			}
		}
	}

	return response, true, nil
}

func (s *progressService) Complete(ctx context.Context, lessonID, userID uint, snapshot models.CompletionSnapshot) (models.LessonProgress, bool, error) {
	progress, err := s.progress.GetByLessonAndUser(ctx, lessonID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LessonProgress{}, false, err
		}
		// A submission can land before the progress row exists (e.g. the
		// start call lost a race). The completion must not be dropped.
		row := models.LessonProgress{LessonID: lessonID, UserID: userID, StartedAt: s.now()}
		if _, err := s.progress.CreateIfAbsent(ctx, &row); err != nil {
			return models.LessonProgress{}, false, err
		}
		progress, err = s.progress.GetByLessonAndUser(ctx, lessonID, userID)
		if err != nil {
			return models.LessonProgress{}, false, err
		}
	}

	if progress.IsCompleted {
		return progress, false, nil
	}

	completedAt := s.now()
	progress.IsCompleted = true
	progress.CompletedAt = &completedAt
	if err := progress.SetSnapshot(snapshot); err != nil {
		return models.LessonProgress{}, false, err
	}

	if err := s.progress.Update(ctx, &progress); err != nil {
		return models.LessonProgress{}, false, err
	}
	s.invalidate(ctx, lessonID, userID)

	return progress, true, nil
}

func (s *progressService) cacheKey(lessonID, userID uint) string {
	return fmt.Sprintf("edukite:lesson_progress:%d:%d", lessonID, userID)
}

func (s *progressService) invalidate(ctx context.Context, lessonID, userID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, s.cacheKey(lessonID, userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate lesson progress cache")
	}
}
