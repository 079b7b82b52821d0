package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/models"
	"github.com/edukite/edukite-go-api/internal/observability"
	"github.com/edukite/edukite-go-api/internal/repository"
)

// ErrLessonNotFound indicates the referenced lesson does not exist.
var ErrLessonNotFound = errors.New("lesson not found")

// DraftService ensures every task in a lesson has a pending submission row
// for the learner before the lesson page binds to them.
type DraftService interface {
	// EnsureDrafts is idempotent: repeated or concurrent calls never create
	// a second row for the same (task, user) pair. The unique index on the
	// submission table is the mechanism; an insert conflict counts the task
	// as existing, not as a failure.
	EnsureDrafts(ctx context.Context, lessonID, userID uint) (dto.DraftInitResponse, error)
}

type draftService struct {
	lessons     repository.LessonRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewDraftService constructs a DraftService instance.
func NewDraftService(lessonRepo repository.LessonRepository, subRepo repository.SubmissionRepository, logger zerolog.Logger) DraftService {
	return &draftService{
		lessons:     lessonRepo,
		submissions: subRepo,
		logger:      logger.With().Str("component", "draft_service").Logger(),
	}
}

func (s *draftService) EnsureDrafts(ctx context.Context, lessonID, userID uint) (dto.DraftInitResponse, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DraftInitResponse{}, ErrLessonNotFound
		}
		return dto.DraftInitResponse{}, err
	}

	var response dto.DraftInitResponse
	for _, task := range lesson.Tasks {
		draft := models.TaskSubmission{
			TaskID: task.ID,
			UserID: userID,
			Status: models.SubmissionStatusPending,
		}

		created, err := s.submissions.CreateDraft(ctx, &draft)
		if err != nil {
			return dto.DraftInitResponse{}, err
		}

		if created {
			response.Created++
		} else {
			response.Existing++
		}
	}

	if response.Created > 0 {
		observability.DraftsCreated().Add(float64(response.Created))
	}

	s.logger.Debug().
		Uint("lesson_id", lessonID).
		Uint("user_id", userID).
		Int("created", response.Created).
		Int("existing", response.Existing).
		Msg("submission drafts ensured")

	return response, nil
}
