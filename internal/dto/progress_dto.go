package dto

import (
	"time"

	"github.com/edukite/edukite-go-api/internal/models"
)

// DraftInitResponse reports how many submission drafts the call created
// versus how many already existed. Repeated calls converge on all-existing.
type DraftInitResponse struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// LessonProgressStartRequest opens (or re-reads) the progress row.
type LessonProgressStartRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// AssessmentData is the manual completion snapshot supplied by the client.
type AssessmentData struct {
	TasksCompleted int `json:"tasks_completed" validate:"gte=0"`
	TotalTasks     int `json:"total_tasks" validate:"gte=0"`
}

// LessonProgressUpdateRequest records time spent and optionally forces a
// manual completion snapshot write.
type LessonProgressUpdateRequest struct {
	TimeSpentMinutes int             `json:"time_spent_minutes" validate:"gte=0"`
	AssessmentData   *AssessmentData `json:"assessment_data"`
}

// LessonProgressResponse is returned to API clients when viewing progress.
type LessonProgressResponse struct {
	ID               uint                       `json:"id"`
	LessonID         uint                       `json:"lesson_id"`
	UserID           uint                       `json:"user_id"`
	CourseID         uint                       `json:"course_id"`
	StartedAt        time.Time                  `json:"started_at"`
	TimeSpentMinutes int                        `json:"time_spent_minutes"`
	IsCompleted      bool                       `json:"is_completed"`
	CompletedAt      *time.Time                 `json:"completed_at"`
	Attempts         int                        `json:"attempts"`
	Snapshot         *models.CompletionSnapshot `json:"assessment_data"`
}

// NewLessonProgressResponse converts a LessonProgress model into a DTO.
func NewLessonProgressResponse(model models.LessonProgress) LessonProgressResponse {
	return LessonProgressResponse{
		ID:               model.ID,
		LessonID:         model.LessonID,
		UserID:           model.UserID,
		CourseID:         model.CourseID,
		StartedAt:        model.StartedAt,
		TimeSpentMinutes: model.TimeSpentMinutes,
		IsCompleted:      model.IsCompleted,
		CompletedAt:      model.CompletedAt,
		Attempts:         model.Attempts,
		Snapshot:         model.Snapshot(),
	}
}
