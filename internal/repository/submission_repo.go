package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edukite/edukite-go-api/internal/models"
)

// SubmissionRepository owns the single live submission row per (task, user).
type SubmissionRepository interface {
	GetByTaskAndUser(ctx context.Context, taskID, userID uint) (models.TaskSubmission, error)
	ListByLessonAndUser(ctx context.Context, lessonID, userID uint) ([]models.TaskSubmission, error)
	// CreateDraft inserts a pending row and reports whether a new row was
	// created. A uniqueness conflict is not an error: the existing row wins.
	CreateDraft(ctx context.Context, submission *models.TaskSubmission) (bool, error)
	// Upsert fully overwrites the live row for (task_id, user_id), creating
	// it when absent.
	Upsert(ctx context.Context, submission *models.TaskSubmission) error
	Update(ctx context.Context, submission *models.TaskSubmission) error
	// Clear resets the row to a pending draft with no content. It reports
	// whether a row existed to clear. The row itself is kept.
	Clear(ctx context.Context, taskID, userID uint) (bool, error)
	CountReviewable(ctx context.Context, taskID uint) (int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByTaskAndUser(ctx context.Context, taskID, userID uint) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Where("user_id = ?", userID).
		First(&submission).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByLessonAndUser(ctx context.Context, lessonID, userID uint) ([]models.TaskSubmission, error) {
	var submissions []models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.id = task_submissions.task_id").
		Where("tasks.lesson_id = ?", lessonID).
		Where("task_submissions.user_id = ?", userID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) CreateDraft(ctx context.Context, submission *models.TaskSubmission) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) Upsert(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status",
				"submission_text",
				"submission_data",
				"submitted_at",
				"reviewed_by",
				"reviewed_at",
				"score",
				"review_notes",
				"updated_at",
			}),
		}).
		Create(submission).Error
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) Clear(ctx context.Context, taskID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("task_id = ?", taskID).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":          models.SubmissionStatusPending,
			"submission_text": nil,
			"submission_data": nil,
			"submitted_at":    nil,
			"reviewed_by":     nil,
			"reviewed_at":     nil,
			"score":           nil,
			"review_notes":    "",
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *submissionRepository) CountReviewable(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("task_id = ?", taskID).
		Where("status <> ?", models.SubmissionStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
