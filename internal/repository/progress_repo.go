package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edukite/edukite-go-api/internal/models"
)

// ProgressRepository owns the single progress row per (lesson, user).
type ProgressRepository interface {
	GetByLessonAndUser(ctx context.Context, lessonID, userID uint) (models.LessonProgress, error)
	// CreateIfAbsent inserts the row unless one already exists, reporting
	// whether a new row was created. Existing rows are left untouched so a
	// repeated start never resets started_at.
	CreateIfAbsent(ctx context.Context, progress *models.LessonProgress) (bool, error)
	Update(ctx context.Context, progress *models.LessonProgress) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByLessonAndUser(ctx context.Context, lessonID, userID uint) (models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Where("user_id = ?", userID).
		First(&progress).Error; err != nil {
		return models.LessonProgress{}, err
	}

	return progress, nil
}

func (r *progressRepository) CreateIfAbsent(ctx context.Context, progress *models.LessonProgress) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lesson_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(progress)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *progressRepository) Update(ctx context.Context, progress *models.LessonProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}
