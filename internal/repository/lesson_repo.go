package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/models"
)

// LessonRepository reads lesson definitions supplied by the content service.
type LessonRepository interface {
	GetByID(ctx context.Context, id uint) (models.Lesson, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
}

type lessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository instantiates the repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).
		Preload("Tasks").
		First(&lesson, id).Error; err != nil {
		return models.Lesson{}, err
	}

	return lesson, nil
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}

	return lessons, nil
}

func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}
