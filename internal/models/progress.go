package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// CompletionSnapshot records which tasks were satisfied at the moment the
// lesson was marked complete. Kept for audit.
type CompletionSnapshot struct {
	TasksCompleted   int    `json:"tasks_completed"`
	TotalTasks       int    `json:"total_tasks"`
	SatisfiedTaskIDs []uint `json:"satisfied_task_ids,omitempty"`
}

// LessonProgress is the single progress record for one learner in one
// lesson. Completion is monotonic: once IsCompleted is set, the engine never
// flips it back.
type LessonProgress struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	LessonID         uint           `gorm:"not null;uniqueIndex:idx_progress_lesson_user" json:"lesson_id"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_progress_lesson_user" json:"user_id"`
	CourseID         uint           `gorm:"index" json:"course_id"`
	StartedAt        time.Time      `json:"started_at"`
	TimeSpentMinutes int            `json:"time_spent_minutes"`
	IsCompleted      bool           `json:"is_completed"`
	CompletedAt      *time.Time     `json:"completed_at"`
	Attempts         int            `json:"attempts"`
	AssessmentData   datatypes.JSON `json:"assessment_data"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Snapshot decodes the stored completion snapshot, if any.
func (p LessonProgress) Snapshot() *CompletionSnapshot {
	if len(p.AssessmentData) == 0 {
		return nil
	}
	var snapshot CompletionSnapshot
	if err := json.Unmarshal(p.AssessmentData, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

// SetSnapshot encodes the completion snapshot onto the progress row.
func (p *LessonProgress) SetSnapshot(snapshot CompletionSnapshot) error {
	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	p.AssessmentData = datatypes.JSON(encoded)
	return nil
}
