package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Submission lifecycle states.
const (
	// SubmissionStatusPending indicates a draft row with no content yet.
	SubmissionStatusPending = "pending"
	// SubmissionStatusSubmitted indicates content that satisfied the task's
	// submission mode.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusApproved indicates a reviewer accepted the work.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected indicates a reviewer declined the work.
	SubmissionStatusRejected = "rejected"
	// SubmissionStatusRevisionRequested indicates a reviewer asked for changes.
	SubmissionStatusRevisionRequested = "revision_requested"
)

// SubmissionFile captures the metadata of one uploaded evidence file. The
// binary itself lives in the external object store behind URL.
type SubmissionFile struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	Category  string `json:"category"`
}

// TaskSubmission is the single live record of a learner's work against one
// task. The unique index on (task_id, user_id) is what makes draft
// initialization and replace-on-submit safe to repeat.
type TaskSubmission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TaskID         uint           `gorm:"not null;uniqueIndex:idx_submission_task_user" json:"task_id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_submission_task_user" json:"user_id"`
	Status         string         `gorm:"size:32;not null" json:"status"`
	SubmissionText *string        `gorm:"type:text" json:"submission_text"`
	SubmissionData datatypes.JSON `json:"submission_data"`
	SubmittedAt    *time.Time     `json:"submitted_at"`
	ReviewedBy     *uint          `json:"reviewed_by"`
	ReviewedAt     *time.Time     `json:"reviewed_at"`
	Score          *float64       `json:"score"`
	ReviewNotes    string         `gorm:"type:text" json:"review_notes"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Task           Task           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// Satisfied reports whether the submission counts toward lesson completion.
// Only submitted and approved work qualifies.
func (s TaskSubmission) Satisfied() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusApproved
}

// Files decodes the stored file metadata list.
func (s TaskSubmission) Files() []SubmissionFile {
	if len(s.SubmissionData) == 0 {
		return nil
	}
	var files []SubmissionFile
	if err := json.Unmarshal(s.SubmissionData, &files); err != nil {
		return nil
	}
	return files
}

// SetFiles encodes the file metadata list onto the submission. A nil or
// empty list clears the column.
func (s *TaskSubmission) SetFiles(files []SubmissionFile) error {
	if len(files) == 0 {
		s.SubmissionData = nil
		return nil
	}
	encoded, err := json.Marshal(files)
	if err != nil {
		return err
	}
	s.SubmissionData = datatypes.JSON(encoded)
	return nil
}
