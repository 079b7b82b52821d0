package dto

import (
	"time"

	"github.com/edukite/edukite-go-api/internal/models"
)

// TaskSubmitRequest carries the learner's candidate content. The JSON body
// form is used for the zero-content "mark complete" path of either-mode
// tasks; multipart submissions map the same fields from form values.
type TaskSubmitRequest struct {
	SubmissionText string `json:"submission_text" form:"submission_text"`
	AllowEmpty     bool   `json:"allow_empty" form:"allow_empty"`
	CourseID       uint   `json:"course_id" form:"course_id"`
	LessonID       uint   `json:"lesson_id" form:"lesson_id"`
}

// SubmissionReviewRequest records a reviewer verdict on submitted work.
// ReviewerID is taken from the authenticated identity, not the body.
type SubmissionReviewRequest struct {
	Status      string   `json:"status" validate:"required,oneof=approved rejected revision_requested"`
	Score       *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	ReviewNotes *string  `json:"review_notes"`
	ReviewerID  uint     `json:"-" validate:"required,gt=0"`
}

// SubmissionFileResponse serializes one stored evidence file.
type SubmissionFileResponse struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	Category  string `json:"category"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
// FileErrors lists files the upload gate turned away; their presence does
// not invalidate the accepted subset.
type SubmissionResponse struct {
	ID             uint                     `json:"id"`
	TaskID         uint                     `json:"task_id"`
	UserID         uint                     `json:"user_id"`
	Status         string                   `json:"status"`
	SubmissionText *string                  `json:"submission_text"`
	Files          []SubmissionFileResponse `json:"files"`
	SubmittedAt    *time.Time               `json:"submitted_at"`
	ReviewedBy     *uint                    `json:"reviewed_by"`
	ReviewedAt     *time.Time               `json:"reviewed_at"`
	Score          *float64                 `json:"score"`
	ReviewNotes    string                   `json:"review_notes"`
	FileErrors     []string                 `json:"file_errors,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// NewSubmissionResponse converts a TaskSubmission model into a DTO.
func NewSubmissionResponse(model models.TaskSubmission) SubmissionResponse {
	response := SubmissionResponse{
		ID:             model.ID,
		TaskID:         model.TaskID,
		UserID:         model.UserID,
		Status:         model.Status,
		SubmissionText: model.SubmissionText,
		SubmittedAt:    model.SubmittedAt,
		ReviewedBy:     model.ReviewedBy,
		ReviewedAt:     model.ReviewedAt,
		Score:          model.Score,
		ReviewNotes:    model.ReviewNotes,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	files := model.Files()
	if len(files) > 0 {
		response.Files = make([]SubmissionFileResponse, 0, len(files))
		for _, file := range files {
			response.Files = append(response.Files, SubmissionFileResponse{
				Name:      file.Name,
				URL:       file.URL,
				SizeBytes: file.SizeBytes,
				Category:  file.Category,
			})
		}
	}

	return response
}
