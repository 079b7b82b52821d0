package dto

import (
	"time"

	"github.com/edukite/edukite-go-api/internal/models"
)

// TaskCreateRequest defines a new task attached to a lesson.
type TaskCreateRequest struct {
	Title                      string   `json:"title" validate:"required,min=3"`
	Description                string   `json:"description"`
	IsRequired                 *bool    `json:"is_required"`
	Points                     int      `json:"points" validate:"gte=0"`
	SubmissionType             string   `json:"submission_type" validate:"required,oneof=text_only media_only both either"`
	TextSubmissionEnabled      bool     `json:"text_submission_enabled"`
	TextSubmissionInstructions string   `json:"text_submission_instructions"`
	MediaRequired              bool     `json:"media_required"`
	AllowedMediaTypes          []string `json:"allowed_media_types" validate:"omitempty,dive,oneof=image video audio document"`
	MaxFilesCount              int      `json:"max_files_count" validate:"gte=0"`
	MaxFileSizeMB              int      `json:"max_file_size_mb" validate:"gte=0"`
}

// TaskUpdateRequest patches an existing task definition. The submission type
// is immutable once learners have submitted against the task.
type TaskUpdateRequest struct {
	Title                      *string  `json:"title" validate:"omitempty,min=3"`
	Description                *string  `json:"description"`
	IsRequired                 *bool    `json:"is_required"`
	Points                     *int     `json:"points" validate:"omitempty,gte=0"`
	SubmissionType             *string  `json:"submission_type" validate:"omitempty,oneof=text_only media_only both either"`
	TextSubmissionEnabled      *bool    `json:"text_submission_enabled"`
	TextSubmissionInstructions *string  `json:"text_submission_instructions"`
	MediaRequired              *bool    `json:"media_required"`
	AllowedMediaTypes          []string `json:"allowed_media_types" validate:"omitempty,dive,oneof=image video audio document"`
	MaxFilesCount              *int     `json:"max_files_count" validate:"omitempty,gte=0"`
	MaxFileSizeMB              *int     `json:"max_file_size_mb" validate:"omitempty,gte=0"`
}

// TaskResponse is returned to API clients when viewing task definitions.
type TaskResponse struct {
	ID                         uint      `json:"id"`
	LessonID                   uint      `json:"lesson_id"`
	Title                      string    `json:"title"`
	Description                string    `json:"description"`
	IsRequired                 bool      `json:"is_required"`
	Points                     int       `json:"points"`
	SubmissionType             string    `json:"submission_type"`
	TextSubmissionEnabled      bool      `json:"text_submission_enabled"`
	TextSubmissionInstructions string    `json:"text_submission_instructions"`
	MediaRequired              bool      `json:"media_required"`
	AllowedMediaTypes          []string  `json:"allowed_media_types"`
	MaxFilesCount              int       `json:"max_files_count"`
	MaxFileSizeMB              int       `json:"max_file_size_mb"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// TaskWithSubmissionResponse pairs a task with the caller's own submission
// state, so the lesson page binds to one payload.
type TaskWithSubmissionResponse struct {
	Task       TaskResponse        `json:"task"`
	Submission *SubmissionResponse `json:"submission"`
}

// NewTaskResponse converts a Task model into a DTO.
func NewTaskResponse(model models.Task) TaskResponse {
	return TaskResponse{
		ID:                         model.ID,
		LessonID:                   model.LessonID,
		Title:                      model.Title,
		Description:                model.Description,
		IsRequired:                 model.Required(),
		Points:                     model.Points,
		SubmissionType:             model.SubmissionType,
		TextSubmissionEnabled:      model.TextSubmissionEnabled,
		TextSubmissionInstructions: model.TextSubmissionInstructions,
		MediaRequired:              model.MediaRequired,
		AllowedMediaTypes:          model.AllowedMediaTypes,
		MaxFilesCount:              model.FileLimit(),
		MaxFileSizeMB:              int(model.MaxFileSizeBytes() / (1024 * 1024)),
		CreatedAt:                  model.CreatedAt,
		UpdatedAt:                  model.UpdatedAt,
	}
}
