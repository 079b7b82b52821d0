package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Submission modes a task can require.
const (
	SubmissionTypeTextOnly  = "text_only"
	SubmissionTypeMediaOnly = "media_only"
	SubmissionTypeBoth      = "both"
	SubmissionTypeEither    = "either"
)

// Media categories a task can allow for file evidence.
const (
	MediaCategoryImage    = "image"
	MediaCategoryVideo    = "video"
	MediaCategoryAudio    = "audio"
	MediaCategoryDocument = "document"
)

// Per-task upload limits applied when the task does not configure its own.
const (
	DefaultMaxFilesCount = 5
	DefaultMaxFileSizeMB = 200
)

// Task represents a unit of required or optional work attached to a lesson.
type Task struct {
	ID                         uint      `gorm:"primaryKey" json:"id"`
	LessonID                   uint      `gorm:"index;not null" json:"lesson_id"`
	Title                      string    `gorm:"size:255;not null" json:"title"`
	Description                string    `gorm:"type:text" json:"description"`
	IsRequired                 *bool     `json:"is_required"`
	Points                     int       `json:"points"`
	SubmissionType             string    `gorm:"size:32;not null" json:"submission_type"`
	TextSubmissionEnabled      bool      `json:"text_submission_enabled"`
	TextSubmissionInstructions string    `gorm:"type:text" json:"text_submission_instructions"`
	MediaRequired              bool      `json:"media_required"`
	MediaTypesRaw              string    `gorm:"column:allowed_media_types;type:text" json:"-"`
	AllowedMediaTypes          []string  `gorm:"-" json:"allowed_media_types"`
	MaxFilesCount              int       `json:"max_files_count"`
	MaxFileSizeMB              int       `json:"max_file_size_mb"`
	CreatedAt                  time.Time `json:"created_at"`
	UpdatedAt                  time.Time `json:"updated_at"`
}

// BeforeSave normalises the allowed media type list before persisting.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	t.MediaTypesRaw = encodeMediaTypes(t.AllowedMediaTypes)
	return nil
}

// AfterFind hydrates the allowed media type list after retrieval.
func (t *Task) AfterFind(tx *gorm.DB) error {
	t.AllowedMediaTypes = decodeMediaTypes(t.MediaTypesRaw)
	return nil
}

// Required reports whether the task counts toward lesson completion.
// Tasks default to required; only an explicit false opts out.
func (t Task) Required() bool {
	return t.IsRequired == nil || *t.IsRequired
}

// FileLimit returns the maximum number of files accepted per submission.
func (t Task) FileLimit() int {
	if t.MaxFilesCount <= 0 {
		return DefaultMaxFilesCount
	}
	return t.MaxFilesCount
}

// MaxFileSizeBytes returns the per-file size ceiling in bytes.
func (t Task) MaxFileSizeBytes() int64 {
	limitMB := t.MaxFileSizeMB
	if limitMB <= 0 {
		limitMB = DefaultMaxFileSizeMB
	}
	return int64(limitMB) * 1024 * 1024
}

// AllowsCategory reports whether files of the given media category are
// accepted. An empty list means all four categories are allowed.
func (t Task) AllowsCategory(category string) bool {
	if len(t.AllowedMediaTypes) == 0 {
		return true
	}
	for _, allowed := range t.AllowedMediaTypes {
		if allowed == category {
			return true
		}
	}
	return false
}

// MediaCategoryForMime maps a MIME type onto one of the four media
// categories. Anything that is not image, video or audio is a document.
func MediaCategoryForMime(mime string) string {
	lower := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(lower, "image/"):
		return MediaCategoryImage
	case strings.HasPrefix(lower, "video/"):
		return MediaCategoryVideo
	case strings.HasPrefix(lower, "audio/"):
		return MediaCategoryAudio
	default:
		return MediaCategoryDocument
	}
}

func encodeMediaTypes(types []string) string {
	if len(types) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(types))
	for _, mediaType := range types {
		trimmed := strings.TrimSpace(strings.ToLower(mediaType))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeMediaTypes(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	types := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		types = append(types, trimmed)
	}
	return types
}
