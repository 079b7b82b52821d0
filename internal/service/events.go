package service

import (
	"context"

	"github.com/edukite/edukite-go-api/internal/models"
)

// EventPublisher notifies downstream consumers about engine mutations.
// Implementations must be safe to call with a lost broker connection;
// publishing is best effort and never fails a request.
type EventPublisher interface {
	SubmissionSubmitted(ctx context.Context, submission models.TaskSubmission)
	SubmissionCleared(ctx context.Context, taskID, userID uint)
	LessonCompleted(ctx context.Context, progress models.LessonProgress)
}
