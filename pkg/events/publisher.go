package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/edukite/edukite-go-api/internal/middleware"
	"github.com/edukite/edukite-go-api/internal/models"
)

// Publisher emits engine lifecycle events over NATS. A nil Publisher is
// valid and drops all events, so callers never need to branch on whether
// eventing is configured.
type Publisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

type envelope struct {
	EventID       string      `json:"event_id"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Payload       interface{} `json:"payload"`
}

type submissionPayload struct {
	TaskID      uint   `json:"task_id"`
	UserID      uint   `json:"user_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

type clearedPayload struct {
	TaskID uint `json:"task_id"`
	UserID uint `json:"user_id"`
}

type completionPayload struct {
	LessonID    uint   `json:"lesson_id"`
	UserID      uint   `json:"user_id"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// Connect dials the broker and returns a ready publisher.
func Connect(url, subjectBase string, logger zerolog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &Publisher{
		conn:        conn,
		subjectBase: strings.Trim(subjectBase, "."),
		logger:      logger.With().Str("component", "events").Logger(),
	}, nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// SubmissionSubmitted announces a stored submission.
func (p *Publisher) SubmissionSubmitted(ctx context.Context, submission models.TaskSubmission) {
	payload := submissionPayload{
		TaskID: submission.TaskID,
		UserID: submission.UserID,
		Status: submission.Status,
	}
	if submission.SubmittedAt != nil {
		payload.SubmittedAt = submission.SubmittedAt.UTC().Format(time.RFC3339)
	}

	p.publish(ctx, "submission.submitted", payload)
}

// SubmissionCleared announces a submission reset to pending.
func (p *Publisher) SubmissionCleared(ctx context.Context, taskID, userID uint) {
	p.publish(ctx, "submission.cleared", clearedPayload{TaskID: taskID, UserID: userID})
}

// LessonCompleted announces a lesson transitioning to completed.
func (p *Publisher) LessonCompleted(ctx context.Context, progress models.LessonProgress) {
	payload := completionPayload{
		LessonID: progress.LessonID,
		UserID:   progress.UserID,
	}
	if progress.CompletedAt != nil {
		payload.CompletedAt = progress.CompletedAt.UTC().Format(time.RFC3339)
	}

	p.publish(ctx, "lesson.completed", payload)
}

func (p *Publisher) publish(ctx context.Context, suffix string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	event := envelope{
		EventID:       uuid.NewString(),
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
		OccurredAt:    time.Now().UTC(),
		Payload:       payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("suffix", suffix).Msg("failed to encode event")
		return
	}

	subject := suffix
	if p.subjectBase != "" {
		subject = p.subjectBase + "." + suffix
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
