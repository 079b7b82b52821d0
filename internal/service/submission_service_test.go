package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/edukite/edukite-go-api/internal/dto"
	"github.com/edukite/edukite-go-api/internal/models"
)

func newSubmissionServiceForTest(subRepo *stubSubmissionRepo, taskRepo *stubTaskRepo, evaluator CompletionEvaluator, events EventPublisher) SubmissionService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewSubmissionService(subRepo, taskRepo, evaluator, nil, events, validate, testLogger())
}

func TestSubmitTextOnlyStoresSubmission(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	subRepo.taskLessons[7] = 3
	evaluator := &recordingEvaluator{}
	events := &recordingEvents{}
	svc := newSubmissionServiceForTest(subRepo, taskRepo, evaluator, events)

	response, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "my answer"}, nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.NotNil(t, response.SubmissionText)
	require.Equal(t, "my answer", *response.SubmissionText)
	require.NotNil(t, response.SubmittedAt)
	require.Equal(t, 1, subRepo.upsertCalls)
	require.Equal(t, 1, events.submitted)
	require.Equal(t, []uint{3}, evaluator.lessons)
}

func TestSubmitSanitizesMarkup(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	svc := newSubmissionServiceForTest(subRepo, taskRepo, &recordingEvaluator{}, nil)

	response, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "<b>bold</b> claim"}, nil)
	require.NoError(t, err)
	require.NotNil(t, response.SubmissionText)
	require.Equal(t, "bold claim", *response.SubmissionText)
}

func TestSubmitBothModeRejectsHalfCandidate(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeBoth},
	}}
	subRepo := newStubSubmissionRepo()
	events := &recordingEvents{}
	svc := newSubmissionServiceForTest(subRepo, taskRepo, &recordingEvaluator{}, events)

	_, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "text without files"}, nil)
	require.Error(t, err)

	var validation *SubmissionValidationError
	require.ErrorAs(t, err, &validation)
	require.False(t, validation.MissingText)
	require.True(t, validation.MissingFiles)

	// Nothing was written or published.
	require.Equal(t, 0, subRepo.upsertCalls)
	require.Equal(t, 0, events.submitted)
}

func TestSubmitEitherModeAllowsEmptyConfirmation(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeEither},
	}}
	subRepo := newStubSubmissionRepo()
	svc := newSubmissionServiceForTest(subRepo, taskRepo, &recordingEvaluator{}, nil)

	response, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{AllowEmpty: true}, nil)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.Nil(t, response.SubmissionText)
	require.Empty(t, response.Files)

	_, err = svc.Submit(context.Background(), 7, 43, dto.TaskSubmitRequest{}, nil)
	var validation *SubmissionValidationError
	require.ErrorAs(t, err, &validation)
	require.False(t, validation.MissingText)
	require.False(t, validation.MissingFiles)
}

func TestSubmitReplacesPreviousContent(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	svc := newSubmissionServiceForTest(subRepo, taskRepo, &recordingEvaluator{}, nil)

	first, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "first draft"}, nil)
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "final answer"}, nil)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "final answer", *second.SubmissionText)
}

func TestSubmitUnknownTask(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{}}
	svc := newSubmissionServiceForTest(newStubSubmissionRepo(), taskRepo, &recordingEvaluator{}, nil)

	_, err := svc.Submit(context.Background(), 99, 42, dto.TaskSubmitRequest{SubmissionText: "hello"}, nil)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestClearResetsRowAndReevaluates(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	subRepo.taskLessons[7] = 3
	evaluator := &recordingEvaluator{}
	events := &recordingEvents{}
	svc := newSubmissionServiceForTest(subRepo, taskRepo, evaluator, events)

	_, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "answer"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), 7, 42))
	require.Equal(t, 1, events.cleared)
	require.Equal(t, 2, evaluator.calls)

	row, err := subRepo.GetByTaskAndUser(context.Background(), 7, 42)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusPending, row.Status)
	require.Nil(t, row.SubmissionText)
	require.Nil(t, row.SubmittedAt)
}

func TestClearWithoutRow(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	svc := newSubmissionServiceForTest(newStubSubmissionRepo(), taskRepo, &recordingEvaluator{}, nil)

	err := svc.Clear(context.Background(), 7, 42)
	require.ErrorIs(t, err, ErrNothingToClear)
}

func TestReviewRequiresSubmittedContent(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	svc := newSubmissionServiceForTest(subRepo, taskRepo, &recordingEvaluator{}, nil)

	draft := models.TaskSubmission{TaskID: 7, UserID: 42, Status: models.SubmissionStatusPending}
	_, err := subRepo.CreateDraft(context.Background(), &draft)
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), 7, 42, dto.SubmissionReviewRequest{
		Status:     models.SubmissionStatusApproved,
		ReviewerID: 9,
	})
	require.ErrorIs(t, err, ErrNotReviewable)
}

func TestReviewApprovesSubmission(t *testing.T) {
	taskRepo := &stubTaskRepo{tasks: map[uint]models.Task{
		7: {ID: 7, LessonID: 3, SubmissionType: models.SubmissionTypeTextOnly},
	}}
	subRepo := newStubSubmissionRepo()
	subRepo.taskLessons[7] = 3
	evaluator := &recordingEvaluator{}
	svc := newSubmissionServiceForTest(subRepo, taskRepo, evaluator, nil)

	_, err := svc.Submit(context.Background(), 7, 42, dto.TaskSubmitRequest{SubmissionText: "answer"}, nil)
	require.NoError(t, err)

	score := 87.5
	response, err := svc.Review(context.Background(), 7, 42, dto.SubmissionReviewRequest{
		Status:     models.SubmissionStatusApproved,
		Score:      &score,
		ReviewerID: 9,
	})
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, response.Status)
	require.NotNil(t, response.ReviewedBy)
	require.Equal(t, uint(9), *response.ReviewedBy)
	require.NotNil(t, response.ReviewedAt)
	require.NotNil(t, response.Score)
	require.Equal(t, 87.5, *response.Score)
	require.Equal(t, 2, evaluator.calls)
}
