package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/models"
)

func setupSubmissionTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Lesson{}, &models.Task{}, &models.TaskSubmission{}))
	return db
}

func seedTask(t *testing.T, db *gorm.DB, id, lessonID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Lesson{ID: lessonID, CourseID: 1, Title: "Lesson"}).Error)
	require.NoError(t, db.Create(&models.Task{ID: id, LessonID: lessonID, Title: "Task", SubmissionType: models.SubmissionTypeTextOnly}).Error)
}

func TestCreateDraftConflictKeepsExistingRow(t *testing.T) {
	db := setupSubmissionTestDB(t, "submission_draft")
	seedTask(t, db, 10, 3)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	first := models.TaskSubmission{TaskID: 10, UserID: 42, Status: models.SubmissionStatusPending}
	created, err := repo.CreateDraft(ctx, &first)
	require.NoError(t, err)
	require.True(t, created)

	second := models.TaskSubmission{TaskID: 10, UserID: 42, Status: models.SubmissionStatusPending}
	created, err = repo.CreateDraft(ctx, &second)
	require.NoError(t, err)
	require.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.TaskSubmission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUpsertOverwritesLiveRow(t *testing.T) {
	db := setupSubmissionTestDB(t, "submission_upsert")
	seedTask(t, db, 10, 3)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	draft := models.TaskSubmission{TaskID: 10, UserID: 42, Status: models.SubmissionStatusPending}
	created, err := repo.CreateDraft(ctx, &draft)
	require.NoError(t, err)
	require.True(t, created)

	text := "final answer"
	submittedAt := time.Now()
	submission := models.TaskSubmission{
		TaskID:         10,
		UserID:         42,
		Status:         models.SubmissionStatusSubmitted,
		SubmissionText: &text,
		SubmittedAt:    &submittedAt,
	}
	require.NoError(t, submission.SetFiles([]models.SubmissionFile{
		{Name: "evidence.png", URL: "https://cdn.example.com/evidence.png", SizeBytes: 2048, Category: models.MediaCategoryImage},
	}))
	require.NoError(t, repo.Upsert(ctx, &submission))

	saved, err := repo.GetByTaskAndUser(ctx, 10, 42)
	require.NoError(t, err)
	require.Equal(t, draft.ID, saved.ID, "upsert must reuse the draft row")
	require.Equal(t, models.SubmissionStatusSubmitted, saved.Status)
	require.Equal(t, "final answer", *saved.SubmissionText)
	require.Len(t, saved.Files(), 1)

	// A later upsert replaces content wholesale, including dropping files.
	replacement := models.TaskSubmission{
		TaskID:      10,
		UserID:      42,
		Status:      models.SubmissionStatusSubmitted,
		SubmittedAt: &submittedAt,
	}
	newText := "revised answer"
	replacement.SubmissionText = &newText
	require.NoError(t, repo.Upsert(ctx, &replacement))

	saved, err = repo.GetByTaskAndUser(ctx, 10, 42)
	require.NoError(t, err)
	require.Equal(t, draft.ID, saved.ID)
	require.Equal(t, "revised answer", *saved.SubmissionText)
	require.Empty(t, saved.Files())
}

func TestClearResetsRowWithoutDeleting(t *testing.T) {
	db := setupSubmissionTestDB(t, "submission_clear")
	seedTask(t, db, 10, 3)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	text := "answer"
	submittedAt := time.Now()
	score := 90.0
	reviewer := uint(9)
	submission := models.TaskSubmission{
		TaskID:         10,
		UserID:         42,
		Status:         models.SubmissionStatusApproved,
		SubmissionText: &text,
		SubmittedAt:    &submittedAt,
		ReviewedBy:     &reviewer,
		ReviewedAt:     &submittedAt,
		Score:          &score,
		ReviewNotes:    "solid work",
	}
	require.NoError(t, repo.Upsert(ctx, &submission))

	cleared, err := repo.Clear(ctx, 10, 42)
	require.NoError(t, err)
	require.True(t, cleared)

	saved, err := repo.GetByTaskAndUser(ctx, 10, 42)
	require.NoError(t, err)
	require.Equal(t, submission.ID, saved.ID, "clear keeps the row")
	require.Equal(t, models.SubmissionStatusPending, saved.Status)
	require.Nil(t, saved.SubmissionText)
	require.Nil(t, saved.SubmittedAt)
	require.Nil(t, saved.ReviewedBy)
	require.Nil(t, saved.Score)
	require.Empty(t, saved.ReviewNotes)

	cleared, err = repo.Clear(ctx, 10, 99)
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestListByLessonAndUserScopesToLesson(t *testing.T) {
	db := setupSubmissionTestDB(t, "submission_list")
	seedTask(t, db, 10, 3)
	require.NoError(t, db.Create(&models.Lesson{ID: 4, CourseID: 1, Title: "Other"}).Error)
	require.NoError(t, db.Create(&models.Task{ID: 20, LessonID: 4, Title: "Elsewhere", SubmissionType: models.SubmissionTypeTextOnly}).Error)

	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	for _, row := range []models.TaskSubmission{
		{TaskID: 10, UserID: 42, Status: models.SubmissionStatusSubmitted},
		{TaskID: 20, UserID: 42, Status: models.SubmissionStatusSubmitted},
		{TaskID: 10, UserID: 77, Status: models.SubmissionStatusSubmitted},
	} {
		row := row
		created, err := repo.CreateDraft(ctx, &row)
		require.NoError(t, err)
		require.True(t, created)
	}

	rows, err := repo.ListByLessonAndUser(ctx, 3, 42)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, uint(10), rows[0].TaskID)
	require.Equal(t, uint(42), rows[0].UserID)
}

func TestCountReviewableIgnoresDrafts(t *testing.T) {
	db := setupSubmissionTestDB(t, "submission_count")
	seedTask(t, db, 10, 3)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	for _, row := range []models.TaskSubmission{
		{TaskID: 10, UserID: 1, Status: models.SubmissionStatusPending},
		{TaskID: 10, UserID: 2, Status: models.SubmissionStatusSubmitted},
		{TaskID: 10, UserID: 3, Status: models.SubmissionStatusApproved},
	} {
		row := row
		_, err := repo.CreateDraft(ctx, &row)
		require.NoError(t, err)
	}

	count, err := repo.CountReviewable(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}
