package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edukite/edukite-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type pairKey struct {
	first  uint
	second uint
}

type stubTaskRepo struct {
	tasks map[uint]models.Task
}

func (s *stubTaskRepo) ListByLesson(ctx context.Context, lessonID uint) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range s.tasks {
		if task.LessonID == lessonID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (s *stubTaskRepo) GetByID(ctx context.Context, id uint) (models.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return models.Task{}, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (s *stubTaskRepo) Create(ctx context.Context, task *models.Task) error {
	task.ID = uint(len(s.tasks) + 1)
	s.tasks[task.ID] = *task
	return nil
}

func (s *stubTaskRepo) Update(ctx context.Context, task *models.Task) error {
	s.tasks[task.ID] = *task
	return nil
}

type stubLessonRepo struct {
	lessons map[uint]models.Lesson
}

func (s *stubLessonRepo) GetByID(ctx context.Context, id uint) (models.Lesson, error) {
	lesson, ok := s.lessons[id]
	if !ok {
		return models.Lesson{}, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (s *stubLessonRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	for _, lesson := range s.lessons {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	return lessons, nil
}

func (s *stubLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	s.lessons[lesson.ID] = *lesson
	return nil
}

type stubSubmissionRepo struct {
	rows        map[pairKey]models.TaskSubmission
	taskLessons map[uint]uint
	nextID      uint
	upsertCalls int
	clearCalls  int
}

func newStubSubmissionRepo() *stubSubmissionRepo {
	return &stubSubmissionRepo{
		rows:        make(map[pairKey]models.TaskSubmission),
		taskLessons: make(map[uint]uint),
	}
}

func (s *stubSubmissionRepo) GetByTaskAndUser(ctx context.Context, taskID, userID uint) (models.TaskSubmission, error) {
	row, ok := s.rows[pairKey{taskID, userID}]
	if !ok {
		return models.TaskSubmission{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubSubmissionRepo) ListByLessonAndUser(ctx context.Context, lessonID, userID uint) ([]models.TaskSubmission, error) {
	var rows []models.TaskSubmission
	for key, row := range s.rows {
		if key.second == userID && s.taskLessons[key.first] == lessonID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *stubSubmissionRepo) CreateDraft(ctx context.Context, submission *models.TaskSubmission) (bool, error) {
	key := pairKey{submission.TaskID, submission.UserID}
	if _, exists := s.rows[key]; exists {
		return false, nil
	}
	s.nextID++
	submission.ID = s.nextID
	s.rows[key] = *submission
	return true, nil
}

func (s *stubSubmissionRepo) Upsert(ctx context.Context, submission *models.TaskSubmission) error {
	s.upsertCalls++
	key := pairKey{submission.TaskID, submission.UserID}
	if existing, ok := s.rows[key]; ok {
		submission.ID = existing.ID
	} else {
		s.nextID++
		submission.ID = s.nextID
	}
	s.rows[key] = *submission
	return nil
}

func (s *stubSubmissionRepo) Update(ctx context.Context, submission *models.TaskSubmission) error {
	s.rows[pairKey{submission.TaskID, submission.UserID}] = *submission
	return nil
}

func (s *stubSubmissionRepo) Clear(ctx context.Context, taskID, userID uint) (bool, error) {
	s.clearCalls++
	key := pairKey{taskID, userID}
	row, ok := s.rows[key]
	if !ok {
		return false, nil
	}
	row.Status = models.SubmissionStatusPending
	row.SubmissionText = nil
	row.SubmissionData = nil
	row.SubmittedAt = nil
	row.ReviewedBy = nil
	row.ReviewedAt = nil
	row.Score = nil
	row.ReviewNotes = ""
	s.rows[key] = row
	return true, nil
}

func (s *stubSubmissionRepo) CountReviewable(ctx context.Context, taskID uint) (int64, error) {
	var count int64
	for key, row := range s.rows {
		if key.first == taskID && row.Status != models.SubmissionStatusPending {
			count++
		}
	}
	return count, nil
}

type stubProgressRepo struct {
	rows   map[pairKey]models.LessonProgress
	nextID uint
}

func newStubProgressRepo() *stubProgressRepo {
	return &stubProgressRepo{rows: make(map[pairKey]models.LessonProgress)}
}

func (s *stubProgressRepo) GetByLessonAndUser(ctx context.Context, lessonID, userID uint) (models.LessonProgress, error) {
	row, ok := s.rows[pairKey{lessonID, userID}]
	if !ok {
		return models.LessonProgress{}, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubProgressRepo) CreateIfAbsent(ctx context.Context, progress *models.LessonProgress) (bool, error) {
	key := pairKey{progress.LessonID, progress.UserID}
	if _, exists := s.rows[key]; exists {
		return false, nil
	}
	s.nextID++
	progress.ID = s.nextID
	s.rows[key] = *progress
	return true, nil
}

func (s *stubProgressRepo) Update(ctx context.Context, progress *models.LessonProgress) error {
	s.rows[pairKey{progress.LessonID, progress.UserID}] = *progress
	return nil
}

type recordingEvents struct {
	submitted int
	cleared   int
	completed int
}

func (r *recordingEvents) SubmissionSubmitted(ctx context.Context, submission models.TaskSubmission) {
	r.submitted++
}

func (r *recordingEvents) SubmissionCleared(ctx context.Context, taskID, userID uint) {
	r.cleared++
}

func (r *recordingEvents) LessonCompleted(ctx context.Context, progress models.LessonProgress) {
	r.completed++
}

type recordingEvaluator struct {
	calls   int
	lessons []uint
}

func (r *recordingEvaluator) Evaluate(ctx context.Context, lessonID, userID uint) error {
	r.calls++
	r.lessons = append(r.lessons, lessonID)
	return nil
}
