package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edukite/edukite-go-api/internal/models"
)

func TestGateFilesCountCap(t *testing.T) {
	task := models.Task{SubmissionType: models.SubmissionTypeMediaOnly, MaxFilesCount: 5}

	files := make([]StagedFile, 0, 7)
	for i := 0; i < 7; i++ {
		files = append(files, StagedFile{
			Index:     i,
			Name:      "photo.jpg",
			MimeType:  "image/jpeg",
			SizeBytes: 1024,
		})
	}

	report := GateFiles(task, files)
	require.Len(t, report.Accepted, 5)
	require.Len(t, report.Rejected, 2)
	for _, rejected := range report.Rejected {
		require.Equal(t, GateReasonCount, rejected.Reason)
	}
	require.Len(t, report.Messages(), 2)
}

func TestGateFilesSizeCeiling(t *testing.T) {
	task := models.Task{SubmissionType: models.SubmissionTypeMediaOnly, MaxFileSizeMB: 200}

	report := GateFiles(task, []StagedFile{
		{Index: 0, Name: "small.png", MimeType: "image/png", SizeBytes: 10 * 1024 * 1024},
		{Index: 1, Name: "huge.png", MimeType: "image/png", SizeBytes: 300 * 1024 * 1024},
	})

	require.Len(t, report.Accepted, 1)
	require.Equal(t, "small.png", report.Accepted[0].Name)
	require.Len(t, report.Rejected, 1)
	require.Equal(t, GateReasonSize, report.Rejected[0].Reason)
}

func TestGateFilesCategoryRestriction(t *testing.T) {
	task := models.Task{
		SubmissionType:    models.SubmissionTypeMediaOnly,
		AllowedMediaTypes: []string{models.MediaCategoryImage, models.MediaCategoryVideo},
	}

	report := GateFiles(task, []StagedFile{
		{Index: 0, Name: "clip.mp4", MimeType: "video/mp4", SizeBytes: 1024},
		{Index: 1, Name: "notes.pdf", MimeType: "application/pdf", SizeBytes: 1024},
		{Index: 2, Name: "voice.mp3", MimeType: "audio/mpeg", SizeBytes: 1024},
	})

	require.Len(t, report.Accepted, 1)
	require.Equal(t, models.MediaCategoryVideo, report.Accepted[0].Category)
	require.Len(t, report.Rejected, 2)
	for _, rejected := range report.Rejected {
		require.Equal(t, GateReasonCategory, rejected.Reason)
	}
}

func TestGateFilesEmptyAllowedListAcceptsEverything(t *testing.T) {
	task := models.Task{SubmissionType: models.SubmissionTypeMediaOnly}

	report := GateFiles(task, []StagedFile{
		{Index: 0, Name: "a.png", MimeType: "image/png", SizeBytes: 1},
		{Index: 1, Name: "b.mp4", MimeType: "video/mp4", SizeBytes: 1},
		{Index: 2, Name: "c.mp3", MimeType: "audio/mpeg", SizeBytes: 1},
		{Index: 3, Name: "d.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", SizeBytes: 1},
	})

	require.Len(t, report.Accepted, 4)
	require.Empty(t, report.Rejected)
	require.Equal(t, models.MediaCategoryDocument, report.Accepted[3].Category)
}

func TestGateFilesDefaultsApplyWhenUnconfigured(t *testing.T) {
	task := models.Task{SubmissionType: models.SubmissionTypeMediaOnly}

	files := make([]StagedFile, 0, models.DefaultMaxFilesCount+1)
	for i := 0; i <= models.DefaultMaxFilesCount; i++ {
		files = append(files, StagedFile{Index: i, Name: "f.png", MimeType: "image/png", SizeBytes: 1})
	}

	report := GateFiles(task, files)
	require.Len(t, report.Accepted, models.DefaultMaxFilesCount)
	require.Len(t, report.Rejected, 1)
}
