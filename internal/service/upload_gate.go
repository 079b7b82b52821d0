package service

import (
	"fmt"

	"github.com/edukite/edukite-go-api/internal/models"
)

// Reasons a file can be turned away by the upload gate.
const (
	GateReasonCount    = "count"
	GateReasonSize     = "size"
	GateReasonCategory = "category"
)

// StagedFile is a candidate upload that has been sniffed but not yet stored.
// Index is the position in the candidate list so callers can map accepted
// entries back to their source. Category is assigned by the gate.
type StagedFile struct {
	Index     int
	Name      string
	MimeType  string
	SizeBytes int64
	Category  string
}

// RejectedFile describes one file the gate turned away and why.
type RejectedFile struct {
	Name    string
	Reason  string
	Message string
}

// GateReport is the outcome of admission control over a candidate file set.
// Rejections are accumulated per file so the caller can report every problem
// at once; the accepted subset is still usable.
type GateReport struct {
	Accepted []StagedFile
	Rejected []RejectedFile
}

// Messages flattens the rejection list for API responses.
func (r GateReport) Messages() []string {
	if len(r.Rejected) == 0 {
		return nil
	}
	messages := make([]string, 0, len(r.Rejected))
	for _, rejected := range r.Rejected {
		messages = append(messages, rejected.Message)
	}
	return messages
}

// GateFiles validates the candidate files against the task's upload limits:
// file count cap, per-file size ceiling, and allowed media categories. Files
// beyond the count cap are individually reported, never silently dropped.
func GateFiles(task models.Task, files []StagedFile) GateReport {
	report := GateReport{Accepted: make([]StagedFile, 0, len(files))}
	limit := task.FileLimit()
	maxBytes := task.MaxFileSizeBytes()

	for _, file := range files {
		if len(report.Accepted) >= limit {
			report.Rejected = append(report.Rejected, RejectedFile{
				Name:    file.Name,
				Reason:  GateReasonCount,
				Message: fmt.Sprintf("%s: task accepts at most %d files", file.Name, limit),
			})
			continue
		}

		if file.SizeBytes > maxBytes {
			report.Rejected = append(report.Rejected, RejectedFile{
				Name:    file.Name,
				Reason:  GateReasonSize,
				Message: fmt.Sprintf("%s: file exceeds the %d MB size limit", file.Name, maxBytes/(1024*1024)),
			})
			continue
		}

		file.Category = models.MediaCategoryForMime(file.MimeType)
		if !task.AllowsCategory(file.Category) {
			report.Rejected = append(report.Rejected, RejectedFile{
				Name:    file.Name,
				Reason:  GateReasonCategory,
				Message: fmt.Sprintf("%s: %s files are not allowed for this task", file.Name, file.Category),
			})
			continue
		}

		report.Accepted = append(report.Accepted, file)
	}

	return report
}
