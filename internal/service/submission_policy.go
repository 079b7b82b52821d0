package service

import (
	"strings"

	"github.com/edukite/edukite-go-api/internal/models"
)

// SubmissionCandidate is the content a learner offers against a task, after
// sanitization and after the upload gate has filtered the file set.
type SubmissionCandidate struct {
	Text       string
	Files      []StagedFile
	AllowEmpty bool
}

// PolicyDecision is the outcome of evaluating a candidate against a task's
// submission mode. When not accepted, the missing-half flags tell the caller
// exactly what to prompt the learner for.
type PolicyDecision struct {
	Accepted     bool
	MissingText  bool
	MissingFiles bool
	Reason       string
}

// EvaluateCandidate applies the admission rule for the task's submission
// mode. It is a pure predicate: the store consults it before any write.
func EvaluateCandidate(task models.Task, candidate SubmissionCandidate) PolicyDecision {
	hasText := strings.TrimSpace(candidate.Text) != ""
	hasFiles := len(candidate.Files) > 0

	switch task.SubmissionType {
	case models.SubmissionTypeTextOnly:
		if !hasText {
			return PolicyDecision{MissingText: true, Reason: "a text response is required"}
		}
		return PolicyDecision{Accepted: true}

	case models.SubmissionTypeMediaOnly:
		if !hasFiles {
			return PolicyDecision{MissingFiles: true, Reason: "at least one file is required"}
		}
		return PolicyDecision{Accepted: true}

	case models.SubmissionTypeBoth:
		decision := PolicyDecision{MissingText: !hasText, MissingFiles: !hasFiles}
		if decision.MissingText && decision.MissingFiles {
			decision.Reason = "a text response and at least one file are required"
		} else if decision.MissingText {
			decision.Reason = "a text response is also required"
		} else if decision.MissingFiles {
			decision.Reason = "at least one file is also required"
		} else {
			decision.Accepted = true
		}
		return decision

	case models.SubmissionTypeEither:
		// Checklist tasks are satisfiable by explicit intent alone: the
		// learner either flags an empty completion or attaches anything.
		// This mode never reports missing content.
		if candidate.AllowEmpty || hasText || hasFiles {
			return PolicyDecision{Accepted: true}
		}
		return PolicyDecision{Reason: "confirm completion or attach a response"}

	default:
		return PolicyDecision{Reason: "unsupported submission type: " + task.SubmissionType}
	}
}
