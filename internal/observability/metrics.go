package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	submissionsAcceptedTotal  *prometheus.CounterVec
	submissionsRejectedTotal  *prometheus.CounterVec
	uploadFilesRejectedTotal  *prometheus.CounterVec
	draftsCreatedTotal        prometheus.Counter
	completionEvaluationTotal prometheus.Counter
	lessonsCompletedTotal     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edukite_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "edukite_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edukite_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsAcceptedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edukite_submissions_accepted_total",
			Help: "Submissions that satisfied their task's submission mode.",
		}, []string{"submission_type"})

		submissionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edukite_submissions_rejected_total",
			Help: "Submissions rejected by submission mode validation.",
		}, []string{"submission_type"})

		uploadFilesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "edukite_upload_files_rejected_total",
			Help: "Candidate files turned away by the upload gate.",
		}, []string{"reason"})

		draftsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edukite_submission_drafts_created_total",
			Help: "Pending submission drafts created by lesson initialization.",
		})

		completionEvaluationTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edukite_completion_evaluations_total",
			Help: "Completion roll-up evaluations performed.",
		})

		lessonsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "edukite_lessons_completed_total",
			Help: "Lessons transitioned to completed by the evaluator.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsAcceptedTotal,
			submissionsRejectedTotal,
			uploadFilesRejectedTotal,
			draftsCreatedTotal,
			completionEvaluationTotal,
			lessonsCompletedTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsAccepted exposes the counter for accepted submissions.
func SubmissionsAccepted() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsAcceptedTotal
}

// SubmissionsRejected exposes the counter for policy-rejected submissions.
func SubmissionsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsRejectedTotal
}

// UploadFilesRejected exposes the counter for gate-rejected files.
func UploadFilesRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadFilesRejectedTotal
}

// DraftsCreated exposes the counter for created submission drafts.
func DraftsCreated() prometheus.Counter {
	RegisterMetrics()
	return draftsCreatedTotal
}

// CompletionEvaluations exposes the counter for evaluator runs.
func CompletionEvaluations() prometheus.Counter {
	RegisterMetrics()
	return completionEvaluationTotal
}

// LessonsCompleted exposes the counter for evaluator-driven completions.
func LessonsCompleted() prometheus.Counter {
	RegisterMetrics()
	return lessonsCompletedTotal
}
