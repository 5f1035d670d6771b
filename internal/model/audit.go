package model

// AuditRequest is what a caller submits to start an audit.
type AuditRequest struct {
	// URL is the page to audit. Clients prefix "https://" when no scheme is given.
	URL string `json:"url"`

	// IncludePerformance asks the backend to collect performance metrics.
	IncludePerformance bool `json:"include_perf"`
}

// JobStatus is the server-reported state of an audit job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further status transitions are expected.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Known reports whether s is one of the statuses the backend emits.
func (s JobStatus) Known() bool {
	switch s {
	case JobPending, JobRunning, JobCompleted, JobFailed:
		return true
	}
	return false
}

// AuditJob is the handle returned by a successful submission. Its Status only
// changes through statuses observed while polling.
type AuditJob struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
	URL    string    `json:"url,omitempty"`
}
