package auditclient

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyURL is returned by Submit when the request carries no URL.
	ErrEmptyURL = errors.New("audit url is required")

	// ErrJobActive is returned when a session already tracks a running poll.
	ErrJobActive = errors.New("an audit job is already active")

	// ErrPollCanceled is delivered to the terminal callback when polling was
	// stopped by the caller before the job reached a terminal status.
	ErrPollCanceled = errors.New("polling canceled")

	// ErrSessionClosed is returned by a session after Close.
	ErrSessionClosed = errors.New("session closed")
)

// UnknownJobError is the message used when the server reports a failed job
// without an error field.
const UnknownJobError = "Unknown error"

// APIError is a non-2xx answer from the audit API. Detail carries the
// server's "detail" message, or a generic fallback when none was sent.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.StatusCode)
}

// NetworkError wraps a transport level failure (connection refused, timeout,
// undecodable body).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// JobFailure is reported when the server marks a job as failed.
type JobFailure struct {
	JobID   string
	Message string
}

func (e *JobFailure) Error() string {
	return fmt.Sprintf("audit %s failed: %s", e.JobID, e.Message)
}

// PollTimeout is reported when a poll exceeds its attempt or duration budget
// before the job reaches a terminal status.
type PollTimeout struct {
	JobID    string
	Attempts int
	Elapsed  time.Duration
}

func (e *PollTimeout) Error() string {
	return fmt.Sprintf("audit %s did not finish after %d polls (%s)", e.JobID, e.Attempts, e.Elapsed.Round(time.Millisecond))
}
