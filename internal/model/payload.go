package model

// RawPayload mirrors the JSON returned by GET {base}/audit/{job_id}. Every
// result field is optional: the backend only fills them once the job has
// completed, and partially populated payloads are expected.
type RawPayload struct {
	JobID           string         `json:"job_id,omitempty"`
	Status          JobStatus      `json:"status"`
	URL             string         `json:"url,omitempty"`
	FinalURL        string         `json:"final_url,omitempty"`
	Scores          *RawScores     `json:"scores,omitempty"`
	Confidence      *RawConfidence `json:"confidence,omitempty"`
	CapsApplied     []string       `json:"caps_applied,omitempty"`
	Labels          []string       `json:"labels,omitempty"`
	Checks          []RawCheck     `json:"checks,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	ScoringVersion  string         `json:"scoring_version,omitempty"`
	Error           *string        `json:"error,omitempty"`
}

// RawScores holds sub-scores as sent by the backend.
type RawScores struct {
	Technical *float64 `json:"technical,omitempty"`
	Content   *float64 `json:"content,omitempty"`
	AI        *float64 `json:"ai,omitempty"`
	Overall   *float64 `json:"overall,omitempty"`
}

// RawConfidence accepts both the backend's "missing" key and the
// "missing_sources" spelling.
type RawConfidence struct {
	Level          string   `json:"level,omitempty"`
	Score          *float64 `json:"score,omitempty"`
	Missing        []string `json:"missing,omitempty"`
	MissingSources []string `json:"missing_sources,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// RawCheck is a check as sent by the backend. Status may include values
// outside CheckStatus (the backend also emits "info").
type RawCheck struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	Category       string   `json:"category,omitempty"`
	PointsAwarded  *float64 `json:"points_awarded,omitempty"`
	PointsPossible *float64 `json:"points_possible,omitempty"`
	Status         string   `json:"status,omitempty"`
	Evidence       *string  `json:"evidence,omitempty"`
	HowToFix       *string  `json:"how_to_fix,omitempty"`
	Severity       string   `json:"severity,omitempty"`
}

// SubmitResponse is the body of a successful POST {base}/audit.
type SubmitResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status,omitempty"`
	URL    string    `json:"url,omitempty"`
}

// ErrorResponse is the body the backend sends with non-2xx statuses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
