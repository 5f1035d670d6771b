package model

import "time"

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	CheckPass    CheckStatus = "pass"
	CheckPartial CheckStatus = "partial"
	CheckFail    CheckStatus = "fail"
	CheckSkip    CheckStatus = "skip"
)

// Severity ranks an issue; P0 is the most urgent.
type Severity string

const (
	SeverityP0 Severity = "P0"
	SeverityP1 Severity = "P1"
	SeverityP2 Severity = "P2"
)

// Rank orders severities for sorting (P0 first).
func (s Severity) Rank() int {
	switch s {
	case SeverityP0:
		return 0
	case SeverityP1:
		return 1
	default:
		return 2
	}
}

// ConfidenceLevel says how complete the data collection behind a result was.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// Scores holds the 0-100 sub-scores of an audit.
type Scores struct {
	Technical int `json:"technical"`
	Content   int `json:"content"`
	AI        int `json:"ai"`
	Overall   int `json:"overall"`
}

// Confidence is a meta-score about data completeness.
type Confidence struct {
	Level          ConfidenceLevel `json:"level"`
	Score          int             `json:"score"`
	MissingSources []string        `json:"missing_sources"`
	Reason         string          `json:"reason"`
}

// Check is one scored rule within an audit.
type Check struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	PointsAwarded  float64     `json:"points_awarded"`
	PointsPossible float64     `json:"points_possible"`
	Status         CheckStatus `json:"status"`
	Evidence       string      `json:"evidence"`
	HowToFix       *string     `json:"how_to_fix,omitempty"`
	Severity       Severity    `json:"severity"`
}

// PointsLost is how many points the check left on the table.
func (c Check) PointsLost() float64 {
	return c.PointsPossible - c.PointsAwarded
}

// AuditResult is the normalized outcome of a completed audit. Values are
// built once by the client and never mutated afterwards; a new audit yields
// a new AuditResult.
type AuditResult struct {
	JobID           string     `json:"job_id"`
	URL             string     `json:"url"`
	FinalURL        string     `json:"final_url"`
	Scores          Scores     `json:"scores"`
	Confidence      Confidence `json:"confidence"`
	CapsApplied     []string   `json:"caps_applied"`
	Labels          []string   `json:"labels"`
	Checks          []Check    `json:"checks"`
	ScoringVersion  string     `json:"scoring_version"`
	DurationSeconds float64    `json:"duration_seconds"`
	ReceivedAt      time.Time  `json:"received_at"`
}

// Clone returns a deep copy so callers can hand results out without sharing
// backing arrays.
func (r *AuditResult) Clone() *AuditResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Confidence.MissingSources = append([]string{}, r.Confidence.MissingSources...)
	out.CapsApplied = append([]string{}, r.CapsApplied...)
	out.Labels = append([]string{}, r.Labels...)
	out.Checks = make([]Check, len(r.Checks))
	for i, c := range r.Checks {
		if c.HowToFix != nil {
			fix := *c.HowToFix
			c.HowToFix = &fix
		}
		out.Checks[i] = c
	}
	return &out
}
