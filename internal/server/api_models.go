package server

import (
	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/report"
)

// StartAuditRequest is the payload to start an audit.
type StartAuditRequest struct {
	URL                string `json:"url" example:"example.com"`
	IncludePerformance bool   `json:"include_perf" example:"true"`

	// Replace cancels a running audit instead of failing with 409.
	Replace bool `json:"replace" example:"false"`
}

// ChecksResponse is a filtered view of a result's checks.
type ChecksResponse struct {
	JobID  string         `json:"job_id" example:"3f2a9c1e-7b4d-4e8a-9a51-0d6f2c1b8e77"`
	Tab    report.Tab     `json:"tab" example:"issues"`
	Count  int            `json:"count" example:"4"`
	Checks []model.Check  `json:"checks"`
	Totals report.Summary `json:"totals"`
}

// HealthResponse reports the console and the audit API health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	API    string `json:"api" example:"ok"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}
