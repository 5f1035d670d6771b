package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/seoaudit/internal/app"
	"github.com/raysh454/seoaudit/internal/auditclient"
	"github.com/raysh454/seoaudit/internal/history"
	"github.com/raysh454/seoaudit/internal/logging"
	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/report"
	"github.com/raysh454/seoaudit/internal/utils"
)

// writeClientError maps client and history errors to HTTP statuses.
func (s *Server) writeClientError(w http.ResponseWriter, err error) {
	var (
		apiErr *auditclient.APIError
		netErr *auditclient.NetworkError
	)
	switch {
	case errors.Is(err, auditclient.ErrEmptyURL):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auditclient.ErrJobActive):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auditclient.ErrSessionClosed), errors.Is(err, app.ErrHistoryDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, history.ErrNotFound), errors.Is(err, app.ErrNotEnoughHistory):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &apiErr):
		// Client errors of the audit API are passed through, server
		// errors become a bad gateway.
		status := apiErr.StatusCode
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		writeError(w, status, apiErr.Detail)
	case errors.As(err, &netErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleStartAudit godoc
// @Summary Start an audit
// @Description Submits the URL to the audit API and polls the job in the background.
// @Tags audits
// @Accept json
// @Produce json
// @Param request body StartAuditRequest true "Audit to start"
// @Success 202 {object} model.AuditJob
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /audits [post]
func (s *Server) handleStartAudit(w http.ResponseWriter, r *http.Request) {
	var req StartAuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	job, err := s.orchestrator.StartAudit(&model.AuditRequest{
		URL:                req.URL,
		IncludePerformance: req.IncludePerformance,
	}, req.Replace)
	if err != nil {
		s.logger.Warn("starting audit", logging.Field{Key: "error", Value: err.Error()})
		s.writeClientError(w, err)
		return
	}

	s.logger.Info("started audit", logging.Field{Key: "job_id", Value: job.JobID})
	writeJSON(w, http.StatusAccepted, job)
}

// handleGetCurrent godoc
// @Summary Current audit
// @Description Returns the tracked job, whether it is still polling, and its result once completed.
// @Tags audits
// @Produce json
// @Success 200 {object} app.CurrentState
// @Router /audits/current [get]
func (s *Server) handleGetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orchestrator.Current())
}

// handleCancelCurrent godoc
// @Summary Cancel the running audit
// @Tags audits
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /audits/current [delete]
func (s *Server) handleCancelCurrent(w http.ResponseWriter, r *http.Request) {
	if !s.orchestrator.CancelCurrent() {
		writeError(w, http.StatusNotFound, "no active audit")
		return
	}
	s.logger.Info("canceled current audit")
	w.WriteHeader(http.StatusNoContent)
}

// handleGetAudit godoc
// @Summary Get an audit result
// @Tags audits
// @Produce json
// @Param jobID path string true "Job ID"
// @Success 200 {object} model.AuditResult
// @Failure 404 {object} ErrorResponse
// @Router /audits/{jobID} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	res, ok := s.result(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetChecks godoc
// @Summary List checks of an audit
// @Description Returns the checks of a tab, optionally narrowed by comma separated categories, statuses and severities.
// @Tags audits
// @Produce json
// @Param jobID path string true "Job ID"
// @Param tab query string false "all, issues, passed, technical, content or ai"
// @Param category query string false "Categories"
// @Param status query string false "Statuses"
// @Param severity query string false "Severities"
// @Success 200 {object} ChecksResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /audits/{jobID}/checks [get]
func (s *Server) handleGetChecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, err := report.ParseTab(q.Get("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := s.result(w, r)
	if !ok {
		return
	}

	checks := report.TabChecks(res.Checks, tab)
	checks = report.FilterChecks(checks, report.NewFilter(q.Get("category"), q.Get("status"), q.Get("severity")))

	writeJSON(w, http.StatusOK, ChecksResponse{
		JobID:  res.JobID,
		Tab:    tab,
		Count:  len(checks),
		Checks: checks,
		Totals: report.Summarize(res),
	})
}

// handleExport godoc
// @Summary Export an audit
// @Tags audits
// @Produce json
// @Produce text/markdown
// @Param jobID path string true "Job ID"
// @Param format query string false "json (default) or markdown"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /audits/{jobID}/export [get]
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	var buf bytes.Buffer
	writer, err := report.NewWriter(format, &buf)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, ok := s.result(w, r)
	if !ok {
		return
	}
	if err := writer.Write(res); err != nil {
		s.logger.Error("exporting audit", logging.Field{Key: "job_id", Value: res.JobID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ext := "json"
	if strings.HasPrefix(report.ContentType(format), "text/markdown") {
		ext = "md"
	}
	w.Header().Set("Content-Type", report.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=audit_%s.%s", utils.ShortID(res.JobID), ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleDownloadPDF godoc
// @Summary Download the PDF report
// @Description Proxies the PDF rendered by the audit API.
// @Tags audits
// @Produce application/pdf
// @Param jobID path string true "Job ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /audits/{jobID}/pdf [get]
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	// Buffer so API errors can still be reported with a status code.
	var buf bytes.Buffer
	if _, err := s.orchestrator.DownloadPDF(r.Context(), jobID, &buf); err != nil {
		s.logger.Warn("downloading pdf", logging.Field{Key: "job_id", Value: jobID}, logging.Field{Key: "error", Value: err.Error()})
		s.writeClientError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+report.PDFFileName(jobID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleListHistory godoc
// @Summary List recorded audits
// @Tags history
// @Produce json
// @Param url query string false "Only audits of this page"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} history.Entry
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /history [get]
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if ls := q.Get("limit"); ls != "" {
		v, err := strconv.Atoi(ls)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	entries, err := s.orchestrator.ListHistory(r.Context(), q.Get("url"), limit)
	if err != nil {
		if errors.Is(err, utils.ErrMissingHost) || errors.Is(err, utils.ErrEmptyURL) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeClientError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleCompare godoc
// @Summary Compare two audits
// @Description Diffs head against base by job id, or the two latest audits of url.
// @Tags history
// @Produce json
// @Param base query string false "Base job ID"
// @Param head query string false "Head job ID"
// @Param url query string false "Compare the two latest audits of this page"
// @Success 200 {object} compare.ResultDelta
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /compare [get]
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base, head, site := q.Get("base"), q.Get("head"), q.Get("url")

	var (
		delta any
		err   error
	)
	switch {
	case base != "" && head != "":
		delta, err = s.orchestrator.Compare(r.Context(), base, head)
	case site != "":
		delta, err = s.orchestrator.CompareLatest(r.Context(), site)
	default:
		writeError(w, http.StatusBadRequest, "either base and head, or url, is required")
		return
	}
	if err != nil {
		s.writeClientError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, delta)
}

// handleHealth godoc
// @Summary Health
// @Description Reports the console status and the audit API health.
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	status, err := s.orchestrator.Health(r.Context())
	if err != nil {
		resp.API = "unreachable"
		resp.Error = err.Error()
	} else {
		resp.API = status
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCurrentWS streams the running audit's events, starting with the
// current state, and closes when the audit ends.
func (s *Server) handleCurrentWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	jobID, events, unsubscribe, ok := s.orchestrator.Subscribe()
	if !ok {
		_ = conn.WriteJSON(ErrorResponse{Error: "no active audit"})
		return
	}
	defer unsubscribe()

	s.logger.Info("streaming audit events", logging.Field{Key: "job_id", Value: jobID})
	_ = conn.WriteJSON(s.orchestrator.Current())

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; the audit keeps running.
			return
		}
	}
}

// result loads the result named by the jobID URL parameter and writes the
// error response when it cannot.
func (s *Server) result(w http.ResponseWriter, r *http.Request) (*model.AuditResult, bool) {
	jobID := chi.URLParam(r, "jobID")
	res, err := s.orchestrator.Result(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			writeError(w, http.StatusNotFound, "audit not found")
			return nil, false
		}
		s.writeClientError(w, err)
		return nil, false
	}
	return res, true
}
