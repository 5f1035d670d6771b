package report

import "github.com/raysh454/seoaudit/internal/model"

// Summary counts the checks of a result.
type Summary struct {
	Total       int                       `json:"total"`
	ByStatus    map[model.CheckStatus]int `json:"by_status"`
	BySeverity  map[model.Severity]int    `json:"by_severity"`
	Issues      int                       `json:"issues"`
	PointsLost  float64                   `json:"points_lost"`
	TopPriority *model.Check              `json:"top_priority,omitempty"`
}

// Summarize counts checks per status and per severity. Severity counts only
// include issues (fail and partial).
func Summarize(r *model.AuditResult) Summary {
	s := Summary{
		ByStatus:   map[model.CheckStatus]int{},
		BySeverity: map[model.Severity]int{},
	}
	if r == nil {
		return s
	}
	for _, c := range r.Checks {
		s.Total++
		s.ByStatus[c.Status]++
		if isIssue(c) {
			s.Issues++
			s.BySeverity[c.Severity]++
			s.PointsLost += c.PointsLost()
		}
	}
	if issues := TabChecks(r.Checks, TabIssues); len(issues) > 0 {
		top := issues[0]
		s.TopPriority = &top
	}
	return s
}

func isIssue(c model.Check) bool {
	return c.Status == model.CheckFail || c.Status == model.CheckPartial
}
