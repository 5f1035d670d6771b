// Package report turns a normalized audit result into views and exports:
// tabbed check lists, summaries, JSON and Markdown documents, and saved PDFs.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raysh454/seoaudit/internal/model"
)

// Tab is one of the fixed check views.
type Tab string

const (
	TabAll       Tab = "all"
	TabIssues    Tab = "issues"
	TabPassed    Tab = "passed"
	TabTechnical Tab = "technical"
	TabContent   Tab = "content"
	TabAI        Tab = "ai"
)

// ParseTab accepts a tab name case-insensitively. An empty name is TabAll.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabAll, nil
	case TabAll, TabIssues, TabPassed, TabTechnical, TabContent, TabAI:
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// Filter narrows a check list. Empty fields match everything; values within a
// field are OR-ed and fields are AND-ed.
type Filter struct {
	Categories []string
	Statuses   []model.CheckStatus
	Severities []model.Severity
}

// Empty reports whether f matches every check.
func (f Filter) Empty() bool {
	return len(f.Categories) == 0 && len(f.Statuses) == 0 && len(f.Severities) == 0
}

func (f Filter) match(c model.Check) bool {
	if len(f.Categories) > 0 && !containsFold(f.Categories, c.Category) {
		return false
	}
	if len(f.Statuses) > 0 && !containsFold(f.Statuses, c.Status) {
		return false
	}
	if len(f.Severities) > 0 && !containsFold(f.Severities, c.Severity) {
		return false
	}
	return true
}

// FilterChecks returns the checks matching f, in their original order.
func FilterChecks(checks []model.Check, f Filter) []model.Check {
	out := []model.Check{}
	for _, c := range checks {
		if f.match(c) {
			out = append(out, c)
		}
	}
	return out
}

// TabChecks returns the checks shown on tab. TabIssues holds fail and partial
// checks ordered by severity, then by points lost.
func TabChecks(checks []model.Check, tab Tab) []model.Check {
	switch tab {
	case TabIssues:
		out := FilterChecks(checks, Filter{Statuses: []model.CheckStatus{model.CheckFail, model.CheckPartial}})
		SortIssues(out)
		return out
	case TabPassed:
		return FilterChecks(checks, Filter{Statuses: []model.CheckStatus{model.CheckPass}})
	case TabTechnical:
		return bySection(checks, model.SectionTechnical)
	case TabContent:
		return bySection(checks, model.SectionContent)
	case TabAI:
		return bySection(checks, model.SectionAI)
	default:
		return append([]model.Check{}, checks...)
	}
}

// SortIssues orders checks P0 first, then by points lost descending.
func SortIssues(checks []model.Check) {
	sort.SliceStable(checks, func(i, j int) bool {
		ri, rj := checks[i].Severity.Rank(), checks[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return checks[i].PointsLost() > checks[j].PointsLost()
	})
}

func bySection(checks []model.Check, sec model.Section) []model.Check {
	out := []model.Check{}
	for _, c := range checks {
		if model.SectionOf(c.Category) == sec {
			out = append(out, c)
		}
	}
	return out
}

func containsFold[T ~string](vals []T, v T) bool {
	for _, x := range vals {
		if strings.EqualFold(string(x), string(v)) {
			return true
		}
	}
	return false
}

// ParseList splits a comma separated query value, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewFilter builds a Filter from comma separated category, status and
// severity lists.
func NewFilter(categories, statuses, severities string) Filter {
	var f Filter
	f.Categories = ParseList(categories)
	for _, s := range ParseList(statuses) {
		f.Statuses = append(f.Statuses, model.CheckStatus(strings.ToLower(s)))
	}
	for _, s := range ParseList(severities) {
		f.Severities = append(f.Severities, model.Severity(strings.ToUpper(s)))
	}
	return f
}
