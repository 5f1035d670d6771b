// Package compare computes what changed between two audits of a page.
package compare

import (
	"math"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/seoaudit/internal/model"
	"github.com/raysh454/seoaudit/internal/utils"
)

// ChangeKind classifies a check delta.
type ChangeKind string

const (
	ChangeAdded     ChangeKind = "added"
	ChangeRemoved   ChangeKind = "removed"
	ChangeImproved  ChangeKind = "improved"
	ChangeRegressed ChangeKind = "regressed"
	ChangeUnchanged ChangeKind = "unchanged"
)

// Chunk is one inserted or deleted run of evidence text.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// CheckDelta is the change of a single check between base and head.
type CheckDelta struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Category     string            `json:"category"`
	Kind         ChangeKind        `json:"kind"`
	BaseStatus   model.CheckStatus `json:"base_status,omitempty"`
	HeadStatus   model.CheckStatus `json:"head_status,omitempty"`
	BasePoints   float64           `json:"base_points"`
	HeadPoints   float64           `json:"head_points"`
	PointsDelta  float64           `json:"points_delta"`
	EvidenceDiff []Chunk           `json:"evidence_diff,omitempty"`
}

// ScoreDelta holds head minus base per sub-score.
type ScoreDelta struct {
	Technical int `json:"technical"`
	Content   int `json:"content"`
	AI        int `json:"ai"`
	Overall   int `json:"overall"`
}

// ResultDelta is the complete delta between two results.
type ResultDelta struct {
	BaseJobID   string       `json:"base_job_id"`
	HeadJobID   string       `json:"head_job_id"`
	URL         string       `json:"url"`
	SameSite    bool         `json:"same_site"`
	BaseScores  model.Scores `json:"base_scores"`
	HeadScores  model.Scores `json:"head_scores"`
	Scores      ScoreDelta   `json:"scores"`
	CapsAdded   []string     `json:"caps_added"`
	CapsRemoved []string     `json:"caps_removed"`
	Checks      []CheckDelta `json:"checks"`
}

// Changed returns the check deltas that are not unchanged.
func (d *ResultDelta) Changed() []CheckDelta {
	out := []CheckDelta{}
	for _, c := range d.Checks {
		if c.Kind != ChangeUnchanged {
			out = append(out, c)
		}
	}
	return out
}

// DiffResults computes head relative to base. Either side may be nil, in
// which case it is treated as an audit with no checks and zero scores.
func DiffResults(base, head *model.AuditResult) *ResultDelta {
	if base == nil {
		base = &model.AuditResult{}
	}
	if head == nil {
		head = &model.AuditResult{}
	}

	d := &ResultDelta{
		BaseJobID:  base.JobID,
		HeadJobID:  head.JobID,
		URL:        firstNonEmpty(head.URL, base.URL),
		SameSite:   utils.SameHost(base.URL, head.URL),
		BaseScores: base.Scores,
		HeadScores: head.Scores,
		Scores: ScoreDelta{
			Technical: head.Scores.Technical - base.Scores.Technical,
			Content:   head.Scores.Content - base.Scores.Content,
			AI:        head.Scores.AI - base.Scores.AI,
			Overall:   head.Scores.Overall - base.Scores.Overall,
		},
		CapsAdded:   setMinus(head.CapsApplied, base.CapsApplied),
		CapsRemoved: setMinus(base.CapsApplied, head.CapsApplied),
		Checks:      []CheckDelta{},
	}

	baseChecks := index(base.Checks)
	headChecks := index(head.Checks)

	// Union of ids, in head order then base-only order.
	var ids []string
	seen := map[string]struct{}{}
	for _, list := range [][]model.Check{head.Checks, base.Checks} {
		for _, c := range list {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			ids = append(ids, c.ID)
		}
	}

	dmp := diffmatchpatch.New()
	for _, id := range ids {
		b, inBase := baseChecks[id]
		h, inHead := headChecks[id]

		cd := CheckDelta{ID: id}
		switch {
		case !inBase:
			cd.Kind = ChangeAdded
			cd.Name, cd.Category = h.Name, h.Category
			cd.HeadStatus, cd.HeadPoints = h.Status, h.PointsAwarded
		case !inHead:
			cd.Kind = ChangeRemoved
			cd.Name, cd.Category = b.Name, b.Category
			cd.BaseStatus, cd.BasePoints = b.Status, b.PointsAwarded
		default:
			cd.Name, cd.Category = h.Name, h.Category
			cd.BaseStatus, cd.HeadStatus = b.Status, h.Status
			cd.BasePoints, cd.HeadPoints = b.PointsAwarded, h.PointsAwarded
			cd.Kind = classify(b, h)
			if b.Evidence != h.Evidence {
				cd.EvidenceDiff = evidenceDiff(dmp, b.Evidence, h.Evidence)
			}
		}
		cd.PointsDelta = cd.HeadPoints - cd.BasePoints
		d.Checks = append(d.Checks, cd)
	}

	// Most changed checks first; stable keeps report order among ties.
	sort.SliceStable(d.Checks, func(i, j int) bool {
		return math.Abs(d.Checks[i].PointsDelta) > math.Abs(d.Checks[j].PointsDelta)
	})
	return d
}

func classify(b, h model.Check) ChangeKind {
	switch {
	case h.PointsAwarded > b.PointsAwarded:
		return ChangeImproved
	case h.PointsAwarded < b.PointsAwarded:
		return ChangeRegressed
	case statusRank(h.Status) < statusRank(b.Status):
		return ChangeImproved
	case statusRank(h.Status) > statusRank(b.Status):
		return ChangeRegressed
	}
	return ChangeUnchanged
}

func statusRank(s model.CheckStatus) int {
	switch s {
	case model.CheckPass:
		return 0
	case model.CheckPartial:
		return 1
	case model.CheckFail:
		return 2
	default:
		return 3
	}
}

func evidenceDiff(dmp *diffmatchpatch.DiffMatchPatch, base, head string) []Chunk {
	diffs := dmp.DiffMain(base, head, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := []Chunk{}
	for _, df := range diffs {
		var typ string
		switch df.Type {
		case diffmatchpatch.DiffInsert:
			typ = "added"
		case diffmatchpatch.DiffDelete:
			typ = "removed"
		default:
			continue
		}
		if strings.TrimSpace(df.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Type: typ, Content: df.Text})
	}
	return chunks
}

func index(checks []model.Check) map[string]model.Check {
	m := make(map[string]model.Check, len(checks))
	for _, c := range checks {
		if _, dup := m[c.ID]; !dup {
			m[c.ID] = c
		}
	}
	return m
}

func setMinus(a, b []string) []string {
	out := []string{}
	for _, v := range a {
		found := false
		for _, w := range b {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
