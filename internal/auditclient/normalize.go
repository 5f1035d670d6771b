package auditclient

import (
	"math"
	"strings"

	"github.com/raysh454/seoaudit/internal/model"
)

const (
	// DefaultScoringVersion is assumed when the backend omits scoring_version.
	DefaultScoringVersion = "1.1"

	// DefaultConfidenceScore is assumed when the backend omits confidence.score.
	DefaultConfidenceScore = 50

	defaultScheme = "https://"
)

// NormalizeURL prefixes "https://" when raw carries no scheme. URLs that
// already have one are returned as given (minus surrounding whitespace);
// syntax validation is left to the server.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if hasScheme(raw) {
		return raw, nil
	}
	return defaultScheme + raw, nil
}

// hasScheme reports whether s starts with an RFC 3986 scheme followed by "://".
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// Normalize turns a (possibly partial) job payload into an AuditResult with
// every optional field defaulted, so renderers never branch on presence.
// A nil payload yields an all-default result. Normalize never panics.
func Normalize(raw *model.RawPayload) *model.AuditResult {
	if raw == nil {
		raw = &model.RawPayload{}
	}

	res := &model.AuditResult{
		JobID:          raw.JobID,
		URL:            raw.URL,
		FinalURL:       raw.FinalURL,
		Scores:         normalizeScores(raw.Scores),
		Confidence:     normalizeConfidence(raw.Confidence),
		CapsApplied:    nonNil(raw.CapsApplied),
		Labels:         nonNil(raw.Labels),
		Checks:         make([]model.Check, 0, len(raw.Checks)),
		ScoringVersion: strings.TrimSpace(raw.ScoringVersion),
	}
	if res.FinalURL == "" {
		res.FinalURL = res.URL
	}
	if res.ScoringVersion == "" {
		res.ScoringVersion = DefaultScoringVersion
	}
	if raw.DurationSeconds != nil && finite(*raw.DurationSeconds) && *raw.DurationSeconds > 0 {
		res.DurationSeconds = *raw.DurationSeconds
	}

	for _, rc := range raw.Checks {
		res.Checks = append(res.Checks, normalizeCheck(rc))
	}
	return res
}

func normalizeScores(s *model.RawScores) model.Scores {
	if s == nil {
		return model.Scores{}
	}
	return model.Scores{
		Technical: percent(s.Technical, 0),
		Content:   percent(s.Content, 0),
		AI:        percent(s.AI, 0),
		Overall:   percent(s.Overall, 0),
	}
}

func normalizeConfidence(c *model.RawConfidence) model.Confidence {
	out := model.Confidence{
		Level:          model.ConfidenceMedium,
		Score:          DefaultConfidenceScore,
		MissingSources: []string{},
	}
	if c == nil {
		return out
	}

	switch lvl := model.ConfidenceLevel(strings.ToLower(strings.TrimSpace(c.Level))); lvl {
	case model.ConfidenceLow, model.ConfidenceMedium, model.ConfidenceHigh:
		out.Level = lvl
	}
	out.Score = percent(c.Score, DefaultConfidenceScore)
	out.Reason = c.Reason

	// missing sources behave as a set; keep first-seen order.
	seen := make(map[string]struct{})
	for _, list := range [][]string{c.Missing, c.MissingSources} {
		for _, src := range list {
			src = strings.TrimSpace(src)
			if src == "" {
				continue
			}
			if _, dup := seen[src]; dup {
				continue
			}
			seen[src] = struct{}{}
			out.MissingSources = append(out.MissingSources, src)
		}
	}
	return out
}

func normalizeCheck(rc model.RawCheck) model.Check {
	c := model.Check{
		ID:       rc.ID,
		Name:     rc.Name,
		Category: rc.Category,
		Status:   normalizeCheckStatus(rc.Status),
		Severity: normalizeSeverity(rc.Severity),
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if rc.Evidence != nil {
		c.Evidence = *rc.Evidence
	}
	if rc.HowToFix != nil && strings.TrimSpace(*rc.HowToFix) != "" {
		fix := *rc.HowToFix
		c.HowToFix = &fix
	}

	possible := 0.0
	if rc.PointsPossible != nil && finite(*rc.PointsPossible) && *rc.PointsPossible > 0 {
		possible = *rc.PointsPossible
	}
	awarded := 0.0
	if rc.PointsAwarded != nil && finite(*rc.PointsAwarded) && *rc.PointsAwarded > 0 {
		awarded = *rc.PointsAwarded
	}
	c.PointsPossible = possible
	c.PointsAwarded = math.Min(awarded, possible)
	return c
}

func normalizeCheckStatus(s string) model.CheckStatus {
	switch st := model.CheckStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case model.CheckPass, model.CheckPartial, model.CheckFail, model.CheckSkip:
		return st
	}
	return model.CheckSkip
}

func normalizeSeverity(s string) model.Severity {
	switch sev := model.Severity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case model.SeverityP0, model.SeverityP1, model.SeverityP2:
		return sev
	}
	return model.SeverityP2
}

func percent(v *float64, def int) int {
	if v == nil || !finite(*v) {
		return def
	}
	return int(math.Round(math.Max(0, math.Min(100, *v))))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func nonNil(in []string) []string {
	return append([]string{}, in...)
}
