package demo

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/raysh454/seoaudit/internal/model"
)

// ScoringVersion is stamped on every generated payload.
const ScoringVersion = "1.1"

type checkTemplate struct {
	id       string
	category string
	name     string
	possible float64
	severity model.Severity
	pass     string
	fail     string
	fix      string
}

var catalog = []checkTemplate{
	{"tech_status", "crawlability", "HTTP Status", 10, model.SeverityP0, "Status 200", "Status 500", "Ensure site returns 200 OK"},
	{"tech_https", "performance", "HTTPS", 5, model.SeverityP0, "Uses HTTPS", "Not using HTTPS", "Enable SSL/HTTPS"},
	{"tech_noindex", "crawlability", "Indexability", 10, model.SeverityP0, "Page is indexable", "noindex directive found", "Remove the noindex meta tag"},
	{"tech_canonical", "crawlability", "Canonical Tag", 5, model.SeverityP1, "Canonical tag present", "No canonical tag", "Add a rel=canonical link"},
	{"tech_canonical_match", "crawlability", "Canonical Match", 5, model.SeverityP1, "Canonical points to this page", "Canonical points elsewhere", "Point the canonical at the final URL"},
	{"tech_viewport", "performance", "Mobile Viewport", 10, model.SeverityP1, "Viewport meta tag set", "No viewport meta tag", "Add <meta name=\"viewport\">"},
	{"tech_title", "hygiene", "Title Tag", 5, model.SeverityP1, "Title is 52 characters", "Title missing", "Write a 50-60 character title"},
	{"tech_h1", "hygiene", "H1 Tag", 5, model.SeverityP1, "Exactly one H1", "No H1 found", "Add a single descriptive H1"},
	{"tech_headings", "hygiene", "Heading Hierarchy", 5, model.SeverityP2, "Headings are nested in order", "Heading levels skip", "Do not skip heading levels"},
	{"tech_robots", "crawlability", "robots.txt", 5, model.SeverityP2, "robots.txt found", "robots.txt missing", "Publish a robots.txt"},
	{"tech_sitemap", "crawlability", "Sitemap", 5, model.SeverityP2, "Sitemap found", "No sitemap found", "Publish sitemap.xml and reference it in robots.txt"},
	{"tech_lang", "hygiene", "HTML Lang", 5, model.SeverityP2, "lang=\"en\"", "No lang attribute", "Set <html lang>"},
	{"tech_charset", "hygiene", "Charset", 5, model.SeverityP2, "UTF-8 declared", "No charset declared", "Declare <meta charset=\"utf-8\">"},
	{"clarity", "clarity", "Content Clarity", 15, model.SeverityP1, "Clear purpose and audience", "Unclear purpose", "State what you offer in first 100 words"},
	{"word_count", "structure", "Content Length", 10, model.SeverityP2, "1240 words", "Only 180 words", "Expand the page to cover the topic"},
	{"readability", "structure", "Readability", 10, model.SeverityP2, "Grade 8 reading level", "Grade 16 reading level", "Use shorter sentences"},
	{"internal_links", "completeness", "Internal Links", 10, model.SeverityP2, "14 internal links", "2 internal links", "Link to related pages"},
	{"freshness", "freshness", "Content Freshness", 10, model.SeverityP2, "Updated 3 weeks ago", "No date found", "Show a last updated date"},
	{"trust_author", "trust_signals", "Author & Accountability", 10, model.SeverityP1, "Author/Trust signals found", "Missing author info", "Add author bio"},
	{"trust_evidence", "trust_signals", "Evidence & Citations", 10, model.SeverityP1, "Citations with links", "No citations", "Cite sources"},
	{"humanized_content", "trust_signals", "Experience Signals", 10, model.SeverityP1, "First-hand experience detected", "Generic content", "Add personal experience & data"},
	{"ai_access", "ai_access", "AI Crawler Access", 30, model.SeverityP0, "All AI bots allowed", "GPTBot, CCBot blocked", "Allow GPTBot and CCBot"},
	{"ai_llms_txt", "llms_txt", "llms.txt File", 15, model.SeverityP2, "llms.txt found", "No llms.txt", "Publish /llms.txt"},
	{"ai_schema", "schema", "Schema Markup", 25, model.SeverityP1, "Organization, Article schema", "No JSON-LD found", "Add JSON-LD structured data"},
	{"ai_social", "social", "Social Context", 15, model.SeverityP2, "Open Graph tags present", "No Open Graph tags", "Add og:title and og:description"},
	{"ai_extract", "extractability", "Content Extractability", 15, model.SeverityP1, "Text rendered in HTML", "Very little text content", "Ensure content is rendered in HTML"},
}

var confidenceSources = []struct {
	name   string
	weight int
}{
	{"html", 25},
	{"robots", 15},
	{"llms_txt", 10},
	{"schema", 15},
	{"performance", 20},
	{"sitemap", 5},
	{"meta", 10},
}

// GenerateResult builds a completed payload for target. The same target and
// seed always produce the same payload. Targets containing "noindex" or
// "blocked" trigger the matching score caps; plain http:// targets fail the
// HTTPS check.
func GenerateResult(jobID, target string, seed int64) *model.RawPayload {
	h := fnv.New64a()
	_, _ = h.Write([]byte(target))
	rng := rand.New(rand.NewPCG(uint64(seed), h.Sum64()))

	lower := strings.ToLower(target)
	forced := map[string]model.CheckStatus{}
	if strings.HasPrefix(lower, "http://") {
		forced["tech_https"] = model.CheckFail
	}
	noindex := strings.Contains(lower, "noindex")
	if noindex {
		forced["tech_noindex"] = model.CheckFail
	}
	blocked := strings.Contains(lower, "blocked")
	if blocked {
		forced["ai_access"] = model.CheckFail
	}

	awarded := map[model.Section]float64{}
	possible := map[model.Section]float64{}
	checks := make([]model.RawCheck, 0, len(catalog))
	for _, tpl := range catalog {
		status, ok := forced[tpl.id]
		if !ok {
			status = roll(rng)
		}
		rc := buildCheck(tpl, status)
		checks = append(checks, rc)

		sec := model.SectionOf(tpl.category)
		possible[sec] += *rc.PointsPossible
		awarded[sec] += *rc.PointsAwarded
	}

	technical := ratio(awarded[model.SectionTechnical], possible[model.SectionTechnical])
	content := ratio(awarded[model.SectionContent], possible[model.SectionContent])
	ai := ratio(awarded[model.SectionAI], possible[model.SectionAI])

	var caps, labels []string
	if noindex {
		if technical > 40 {
			technical = 40
			caps = append(caps, "technical_capped_40_noindex")
		}
		labels = append(labels, "noindex")
	}
	if blocked {
		if ai > 30 {
			ai = 30
			caps = append(caps, "ai_capped_30_bots_blocked")
		}
		labels = append(labels, "ai_restricted")
	}
	overall := math.Round(0.35*technical + 0.35*content + 0.30*ai)
	if noindex && overall > 50 {
		overall = 50
		caps = append(caps, "overall_capped_50_noindex")
	}

	duration := math.Round((4+rng.Float64()*20)*100) / 100
	return &model.RawPayload{
		JobID:    jobID,
		Status:   model.JobCompleted,
		URL:      target,
		FinalURL: target,
		Scores: &model.RawScores{
			Technical: ptr(technical),
			Content:   ptr(content),
			AI:        ptr(ai),
			Overall:   ptr(overall),
		},
		Confidence:      generateConfidence(rng),
		CapsApplied:     caps,
		Labels:          labels,
		Checks:          checks,
		DurationSeconds: &duration,
		ScoringVersion:  ScoringVersion,
	}
}

func roll(rng *rand.Rand) model.CheckStatus {
	switch r := rng.Float64(); {
	case r < 0.6:
		return model.CheckPass
	case r < 0.8:
		return model.CheckPartial
	case r < 0.95:
		return model.CheckFail
	default:
		return model.CheckSkip
	}
}

func buildCheck(tpl checkTemplate, status model.CheckStatus) model.RawCheck {
	possible := tpl.possible
	var awarded float64
	evidence := tpl.pass
	fix := tpl.fix

	switch status {
	case model.CheckPass:
		awarded = possible
		fix = ""
	case model.CheckPartial:
		awarded = math.Floor(possible / 2)
		evidence = "Partially: " + strings.ToLower(tpl.pass[:1]) + tpl.pass[1:]
	case model.CheckFail:
		evidence = tpl.fail
	case model.CheckSkip:
		possible = 0
		evidence = "Not evaluated"
		fix = ""
	}

	rc := model.RawCheck{
		ID:             tpl.id,
		Name:           tpl.name,
		Category:       tpl.category,
		PointsAwarded:  ptr(awarded),
		PointsPossible: ptr(possible),
		Status:         string(status),
		Evidence:       &evidence,
		Severity:       string(tpl.severity),
	}
	if fix != "" {
		rc.HowToFix = &fix
	}
	return rc
}

func generateConfidence(rng *rand.Rand) *model.RawConfidence {
	score := 0
	var missing []string
	for _, src := range confidenceSources {
		// html is always available for a completed audit.
		if src.name == "html" || rng.Float64() < 0.8 {
			score += src.weight
			continue
		}
		missing = append(missing, src.name)
	}

	c := &model.RawConfidence{Score: ptr(float64(score)), Missing: missing}
	switch {
	case score >= 80:
		c.Level = string(model.ConfidenceHigh)
		c.Reason = "All major data sources available"
	case score >= 50:
		c.Level = string(model.ConfidenceMedium)
		c.Reason = fmt.Sprintf("Missing: %s", strings.Join(head(missing, 3), ", "))
	default:
		c.Level = string(model.ConfidenceLow)
		c.Reason = fmt.Sprintf("Significant data missing: %s", strings.Join(head(missing, 3), ", "))
	}
	return c
}

func ratio(awarded, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(awarded / possible * 100)
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func ptr(f float64) *float64 { return &f }
