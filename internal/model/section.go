package model

// Section groups check categories into the three score areas of a report.
type Section string

const (
	SectionTechnical Section = "technical"
	SectionContent   Section = "content"
	SectionAI        Section = "ai"
)

var categorySections = map[string]Section{
	"crawlability": SectionTechnical,
	"performance":  SectionTechnical,
	"hygiene":      SectionTechnical,

	"clarity":       SectionContent,
	"structure":     SectionContent,
	"completeness":  SectionContent,
	"freshness":     SectionContent,
	"trust_signals": SectionContent,
	"trust_auth":    SectionContent,
	"readability":   SectionContent,

	"ai_access":      SectionAI,
	"llms_txt":       SectionAI,
	"schema":         SectionAI,
	"social":         SectionAI,
	"extractability": SectionAI,
}

// SectionOf maps a check category to its section. Unknown categories are
// reported under technical.
func SectionOf(category string) Section {
	if s, ok := categorySections[category]; ok {
		return s
	}
	return SectionTechnical
}

// Sections lists sections in report order.
func Sections() []Section {
	return []Section{SectionTechnical, SectionContent, SectionAI}
}
