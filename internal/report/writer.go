package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/raysh454/seoaudit/internal/model"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Writer renders a result to an output.
type Writer interface {
	Write(r *model.AuditResult) error
}

// NewWriter returns the writer for format. "md" is accepted for Markdown.
func NewWriter(format string, out io.Writer) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", string(FormatJSON):
		return NewJSONWriter(out, WithPrettyPrint()), nil
	case string(FormatMarkdown), "md":
		return NewMarkdownWriter(out), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// ContentType is the HTTP content type of format.
func ContentType(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case string(FormatMarkdown), "md":
		return "text/markdown; charset=utf-8"
	}
	return "application/json"
}

// Document is the JSON export: the result plus its summary.
type Document struct {
	Result  *model.AuditResult `json:"result"`
	Summary Summary            `json:"summary"`
}

// JSONWriter writes a Document as JSON.
type JSONWriter struct {
	out    io.Writer
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the line prefix and indent string.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

func NewJSONWriter(out io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{out: out}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *JSONWriter) Write(r *model.AuditResult) error {
	if r == nil {
		return fmt.Errorf("write json: nil result")
	}
	enc := json.NewEncoder(w.out)
	if w.prefix != "" || w.indent != "" {
		enc.SetIndent(w.prefix, w.indent)
	}
	return enc.Encode(Document{Result: r, Summary: Summarize(r)})
}

// MarkdownWriter writes a human readable Markdown report.
type MarkdownWriter struct {
	out io.Writer
}

func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) Write(r *model.AuditResult) error {
	if r == nil {
		return fmt.Errorf("write markdown: nil result")
	}
	md := markdown.NewMarkdown(w.out)

	md.H1("SEO Audit Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + r.URL + "`"},
			{"Final URL", "`" + orDash(r.FinalURL) + "`"},
			{"Job", "`" + r.JobID + "`"},
			{"Received", r.ReceivedAt.Format("2006-01-02 15:04:05 MST")},
			{"Scoring version", orDash(r.ScoringVersion)},
			{"Duration", strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64) + "s"},
		},
	})
	md.PlainText("")

	w.writeScores(md, r)
	w.writeIssues(md, r)
	w.writeSections(md, r)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by seoaudit*")
	return md.Build()
}

func (w *MarkdownWriter) writeScores(md *markdown.Markdown, r *model.AuditResult) {
	md.H2("Scores")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Score", "Value"},
		Rows: [][]string{
			{"**Overall**", "**" + strconv.Itoa(r.Scores.Overall) + "**"},
			{"Technical", strconv.Itoa(r.Scores.Technical)},
			{"Content", strconv.Itoa(r.Scores.Content)},
			{"AI readiness", strconv.Itoa(r.Scores.AI)},
			{"Confidence", fmt.Sprintf("%s (%d)", r.Confidence.Level, r.Confidence.Score)},
		},
	})
	md.PlainText("")

	if len(r.Confidence.MissingSources) > 0 {
		md.Note("Missing data sources: " + strings.Join(r.Confidence.MissingSources, ", "))
		md.PlainText("")
	}
	if len(r.CapsApplied) > 0 {
		md.Warningf("Score caps applied: %s", strings.Join(r.CapsApplied, ", "))
		md.PlainText("")
	}
	if len(r.Labels) > 0 {
		md.PlainTextf("Labels: %s", strings.Join(r.Labels, ", "))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, r *model.AuditResult) {
	md.H2("Priority Issues")
	md.PlainText("")

	issues := TabChecks(r.Checks, TabIssues)
	if len(issues) == 0 {
		md.Tip("No issues found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(issues))
	for i, c := range issues {
		fix := "-"
		if c.HowToFix != nil {
			fix = truncate(*c.HowToFix, 80)
		}
		rows[i] = []string{
			string(c.Severity),
			c.Name,
			string(c.Status),
			strconv.FormatFloat(c.PointsLost(), 'f', -1, 64),
			fix,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Check", "Status", "Points lost", "How to fix"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSections(md *markdown.Markdown, r *model.AuditResult) {
	titles := map[model.Section]string{
		model.SectionTechnical: "### Technical",
		model.SectionContent:   "### Content",
		model.SectionAI:        "### AI readiness",
	}
	tabs := map[model.Section]Tab{
		model.SectionTechnical: TabTechnical,
		model.SectionContent:   TabContent,
		model.SectionAI:        TabAI,
	}

	md.H2("All Checks")
	md.PlainText("")
	for _, sec := range model.Sections() {
		checks := TabChecks(r.Checks, tabs[sec])
		if len(checks) == 0 {
			continue
		}
		md.PlainText(titles[sec])
		md.PlainText("")

		rows := make([][]string, len(checks))
		for i, c := range checks {
			rows[i] = []string{
				statusMark(c.Status) + " " + c.Name,
				c.Category,
				fmt.Sprintf("%g/%g", c.PointsAwarded, c.PointsPossible),
				truncate(orDash(c.Evidence), 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Check", "Category", "Points", "Evidence"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func statusMark(s model.CheckStatus) string {
	switch s {
	case model.CheckPass:
		return "✅"
	case model.CheckPartial:
		return "⚠️"
	case model.CheckFail:
		return "❌"
	default:
		return "⏭️"
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
