package demo

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/raysh454/seoaudit/internal/model"
)

const fontFamily = "Helvetica"

// WritePDF renders a one-document report of a completed payload to w.
func WritePDF(w io.Writer, p *model.RawPayload, generatedAt time.Time) error {
	if p == nil {
		return fmt.Errorf("WritePDF: nil payload")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetTitle("SEO Audit Report", false)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 9, "SEO Audit Report", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 6, "URL: "+safeText(firstNonEmpty(p.FinalURL, p.URL)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated at: "+generatedAt.UTC().Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Scoring version: "+safeText(p.ScoringVersion), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if p.Scores != nil {
		pdf.SetFont(fontFamily, "B", 12)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 7, "Scores", "", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		for _, row := range []struct {
			label string
			v     *float64
		}{
			{"Overall", p.Scores.Overall},
			{"Technical", p.Scores.Technical},
			{"Content", p.Scores.Content},
			{"AI", p.Scores.AI},
		} {
			pdf.CellFormat(40, 6, row.label, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, scoreText(row.v), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(p.CapsApplied) > 0 || len(p.Labels) > 0 {
		pdf.SetFont(fontFamily, "", 9)
		pdf.SetTextColor(120, 80, 0)
		if len(p.CapsApplied) > 0 {
			pdf.MultiCell(0, 4.5, "Caps applied: "+safeText(strings.Join(p.CapsApplied, ", ")), "", "L", false)
		}
		if len(p.Labels) > 0 {
			pdf.MultiCell(0, 4.5, "Labels: "+safeText(strings.Join(p.Labels, ", ")), "", "L", false)
		}
		pdf.Ln(2)
	}

	bySection := map[model.Section][]model.RawCheck{}
	for _, c := range p.Checks {
		sec := model.SectionOf(c.Category)
		bySection[sec] = append(bySection[sec], c)
	}
	for _, sec := range model.Sections() {
		checks := bySection[sec]
		if len(checks) == 0 {
			continue
		}
		pdf.SetFont(fontFamily, "B", 12)
		pdf.SetTextColor(20, 20, 20)
		pdf.CellFormat(0, 7, strings.ToUpper(string(sec)), "", 1, "L", false, 0, "")
		for _, c := range checks {
			pdf.SetFont(fontFamily, "B", 10)
			pdf.SetTextColor(20, 20, 20)
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s | %s | %s/%s",
				strings.ToUpper(c.Status), safeText(c.Name), c.Severity,
				scoreText(c.PointsAwarded), scoreText(c.PointsPossible)), "", "L", false)
			pdf.SetFont(fontFamily, "", 9)
			pdf.SetTextColor(40, 40, 40)
			if c.Evidence != nil && *c.Evidence != "" {
				pdf.MultiCell(0, 4.5, "Evidence: "+safeText(*c.Evidence), "", "L", false)
			}
			if c.HowToFix != nil && *c.HowToFix != "" {
				pdf.MultiCell(0, 4.5, "Fix: "+safeText(*c.HowToFix), "", "L", false)
			}
			pdf.Ln(1)
		}
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func scoreText(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// safeText keeps core-font output printable; non-ASCII becomes '?'.
func safeText(s string) string {
	s = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
