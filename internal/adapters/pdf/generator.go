// Package pdf renders the admin leads listing as a landscape PDF table.
// One header band per page, then one row per stored submission in the
// order the store returned them.
package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
	"github.com/DAVIDafergan/tatpro-intake/internal/report"
)

// Relative column widths, one per report column.
var colWeights = []float64{1.5, 1.6, 1.3, 1.2, 0.8, 1, 0.8, 1.3, 1.2, 1, 2.3}

type Generator struct {
	tag      language.Tag
	table    *pricing.Table
	fontPath string
	now      func() time.Time
}

type Option func(*Generator)

// WithFont embeds a UTF-8 TrueType font. Without one the core Helvetica font
// is used and characters outside cp1252 print as dots.
func WithFont(path string) Option { return func(g *Generator) { g.fontPath = path } }

func WithTable(t *pricing.Table) Option { return func(g *Generator) { g.table = t } }

func New(tag language.Tag, opts ...Option) *Generator {
	g := &Generator{tag: tag, table: pricing.Default(), now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) ContentType() string { return "application/pdf" }
func (g *Generator) Extension() string   { return "pdf" }

// Write renders docs to w.
func (g *Generator) Write(w io.Writer, docs []domain.StoredDocument) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AliasNbPages("{nb}")

	family, tr := "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	if g.fontPath != "" {
		pdf.AddUTF8Font("body", "", g.fontPath)
		pdf.AddUTF8Font("body", "B", g.fontPath)
		family, tr = "body", func(s string) string { return s }
		if base, _ := g.tag.Base(); base.String() == "he" {
			pdf.RTL()
		}
	}

	headers := report.Headers(g.tag)
	title := report.Title(g.tag)
	generated := g.now().UTC().Format("2006-01-02 15:04 MST")

	pdf.SetHeaderFunc(func() {
		drawHeader(pdf, family, tr, title, headers)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(family, "", 7)
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s | %d | %d/{nb}", generated, len(docs), pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()
	widths := columnWidths(pdf)
	pdf.SetFont(family, "", 7.5)
	for i, lead := range report.Leads(docs, g.table, g.tag) {
		if i%2 == 0 {
			pdf.SetFillColor(248, 248, 248)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for c, cell := range lead.Cells {
			pdf.CellFormat(widths[c], 6, fit(pdf, tr, cell, widths[c]), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func drawHeader(pdf *fpdf.Fpdf, family string, tr func(string) string, title string, headers []string) {
	marginL, _, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - marginL - marginR

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(contentW, 9, tr(title), "", 1, "L", true, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "B", 7.5)
	for i, h := range headers {
		w := columnWidths(pdf)[i]
		pdf.CellFormat(w, 7, fit(pdf, tr, h, w), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(family, "", 7.5)
}

func columnWidths(pdf *fpdf.Fpdf) []float64 {
	marginL, _, marginR, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - marginL - marginR
	var total float64
	for _, w := range colWeights {
		total += w
	}
	out := make([]float64, len(colWeights))
	for i, w := range colWeights {
		out[i] = contentW * w / total
	}
	return out
}

// fit translates s and truncates it so it stays inside a cell of width w.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, w float64) string {
	limit := w - 2
	if out := tr(s); pdf.GetStringWidth(out) <= limit {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"..")) > limit {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "..")
}
