// Package document renders a stored submission as the downloadable wealth
// blueprint PDF.
package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
)

type rgb struct{ r, g, b int }

var (
	brand     = rgb{0x27, 0xdc, 0x85}
	textColor = rgb{0x33, 0x33, 0x33}
	muted     = rgb{0x66, 0x66, 0x66}
	lightGray = rgb{0xf5, 0xf5, 0xf5}
	rule      = rgb{0xcc, 0xcc, 0xcc}
)

const (
	margin     = 50.0
	pageWidth  = 595.28 // A4 in points
	bodyWidth  = pageWidth - 2*margin
	footerSize = 70.0
	portalURL  = "https://myrtle.portal.prod.mywealthcare.io"
)

var (
	headingLine = regexp.MustCompile(`^\d+\.\s`)
	unsafeName  = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Filename returns the download name for a blueprint.
func Filename(fullName string, date time.Time, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Myrtle_Wealth_Blueprint_%s_%s_%s.pdf",
		unsafeName.ReplaceAllString(fullName, "_"), date.Format(time.DateOnly), short)
}

// Renderer draws blueprint PDFs.
type Renderer struct {
	now      func() time.Time
	compress bool
}

// NewRenderer returns a Renderer that stamps documents with the current time.
func NewRenderer() *Renderer { return &Renderer{now: time.Now, compress: true} }

// Render returns the PDF bytes for sub.
func (r *Renderer) Render(sub *model.Submission) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, footerSize+10)
	pdf.SetTitle(latin1("Myrtle Wealth Blueprint - "+sub.Client.FullName), false)
	pdf.SetAuthor("Myrtle Wealth", false)
	pdf.SetFooterFunc(func() { r.footer(pdf, sub.Client.FullName) })
	pdf.AddPage()

	r.header(pdf, sub)
	r.summary(pdf, sub.Analysis)
	r.narrative(pdf, sub.Analysis.Narrative)
	r.allocation(pdf, sub.Analysis.Portfolio)

	if err := pdf.Error(); err != nil {
		return nil, eris.Wrap(err, "document: render")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, eris.Wrap(err, "document: output")
	}
	return buf.Bytes(), nil
}

func setText(pdf *gofpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

func centered(pdf *gofpdf.Fpdf, style string, size, lineHeight float64, c rgb, text string) {
	pdf.SetFont("Helvetica", style, size)
	setText(pdf, c)
	pdf.CellFormat(0, lineHeight, latin1(text), "", 1, "C", false, 0, "")
}

func (r *Renderer) header(pdf *gofpdf.Fpdf, sub *model.Submission) {
	centered(pdf, "B", 32, 40, brand, "MYRTLE WEALTH")
	centered(pdf, "B", 22, 28, textColor, "Wealth Blueprint")
	centered(pdf, "", 10, 14, textColor, "Personalized Financial Analysis Report")
	pdf.Ln(16)

	created := sub.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	centered(pdf, "", 9, 14, muted, "Report Generated: "+created.Format("January 2, 2006"))
	pdf.Ln(8)
	centered(pdf, "B", 11, 16, textColor, "Client: "+sub.Client.FullName)
	centered(pdf, "", 9, 12, textColor, sub.Client.Email)
	pdf.Ln(16)

	pdf.SetDrawColor(brand.r, brand.g, brand.b)
	pdf.SetLineWidth(2)
	y := pdf.GetY()
	pdf.Line(margin, y, margin+bodyWidth, y)
	pdf.Ln(20)
}

func (r *Renderer) summary(pdf *gofpdf.Fpdf, a model.Analysis) {
	const boxHeight = 110.0
	top := pdf.GetY()

	pdf.SetFillColor(lightGray.r, lightGray.g, lightGray.b)
	pdf.SetDrawColor(brand.r, brand.g, brand.b)
	pdf.SetLineWidth(2)
	pdf.Rect(margin, top, bodyWidth, boxHeight, "FD")

	pdf.SetXY(margin+10, top+12)
	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, brand)
	pdf.CellFormat(0, 18, "FINANCIAL SUMMARY", "", 1, "L", false, 0, "")

	rows := [][2]string{
		{"Net Worth:", narrative.Naira(a.NetWorth)},
		{"Category:", a.NetWorthBand},
		{"Risk Profile:", a.RiskProfile},
		{"Risk Score:", fmt.Sprintf("%d/%d", a.RiskScore, maxScoreFor(a))},
		{"Persona:", a.Persona},
	}
	setText(pdf, textColor)
	for _, row := range rows {
		pdf.SetX(margin + 10)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 15, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 15, latin1(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.SetY(top + boxHeight + 20)
}

// maxScoreFor reads the maximum out of the narrative's "Risk Score was n/m"
// line, falling back to the standard 28.
func maxScoreFor(a model.Analysis) int {
	var score, most int
	if i := strings.Index(a.Narrative, "Risk Score was "); i >= 0 {
		if n, _ := fmt.Sscanf(a.Narrative[i:], "Risk Score was %d/%d", &score, &most); n == 2 && most > 0 {
			return most
		}
	}
	return 28
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "BU", 16)
	setText(pdf, brand)
	pdf.CellFormat(0, 22, title, "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (r *Renderer) narrative(pdf *gofpdf.Fpdf, text string) {
	sectionTitle(pdf, "YOUR WEALTH BLUEPRINT")

	for _, raw := range strings.Split(text, "\n") {
		line := latin1(raw)
		switch {
		case line == "":
			continue
		case strings.Contains(line, "MYRTLE WEALTH BLUEPRINT"), strings.HasPrefix(line, "\x97 Personalized"):
			continue
		case headingLine.MatchString(line) || strings.HasPrefix(line, "Your Myrtle Advisor Will Now"):
			pdf.Ln(10)
			pdf.SetFont("Helvetica", "B", 12)
			setText(pdf, brand)
			pdf.MultiCell(0, 16, line, "", "L", false)
			pdf.Ln(4)
		default:
			pdf.SetFont("Helvetica", "", 10)
			setText(pdf, textColor)
			pdf.SetX(margin + 10)
			pdf.MultiCell(bodyWidth-10, 14, line, "", "L", false)
			pdf.Ln(3)
		}
	}
	pdf.Ln(16)
}

func (r *Renderer) allocation(pdf *gofpdf.Fpdf, alloc model.Allocation) {
	sectionTitle(pdf, "RECOMMENDED PORTFOLIO ALLOCATION")
	setText(pdf, textColor)

	if alloc.Custom {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetX(margin + 10)
		pdf.MultiCell(bodyWidth-10, 14, model.CustomAllocationSummary+".", "", "L", false)
		pdf.Ln(6)
		pdf.SetX(margin + 10)
		pdf.MultiCell(bodyWidth-10, 14, "Please contact your wealth advisor for personalized portfolio details tailored to your specific financial goals and circumstances.", "", "L", false)
		return
	}

	for _, b := range alloc.Buckets() {
		label := b.Name
		if label == "FX" {
			label = "Foreign Exchange"
		}
		pdf.SetX(margin + 20)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(180, 18, label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 18, fmt.Sprintf("%d%%", b.Percent), "", 1, "L", false, 0, "")
	}
}

func (r *Renderer) footer(pdf *gofpdf.Fpdf, fullName string) {
	_, pageHeight := pdf.GetPageSize()
	y := pageHeight - footerSize

	pdf.SetDrawColor(rule.r, rule.g, rule.b)
	pdf.SetLineWidth(1)
	pdf.Line(margin, y, margin+bodyWidth, y)

	setText(pdf, muted)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(margin, y+6)
	pdf.CellFormat(bodyWidth, 12, latin1(fmt.Sprintf("© %d Myrtle Wealth. All rights reserved.", r.now().Year())), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetX(margin)
	pdf.CellFormat(bodyWidth, 11, latin1("This report is confidential and intended solely for "+fullName+"."), "", 1, "C", false, 0, "")
	pdf.SetX(margin)
	pdf.CellFormat(bodyWidth, 11, "For inquiries, visit: "+portalURL, "", 1, "C", false, 0, "")
}
