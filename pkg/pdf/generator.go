package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	TemplateLetterOfAuthorization = "letter_of_authorization"
	TemplateCaseSummary           = "case_summary"
)

// LetterData fills the Letter of Authorization template.
type LetterData struct {
	PatientName   string
	RequestRef    string
	TreatmentDate *time.Time
	Facility      string
	IssuedBy      string
	IssuedAt      time.Time
}

// CaseSummaryData fills the Case Summary template.
type CaseSummaryData struct {
	PatientName string
	RequestRef  string
	RequestKind string
	Status      string
	Remarks     []string
	PreparedBy  string
	PreparedAt  time.Time
}

// Generator renders the portal's print-ready documents.
type Generator struct {
	orgName string
	orgLine string
}

func NewGenerator(orgName, orgLine string) *Generator {
	return &Generator{orgName: orgName, orgLine: orgLine}
}

// LetterOfAuthorization renders the LOA handed to the partner facility.
func (g *Generator) LetterOfAuthorization(data LetterData) ([]byte, error) {
	doc := g.newPage("LETTER OF AUTHORIZATION")

	doc.SetFont("Arial", "", 11)
	doc.MultiCell(0, 6, fmt.Sprintf(
		"This is to certify that %s is a registered beneficiary and is hereby "+
			"authorized to avail of treatment assistance under reference %s.",
		data.PatientName, data.RequestRef), "", "L", false)
	doc.Ln(4)

	if data.TreatmentDate != nil {
		g.labelValue(doc, "Scheduled treatment date", data.TreatmentDate.Format("January 2, 2006"))
	}
	if data.Facility != "" {
		g.labelValue(doc, "Partner facility", data.Facility)
	}
	g.labelValue(doc, "Issued by", data.IssuedBy)
	g.labelValue(doc, "Date issued", data.IssuedAt.Format("January 2, 2006"))

	g.signatureBlock(doc, data.IssuedBy)
	return g.output(doc)
}

// CaseSummary renders the one-page case summary for the request's file.
func (g *Generator) CaseSummary(data CaseSummaryData) ([]byte, error) {
	doc := g.newPage("CASE SUMMARY")

	g.labelValue(doc, "Patient", data.PatientName)
	g.labelValue(doc, "Reference", data.RequestRef)
	g.labelValue(doc, "Request type", data.RequestKind)
	g.labelValue(doc, "Current status", data.Status)
	doc.Ln(4)

	if len(data.Remarks) > 0 {
		doc.SetFont("Arial", "B", 11)
		doc.CellFormat(0, 6, "Remarks", "", 1, "L", false, 0, "")
		doc.SetFont("Arial", "", 11)
		for _, remark := range data.Remarks {
			doc.MultiCell(0, 6, "- "+remark, "", "L", false)
		}
		doc.Ln(4)
	}

	g.labelValue(doc, "Prepared by", data.PreparedBy)
	g.labelValue(doc, "Date prepared", data.PreparedAt.Format("January 2, 2006"))

	g.signatureBlock(doc, data.PreparedBy)
	return g.output(doc)
}

func (g *Generator) newPage(title string) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.SetMargins(20, 20, 20)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	doc.SetFont("Arial", "B", 14)
	doc.CellFormat(0, 8, g.orgName, "", 1, "C", false, 0, "")
	if g.orgLine != "" {
		doc.SetFont("Arial", "", 10)
		doc.CellFormat(0, 5, g.orgLine, "", 1, "C", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Arial", "B", 13)
	doc.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
	doc.Ln(6)
	return doc
}

func (g *Generator) labelValue(doc *gofpdf.Fpdf, label, value string) {
	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(55, 6, label+":", "", 0, "L", false, 0, "")
	doc.SetFont("Arial", "", 11)
	doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (g *Generator) signatureBlock(doc *gofpdf.Fpdf, name string) {
	doc.Ln(18)
	doc.SetFont("Arial", "", 11)
	doc.CellFormat(70, 6, "_______________________", "", 1, "L", false, 0, "")
	doc.CellFormat(70, 6, name, "", 1, "L", false, 0, "")
}

func (g *Generator) output(doc *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
