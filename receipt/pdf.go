package receipt

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"medbot-backend/models"
)

const receiptTitle = "Appointment Receipt"

type Renderer interface {
	Render(fields []models.Field) ([]byte, error)
}

// PDFRenderer lays the fields out as a two-column table on one A4 page.
type PDFRenderer struct {
	Clinic string
}

func NewPDFRenderer(clinic string) *PDFRenderer {
	return &PDFRenderer{Clinic: clinic}
}

func (r *PDFRenderer) Render(fields []models.Field) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(receiptTitle, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, receiptTitle, "", 1, "C", false, 0, "")
	if r.Clinic != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(r.Clinic), "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	for _, f := range fields {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(50, 9, tr(f.Label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 9, tr(f.Value), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Please arrive 15 minutes before your appointment time.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render receipt pdf")
	}
	return buf.Bytes(), nil
}
