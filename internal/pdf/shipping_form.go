package pdf

import (
	"bytes"
	"fmt"
	"time"

	"dealership/internal/models"

	"github.com/go-pdf/fpdf"
)

// Renderer produces the printable shipping form handed to the carrier.
type Renderer struct {
	Company string
	now     func() time.Time
}

func NewRenderer(company string) *Renderer {
	return &Renderer{Company: company, now: time.Now}
}

func (r *Renderer) Render(form *models.ShippingForm) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Shipping Form", true)
	doc.SetMargins(18, 18, 18)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, tr(r.Company), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, "Shipping Form", "", 0, "L", false, 0, "")
	doc.CellFormat(0, 6, r.now().Format("02/01/2006"), "", 1, "R", false, 0, "")
	doc.Ln(6)

	section(doc, "Customer")
	row(doc, tr, "Full name", form.CustomerName)
	row(doc, tr, "Phone", form.CustomerPhone)
	row(doc, tr, "Address", form.CustomerAddress)
	row(doc, tr, "Passport number", form.PassportNumber)
	row(doc, tr, "ID card number", form.IDCardNumber)
	doc.Ln(4)

	section(doc, "Vehicle")
	row(doc, tr, "Model", form.VehicleModel)
	row(doc, tr, "VIN", form.VIN)
	if form.Notes != "" {
		doc.Ln(4)
		section(doc, "Notes")
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(form.Notes), "", "L", false)
	}

	doc.Ln(16)
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(80, 6, "Customer signature", "T", 0, "C", false, 0, "")
	doc.CellFormat(14, 6, "", "", 0, "C", false, 0, "")
	doc.CellFormat(80, 6, "Agent signature", "T", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render shipping form: %w", err)
	}
	return buf.Bytes(), nil
}

func section(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 13)
	doc.SetFillColor(230, 230, 240)
	doc.CellFormat(0, 8, title, "", 1, "L", true, 0, "")
	doc.Ln(1)
}

func row(doc *fpdf.Fpdf, tr func(string) string, label, value string) {
	if value == "" {
		value = "-"
	}
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
}
