// Package export implements the invoice renderers consumed through the
// ports.InvoiceRenderer boundary. Renderers are pure formatters over
// the InvoiceDetail view: they are constructed once at startup and hold
// no lazily-initialised global state.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

// PDFRenderer renders an invoice as an A4 PDF document.
type PDFRenderer struct {
	// PracticeName appears in the document header.
	PracticeName string
}

func NewPDFRenderer(practiceName string) *PDFRenderer {
	return &PDFRenderer{PracticeName: practiceName}
}

func (r *PDFRenderer) ContentType() string   { return "application/pdf" }
func (r *PDFRenderer) FileExtension() string { return "pdf" }

func (r *PDFRenderer) Render(_ context.Context, detail *ports.InvoiceDetail) ([]byte, error) {
	inv := detail.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Factuur %s", inv.InvoiceNumber), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(120, 10, "FACTUUR")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 10, r.PracticeName, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(30, 6, "Invoice no:")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, inv.InvoiceNumber, "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(30, 6, "Invoice date:")
	pdf.CellFormat(0, 6, inv.InvoiceDate.Format("02-01-2006"), "", 1, "", false, 0, "")
	pdf.Cell(30, 6, "Due date:")
	pdf.CellFormat(0, 6, inv.DueDate.Format("02-01-2006"), "", 1, "", false, 0, "")
	pdf.Cell(30, 6, "Client:")
	pdf.CellFormat(0, 6, detail.ClientName, "", 1, "", false, 0, "")
	pdf.Ln(6)

	// Line table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(28, 8, "Date", "1", 0, "", true, 0, "")
	pdf.CellFormat(92, 8, "Treatment", "1", 0, "", true, 0, "")
	pdf.CellFormat(25, 8, "Hours", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount (EUR)", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range detail.Lines {
		hours := "-"
		if line.DurationHours.Valid {
			hours = line.DurationHours.Decimal.String()
		}
		pdf.CellFormat(28, 7, line.TreatmentDate.Format("02-01-2006"), "1", 0, "", false, 0, "")
		pdf.CellFormat(92, 7, line.MethodName, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, hours, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, line.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(145, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, inv.TotalAmount.StringFixed(2), "1", 1, "R", false, 0, "")

	if inv.Status == domain.StatusVoid {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 28)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(0, 12, "VOID", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
