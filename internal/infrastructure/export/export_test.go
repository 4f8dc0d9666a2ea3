package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

func sampleDetail(status domain.InvoiceStatus) *ports.InvoiceDetail {
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return &ports.InvoiceDetail{
		Invoice: domain.Invoice{
			ID:            1,
			ClientID:      1,
			InvoiceNumber: "FACT-2025-001",
			InvoiceDate:   day,
			DueDate:       day.AddDate(0, 0, 14),
			Status:        status,
			TotalAmount:   decimal.RequireFromString("205.00"),
		},
		ClientName: "Jan de Vries",
		Lines: []ports.InvoiceDetailLine{
			{
				TreatmentID:   10,
				TreatmentDate: day.AddDate(0, 0, -7),
				MethodName:    "Fysiotherapie",
				BillingType:   domain.BillingHourly,
				DurationHours: decimal.NullDecimal{Decimal: decimal.RequireFromString("2.5"), Valid: true},
				Description:   "Fysiotherapie (2025-06-23)",
				Amount:        decimal.RequireFromString("125.00"),
			},
			{
				TreatmentID:   11,
				TreatmentDate: day.AddDate(0, 0, -3),
				MethodName:    "Intake",
				BillingType:   domain.BillingSession,
				Description:   "Intake (2025-06-27)",
				Amount:        decimal.RequireFromString("80.00"),
			},
		},
	}
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer("Praktijk Lijf en Leven")

	if r.ContentType() != "application/pdf" {
		t.Fatalf("content type: %s", r.ContentType())
	}
	if r.FileExtension() != "pdf" {
		t.Fatalf("extension: %s", r.FileExtension())
	}

	doc, err := r.Render(context.Background(), sampleDetail(domain.StatusOpen))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
}

func TestPDFRenderer_VoidInvoice(t *testing.T) {
	r := NewPDFRenderer("Praktijk Lijf en Leven")

	doc, err := r.Render(context.Background(), sampleDetail(domain.StatusVoid))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc) == 0 {
		t.Fatal("expected a non-empty document")
	}
}

func TestXLSXRenderer(t *testing.T) {
	r := NewXLSXRenderer()

	if r.FileExtension() != "xlsx" {
		t.Fatalf("extension: %s", r.FileExtension())
	}

	doc, err := r.Render(context.Background(), sampleDetail(domain.StatusOpen))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(doc, []byte("PK")) {
		t.Fatal("output is not a zip-based workbook")
	}
}
