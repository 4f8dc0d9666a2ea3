package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/domain"
	"github.com/marcelsmeets511/lijf-leven-administratie-backend/internal/core/ports"
)

const sheetName = "Factuur"

// XLSXRenderer renders an invoice as an Office Open XML workbook.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *XLSXRenderer) FileExtension() string { return "xlsx" }

func (r *XLSXRenderer) Render(_ context.Context, detail *ports.InvoiceDetail) ([]byte, error) {
	inv := detail.Invoice

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
	}

	header := [][]any{
		{"Invoice", inv.InvoiceNumber},
		{"Client", detail.ClientName},
		{"Invoice date", inv.InvoiceDate.Format("2006-01-02")},
		{"Due date", inv.DueDate.Format("2006-01-02")},
		{"Status", string(inv.Status)},
	}
	if inv.Status == domain.StatusVoid {
		header = append(header, []any{"", "VOID"})
	}
	for i, pair := range header {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheetName, cell, &pair); err != nil {
			return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
		}
	}

	rowOffset := len(header) + 2
	columns := []any{"Date", "Treatment", "Billing type", "Hours", "Amount (EUR)"}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowOffset), &columns); err != nil {
		return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
	}
	for i, line := range detail.Lines {
		hours := ""
		if line.DurationHours.Valid {
			hours = line.DurationHours.Decimal.String()
		}
		row := []any{
			line.TreatmentDate.Format("2006-01-02"),
			line.MethodName,
			string(line.BillingType),
			hours,
			line.Amount.StringFixed(2),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowOffset+1+i), &row); err != nil {
			return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
		}
	}

	totalRow := []any{"", "", "", "Total", inv.TotalAmount.StringFixed(2)}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowOffset+1+len(detail.Lines)), &totalRow); err != nil {
		return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx for %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
